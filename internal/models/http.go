// Package models defines the request and response shapes of the HTTP
// surface.
package models

// CreateRequest is the body of POST /url.
type CreateRequest struct {
	// TargetURL is the destination to shorten. Must be an absolute
	// http or https URL.
	TargetURL string `json:"target_url"`
}

// URLInfo is the response shape shared by creation and admin lookup.
type URLInfo struct {
	TargetURL string `json:"target_url"`
	IsActive  bool   `json:"is_active"`
	Clicks    int64  `json:"clicks"`

	// URL is the public short link.
	URL string `json:"url"`

	// AdminURL grants info and deactivation rights. Returned once at
	// creation and on admin lookup, never anywhere else.
	AdminURL string `json:"admin_url"`
}

// Detail is a human-readable confirmation or error body.
type Detail struct {
	Detail string `json:"detail"`
}

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
}
