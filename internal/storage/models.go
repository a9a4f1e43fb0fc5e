package storage

// URLRecord is the durable shape of a shortened URL. Key and SecretKey
// are unique across all records ever created, active or not. TargetURL
// never changes after creation; the only mutable fields are Clicks and
// IsActive, and IsActive only ever goes true -> false.
type URLRecord struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	SecretKey string `json:"secret_key"`
	TargetURL string `json:"target_url"`
	IsActive  bool   `json:"is_active"`
	Clicks    int64  `json:"clicks"`
}
