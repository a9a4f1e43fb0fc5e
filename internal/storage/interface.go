package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that match no active record.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates key or secret key
// uniqueness. The generator pre-checks candidates, so hitting this is
// a race between concurrent creates; the store is the final arbiter.
var ErrConflict = errors.New("data conflict")

// Store is the durable source of truth for URL records.
type Store interface {
	// Create persists a new record with the given identifiers,
	// is_active=true and clicks=0, and returns it with the
	// store-assigned id.
	Create(ctx context.Context, key, secretKey, targetURL string) (*URLRecord, error)

	// FindActiveByKey returns the active record for key, or ErrNotFound.
	FindActiveByKey(ctx context.Context, key string) (*URLRecord, error)

	// FindActiveBySecretKey returns the active record for secretKey,
	// or ErrNotFound.
	FindActiveBySecretKey(ctx context.Context, secretKey string) (*URLRecord, error)

	// FindByKey returns the record for key regardless of activity.
	// Uniqueness checks go through here so deactivated keys are never
	// reissued.
	FindByKey(ctx context.Context, key string) (*URLRecord, error)

	// IncrementClicks atomically bumps the click counter of the active
	// record for key and returns the updated record, or ErrNotFound.
	// The increment and the activity check are one conditional update.
	IncrementClicks(ctx context.Context, key string) (*URLRecord, error)

	// Deactivate flips the active record for secretKey to inactive and
	// returns it, or ErrNotFound when absent or already inactive.
	Deactivate(ctx context.Context, secretKey string) (*URLRecord, error)

	PingContext(ctx context.Context) error
}
