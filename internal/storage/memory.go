package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage keeps records in process memory. It backs the service
// when no database DSN is configured and doubles as the store for
// service-level tests. All operations hold the mutex, so the
// conditional updates are atomic the same way the SQL ones are.
type MemoryStorage struct {
	mu       sync.Mutex
	byKey    map[string]*URLRecord
	bySecret map[string]*URLRecord
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byKey:    make(map[string]*URLRecord),
		bySecret: make(map[string]*URLRecord),
	}, nil
}

func (m *MemoryStorage) Create(ctx context.Context, key, secretKey, targetURL string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byKey[key]; exists {
		return nil, ErrConflict
	}
	if _, exists := m.bySecret[secretKey]; exists {
		return nil, ErrConflict
	}

	r := &URLRecord{
		ID:        uuid.NewString(),
		Key:       key,
		SecretKey: secretKey,
		TargetURL: targetURL,
		IsActive:  true,
		Clicks:    0,
	}
	m.byKey[key] = r
	m.bySecret[secretKey] = r

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) FindActiveByKey(ctx context.Context, key string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.byKey[key]
	if !exists || !r.IsActive {
		return nil, ErrNotFound
	}

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) FindActiveBySecretKey(ctx context.Context, secretKey string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.bySecret[secretKey]
	if !exists || !r.IsActive {
		return nil, ErrNotFound
	}

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) FindByKey(ctx context.Context, key string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.byKey[key]
	if !exists {
		return nil, ErrNotFound
	}

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) IncrementClicks(ctx context.Context, key string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.byKey[key]
	if !exists || !r.IsActive {
		return nil, ErrNotFound
	}
	r.Clicks++

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) Deactivate(ctx context.Context, secretKey string) (*URLRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.bySecret[secretKey]
	if !exists || !r.IsActive {
		return nil, ErrNotFound
	}
	r.IsActive = false

	copied := *r
	return &copied, nil
}

func (m *MemoryStorage) PingContext(ctx context.Context) error {
	return nil
}
