package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/cache"
	"github.com/mkovalev/linkcut/internal/storage"
)

// fakeCache is an in-memory cache.Cache whose failure modes can be
// toggled per test.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
	delErr  error

	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key, targetURL string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = targetURL
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

func newTestService(t *testing.T) (*URLService, *storage.MemoryStorage, *fakeCache) {
	t.Helper()
	mem, err := storage.CreateMemoryStorage()
	require.NoError(t, err)
	fc := newFakeCache()
	svc := NewURL(mem, fc, zap.NewNop(), "http://localhost:8080/", cache.DefaultTTL)
	return svc, mem, fc
}

func TestCreate(t *testing.T) {
	svc, mem, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", info.TargetURL)
	assert.True(t, info.IsActive)
	assert.Equal(t, int64(0), info.Clicks)

	// url is base + 5-char key, admin_url is base + /admin/ + secret
	require.True(t, strings.HasPrefix(info.URL, "http://localhost:8080/"))
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")
	assert.Len(t, key, 5)
	assert.True(t, strings.HasPrefix(info.AdminURL, "http://localhost:8080/admin/"+key+"_"))

	// persisted and cached
	rec, err := mem.FindActiveByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", rec.TargetURL)
	assert.True(t, fc.has(key))
}

func TestCreate_InvalidTarget(t *testing.T) {
	svc, _, fc := newTestService(t)

	for _, target := range []string{
		"not-a-url",
		"ftp://example.com/file",
		"//example.com",
		"http://",
		"",
	} {
		_, err := svc.Create(context.Background(), target)
		assert.ErrorIs(t, err, ErrInvalidURL, "target %q", target)
	}

	// nothing persisted, nothing cached
	assert.Zero(t, fc.sets)
}

func TestCreate_CacheFailureDoesNotFailCreate(t *testing.T) {
	svc, _, fc := newTestService(t)
	fc.setErr = errors.New("redis down")

	info, err := svc.Create(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.True(t, info.IsActive)
}

func TestResolve_CacheMissFallsBackToStore(t *testing.T) {
	svc, mem, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")

	// Drop the warmed entry to force the store path.
	require.NoError(t, fc.Delete(ctx, key))

	target, err := svc.Resolve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	// click charged and cache repopulated
	rec, err := mem.FindActiveByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Clicks)
	assert.True(t, fc.has(key))
}

func TestResolve_CacheHitStillChargesClick(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")

	for i := 0; i < 3; i++ {
		target, err := svc.Resolve(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", target)
	}

	rec, err := mem.FindActiveByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Clicks)
}

func TestResolve_StaleCacheEntrySelfHeals(t *testing.T) {
	svc, _, fc := newTestService(t)
	ctx := context.Background()

	// Cache claims the key exists, the store has never seen it.
	require.NoError(t, fc.Set(ctx, "GHOST", "https://stale.example.com", time.Hour))

	_, err := svc.Resolve(ctx, "GHOST")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// The stale entry is gone; the next resolve is a clean miss.
	assert.False(t, fc.has("GHOST"))
	_, err = svc.Resolve(ctx, "GHOST")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolve_DeactivatedKeyWithLiveCacheEntry(t *testing.T) {
	svc, _, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")
	secret := strings.TrimPrefix(info.AdminURL, "http://localhost:8080/admin/")

	// Simulate the cache delete on deactivation failing, leaving the
	// entry behind.
	fc.delErr = errors.New("redis down")
	_, err = svc.Deactivate(ctx, secret)
	require.NoError(t, err)
	require.True(t, fc.has(key))
	fc.delErr = nil

	// The cache still answers, but the store refuses to confirm:
	// not-found wins and the entry is evicted.
	_, err = svc.Resolve(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, fc.has(key))
}

func TestResolve_CacheErrorsAreTreatedAsMiss(t *testing.T) {
	svc, mem, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")

	// Every cache operation fails from here on.
	fc.getErr = errors.New("i/o timeout")
	fc.setErr = errors.New("i/o timeout")
	fc.delErr = errors.New("i/o timeout")

	target, err := svc.Resolve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	rec, err := mem.FindActiveByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Clicks)
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	fc := newFakeCache()
	svc := NewURL(failingStore{}, fc, zap.NewNop(), "http://localhost:8080", cache.DefaultTTL)

	_, err := svc.Resolve(context.Background(), "ABC12")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestAdminInfo(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")
	secret := strings.TrimPrefix(info.AdminURL, "http://localhost:8080/admin/")

	_, err = svc.Resolve(ctx, key)
	require.NoError(t, err)

	got, err := svc.AdminInfo(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Clicks)
	assert.True(t, got.IsActive)
	assert.Equal(t, info.URL, got.URL)

	_, err = svc.AdminInfo(ctx, "UNKNOWN_SECRET1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeactivate_IsOneWay(t *testing.T) {
	svc, _, fc := newTestService(t)
	ctx := context.Background()

	info, err := svc.Create(ctx, "https://example.com")
	require.NoError(t, err)
	key := strings.TrimPrefix(info.URL, "http://localhost:8080/")
	secret := strings.TrimPrefix(info.AdminURL, "http://localhost:8080/admin/")

	got, err := svc.Deactivate(ctx, secret)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.False(t, fc.has(key), "cache entry should be evicted on deactivation")

	// Second deactivation reports not found.
	_, err = svc.Deactivate(ctx, secret)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// And the key no longer resolves.
	_, err = svc.Resolve(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// failingStore simulates the database being down.
type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) Create(ctx context.Context, key, secretKey, targetURL string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) FindActiveByKey(ctx context.Context, key string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) FindActiveBySecretKey(ctx context.Context, secretKey string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) FindByKey(ctx context.Context, key string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) IncrementClicks(ctx context.Context, key string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) Deactivate(ctx context.Context, secretKey string) (*storage.URLRecord, error) {
	return nil, errStoreDown
}

func (failingStore) PingContext(ctx context.Context) error {
	return errStoreDown
}
