// Package service holds the resolution engine: the one component that
// talks to both the cache and the record store. The store is the sole
// source of truth for activity state; the cache only accelerates the
// key -> target URL lookup and is allowed to fail at any time.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/cache"
	"github.com/mkovalev/linkcut/internal/keygen"
	"github.com/mkovalev/linkcut/internal/models"
	"github.com/mkovalev/linkcut/internal/storage"
)

// ErrInvalidURL rejects a creation request before anything is persisted.
var ErrInvalidURL = errors.New("target URL is not a valid absolute http(s) URL")

type URLService struct {
	store     storage.Store
	cache     cache.Cache
	generator *keygen.Generator
	logger    *zap.Logger
	baseURL   string
	cacheTTL  time.Duration
}

func NewURL(store storage.Store, c cache.Cache, logger *zap.Logger, baseURL string, cacheTTL time.Duration) *URLService {
	return &URLService{
		store:     store,
		cache:     c,
		generator: keygen.New(store),
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		cacheTTL:  cacheTTL,
	}
}

func (s *URLService) PingContext(ctx context.Context) error {
	return s.store.PingContext(ctx)
}

// Create validates the target, generates a unique key pair, persists
// the record and best-effort warms the cache.
func (s *URLService) Create(ctx context.Context, targetURL string) (*models.URLInfo, error) {
	if err := validateTargetURL(targetURL); err != nil {
		return nil, err
	}

	key, err := s.generator.Unique(ctx)
	if err != nil {
		return nil, err
	}

	secretKey, err := keygen.SecretFor(key)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Create(ctx, key, secretKey, targetURL)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	if err := s.cache.Set(ctx, rec.Key, rec.TargetURL, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed after create", zap.String("key", rec.Key), zap.Error(err))
	}

	return s.toInfo(rec), nil
}

// Resolve returns the redirect target for key and charges one click.
//
// On a cache hit the store is still consulted: the atomic increment
// both records the click and confirms the record is active, so a cache
// entry never bypasses the activity check. When the store says the key
// is gone while the cache says it exists, the stale entry is evicted
// and the lookup falls through to not-found.
func (s *URLService) Resolve(ctx context.Context, key string) (string, error) {
	cached, cacheErr := s.cache.Get(ctx, key)
	if cacheErr == nil {
		if _, err := s.store.IncrementClicks(ctx, key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.evictStale(ctx, key)
				return "", storage.ErrNotFound
			}
			return "", fmt.Errorf("confirm cached key: %w", err)
		}
		// The cached value is the redirect target. Targets are
		// immutable, so it cannot differ from the store's.
		return cached, nil
	}

	if !errors.Is(cacheErr, cache.ErrMiss) {
		s.logger.Warn("cache degraded, falling back to store", zap.String("key", key), zap.Error(cacheErr))
	}

	rec, err := s.store.IncrementClicks(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve key: %w", err)
	}

	if err := s.cache.Set(ctx, rec.Key, rec.TargetURL, s.cacheTTL); err != nil {
		s.logger.Warn("cache repopulate failed", zap.String("key", key), zap.Error(err))
	}

	return rec.TargetURL, nil
}

// AdminInfo returns the info shape for an active record by secret key.
func (s *URLService) AdminInfo(ctx context.Context, secretKey string) (*models.URLInfo, error) {
	rec, err := s.store.FindActiveBySecretKey(ctx, secretKey)
	if err != nil {
		return nil, err
	}
	return s.toInfo(rec), nil
}

// Deactivate soft-deletes the record for secretKey. The cache entry is
// best-effort deleted for faster convergence; TTL expiry covers the
// case where the delete fails.
func (s *URLService) Deactivate(ctx context.Context, secretKey string) (*models.URLInfo, error) {
	rec, err := s.store.Deactivate(ctx, secretKey)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, rec.Key); err != nil {
		s.logger.Warn("cache delete failed after deactivate", zap.String("key", rec.Key), zap.Error(err))
	}

	return s.toInfo(rec), nil
}

func (s *URLService) evictStale(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("stale cache entry not evicted", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Info("evicted stale cache entry", zap.String("key", key))
}

func (s *URLService) toInfo(rec *storage.URLRecord) *models.URLInfo {
	return &models.URLInfo{
		TargetURL: rec.TargetURL,
		IsActive:  rec.IsActive,
		Clicks:    rec.Clicks,
		URL:       s.baseURL + "/" + rec.Key,
		AdminURL:  s.baseURL + "/admin/" + rec.SecretKey,
	}
}

func validateTargetURL(target string) error {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
