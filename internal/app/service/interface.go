package service

import (
	"context"

	"github.com/mkovalev/linkcut/internal/models"
)

//go:generate mockgen -destination=../../mocks/mock_service.go -package=mocks github.com/mkovalev/linkcut/internal/app/service URLServiceIface

// URLServiceIface is what the HTTP handlers program against.
type URLServiceIface interface {
	Create(ctx context.Context, targetURL string) (*models.URLInfo, error)
	Resolve(ctx context.Context, key string) (string, error)
	AdminInfo(ctx context.Context, secretKey string) (*models.URLInfo, error)
	Deactivate(ctx context.Context, secretKey string) (*models.URLInfo, error)
	PingContext(ctx context.Context) error
}
