package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/app/service"
	"github.com/mkovalev/linkcut/internal/models"
	"github.com/mkovalev/linkcut/internal/storage"
)

type GetHandler struct {
	urlService service.URLServiceIface
	logger     *zap.Logger
}

func NewGet(s service.URLServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		urlService: s,
		logger:     l,
	}
}

// ByKey handles GET /{key}: resolves the key through the cache and the
// store and issues the redirect.
func (h *GetHandler) ByKey(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	key := chi.URLParam(req, "key")

	target, err := h.urlService.Resolve(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(res, http.StatusNotFound, "URL '"+key+"' doesn't exist")
			return
		}

		h.logger.Error("resolving key", zap.String("key", key), zap.Error(err))
		writeDetail(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	http.Redirect(res, req, target, http.StatusTemporaryRedirect)
}

// AdminInfo handles GET /admin/{secretKey}.
func (h *GetHandler) AdminInfo(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	secretKey := chi.URLParam(req, "secretKey")

	info, err := h.urlService.AdminInfo(ctx, secretKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(res, http.StatusNotFound, "Secret key doesn't exist")
			return
		}

		h.logger.Error("admin lookup", zap.Error(err))
		writeDetail(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, info)
}

// Health handles GET /health, reporting store reachability.
func (h *GetHandler) Health(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.urlService.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		writeJSON(res, http.StatusServiceUnavailable, models.Health{Status: "unhealthy"})
		return
	}

	writeJSON(res, http.StatusOK, models.Health{Status: "ok"})
}
