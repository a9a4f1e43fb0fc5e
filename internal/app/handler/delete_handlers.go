package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/app/service"
	"github.com/mkovalev/linkcut/internal/storage"
)

type DeleteHandler struct {
	urlService service.URLServiceIface
	logger     *zap.Logger
}

func NewDelete(s service.URLServiceIface, l *zap.Logger) *DeleteHandler {
	return &DeleteHandler{
		urlService: s,
		logger:     l,
	}
}

// Deactivate handles DELETE /admin/{secretKey}: soft-deletes the
// record so the key stops resolving but stays on file.
func (h *DeleteHandler) Deactivate(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	secretKey := chi.URLParam(req, "secretKey")

	_, err := h.urlService.Deactivate(ctx, secretKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(res, http.StatusNotFound, "Secret key doesn't exist")
			return
		}

		h.logger.Error("deactivating record", zap.Error(err))
		writeDetail(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeDetail(res, http.StatusOK, "URL with secret key "+secretKey+" has been deactivated.")
}
