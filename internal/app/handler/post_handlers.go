package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/app/service"
	"github.com/mkovalev/linkcut/internal/models"
)

type PostHandler struct {
	urlService service.URLServiceIface
	logger     *zap.Logger
}

func NewPost(s service.URLServiceIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		urlService: s,
		logger:     l,
	}
}

// CreateURL handles POST /url: validates the target and returns the
// public and admin links for the new record.
func (h *PostHandler) CreateURL(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var request models.CreateRequest

	if err := decodeJSONBody(res, req, &request); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeDetail(res, mr.status, mr.msg)
			return
		}

		h.logger.Error("decoding create request", zap.Error(err))
		writeDetail(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	info, err := h.urlService.Create(ctx, request.TargetURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			writeDetail(res, http.StatusBadRequest, "Your provided URL is not valid. Must include http:// or https://")
			return
		}

		h.logger.Error("unable to create URL record", zap.Error(err))
		writeDetail(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, info)
}
