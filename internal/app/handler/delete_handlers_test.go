package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/app/handler"
	"github.com/mkovalev/linkcut/internal/mocks"
	"github.com/mkovalev/linkcut/internal/models"
	"github.com/mkovalev/linkcut/internal/storage"
)

func newDeleteRouter(mockService *mocks.MockURLServiceIface) *chi.Mux {
	h := handler.NewDelete(mockService, zap.NewNop())

	r := chi.NewRouter()
	r.Delete("/admin/{secretKey}", h.Deactivate)
	return r
}

func TestDeactivate(t *testing.T) {
	t.Run("active record returns confirmation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockURLServiceIface(ctrl)
		mockService.EXPECT().
			Deactivate(gomock.Any(), "ABC12_DEFGHIJK").
			Return(&models.URLInfo{IsActive: false}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/admin/ABC12_DEFGHIJK", nil)
		rec := httptest.NewRecorder()

		newDeleteRouter(mockService).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "has been deactivated")
	})

	t.Run("unknown or already inactive returns 404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockURLServiceIface(ctrl)
		mockService.EXPECT().
			Deactivate(gomock.Any(), "ABC12_DEFGHIJK").
			Return(nil, storage.ErrNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/admin/ABC12_DEFGHIJK", nil)
		rec := httptest.NewRecorder()

		newDeleteRouter(mockService).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
