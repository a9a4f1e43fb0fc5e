package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/app/handler"
	"github.com/mkovalev/linkcut/internal/app/service"
	"github.com/mkovalev/linkcut/internal/middleware"
)

// Init assembles the router: redirect, creation, admin and health
// routes plus the logging and compression middleware.
func Init(svc service.URLServiceIface, logger *zap.Logger) *chi.Mux {
	getHandler := handler.NewGet(svc, logger)
	postHandler := handler.NewPost(svc, logger)
	deleteHandler := handler.NewDelete(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithGZIPGet)
	r.Use(middleware.WithGZIPPost)

	r.Get("/health", getHandler.Health)
	r.Post("/url", postHandler.CreateURL)
	r.Get("/admin/{secretKey}", getHandler.AdminInfo)
	r.Delete("/admin/{secretKey}", deleteHandler.Deactivate)
	r.Get("/{key}", getHandler.ByKey)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Short URL key is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
