package server

import (
	"net/http"

	"github.com/cloo-solutions/dreamcourse/internal/api"
	"github.com/cloo-solutions/dreamcourse/internal/api/handlers"
	"github.com/cloo-solutions/dreamcourse/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	SessionHandler *handlers.SessionHandler
	OptionsHandler *handlers.OptionsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/options", cfg.OptionsHandler.Get)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", cfg.SessionHandler.Create)
		r.Get("/{id}", cfg.SessionHandler.Get)
		r.Delete("/{id}", cfg.SessionHandler.Delete)
		r.Post("/{id}/profile", cfg.SessionHandler.SubmitProfile)
		r.Post("/{id}/major", cfg.SessionHandler.SelectMajor)
		r.Post("/{id}/curriculum", cfg.SessionHandler.OpenCurriculum)
		r.Post("/{id}/back", cfg.SessionHandler.Back)
	})

	return r
}
