package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 60 * time.Second

// NewRouter wires the HTTP API.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", h.HandleIssue)
		r.Post("/documents/{kind}/html", h.HandleIssueHTML)
		r.Get("/rate", h.HandleRate)
		r.Get("/qr", h.HandleQR)
	})

	return r
}
