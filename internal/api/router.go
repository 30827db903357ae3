package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	r.Get("/preview/*", h.Preview)
	r.Get("/outline/*", h.Outline)
	r.Post("/import", h.Import)
	r.Post("/move", h.Move)
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
