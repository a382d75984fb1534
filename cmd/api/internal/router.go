package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the server's handler tree. mock, when non-nil, is served
// under /mock so the API can point its own upstream at itself.
func NewRouter(api *API, mock http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(api.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CorsMiddleware)

	r.Get("/health", api.HandleHealth)

	r.Route("/api", api.Routes)

	if mock != nil {
		r.Mount("/mock", mock)
	}
	return r
}
