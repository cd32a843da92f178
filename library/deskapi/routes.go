package deskapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes returns the router with all desk endpoints.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.NotFound(h.notFoundResponse)
	router.MethodNotAllowed(h.methodNotAllowedResponse)

	router.Get("/v1/healthcheck", h.healthcheckHandler)

	router.Route("/v1/books", func(r chi.Router) {
		r.Get("/", h.listRecentBooksHandler)
		r.Get("/{isbn}/availability", h.showAvailabilityHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.requirePIN)
			r.Post("/", h.registerBookHandler)
			r.Get("/{isbn}/proposal", h.showProposalHandler)
		})
	})

	router.Route("/v1/loans", func(r chi.Router) {
		r.Post("/", h.lendBookHandler)
		r.Post("/{isbn}/return", h.returnBookHandler)
		r.Get("/overdue", h.listOverdueHandler)
	})

	return router
}
