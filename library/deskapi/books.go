package deskapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type registerBookRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Lookup bool   `json:"lookup"`
}

// listRecentBooksHandler serves GET /v1/books with the newest books first and their availability.
func (h *Handler) listRecentBooksHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := readLimit(r, h.recentLimit)
	if err != nil {
		h.invalidInputResponse(w, r, err)
		return
	}

	shelf, err := h.desk.ListBookshelf(r.Context(), limit)
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	response := make([]bookResponse, 0, shelf.Count)
	for _, info := range shelf.Books {
		item := toBookResponse(info.Book)
		item.Available = &info.Available
		response = append(response, item)
	}

	if err := h.encodeJSON(w, http.StatusOK, envelope{"books": response}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showAvailabilityHandler serves GET /v1/books/{isbn}/availability.
func (h *Handler) showAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	available, err := h.desk.IsAvailable(r.Context(), isbn)
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	if err := h.encodeJSON(w, http.StatusOK, envelope{"isbn": isbn, "available": available}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showProposalHandler serves GET /v1/books/{isbn}/proposal, the advisory auto-registration.
func (h *Handler) showProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.desk.ResolveAutoRegistration(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	if err := h.encodeJSON(w, http.StatusOK, envelope{"proposal": toBookResponse(proposal)}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// registerBookHandler serves POST /v1/books.
// With "lookup": true the catalog fills in the metadata when no title is given.
func (h *Handler) registerBookHandler(w http.ResponseWriter, r *http.Request) {
	var request registerBookRequest
	if err := h.decodeJSON(w, r, &request); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	registerBook := func() (bookResponse, error) {
		if request.Lookup {
			book, err := h.desk.RegisterBookWithLookup(r.Context(), request.ISBN, request.Title)
			return toBookResponse(book), err
		}

		book, err := h.desk.RegisterBook(r.Context(), request.ISBN, request.Title, request.Author)
		return toBookResponse(book), err
	}

	book, err := registerBook()
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/books/"+book.ISBN+"/availability")
	if err := h.encodeJSON(w, http.StatusCreated, envelope{"book": book}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
