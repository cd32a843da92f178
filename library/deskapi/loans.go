package deskapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type lendBookRequest struct {
	ISBN    string `json:"isbn"`
	Student string `json:"student"`
}

// lendBookHandler serves POST /v1/loans.
func (h *Handler) lendBookHandler(w http.ResponseWriter, r *http.Request) {
	var request lendBookRequest
	if err := h.decodeJSON(w, r, &request); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	loan, err := h.desk.LendBook(r.Context(), request.ISBN, request.Student)
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	if err := h.encodeJSON(w, http.StatusCreated, envelope{"loan": h.toLoanResponse(loan)}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// returnBookHandler serves POST /v1/loans/{isbn}/return.
func (h *Handler) returnBookHandler(w http.ResponseWriter, r *http.Request) {
	loan, err := h.desk.ReturnBook(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	if err := h.encodeJSON(w, http.StatusOK, envelope{"loan": h.toLoanResponse(loan)}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listOverdueHandler serves GET /v1/loans/overdue. Without asOf the desk clock decides.
func (h *Handler) listOverdueHandler(w http.ResponseWriter, r *http.Request) {
	asOf, err := readAsOf(r, h.desk.Now())
	if err != nil {
		h.invalidInputResponse(w, r, err)
		return
	}

	entries, err := h.desk.ListOverdue(r.Context(), asOf)
	if err != nil {
		h.deskErrorResponse(w, r, err)
		return
	}

	response := make([]overdueResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, h.toOverdueResponse(entry))
	}

	if err := h.encodeJSON(w, http.StatusOK, envelope{"overdue": response, "asOf": asOf}); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
