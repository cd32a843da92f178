package deskapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Error kinds that are not domain error kinds.
const (
	kindConcurrencyConflict = "ConcurrencyConflict"
	kindNotFound            = "NotFound"
	kindMethodNotAllowed    = "MethodNotAllowed"
	kindBadRequest          = "BadRequest"
	kindPINRequired         = "PINRequired"
	kindInternal            = "Internal"
)

var errorStatusByKind = map[core.ErrorKind]int{
	core.KindInvalidInput:      http.StatusUnprocessableEntity,
	core.KindDuplicateIsbn:     http.StatusConflict,
	core.KindUnknownBook:       http.StatusNotFound,
	core.KindAlreadyLent:       http.StatusConflict,
	core.KindNoActiveLoan:      http.StatusConflict,
	core.KindLookupUnavailable: http.StatusNotFound,
}

func (h *Handler) logError(r *http.Request, err error) {
	if h.logger == nil {
		return
	}

	h.logger.Error("desk api request failed",
		"request_method", r.Method,
		"request_url", r.URL.String(),
		"error", err.Error(),
	)
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	env := envelope{"error": map[string]string{"kind": kind, "message": message}}
	if err := h.encodeJSON(w, status, env); err != nil {
		h.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// deskErrorResponse maps errors from the desk service to responses.
func (h *Handler) deskErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *core.DomainError

	switch {
	case errors.As(err, &domainErr):
		status, ok := errorStatusByKind[domainErr.Kind]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		h.errorResponse(w, r, status, string(domainErr.Kind), domainErr.Message)
	case errors.Is(err, recordstore.ErrConcurrencyConflict):
		h.errorResponse(w, r, http.StatusConflict, kindConcurrencyConflict,
			"the records were changed by someone else, please try again")
	default:
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, kindInternal,
		"the server encountered a problem and could not process your request")
}

func (h *Handler) invalidInputResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusUnprocessableEntity, string(core.KindInvalidInput), err.Error())
}

func (h *Handler) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, kindBadRequest, err.Error())
}

func (h *Handler) pinRequiredResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusUnauthorized, kindPINRequired, "a valid desk PIN is required for this action")
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusNotFound, kindNotFound, "the requested resource could not be found")
}

func (h *Handler) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusMethodNotAllowed, kindMethodNotAllowed,
		fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}
