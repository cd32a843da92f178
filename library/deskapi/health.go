package deskapi

import "net/http"

func (h *Handler) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	health := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": h.env,
			"version":     h.version,
		},
	}

	if err := h.encodeJSON(w, http.StatusOK, health); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
