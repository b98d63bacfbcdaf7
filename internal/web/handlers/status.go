package handlers

import "net/http"

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"images": h.db.Count()})
}
