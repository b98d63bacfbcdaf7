// Package handlers implements the thin HTTP adapter over internal/core: it
// decodes requests, invokes the mutation manager, and maps the five core
// error kinds onto HTTP statuses. No retrieval logic lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/web/middleware"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data) //nolint:errcheck
	}
}

// respondError sends a `{"message": ...}` error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// handleCoreError maps a core error kind to its HTTP status, per the
// error handling design. A FatalError is not recoverable: it is logged
// and the process exits, since an invariant the whole store depends on
// has already been violated.
func handleCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *core.NotFoundError
	var paramErr *core.ParamError
	var decodeErr *core.ImageDecodeError
	var storageErr *core.StorageError
	var fatalErr *core.FatalError

	reqID := middleware.RequestIDFromContext(r.Context())

	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &paramErr):
		respondError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &decodeErr):
		respondError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &storageErr):
		log.Printf("iqdb: [%s] storage error: %v", reqID, err)
		respondError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &fatalErr):
		log.Printf("iqdb: [%s] fatal: %v", reqID, err)
		os.Exit(1)
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
