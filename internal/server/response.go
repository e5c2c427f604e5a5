package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/errs"
)

// JSON writes v as a JSON response body.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// writeErr maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an opaque internal error.
func writeErr(w http.ResponseWriter, err error) {
	kind, ok := errs.KindOf(err)
	if !ok {
		log.Error().Err(err).Msg("Unhandled service error")
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch kind {
	case errs.KindValidation:
		Error(w, http.StatusBadRequest, err.Error())
	case errs.KindAuthorization:
		Error(w, http.StatusForbidden, err.Error())
	case errs.KindNotFound:
		Error(w, http.StatusNotFound, err.Error())
	case errs.KindConflict:
		Error(w, http.StatusConflict, err.Error())
	case errs.KindInvariant:
		Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
