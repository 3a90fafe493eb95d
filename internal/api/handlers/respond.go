package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
)

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    interface{}       `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondList(w http.ResponseWriter, data, meta interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Meta: meta})
}

// respondError converts a service failure into the envelope. Internal
// detail is logged here and never surfaced to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	message := apperr.MessageOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInternal:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "Internal server error"
	}

	writeJSON(w, status, envelope{
		Success: false,
		Message: message,
		Errors:  apperr.FieldsOf(err),
	})
}
