// Package respond writes the JSON envelopes shared by every handler.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", status).Msg("encode response")
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: status, Message: message})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// serviceErrors maps domain sentinels to a status and, where the cause must
// not leak to the client, a fixed message.
var serviceErrors = []struct {
	target  error
	status  int
	message string
}{
	{model.ErrValidation, http.StatusBadRequest, ""},
	{model.ErrNotFound, http.StatusNotFound, ""},
	{model.ErrAnalysisFailed, http.StatusUnprocessableEntity, "prescription analysis failed; try a clearer photo"},
	{model.ErrSaveFailed, http.StatusInternalServerError, "saving failed"},
}

// WriteServiceError answers with the status matching err's sentinel, or 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	for _, m := range serviceErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		} else {
			log.Warn().Err(err).Int("status", m.status).Msg("request failed")
		}
		WriteError(w, m.status, msg)
		return
	}
	log.Error().Err(err).Msg("unhandled service error")
	WriteError(w, http.StatusInternalServerError, "internal error")
}
