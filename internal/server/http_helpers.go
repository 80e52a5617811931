package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"scrabble-portal/internal/db"
	"scrabble-portal/internal/game"

	"github.com/rs/zerolog/log"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDomainError maps engine and store errors onto HTTP statuses.
// Rule violations are 409s so callers can tell them apart from bad
// input; corrupted rotation state is a 500 and gets logged.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *game.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Reason)
	case errors.Is(err, game.ErrNotFound), errors.Is(err, db.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrNothingToUndo),
		errors.Is(err, game.ErrTurnExpired),
		errors.Is(err, db.ErrPlayerExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidState):
		log.Error().Err(err).Msg("invalid game state")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
