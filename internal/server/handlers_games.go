package server

import (
	"net/http"

	"scrabble-portal/internal/game"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type teamRequest struct {
	Name    string      `json:"name"`
	Players []uuid.UUID `json:"players"`
}

type createGameRequest struct {
	Name         string        `json:"name"`
	TurnDuration int           `json:"turn_duration"`
	Teams        []teamRequest `json:"teams"`
}

type submitTurnRequest struct {
	BaseScore int  `json:"base_score"`
	Bingo     bool `json:"bingo"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TurnDuration == 0 {
		req.TurnDuration = s.cfg.DefaultTurnSeconds
	}

	setup := game.CreateGameRequest{
		Name:         req.Name,
		TurnDuration: req.TurnDuration,
		Teams:        make([]game.TeamSetup, 0, len(req.Teams)),
	}
	for _, team := range req.Teams {
		players, err := s.store.GetPlayers(r.Context(), team.Players)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		setup.Teams = append(setup.Teams, game.TeamSetup{Name: team.Name, Players: players})
	}

	created, err := s.engine.CreateGame(r.Context(), setup)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": created.ID,
		"name":    created.Name,
		"status":  created.Status,
	})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	state, err := s.engine.State(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req submitTurnRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.engine.SubmitTurn(r.Context(), id, req.BaseScore, req.Bingo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUndoTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := s.engine.UndoLastTurn(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	result, err := s.engine.EndGame(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
