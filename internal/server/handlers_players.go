package server

import (
	"net/http"
	"strings"
)

type createPlayerRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Number = strings.TrimSpace(req.Number)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Number == "" {
		writeError(w, http.StatusBadRequest, "number is required")
		return
	}
	player, err := s.store.CreatePlayer(r.Context(), req.Name, req.Number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.store.SearchPlayers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}
