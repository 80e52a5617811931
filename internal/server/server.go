package server

import (
	"net/http"
	"os"

	"scrabble-portal/internal/config"
	"scrabble-portal/internal/db"
	"scrabble-portal/internal/game"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Server is the JSON transport over the game engine and the read-only
// registry/history/stats queries.
type Server struct {
	engine *game.Engine
	store  *db.GameStore
	cfg    config.Config
}

func New(engine *game.Engine, store *db.GameStore, cfg config.Config) *Server {
	return &Server{
		engine: engine,
		store:  store,
		cfg:    cfg,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/players", s.handleCreatePlayer).Methods(http.MethodPost)
	r.HandleFunc("/players", s.handleSearchPlayers).Methods(http.MethodGet)
	r.HandleFunc("/games", s.handleCreateGame).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}", s.handleGameState).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/turns", s.handleSubmitTurn).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}/undo", s.handleUndoTurn).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}/end", s.handleEndGame).Methods(http.MethodPost)
	r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/stats/players/{id}", s.handlePlayerStats).Methods(http.MethodGet)
	return r
}

// Handler wraps the router with CORS and request logging.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(os.Stderr, cors(s.Router()))
}
