package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"scrabble-portal/internal/config"
	"scrabble-portal/internal/db"
	"scrabble-portal/internal/game"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) (*Server, *clockwork.FakeClock) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := db.NewGameStore(conn)
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.Default()
	engine := game.NewEngine(store, clock, cfg.EnforceTurnTimer)
	return New(engine, store, cfg), clock
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	return recorder
}

func decodeMap(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func createPlayer(t *testing.T, s *Server, name, number string) string {
	t.Helper()
	recorder := doRequest(t, s, http.MethodPost, "/players", map[string]string{"name": name, "number": number})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create player %s: status %d body %s", name, recorder.Code, recorder.Body.String())
	}
	id, _ := decodeMap(t, recorder)["id"].(string)
	if id == "" {
		t.Fatalf("create player %s: no id in response", name)
	}
	return id
}

func createScenarioGame(t *testing.T, s *Server) (gameID, p1, p2, p3 string) {
	t.Helper()
	p1 = createPlayer(t, s, "P1", "001")
	p2 = createPlayer(t, s, "P2", "002")
	p3 = createPlayer(t, s, "P3", "003")
	recorder := doRequest(t, s, http.MethodPost, "/games", map[string]any{
		"name":          "Test Game",
		"turn_duration": 60,
		"teams": []map[string]any{
			{"name": "Team A", "players": []string{p1, p2}},
			{"name": "Team B", "players": []string{p3}},
		},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create game: status %d body %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeMap(t, recorder)
	gameID, _ = payload["game_id"].(string)
	if gameID == "" {
		t.Fatalf("create game: no game_id in %v", payload)
	}
	if payload["status"] != "active" {
		t.Fatalf("create game: status %v, want active", payload["status"])
	}
	return gameID, p1, p2, p3
}

func TestPlayerRegistry(t *testing.T) {
	s, _ := newTestServer(t)

	createPlayer(t, s, "Alice", "123")

	if recorder := doRequest(t, s, http.MethodPost, "/players", map[string]string{"name": "Alice", "number": "123"}); recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate player: status %d, want 409", recorder.Code)
	}
	if recorder := doRequest(t, s, http.MethodPost, "/players", map[string]string{"name": "", "number": "1"}); recorder.Code != http.StatusBadRequest {
		t.Fatalf("empty name: status %d, want 400", recorder.Code)
	}

	createPlayer(t, s, "Bob", "456")
	recorder := doRequest(t, s, http.MethodGet, "/players?query=ali", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("search: status %d", recorder.Code)
	}
	var players []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &players); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(players) != 1 || players[0]["name"] != "Alice" {
		t.Fatalf("unexpected search result: %v", players)
	}
}

func TestGameFlow(t *testing.T) {
	s, _ := newTestServer(t)
	gameID, p1, _, _ := createScenarioGame(t, s)

	recorder := doRequest(t, s, http.MethodGet, "/games/"+gameID, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("state: status %d", recorder.Code)
	}
	state := decodeMap(t, recorder)
	current, _ := state["current_turn"].(map[string]any)
	if current == nil || current["team_name"] != "Team A" || current["player_name"] != "P1" {
		t.Fatalf("expected (Team A, P1) to open, got %v", current)
	}
	if current["time_left"] != float64(60) {
		t.Fatalf("time_left = %v, want 60", current["time_left"])
	}

	recorder = doRequest(t, s, http.MethodPost, "/games/"+gameID+"/turns", map[string]any{"base_score": 10, "bingo": false})
	if recorder.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", recorder.Code, recorder.Body.String())
	}
	result := decodeMap(t, recorder)
	next, _ := result["next_turn"].(map[string]any)
	if next["team_name"] != "Team B" || next["player_name"] != "P3" {
		t.Fatalf("expected (Team B, P3) next, got %v", next)
	}

	recorder = doRequest(t, s, http.MethodPost, "/games/"+gameID+"/turns", map[string]any{"base_score": 20, "bingo": true})
	if recorder.Code != http.StatusOK {
		t.Fatalf("submit bingo: status %d", recorder.Code)
	}
	result = decodeMap(t, recorder)
	leaderboard, _ := result["leaderboard"].([]any)
	top, _ := leaderboard[0].(map[string]any)
	if top["name"] != "Team B" || top["score"] != float64(70) {
		t.Fatalf("expected Team B at 70, got %v", top)
	}
	next, _ = result["next_turn"].(map[string]any)
	if next["player_name"] != "P2" {
		t.Fatalf("expected P2 after Team A rotates, got %v", next)
	}

	recorder = doRequest(t, s, http.MethodPost, "/games/"+gameID+"/undo", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("undo: status %d body %s", recorder.Code, recorder.Body.String())
	}
	undo := decodeMap(t, recorder)
	if undo["reverted_turn_number"] != float64(2) {
		t.Fatalf("reverted_turn_number = %v, want 2", undo["reverted_turn_number"])
	}

	recorder = doRequest(t, s, http.MethodPost, "/games/"+gameID+"/end", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("end: status %d", recorder.Code)
	}
	final := decodeMap(t, recorder)
	if final["winner"] != "Team A" || final["status"] != "finished" {
		t.Fatalf("unexpected final result: %v", final)
	}

	recorder = doRequest(t, s, http.MethodGet, "/games/"+gameID, nil)
	state = decodeMap(t, recorder)
	if state["status"] != "finished" {
		t.Fatalf("state after end: %v", state["status"])
	}
	if _, ok := state["current_turn"]; ok {
		t.Fatalf("finished game should omit current_turn: %v", state)
	}

	if recorder = doRequest(t, s, http.MethodPost, "/games/"+gameID+"/turns", map[string]any{"base_score": 1, "bingo": false}); recorder.Code != http.StatusConflict {
		t.Fatalf("submit on finished game: status %d, want 409", recorder.Code)
	}

	recorder = doRequest(t, s, http.MethodGet, "/history", nil)
	var history []map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0]["game_id"] != gameID {
		t.Fatalf("unexpected history: %v", history)
	}

	recorder = doRequest(t, s, http.MethodGet, "/stats/players/"+p1, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("stats: status %d", recorder.Code)
	}
	stats := decodeMap(t, recorder)
	if stats["total_games"] != float64(1) || stats["wins"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestExpiredTurnRejectedWhenEnforced(t *testing.T) {
	s, clock := newTestServer(t)
	gameID, _, _, _ := createScenarioGame(t, s)

	clock.Advance(61 * time.Second)
	recorder := doRequest(t, s, http.MethodPost, "/games/"+gameID+"/turns", map[string]any{"base_score": 10, "bingo": false})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expired turn: status %d, want 409", recorder.Code)
	}
}

func TestRequestValidation(t *testing.T) {
	s, _ := newTestServer(t)
	gameID, _, _, _ := createScenarioGame(t, s)

	if recorder := doRequest(t, s, http.MethodGet, "/games/not-a-uuid", nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid: status %d, want 400", recorder.Code)
	}
	if recorder := doRequest(t, s, http.MethodGet, "/games/00000000-0000-0000-0000-000000000001", nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status %d, want 404", recorder.Code)
	}
	if recorder := doRequest(t, s, http.MethodPost, "/games", map[string]any{"name": "empty", "turn_duration": 60, "teams": []any{}}); recorder.Code != http.StatusBadRequest {
		t.Fatalf("no teams: status %d, want 400", recorder.Code)
	}
	if recorder := doRequest(t, s, http.MethodPost, "/games", map[string]any{
		"name":          "ghost",
		"turn_duration": 60,
		"teams": []map[string]any{
			{"name": "A", "players": []string{"00000000-0000-0000-0000-000000000002"}},
		},
	}); recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown player: status %d, want 404", recorder.Code)
	}
	if recorder := doRequest(t, s, http.MethodPost, "/games/"+gameID+"/undo", nil); recorder.Code != http.StatusConflict {
		t.Fatalf("undo with no turns: status %d, want 409", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/games/"+gameID+"/turns", bytes.NewReader([]byte("{not json")))
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: status %d, want 400", recorder.Code)
	}
}
