package game

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

type Player struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Number string    `json:"number"`
}

type Team struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Score   int       `json:"score"`
	Players []Player  `json:"players"`
}

type Turn struct {
	ID         uint      `json:"-"`
	TurnNumber int       `json:"turn_number"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	BaseScore  int       `json:"base_score"`
	Bingo      bool      `json:"bingo"`
	TotalScore int       `json:"total_score"`
	Timestamp  time.Time `json:"-"`
}

// Game is the full aggregate a Store loads and the engine mutates.
// Teams keep creation order, Turns keep insertion order; both orderings
// are load-bearing for rotation and undo.
type Game struct {
	ID               uuid.UUID
	Name             string
	Status           Status
	TurnDuration     int
	CurrentTurnIndex int
	TurnStartedAt    *time.Time
	CreatedAt        time.Time
	EndedAt          *time.Time
	Teams            []Team
	Turns            []Turn
}

func (g *Game) Finished() bool {
	return g.Status == StatusFinished
}

func (g *Game) teamByID(id uuid.UUID) *Team {
	for i := range g.Teams {
		if g.Teams[i].ID == id {
			return &g.Teams[i]
		}
	}
	return nil
}

// teamTurnCounts returns how many turns each team has taken so far.
func (g *Game) teamTurnCounts() map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(g.Teams))
	for _, turn := range g.Turns {
		counts[turn.TeamID]++
	}
	return counts
}

type CurrentTurn struct {
	TurnNumber int       `json:"turn_number"`
	TeamID     uuid.UUID `json:"team_id"`
	TeamName   string    `json:"team_name"`
	PlayerID   uuid.UUID `json:"player_id"`
	PlayerName string    `json:"player_name"`
	StartedAt  time.Time `json:"started_at"`
	TimeLeft   int       `json:"time_left"`
}

type GameState struct {
	GameID       uuid.UUID    `json:"game_id"`
	Name         string       `json:"name"`
	Status       Status       `json:"status"`
	TurnDuration int          `json:"turn_duration"`
	CurrentTurn  *CurrentTurn `json:"current_turn,omitempty"`
	Teams        []Team       `json:"teams"`
}

type TeamScore struct {
	TeamID uuid.UUID `json:"team_id"`
	Name   string    `json:"name"`
	Score  int       `json:"score"`
}

type TurnResult struct {
	Turn        Turn         `json:"turn"`
	NextTurn    *CurrentTurn `json:"next_turn"`
	Leaderboard []TeamScore  `json:"leaderboard"`
}

type UndoResult struct {
	RevertedTurnNumber int          `json:"reverted_turn_number"`
	CurrentTurn        *CurrentTurn `json:"current_turn"`
	Teams              []TeamScore  `json:"teams"`
}

type FinalScore struct {
	Team  string `json:"team"`
	Score int    `json:"score"`
}

type FinalResult struct {
	Status      Status       `json:"status"`
	FinalScores []FinalScore `json:"final_scores"`
	Winner      string       `json:"winner"`
}

type TeamSetup struct {
	Name    string
	Players []Player
}

type CreateGameRequest struct {
	Name         string
	TurnDuration int
	Teams        []TeamSetup
}
