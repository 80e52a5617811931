package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Player is the shared registry: identities exist across games and are
// immutable once created. Number disambiguates players with the same name.
type Player struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:64;not null;uniqueIndex:idx_players_name_number"`
	Number    string    `gorm:"size:16;not null;uniqueIndex:idx_players_name_number"`
	CreatedAt time.Time `gorm:"not null"`
}

type Game struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"size:128;not null"`
	Status           string    `gorm:"size:16;not null"`
	TurnDuration     int       `gorm:"not null"`
	CurrentTurnIndex int       `gorm:"not null;default:0"`
	TurnStartedAt    *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	EndedAt          *time.Time
	Teams            []Team
	Turns            []Turn
	Events           []Event
}

// Team rows are created with the game and never after. Position records
// creation order, which drives the round-robin team rotation.
type Team struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name     string    `gorm:"size:64;not null"`
	Score    int       `gorm:"not null;default:0"`
	Position int       `gorm:"not null"`
}

// GamePlayer links a registry player onto a team for one game. Position
// is the player's rotation slot within the team; it is fixed at game
// creation and load-bearing for replay determinism.
type GamePlayer struct {
	GameID   uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_game_players_membership"`
	TeamID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PlayerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_game_players_membership"`
	Position int       `gorm:"not null"`
}

// Turn rows are append-only except for undo, which deletes the row with
// the highest id. The auto-increment id, not turn_number, is the
// authority for "most recent".
type Turn struct {
	ID         uint      `gorm:"primaryKey"`
	TurnNumber int       `gorm:"not null"`
	GameID     uuid.UUID `gorm:"type:uuid;index;not null"`
	TeamID     uuid.UUID `gorm:"type:uuid;index;not null"`
	PlayerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	BaseScore  int       `gorm:"not null"`
	Bingo      bool      `gorm:"not null"`
	TotalScore int       `gorm:"not null"`
	Timestamp  time.Time `gorm:"not null"`
}

// Event is an audit row written inside the same transaction as the
// mutation it describes.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uuid.UUID      `gorm:"type:uuid;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

// EventPayload covers every event type; empty fields are omitted.
type EventPayload struct {
	GameName   string     `json:"game_name,omitempty"`
	TurnNumber int        `json:"turn_number,omitempty"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	PlayerID   *uuid.UUID `json:"player_id,omitempty"`
	TotalScore int        `json:"total_score,omitempty"`
	Bingo      bool       `json:"bingo,omitempty"`
	Winner     string     `json:"winner,omitempty"`
}
