package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for game aggregates.
type Store interface {
	// CreateGame persists a new game with its teams and memberships.
	CreateGame(ctx context.Context, g *Game) error

	// GetGame loads the full aggregate, or ErrNotFound.
	GetGame(ctx context.Context, id uuid.UUID) (*Game, error)

	// UpdateGame loads the aggregate and runs fn inside a unit of work
	// serialized per game id. Writes issued through Tx become visible
	// all at once when fn returns nil; if fn errors, nothing is kept.
	// Concurrent updates to different games may proceed in parallel.
	UpdateGame(ctx context.Context, id uuid.UUID, fn func(g *Game, tx Tx) error) error
}

// Tx carries the typed writes the engine needs inside UpdateGame.
type Tx interface {
	// AppendTurn inserts a turn row and assigns its insertion id.
	AppendTurn(t *Turn) error
	// DeleteTurn removes the turn row with the given insertion id.
	DeleteTurn(id uint) error
	SetTeamScore(teamID uuid.UUID, score int) error
	// SetTurnState moves the rotation cursor and restarts the turn timer.
	SetTurnState(currentTurnIndex int, startedAt time.Time) error
	Finish(endedAt time.Time) error
}
