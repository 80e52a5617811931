package game

import "errors"

var (
	ErrNotFound      = errors.New("game not found")
	ErrGameFinished  = errors.New("game already finished")
	ErrNothingToUndo = errors.New("no turns to undo")
	ErrTurnExpired   = errors.New("turn timer expired")

	// ErrInvalidState marks a corrupted rotation precondition (zero teams,
	// a team without players, a turn pointing at an unknown team). It is
	// fatal for the game and never recovered silently.
	ErrInvalidState = errors.New("invalid game state")
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
