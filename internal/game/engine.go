package game

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Engine runs the turn-rotation and scoring state machine for a single
// game at a time. It owns the invariant that a team's score always
// equals the sum of its recorded turns, and that the turn index equals
// the number of turn rows. All mutations go through Store.UpdateGame so
// each operation is a single atomic unit.
type Engine struct {
	store        Store
	clock        clockwork.Clock
	enforceTimer bool
}

// NewEngine wires the engine to its store and clock. enforceTimer
// controls whether a submission is rejected once the turn window has
// elapsed; when false the timer is informational only.
func NewEngine(store Store, clock clockwork.Clock, enforceTimer bool) *Engine {
	return &Engine{
		store:        store,
		clock:        clock,
		enforceTimer: enforceTimer,
	}
}

func (e *Engine) CreateGame(ctx context.Context, req CreateGameRequest) (*Game, error) {
	if req.TurnDuration <= 0 {
		return nil, &ValidationError{Reason: "turn_duration must be positive"}
	}
	if len(req.Teams) == 0 {
		return nil, &ValidationError{Reason: "at least one team is required"}
	}
	for _, team := range req.Teams {
		if team.Name == "" {
			return nil, &ValidationError{Reason: "team name is required"}
		}
		if len(team.Players) == 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("team %q has no players", team.Name)}
		}
	}

	now := e.clock.Now().UTC()
	g := &Game{
		ID:            uuid.New(),
		Name:          req.Name,
		Status:        StatusActive,
		TurnDuration:  req.TurnDuration,
		TurnStartedAt: &now,
		CreatedAt:     now,
		Teams:         make([]Team, 0, len(req.Teams)),
	}
	for _, setup := range req.Teams {
		g.Teams = append(g.Teams, Team{
			ID:      uuid.New(),
			Name:    setup.Name,
			Players: setup.Players,
		})
	}

	if err := e.store.CreateGame(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	log.Info().
		Str("game_id", g.ID.String()).
		Str("name", g.Name).
		Int("teams", len(g.Teams)).
		Int("turn_duration", g.TurnDuration).
		Msg("game created")
	return g, nil
}

func (e *Engine) State(ctx context.Context, id uuid.UUID) (*GameState, error) {
	g, err := e.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	state := &GameState{
		GameID:       g.ID,
		Name:         g.Name,
		Status:       g.Status,
		TurnDuration: g.TurnDuration,
		Teams:        g.Teams,
	}
	if g.Finished() {
		return state, nil
	}
	current, err := e.currentTurn(g)
	if err != nil {
		log.Error().Err(err).Str("game_id", g.ID.String()).Msg("rotation state corrupted")
		return nil, err
	}
	state.CurrentTurn = current
	return state, nil
}

func (e *Engine) SubmitTurn(ctx context.Context, id uuid.UUID, baseScore int, bingo bool) (*TurnResult, error) {
	now := e.clock.Now().UTC()
	var result *TurnResult
	err := e.store.UpdateGame(ctx, id, func(g *Game, tx Tx) error {
		if g.Finished() {
			return ErrGameFinished
		}
		if e.enforceTimer && g.TurnStartedAt != nil && timeLeft(*g.TurnStartedAt, g.TurnDuration, now) <= 0 {
			return ErrTurnExpired
		}
		team, player, err := resolveTurn(g.Teams, g.CurrentTurnIndex, g.teamTurnCounts())
		if err != nil {
			return err
		}

		turn := Turn{
			TurnNumber: g.CurrentTurnIndex + 1,
			TeamID:     team.ID,
			PlayerID:   player.ID,
			BaseScore:  baseScore,
			Bingo:      bingo,
			TotalScore: TotalScore(baseScore, bingo),
			Timestamp:  now,
		}
		if err := tx.AppendTurn(&turn); err != nil {
			return err
		}
		if err := tx.SetTeamScore(team.ID, team.Score+turn.TotalScore); err != nil {
			return err
		}
		if err := tx.SetTurnState(g.CurrentTurnIndex+1, now); err != nil {
			return err
		}

		// Advance the in-memory aggregate to resolve the next turn
		// without re-reading the store.
		team.Score += turn.TotalScore
		g.Turns = append(g.Turns, turn)
		g.CurrentTurnIndex++
		g.TurnStartedAt = &now

		next, err := e.currentTurn(g)
		if err != nil {
			return err
		}
		result = &TurnResult{
			Turn:        turn,
			NextTurn:    next,
			Leaderboard: leaderboard(g.Teams),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("game_id", id.String()).
		Int("turn", result.Turn.TurnNumber).
		Int("total_score", result.Turn.TotalScore).
		Bool("bingo", result.Turn.Bingo).
		Msg("turn submitted")
	return result, nil
}

func (e *Engine) UndoLastTurn(ctx context.Context, id uuid.UUID) (*UndoResult, error) {
	now := e.clock.Now().UTC()
	var result *UndoResult
	err := e.store.UpdateGame(ctx, id, func(g *Game, tx Tx) error {
		if g.Finished() {
			return ErrGameFinished
		}
		if len(g.Turns) == 0 {
			return ErrNothingToUndo
		}

		// The most-recently-inserted row is authoritative, not
		// turn_number: numbers can collide if two submissions raced.
		last := g.Turns[len(g.Turns)-1]
		team := g.teamByID(last.TeamID)
		if team == nil {
			return fmt.Errorf("%w: turn %d references unknown team %s", ErrInvalidState, last.TurnNumber, last.TeamID)
		}

		if err := tx.DeleteTurn(last.ID); err != nil {
			return err
		}
		if err := tx.SetTeamScore(team.ID, team.Score-last.TotalScore); err != nil {
			return err
		}
		if err := tx.SetTurnState(g.CurrentTurnIndex-1, now); err != nil {
			return err
		}

		team.Score -= last.TotalScore
		g.Turns = g.Turns[:len(g.Turns)-1]
		g.CurrentTurnIndex--
		g.TurnStartedAt = &now

		current, err := e.currentTurn(g)
		if err != nil {
			return err
		}
		result = &UndoResult{
			RevertedTurnNumber: last.TurnNumber,
			CurrentTurn:        current,
			Teams:              teamScores(g.Teams),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("game_id", id.String()).
		Int("reverted_turn", result.RevertedTurnNumber).
		Msg("turn undone")
	return result, nil
}

// EndGame marks the game finished. Re-ending a finished game is not an
// error: the status is re-applied and ended_at refreshed.
func (e *Engine) EndGame(ctx context.Context, id uuid.UUID) (*FinalResult, error) {
	now := e.clock.Now().UTC()
	var result *FinalResult
	err := e.store.UpdateGame(ctx, id, func(g *Game, tx Tx) error {
		if err := tx.Finish(now); err != nil {
			return err
		}
		g.Status = StatusFinished
		g.EndedAt = &now

		ranked := leaderboard(g.Teams)
		scores := make([]FinalScore, 0, len(ranked))
		for _, entry := range ranked {
			scores = append(scores, FinalScore{Team: entry.Name, Score: entry.Score})
		}
		result = &FinalResult{Status: StatusFinished, FinalScores: scores}
		if len(ranked) > 0 {
			result.Winner = ranked[0].Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("game_id", id.String()).
		Str("winner", result.Winner).
		Msg("game ended")
	return result, nil
}

// currentTurn resolves who acts now and how much of the window remains.
// A missing start timestamp yields the full duration.
func (e *Engine) currentTurn(g *Game) (*CurrentTurn, error) {
	team, player, err := resolveTurn(g.Teams, g.CurrentTurnIndex, g.teamTurnCounts())
	if err != nil {
		return nil, err
	}
	current := &CurrentTurn{
		TurnNumber: g.CurrentTurnIndex + 1,
		TeamID:     team.ID,
		TeamName:   team.Name,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TimeLeft:   g.TurnDuration,
	}
	if g.TurnStartedAt != nil {
		current.StartedAt = *g.TurnStartedAt
		current.TimeLeft = timeLeft(*g.TurnStartedAt, g.TurnDuration, e.clock.Now().UTC())
	}
	return current, nil
}

// leaderboard ranks teams by score descending; ties keep creation order.
func leaderboard(teams []Team) []TeamScore {
	entries := teamScores(teams)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

func teamScores(teams []Team) []TeamScore {
	entries := make([]TeamScore, 0, len(teams))
	for _, t := range teams {
		entries = append(entries, TeamScore{TeamID: t.ID, Name: t.Name, Score: t.Score})
	}
	return entries
}
