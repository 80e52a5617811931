package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed Store used by tests and ephemeral setups.
// UpdateGame stages writes against a copy and swaps it in only when the
// callback succeeds, so a failed operation leaves nothing behind.
type MemoryStore struct {
	mu         sync.Mutex
	games      map[uuid.UUID]*Game
	nextTurnID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[uuid.UUID]*Game)}
}

func (m *MemoryStore) CreateGame(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	m.games[g.ID] = cloneGame(g)
	return nil
}

func (m *MemoryStore) GetGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneGame(g), nil
}

func (m *MemoryStore) UpdateGame(ctx context.Context, id uuid.UUID, fn func(g *Game, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}

	work := cloneGame(stored)
	tx := &memoryTx{store: m}
	if err := fn(work, tx); err != nil {
		return err
	}

	// Replay the staged writes against a fresh copy so a half-failed
	// batch cannot leak into the stored aggregate.
	next := cloneGame(stored)
	for _, op := range tx.ops {
		if err := op(next); err != nil {
			return err
		}
	}
	m.games[id] = next
	return nil
}

type memoryTx struct {
	store *MemoryStore
	ops   []func(g *Game) error
}

func (t *memoryTx) AppendTurn(turn *Turn) error {
	t.store.nextTurnID++
	turn.ID = t.store.nextTurnID
	staged := *turn
	t.ops = append(t.ops, func(g *Game) error {
		g.Turns = append(g.Turns, staged)
		return nil
	})
	return nil
}

func (t *memoryTx) DeleteTurn(id uint) error {
	t.ops = append(t.ops, func(g *Game) error {
		for i := range g.Turns {
			if g.Turns[i].ID == id {
				g.Turns = append(g.Turns[:i], g.Turns[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("turn %d not found", id)
	})
	return nil
}

func (t *memoryTx) SetTeamScore(teamID uuid.UUID, score int) error {
	t.ops = append(t.ops, func(g *Game) error {
		team := g.teamByID(teamID)
		if team == nil {
			return fmt.Errorf("team %s not found", teamID)
		}
		team.Score = score
		return nil
	})
	return nil
}

func (t *memoryTx) SetTurnState(currentTurnIndex int, startedAt time.Time) error {
	t.ops = append(t.ops, func(g *Game) error {
		g.CurrentTurnIndex = currentTurnIndex
		g.TurnStartedAt = &startedAt
		return nil
	})
	return nil
}

func (t *memoryTx) Finish(endedAt time.Time) error {
	t.ops = append(t.ops, func(g *Game) error {
		g.Status = StatusFinished
		g.EndedAt = &endedAt
		return nil
	})
	return nil
}

func cloneGame(g *Game) *Game {
	out := *g
	if g.TurnStartedAt != nil {
		startedAt := *g.TurnStartedAt
		out.TurnStartedAt = &startedAt
	}
	if g.EndedAt != nil {
		endedAt := *g.EndedAt
		out.EndedAt = &endedAt
	}
	out.Teams = make([]Team, len(g.Teams))
	for i, team := range g.Teams {
		out.Teams[i] = team
		out.Teams[i].Players = append([]Player(nil), team.Players...)
	}
	out.Turns = append([]Turn(nil), g.Turns...)
	return &out
}
