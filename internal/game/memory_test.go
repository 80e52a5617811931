package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func memoryFixture(t *testing.T) (*MemoryStore, *Game) {
	t.Helper()
	store := NewMemoryStore()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	g := &Game{
		ID:            uuid.New(),
		Name:          "G",
		Status:        StatusActive,
		TurnDuration:  60,
		TurnStartedAt: &now,
		CreatedAt:     now,
		Teams: []Team{
			{ID: uuid.New(), Name: "A", Players: []Player{{ID: uuid.New(), Name: "P1"}}},
		},
	}
	if err := store.CreateGame(context.Background(), g); err != nil {
		t.Fatalf("create: %v", err)
	}
	return store, g
}

func TestMemoryStoreFailedUpdateLeavesNoTrace(t *testing.T) {
	store, g := memoryFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.UpdateGame(ctx, g.ID, func(work *Game, tx Tx) error {
		turn := &Turn{TurnNumber: 1, TeamID: work.Teams[0].ID, TotalScore: 10}
		if err := tx.AppendTurn(turn); err != nil {
			return err
		}
		if err := tx.SetTeamScore(work.Teams[0].ID, 10); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	stored, err := store.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Turns) != 0 || stored.Teams[0].Score != 0 {
		t.Fatalf("failed update leaked writes: %+v", stored)
	}
}

func TestMemoryStoreCallbackMutationsAreNotPersisted(t *testing.T) {
	store, g := memoryFixture(t)
	ctx := context.Background()

	// Only Tx writes persist; direct mutation of the working copy is
	// the engine's response-building convenience and must not leak.
	err := store.UpdateGame(ctx, g.ID, func(work *Game, tx Tx) error {
		work.Teams[0].Score = 999
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := store.GetGame(ctx, g.ID)
	if stored.Teams[0].Score != 0 {
		t.Fatalf("direct mutation leaked: score=%d", stored.Teams[0].Score)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store, g := memoryFixture(t)
	ctx := context.Background()

	first, _ := store.GetGame(ctx, g.ID)
	first.Teams[0].Score = 123

	second, _ := store.GetGame(ctx, g.ID)
	if second.Teams[0].Score != 0 {
		t.Fatalf("GetGame leaked a shared reference")
	}
}

func TestMemoryStoreUnknownGame(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.GetGame(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err := store.UpdateGame(context.Background(), uuid.New(), func(g *Game, tx Tx) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
