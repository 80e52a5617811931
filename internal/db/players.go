package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scrabble-portal/internal/game"

	"github.com/google/uuid"
)

var (
	ErrPlayerExists   = errors.New("player already exists")
	ErrPlayerNotFound = errors.New("player not found")
)

// CreatePlayer registers a new identity. (name, number) is unique; a
// duplicate surfaces as ErrPlayerExists.
func (s *GameStore) CreatePlayer(ctx context.Context, name, number string) (*game.Player, error) {
	record := Player{
		ID:        uuid.New(),
		Name:      name,
		Number:    number,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPlayerExists
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return &game.Player{ID: record.ID, Name: record.Name, Number: record.Number}, nil
}

// SearchPlayers matches names case-insensitively on a substring.
// An empty query lists everyone.
func (s *GameStore) SearchPlayers(ctx context.Context, query string) ([]game.Player, error) {
	var records []Player
	q := s.db.WithContext(ctx).Order("name, number")
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where("LOWER(name) LIKE ?", pattern)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	players := make([]game.Player, 0, len(records))
	for _, r := range records {
		players = append(players, game.Player{ID: r.ID, Name: r.Name, Number: r.Number})
	}
	return players, nil
}

// GetPlayers resolves registry ids in the order given. Any unknown id
// fails the whole lookup with ErrPlayerNotFound.
func (s *GameStore) GetPlayers(ctx context.Context, ids []uuid.UUID) ([]game.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []Player
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	byID := make(map[uuid.UUID]Player, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	players := make([]game.Player, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		players = append(players, game.Player{ID: r.ID, Name: r.Name, Number: r.Number})
	}
	return players, nil
}
