package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"scrabble-portal/internal/game"

	"github.com/google/uuid"
)

type HistoryEntry struct {
	GameID      uuid.UUID        `json:"game_id"`
	Name        string           `json:"name"`
	CreatedAt   time.Time        `json:"created_at"`
	EndedAt     *time.Time       `json:"ended_at"`
	Winner      string           `json:"winner"`
	FinalScores []game.TeamScore `json:"final_scores"`
}

// History lists finished games, most recently ended first, with their
// final standings.
func (s *GameStore) History(ctx context.Context) ([]HistoryEntry, error) {
	var games []Game
	if err := s.db.WithContext(ctx).
		Where("status = ?", string(game.StatusFinished)).
		Order("ended_at DESC").
		Find(&games).Error; err != nil {
		return nil, fmt.Errorf("load finished games: %w", err)
	}
	if len(games) == 0 {
		return []HistoryEntry{}, nil
	}

	gameIDs := make([]uuid.UUID, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}
	var teams []Team
	if err := s.db.WithContext(ctx).
		Where("game_id IN ?", gameIDs).
		Order("position").
		Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	teamsByGame := make(map[uuid.UUID][]Team, len(games))
	for _, t := range teams {
		teamsByGame[t.GameID] = append(teamsByGame[t.GameID], t)
	}

	entries := make([]HistoryEntry, 0, len(games))
	for _, g := range games {
		scores := make([]game.TeamScore, 0, len(teamsByGame[g.ID]))
		for _, t := range teamsByGame[g.ID] {
			scores = append(scores, game.TeamScore{TeamID: t.ID, Name: t.Name, Score: t.Score})
		}
		sort.SliceStable(scores, func(i, j int) bool {
			return scores[i].Score > scores[j].Score
		})
		entry := HistoryEntry{
			GameID:      g.ID,
			Name:        g.Name,
			CreatedAt:   g.CreatedAt,
			EndedAt:     g.EndedAt,
			FinalScores: scores,
		}
		if len(scores) > 0 {
			entry.Winner = scores[0].Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
