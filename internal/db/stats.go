package db

import (
	"context"
	"errors"
	"fmt"

	"scrabble-portal/internal/game"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlayerStats struct {
	PlayerID      uuid.UUID      `json:"player_id"`
	TotalGames    int            `json:"total_games"`
	Wins          int            `json:"wins"`
	WinRate       float64        `json:"win_rate"`
	AvgScore      float64        `json:"avg_score"`
	HighScoreSolo int            `json:"high_score_solo"`
	HighScores    map[string]int `json:"high_scores"`
}

// PlayerStats aggregates a player's record over finished games only.
// It leans on the core invariants: team scores equal the sum of their
// turns, and every turn row carries the player who made it.
func (s *GameStore) PlayerStats(ctx context.Context, playerID uuid.UUID) (*PlayerStats, error) {
	var player Player
	if err := s.db.WithContext(ctx).First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		return nil, fmt.Errorf("load player: %w", err)
	}

	var memberships []GamePlayer
	if err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	stats := &PlayerStats{PlayerID: playerID, HighScores: map[string]int{}}
	if len(memberships) == 0 {
		return stats, nil
	}

	gameIDs := make([]uuid.UUID, 0, len(memberships))
	teamByGame := make(map[uuid.UUID]uuid.UUID, len(memberships))
	for _, m := range memberships {
		gameIDs = append(gameIDs, m.GameID)
		teamByGame[m.GameID] = m.TeamID
	}

	var finished []Game
	if err := s.db.WithContext(ctx).
		Where("id IN ? AND status = ?", gameIDs, string(game.StatusFinished)).
		Find(&finished).Error; err != nil {
		return nil, fmt.Errorf("load finished games: %w", err)
	}
	if len(finished) == 0 {
		return stats, nil
	}
	finishedIDs := make([]uuid.UUID, 0, len(finished))
	for _, g := range finished {
		finishedIDs = append(finishedIDs, g.ID)
	}

	var teams []Team
	if err := s.db.WithContext(ctx).
		Where("game_id IN ?", finishedIDs).
		Order("position").
		Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	var rosters []GamePlayer
	if err := s.db.WithContext(ctx).Where("game_id IN ?", finishedIDs).Find(&rosters).Error; err != nil {
		return nil, fmt.Errorf("load rosters: %w", err)
	}
	rosterSizes := make(map[uuid.UUID]int)
	for _, m := range rosters {
		rosterSizes[m.TeamID]++
	}

	var turns []Turn
	if err := s.db.WithContext(ctx).
		Where("player_id = ? AND game_id IN ?", playerID, finishedIDs).
		Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	totalsByGame := make(map[uuid.UUID]int)
	for _, t := range turns {
		totalsByGame[t.GameID] += t.TotalScore
	}

	scoreSum := 0
	for _, g := range finished {
		stats.TotalGames++
		ownTeam := teamByGame[g.ID]
		scoreSum += totalsByGame[g.ID]

		if winningTeam(teams, g.ID) == ownTeam {
			stats.Wins++
		}

		label := rosterLabel(rosterSizes[ownTeam])
		if best, seen := stats.HighScores[label]; !seen || totalsByGame[g.ID] > best {
			stats.HighScores[label] = totalsByGame[g.ID]
		}
	}
	stats.WinRate = float64(stats.Wins) / float64(stats.TotalGames)
	stats.AvgScore = float64(scoreSum) / float64(stats.TotalGames)
	stats.HighScoreSolo = stats.HighScores["solo"]
	return stats, nil
}

// winningTeam mirrors end-game ranking: highest score wins, ties go to
// the earliest-created team.
func winningTeam(teams []Team, gameID uuid.UUID) uuid.UUID {
	var winner uuid.UUID
	best := 0
	found := false
	for _, t := range teams {
		if t.GameID != gameID {
			continue
		}
		if !found || t.Score > best {
			winner = t.ID
			best = t.Score
			found = true
		}
	}
	return winner
}

func rosterLabel(size int) string {
	switch size {
	case 1:
		return "solo"
	case 2:
		return "duo"
	case 3:
		return "trio"
	default:
		return fmt.Sprintf("%d_players", size)
	}
}
