package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scrabble-portal/internal/game"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameStore implements game.Store on a relational database. Every
// UpdateGame runs in one transaction with the game row locked, so two
// concurrent submissions against the same game serialize; games lock
// independently of each other.
type GameStore struct {
	db *gorm.DB
}

func NewGameStore(conn *gorm.DB) *GameStore {
	return &GameStore{db: conn}
}

func (s *GameStore) CreateGame(ctx context.Context, g *game.Game) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := Game{
			ID:               g.ID,
			Name:             g.Name,
			Status:           string(g.Status),
			TurnDuration:     g.TurnDuration,
			CurrentTurnIndex: g.CurrentTurnIndex,
			TurnStartedAt:    g.TurnStartedAt,
			CreatedAt:        g.CreatedAt,
			EndedAt:          g.EndedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		for i, team := range g.Teams {
			if err := tx.Create(&Team{
				ID:       team.ID,
				GameID:   g.ID,
				Name:     team.Name,
				Score:    team.Score,
				Position: i,
			}).Error; err != nil {
				return fmt.Errorf("insert team %q: %w", team.Name, err)
			}
			for j, player := range team.Players {
				if err := tx.Create(&GamePlayer{
					GameID:   g.ID,
					TeamID:   team.ID,
					PlayerID: player.ID,
					Position: j,
				}).Error; err != nil {
					return fmt.Errorf("insert membership for %q: %w", player.Name, err)
				}
			}
		}
		return appendEvent(tx, g.ID, "game_created", EventPayload{GameName: g.Name}, g.CreatedAt)
	})
}

func (s *GameStore) GetGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	var loaded *game.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := loadGame(tx, id, false)
		if err != nil {
			return err
		}
		loaded = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

func (s *GameStore) UpdateGame(ctx context.Context, id uuid.UUID, fn func(g *game.Game, tx game.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := loadGame(tx, id, true)
		if err != nil {
			return err
		}
		return fn(g, &gameTx{tx: tx, gameID: id})
	})
}

// loadGame assembles the full aggregate. With forUpdate the game row is
// locked for the rest of the transaction; SQLite has no row locks and
// serializes writers on its own, so the clause is Postgres-only.
func loadGame(tx *gorm.DB, id uuid.UUID, forUpdate bool) (*game.Game, error) {
	query := tx
	if forUpdate && tx.Dialector.Name() == "postgres" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var record Game
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}

	var teamRecords []Team
	if err := tx.Where("game_id = ?", id).Order("position").Find(&teamRecords).Error; err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	var memberships []GamePlayer
	if err := tx.Where("game_id = ?", id).Order("position").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	playerIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		playerIDs = append(playerIDs, m.PlayerID)
	}
	playersByID := make(map[uuid.UUID]Player, len(playerIDs))
	if len(playerIDs) > 0 {
		var playerRecords []Player
		if err := tx.Where("id IN ?", playerIDs).Find(&playerRecords).Error; err != nil {
			return nil, fmt.Errorf("load players: %w", err)
		}
		for _, p := range playerRecords {
			playersByID[p.ID] = p
		}
	}

	var turnRecords []Turn
	if err := tx.Where("game_id = ?", id).Order("id").Find(&turnRecords).Error; err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}

	g := &game.Game{
		ID:               record.ID,
		Name:             record.Name,
		Status:           game.Status(record.Status),
		TurnDuration:     record.TurnDuration,
		CurrentTurnIndex: record.CurrentTurnIndex,
		TurnStartedAt:    record.TurnStartedAt,
		CreatedAt:        record.CreatedAt,
		EndedAt:          record.EndedAt,
		Teams:            make([]game.Team, 0, len(teamRecords)),
	}
	for _, teamRecord := range teamRecords {
		team := game.Team{
			ID:    teamRecord.ID,
			Name:  teamRecord.Name,
			Score: teamRecord.Score,
		}
		for _, m := range memberships {
			if m.TeamID != teamRecord.ID {
				continue
			}
			p, ok := playersByID[m.PlayerID]
			if !ok {
				return nil, fmt.Errorf("%w: membership references unknown player %s", game.ErrInvalidState, m.PlayerID)
			}
			team.Players = append(team.Players, game.Player{ID: p.ID, Name: p.Name, Number: p.Number})
		}
		g.Teams = append(g.Teams, team)
	}
	for _, t := range turnRecords {
		g.Turns = append(g.Turns, game.Turn{
			ID:         t.ID,
			TurnNumber: t.TurnNumber,
			TeamID:     t.TeamID,
			PlayerID:   t.PlayerID,
			BaseScore:  t.BaseScore,
			Bingo:      t.Bingo,
			TotalScore: t.TotalScore,
			Timestamp:  t.Timestamp,
		})
	}
	return g, nil
}

type gameTx struct {
	tx     *gorm.DB
	gameID uuid.UUID
}

func (t *gameTx) AppendTurn(turn *game.Turn) error {
	record := Turn{
		TurnNumber: turn.TurnNumber,
		GameID:     t.gameID,
		TeamID:     turn.TeamID,
		PlayerID:   turn.PlayerID,
		BaseScore:  turn.BaseScore,
		Bingo:      turn.Bingo,
		TotalScore: turn.TotalScore,
		Timestamp:  turn.Timestamp,
	}
	if err := t.tx.Create(&record).Error; err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	turn.ID = record.ID
	teamID, playerID := turn.TeamID, turn.PlayerID
	return appendEvent(t.tx, t.gameID, "turn_submitted", EventPayload{
		TurnNumber: turn.TurnNumber,
		TeamID:     &teamID,
		PlayerID:   &playerID,
		TotalScore: turn.TotalScore,
		Bingo:      turn.Bingo,
	}, turn.Timestamp)
}

func (t *gameTx) DeleteTurn(id uint) error {
	var record Turn
	if err := t.tx.First(&record, "id = ? AND game_id = ?", id, t.gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("turn %d not found", id)
		}
		return fmt.Errorf("load turn for undo: %w", err)
	}
	if err := t.tx.Delete(&Turn{}, record.ID).Error; err != nil {
		return fmt.Errorf("delete turn: %w", err)
	}
	teamID := record.TeamID
	return appendEvent(t.tx, t.gameID, "turn_undone", EventPayload{
		TurnNumber: record.TurnNumber,
		TeamID:     &teamID,
		TotalScore: record.TotalScore,
	}, time.Now().UTC())
}

func (t *gameTx) SetTeamScore(teamID uuid.UUID, score int) error {
	result := t.tx.Model(&Team{}).Where("id = ? AND game_id = ?", teamID, t.gameID).Update("score", score)
	if result.Error != nil {
		return fmt.Errorf("update team score: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("team %s not found", teamID)
	}
	return nil
}

func (t *gameTx) SetTurnState(currentTurnIndex int, startedAt time.Time) error {
	result := t.tx.Model(&Game{}).Where("id = ?", t.gameID).Updates(map[string]any{
		"current_turn_index": currentTurnIndex,
		"turn_started_at":    startedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("update turn state: %w", result.Error)
	}
	return nil
}

func (t *gameTx) Finish(endedAt time.Time) error {
	result := t.tx.Model(&Game{}).Where("id = ?", t.gameID).Updates(map[string]any{
		"status":   string(game.StatusFinished),
		"ended_at": endedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("finish game: %w", result.Error)
	}
	return appendEvent(t.tx, t.gameID, "game_ended", EventPayload{}, endedAt)
}

func appendEvent(tx *gorm.DB, gameID uuid.UUID, eventType string, payload EventPayload, at time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	if err := tx.Create(&Event{
		GameID:    gameID,
		Type:      eventType,
		Payload:   body,
		CreatedAt: at,
	}).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
