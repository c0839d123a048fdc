package db

import (
	"fmt"
	"time"
)

type GameRecord struct {
	ID          string
	SessionCode string
	PlayerID    string
	StartedAt   time.Time
	EndedAt     *time.Time
	FinalScore  int
	FinalLevel  int
	MaxCombo    int
}

// CreateGame inserts an open game row under an id chosen by the caller, so
// tap rows can be queued against it before the insert completes.
func (d *DB) CreateGame(id, sessionCode, playerID string) error {
	_, err := d.conn.Exec(`
		INSERT INTO games (id, session_code, player_id)
		VALUES ($1, $2, $3)
	`, id, sessionCode, playerID)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (d *DB) FinishGame(gameID string, score, level, maxCombo int) error {
	_, err := d.conn.Exec(`
		UPDATE games
		SET ended_at = now(), final_score = $2, final_level = $3, max_combo = $4
		WHERE id = $1
	`, gameID, score, level, maxCombo)
	if err != nil {
		return fmt.Errorf("finishing game: %w", err)
	}
	return nil
}

func (d *DB) GetGame(gameID string) (*GameRecord, error) {
	var g GameRecord
	err := d.conn.QueryRow(`
		SELECT id, session_code, player_id, started_at, ended_at, final_score, final_level, max_combo
		FROM games WHERE id = $1
	`, gameID).Scan(&g.ID, &g.SessionCode, &g.PlayerID, &g.StartedAt, &g.EndedAt, &g.FinalScore, &g.FinalLevel, &g.MaxCombo)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &g, nil
}
