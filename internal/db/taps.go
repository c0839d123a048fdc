package db

import (
	"fmt"
	"time"
)

type TapEvent struct {
	GameID     string
	TargetID   int
	Points     int
	Combo      int
	Level      int
	ReactionMs int
	TappedAt   time.Time
}

func (d *DB) RecordTap(ev TapEvent) error {
	_, err := d.conn.Exec(`
		INSERT INTO tap_events (game_id, target_id, points, combo, level, reaction_ms, tapped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ev.GameID, ev.TargetID, ev.Points, ev.Combo, ev.Level, ev.ReactionMs, ev.TappedAt)
	if err != nil {
		return fmt.Errorf("recording tap: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordTaps(events []TapEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tap_events (game_id, target_id, points, combo, level, reaction_ms, tapped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.GameID, ev.TargetID, ev.Points, ev.Combo, ev.Level, ev.ReactionMs, ev.TappedAt); err != nil {
			return fmt.Errorf("recording tap in batch: %w", err)
		}
	}

	return tx.Commit()
}
