package db

import (
	"fmt"
	"time"
)

type BadgeRecord struct {
	BadgeID   string
	GameID    *string
	AwardedAt time.Time
}

// AwardBadges records each badge once per player; repeats are ignored.
func (d *DB) AwardBadges(playerID, gameID string, badgeIDs []string) error {
	for _, id := range badgeIDs {
		_, err := d.conn.Exec(`
			INSERT INTO player_badges (player_id, badge_id, game_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (player_id, badge_id) DO NOTHING
		`, playerID, id, gameID)
		if err != nil {
			return fmt.Errorf("awarding badge %s: %w", id, err)
		}
	}
	return nil
}

func (d *DB) GetPlayerBadges(playerID string) ([]BadgeRecord, error) {
	rows, err := d.conn.Query(`
		SELECT badge_id, game_id, awarded_at FROM player_badges WHERE player_id = $1 ORDER BY awarded_at
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting badges: %w", err)
	}
	defer rows.Close()

	var badges []BadgeRecord
	for rows.Next() {
		var b BadgeRecord
		if err := rows.Scan(&b.BadgeID, &b.GameID, &b.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
