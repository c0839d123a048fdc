package analytics

import (
	"fmt"
	"taprush/internal/db"
)

const (
	CategoryScore = "score"
	CategoryLevel = "level"
	CategoryCombo = "combo"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetGameSummary(gameID string) (*GameSummary, error) {
	s := &GameSummary{}

	var endedAt *string
	err := q.DB.QueryRow(`
		SELECT final_score, final_level, max_combo, ended_at::text
		FROM games WHERE id = $1
	`, gameID).Scan(&s.Score, &s.Level, &s.MaxCombo, &endedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	s.Over = endedAt != nil

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as taps,
			COALESCE(AVG(reaction_ms), 0) as avg_reaction,
			COALESCE(MIN(reaction_ms), 0) as best_reaction
		FROM tap_events
		WHERE game_id = $1
	`, gameID).Scan(&s.Taps, &s.AvgReactionMs, &s.BestReactionMs)
	if err != nil {
		return nil, fmt.Errorf("getting tap stats: %w", err)
	}

	return s, nil
}

func (q *Queries) GetPlayerLifetimeStats(playerID string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`SELECT name FROM players WHERE id = $1`, playerID).Scan(&stats.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as games_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_score,
			COALESCE(MAX(final_level), 0) as best_level,
			COALESCE(MAX(max_combo), 0) as best_combo
		FROM games
		WHERE player_id = $1 AND ended_at IS NOT NULL
	`, playerID).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.BestScore, &stats.BestLevel, &stats.BestCombo)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	stats.Badges = EvaluateLifetimeBadges(*stats)

	return stats, nil
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var column string
	switch category {
	case CategoryScore:
		column = "final_score"
	case CategoryLevel:
		column = "final_level"
	case CategoryCombo:
		column = "max_combo"
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(`
		SELECT p.id, p.name, MAX(g.`+column+`) as value
		FROM players p
		JOIN games g ON g.player_id = p.id AND g.ended_at IS NOT NULL
		GROUP BY p.id, p.name
		ORDER BY value DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetGameRecap(gameID string) (*GameRecap, error) {
	recap := &GameRecap{GameID: gameID}

	err := q.DB.QueryRow(`
		SELECT session_code, started_at, ended_at FROM games WHERE id = $1
	`, gameID).Scan(&recap.SessionCode, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}

	summary, err := q.GetGameSummary(gameID)
	if err != nil {
		return nil, err
	}
	recap.Summary = *summary

	return recap, nil
}
