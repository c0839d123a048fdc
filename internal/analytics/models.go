package analytics

import "time"

// GameSummary is what one game looked like when it ended.
type GameSummary struct {
	Score          int
	Level          int
	MaxCombo       int
	Taps           int
	Misses         int
	AvgReactionMs  float64
	BestReactionMs int
	// TapsBeforeFirstMiss counts every tap when the game had no misses at all.
	TapsBeforeFirstMiss int
	Over                bool
}

type PlayerLifetimeStats struct {
	PlayerID    string
	PlayerName  string
	GamesPlayed int
	TotalScore  int
	BestScore   int
	BestLevel   int
	BestCombo   int
	Badges      []Badge
}

type LeaderboardEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Value      int    `json:"value"`
	Rank       int    `json:"rank"`
}

type GameRecap struct {
	GameID      string
	SessionCode string
	StartedAt   *time.Time
	EndedAt     *time.Time
	Summary     GameSummary
}
