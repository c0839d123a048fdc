package analytics

type BadgeID string

const (
	BadgeHotStreak     BadgeID = "hot_streak"
	BadgeLegendary     BadgeID = "legendary"
	BadgeSpeedster     BadgeID = "speedster"
	BadgeFourDigits    BadgeID = "four_digits"
	BadgeFlawlessStart BadgeID = "flawless_start"
	BadgeQuickDraw     BadgeID = "quick_draw"
	BadgeVeteran       BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeHotStreak:     {ID: BadgeHotStreak, Name: "Hot Streak", Description: "Combo of 10 or more", Icon: "💖"},
	BadgeLegendary:     {ID: BadgeLegendary, Name: "Legendary", Description: "Combo of 50 or more", Icon: "🦄"},
	BadgeSpeedster:     {ID: BadgeSpeedster, Name: "Speedster", Description: "Reached level 5", Icon: "⚡"},
	BadgeFourDigits:    {ID: BadgeFourDigits, Name: "Four Digits", Description: "1000+ points in a single game", Icon: "💯"},
	BadgeFlawlessStart: {ID: BadgeFlawlessStart, Name: "Flawless Start", Description: "20 taps before the first miss", Icon: "✨"},
	BadgeQuickDraw:     {ID: BadgeQuickDraw, Name: "Quick Draw", Description: "Average reaction under 800ms over 10+ taps", Icon: "🎯"},
	BadgeVeteran:       {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ games", Icon: "🏅"},
}

const (
	flawlessStartTaps = 20
	quickDrawMinTaps  = 10
	quickDrawMs       = 800
)

// EvaluateGameBadges checks which badges a single game earned.
func EvaluateGameBadges(s GameSummary) []Badge {
	var earned []Badge

	if s.MaxCombo >= 10 {
		earned = append(earned, AllBadges[BadgeHotStreak])
	}
	if s.MaxCombo >= 50 {
		earned = append(earned, AllBadges[BadgeLegendary])
	}
	if s.Level >= 5 {
		earned = append(earned, AllBadges[BadgeSpeedster])
	}
	if s.Score >= 1000 {
		earned = append(earned, AllBadges[BadgeFourDigits])
	}
	if s.TapsBeforeFirstMiss >= flawlessStartTaps {
		earned = append(earned, AllBadges[BadgeFlawlessStart])
	}
	if s.Taps >= quickDrawMinTaps && s.AvgReactionMs > 0 && s.AvgReactionMs < quickDrawMs {
		earned = append(earned, AllBadges[BadgeQuickDraw])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	if stats.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}

func BadgeIDs(badges []Badge) []string {
	ids := make([]string, len(badges))
	for i, b := range badges {
		ids[i] = string(b.ID)
	}
	return ids
}
