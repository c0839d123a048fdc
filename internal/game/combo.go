package game

import "fmt"

// ComboTitle names a combo streak and gives the color tag it is shown in.
func ComboTitle(combo int) (string, string) {
	switch {
	case combo >= 50:
		return "🦄 LEGENDARY!", "purple"
	case combo >= 30:
		return "✨ AMAZING!", "pink"
	case combo >= 20:
		return "🌟 GREAT!", "blue"
	case combo >= 10:
		return "💖 GOOD!", "green"
	case combo > 0:
		return fmt.Sprintf("🎀 COMBO x%d", combo), "gray"
	}
	return "", "gray"
}
