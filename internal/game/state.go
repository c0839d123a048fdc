package game

import (
	"taprush/internal/feedback"
	"taprush/internal/targets"
)

// State is a read-only copy of a game for renderers.
type State struct {
	Phase        Phase            `json:"phase"`
	Score        int              `json:"score"`
	Combo        int              `json:"combo"`
	MaxCombo     int              `json:"maxCombo"`
	ComboTitle   string           `json:"comboTitle,omitempty"`
	ComboColor   string           `json:"comboColor"`
	Level        int              `json:"level"`
	Lives        int              `json:"lives"`
	Targets      []targets.Target `json:"targets"`
	Texts        []feedback.Text  `json:"texts"`
	ComboPulse   bool             `json:"comboPulse"`
	ScreenShake  bool             `json:"screenShake"`
	SpawnEveryMs int              `json:"spawnEveryMs"`
}

func (g *Game) Snapshot() State {
	title, color := ComboTitle(g.combo)
	return State{
		Phase:        g.phase,
		Score:        g.score,
		Combo:        g.combo,
		MaxCombo:     g.maxCombo,
		ComboTitle:   title,
		ComboColor:   color,
		Level:        g.level,
		Lives:        g.lives,
		Targets:      g.Targets.GetList(),
		Texts:        g.Texts.GetList(),
		ComboPulse:   g.comboPulse,
		ScreenShake:  g.screenShake,
		SpawnEveryMs: int(SpawnInterval(g.level).Milliseconds()),
	}
}
