package targets

type Color string

const (
	ColorPink   = Color("pink")
	ColorBlue   = Color("blue")
	ColorGreen  = Color("green")
	ColorPurple = Color("purple")
	ColorYellow = Color("yellow")
	ColorIndigo = Color("indigo")
)

var Palette = []Color{ColorPink, ColorBlue, ColorGreen, ColorPurple, ColorYellow, ColorIndigo}

var Emojis = []string{"🌸", "✨", "💕", "🌟", "🦄", "🌈", "💖", "⭐", "🎀", "🧚‍♀️"}

// Target is a tappable button on the playfield. X and Y are percentages of the
// playfield; TimeLeft and MaxTime are milliseconds.
type Target struct {
	ID       int     `json:"id"`
	Color    Color   `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	TimeLeft int     `json:"timeLeft"`
	MaxTime  int     `json:"maxTime"`
	Emoji    string  `json:"emoji"`
}

// Progress is the fraction of the countdown still remaining, in [0, 1].
func (t Target) Progress() float64 {
	if t.MaxTime <= 0 || t.TimeLeft <= 0 {
		return 0
	}
	return float64(t.TimeLeft) / float64(t.MaxTime)
}
