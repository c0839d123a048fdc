package termui

import (
	"fmt"
	"math"
	"strings"
	"taprush/internal/feedback"
	"taprush/internal/game"
	"taprush/internal/targets"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

const (
	headerRows = 2
	footerRows = 1

	boxW = 10
	boxH = 3

	urgentProgress = 0.3
)

// labelKeys are the keys that tap targets, in on-screen order. The command
// keys s, r and q are left out.
const labelKeys = "123456789abcdefghijklmnoptuvwxyz"

var (
	styleBase   = tcell.StyleDefault
	styleDim    = styleBase.Foreground(tcell.ColorGray)
	styleTitle  = styleBase.Foreground(tcell.ColorHotPink).Bold(true)
	styleHeart  = styleBase.Foreground(tcell.ColorRed)
	styleUrgent = styleBase.Foreground(tcell.ColorRed).Bold(true)
)

var targetColors = map[targets.Color]tcell.Color{
	targets.ColorPink:   tcell.ColorPink,
	targets.ColorBlue:   tcell.ColorDodgerBlue,
	targets.ColorGreen:  tcell.ColorLimeGreen,
	targets.ColorPurple: tcell.ColorMediumPurple,
	targets.ColorYellow: tcell.ColorGold,
	targets.ColorIndigo: tcell.ColorSlateBlue,
}

var tagColors = map[string]tcell.Color{
	feedback.ColorGreen:  tcell.ColorLimeGreen,
	feedback.ColorRed:    tcell.ColorRed,
	feedback.ColorPurple: tcell.ColorMediumPurple,
	"pink":               tcell.ColorHotPink,
	"blue":               tcell.ColorDodgerBlue,
	"gray":               tcell.ColorGray,
}

// box is where a target was last drawn, for hit-testing.
type box struct {
	id    int
	label rune
	x, y  int
}

func (b box) contains(x, y int) bool {
	return x >= b.x && x < b.x+boxW && y >= b.y && y < b.y+boxH
}

// field is the playfield rectangle in screen cells.
type field struct {
	x, y, w, h int
}

func (u *UI) field() field {
	w, h := u.screen.Size()
	f := field{x: 0, y: headerRows, w: w, h: h - headerRows - footerRows}
	if f.h < boxH {
		f.h = boxH
	}
	return f
}

// cell maps a playfield percentage to screen cells.
func (f field) cell(px, py float64) (int, int) {
	return f.x + int(math.Round(px/100*float64(f.w))), f.y + int(math.Round(py/100*float64(f.h)))
}

// percent maps a screen cell back to a playfield percentage.
func (f field) percent(x, y int) game.Point {
	if f.w <= 0 || f.h <= 0 {
		return game.Point{}
	}
	return game.Point{
		X: float64(x-f.x) / float64(f.w) * 100,
		Y: float64(y-f.y) / float64(f.h) * 100,
	}
}

// Draw renders st and remembers where each target ended up.
func (u *UI) Draw(st game.State) {
	u.screen.Clear()
	w, h := u.screen.Size()

	u.drawHeader(st, w)

	f := u.field()
	shake := 0
	if st.ScreenShake {
		shake = 1
	}

	u.boxes = u.boxes[:0]
	if st.Phase == game.PhaseRunning {
		for i, t := range st.Targets {
			label := rune(0)
			if i < len(labelKeys) {
				label = rune(labelKeys[i])
			}
			u.boxes = append(u.boxes, u.drawTarget(f, t, label, shake))
		}
	}

	for _, text := range st.Texts {
		cx, cy := f.cell(text.X, text.Y)
		style := styleBase.Foreground(tagColor(text.Color)).Bold(true)
		drawText(u.screen, cx+shake-textWidth(text.Text)/2, cy, style, text.Text)
	}

	switch st.Phase {
	case game.PhaseNotStarted:
		u.drawStart(w, h)
	case game.PhaseGameOver:
		u.drawGameOver(st, w, h)
	}

	drawText(u.screen, 0, h-1, styleDim, "s/enter start   r reset   q quit   click a target or press its key")
	u.screen.Show()
}

func (u *UI) drawHeader(st game.State, w int) {
	style := styleBase.Bold(true)
	if st.ComboPulse {
		style = style.Reverse(true)
		for x := 0; x < w; x++ {
			u.screen.SetContent(x, 0, ' ', nil, style)
		}
	}

	x := drawText(u.screen, 1, 0, style, fmt.Sprintf("SCORE %d", st.Score))
	x = drawText(u.screen, x+3, 0, style, fmt.Sprintf("LEVEL %d", st.Level))
	x += 3
	for i := 0; i < game.StartingLives; i++ {
		heart := "♡"
		if i < st.Lives {
			heart = "♥"
		}
		x = drawText(u.screen, x, 0, style.Foreground(tcell.ColorRed), heart)
	}
	if st.ComboTitle != "" {
		drawText(u.screen, x+3, 0, style.Foreground(tagColor(st.ComboColor)), st.ComboTitle)
	}
	if u.title != "" {
		drawText(u.screen, w-textWidth(u.title)-1, 0, styleDim, u.title)
	}

	for x := 0; x < w; x++ {
		u.screen.SetContent(x, 1, '─', nil, styleDim)
	}
}

func (u *UI) drawTarget(f field, t targets.Target, label rune, shake int) box {
	cx, cy := f.cell(t.X, t.Y)
	b := box{id: t.ID, label: label, x: cx - boxW/2 + shake, y: cy - boxH/2}
	b.x = clamp(b.x, f.x, f.x+f.w-boxW)
	b.y = clamp(b.y, f.y, f.y+f.h-boxH)

	style := styleBase.Foreground(targetColor(t.Color))
	progress := t.Progress()
	barStyle := style
	if progress < urgentProgress {
		barStyle = styleUrgent
	}

	inner := boxW - 2
	filled := int(math.Round(progress * float64(inner)))

	drawText(u.screen, b.x, b.y, style, "╭"+strings.Repeat("─", inner)+"╮")
	u.screen.SetContent(b.x, b.y+1, '│', nil, style)
	for x := b.x + 1; x < b.x+boxW-1; x++ {
		u.screen.SetContent(x, b.y+1, ' ', nil, style)
	}
	u.screen.SetContent(b.x+boxW-1, b.y+1, '│', nil, style)
	if label != 0 {
		u.screen.SetContent(b.x+2, b.y+1, label, nil, style.Bold(true))
	}
	drawText(u.screen, b.x+4, b.y+1, style, t.Emoji)

	u.screen.SetContent(b.x, b.y+2, '╰', nil, style)
	for i := 0; i < inner; i++ {
		r, s := '─', style
		if i < filled {
			r, s = '▮', barStyle
		}
		u.screen.SetContent(b.x+1+i, b.y+2, r, nil, s)
	}
	u.screen.SetContent(b.x+boxW-1, b.y+2, '╯', nil, style)
	return b
}

func (u *UI) drawStart(w, h int) {
	lines := []struct {
		text  string
		style tcell.Style
	}{
		{"✨ TAP RUSH ✨", styleTitle},
		{"", styleBase},
		{"Tap the targets before their timers run out.", styleBase},
		{"Keep tapping to build a combo. Three misses and it's over.", styleBase},
		{"", styleBase},
		{"Press s or Enter to start", styleBase.Bold(true)},
	}
	top := h/2 - len(lines)/2
	for i, l := range lines {
		drawCentered(u.screen, w, top+i, l.style, l.text)
	}
}

func (u *UI) drawGameOver(st game.State, w, h int) {
	lines := []string{
		"💔 GAME OVER 💔",
		"",
		fmt.Sprintf("Final score %d", st.Score),
		fmt.Sprintf("Level %d   Max combo %d", st.Level, st.MaxCombo),
	}
	if u.badges != nil {
		if earned := u.badges(); len(earned) > 0 {
			lines = append(lines, "")
			for _, b := range earned {
				lines = append(lines, fmt.Sprintf("%s %s: %s", b.Icon, b.Name, b.Description))
			}
		}
	}
	lines = append(lines, "", "s play again   r menu   q quit")

	top := h/2 - len(lines)/2
	for i, l := range lines {
		style := styleBase
		if i == 0 {
			style = styleUrgent
		}
		drawCentered(u.screen, w, top+i, style, l)
	}
}

// drawText writes s one grapheme cluster at a time and returns the column
// after it.
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		rs := g.Runes()
		s.SetContent(x, y, rs[0], rs[1:], style)
		x += max(g.Width(), 1)
	}
	return x
}

func drawCentered(s tcell.Screen, w, y int, style tcell.Style, text string) {
	drawText(s, (w-textWidth(text))/2, y, style, text)
}

func textWidth(text string) int {
	return uniseg.StringWidth(text)
}

func targetColor(c targets.Color) tcell.Color {
	if tc, ok := targetColors[c]; ok {
		return tc
	}
	return tcell.ColorWhite
}

func tagColor(tag string) tcell.Color {
	if tc, ok := tagColors[tag]; ok {
		return tc
	}
	return tcell.ColorWhite
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
