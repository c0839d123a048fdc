// Package termui renders a game on a tcell screen and turns mouse clicks and
// key presses into game commands.
package termui

import (
	"context"
	"taprush/internal/analytics"
	"taprush/internal/game"
	"time"

	"github.com/gdamore/tcell/v2"
)

const frameInterval = 33 * time.Millisecond

// Controller is the game the UI drives. *loop.Runner satisfies it.
type Controller interface {
	Start() bool
	Reset() bool
	Tap(id int, at *game.Point) bool
	Snapshot() game.State
}

type UI struct {
	screen tcell.Screen
	ctrl   Controller
	title  string
	badges func() []analytics.Badge

	boxes   []box
	buttons tcell.ButtonMask
}

// New wraps an initialised screen. The caller owns the screen and calls Fini.
func New(screen tcell.Screen, ctrl Controller) *UI {
	screen.EnableMouse()
	screen.HideCursor()
	return &UI{screen: screen, ctrl: ctrl}
}

// SetTitle sets the text shown at the right of the header.
func (u *UI) SetTitle(title string) {
	u.title = title
}

// SetBadges sets where the game over screen gets its badges from.
func (u *UI) SetBadges(fn func() []analytics.Badge) {
	u.badges = fn
}

// HandleEvent applies one input event and reports whether the player asked to
// quit.
func (u *UI) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return u.handleKey(ev)
	case *tcell.EventMouse:
		u.handleMouse(ev)
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventError:
		// The terminal went away.
		return true
	}
	return false
}

func (u *UI) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		u.ctrl.Start()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune(); r {
	case 'q', 'Q':
		return true
	case 's', 'S':
		u.ctrl.Start()
	case 'r', 'R':
		u.ctrl.Reset()
	default:
		for _, b := range u.boxes {
			if b.label == r {
				u.ctrl.Tap(b.id, nil)
				break
			}
		}
	}
	return false
}

// handleMouse taps on the press edge of the primary button only, so holding
// or dragging does not repeat the tap.
func (u *UI) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && u.buttons&tcell.Button1 == 0
	u.buttons = buttons
	if !pressed {
		return
	}

	x, y := ev.Position()
	// Later boxes are drawn on top.
	for i := len(u.boxes) - 1; i >= 0; i-- {
		if u.boxes[i].contains(x, y) {
			at := u.field().percent(x, y)
			u.ctrl.Tap(u.boxes[i].id, &at)
			return
		}
	}
}

// Run redraws the screen and handles input until ctx is cancelled, the
// player quits or the screen stops delivering events.
func (u *UI) Run(ctx context.Context) {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	u.Draw(u.ctrl.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || u.HandleEvent(ev) {
				return
			}
			u.Draw(u.ctrl.Snapshot())
		case <-ticker.C:
			u.Draw(u.ctrl.Snapshot())
		}
	}
}
