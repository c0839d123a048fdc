package sessions

import (
	"context"
	"sync/atomic"
	"taprush/internal/analytics"
	"taprush/internal/broadcast"
	"taprush/internal/game"
	"taprush/internal/loop"
	"taprush/internal/wshub"
	"time"
)

// Session is one player's game plus everything watching it.
type Session struct {
	Code        string
	ID          string
	PlayerID    string
	PlayerName  string
	Runner      *loop.Runner
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	Stats       *analytics.Tracker
	CreatedAt   time.Time

	lastSeen atomic.Int64
	cancel   context.CancelFunc
	closed   chan struct{}
}

// Touch marks the session as in use so the sweeper keeps it.
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Start, Reset and Tap forward to the game loop and keep the session alive.
// With Snapshot they let a terminal UI drive the session directly.

func (s *Session) Start() bool {
	s.Touch()
	return s.Runner.Start()
}

func (s *Session) Reset() bool {
	s.Touch()
	return s.Runner.Reset()
}

func (s *Session) Tap(id int, at *game.Point) bool {
	s.Touch()
	return s.Runner.Tap(id, at)
}

func (s *Session) Snapshot() game.State {
	return s.Runner.Snapshot()
}

// Badges lists what the last finished game earned. It is empty until the
// game is over.
func (s *Session) Badges() []analytics.Badge {
	summary := s.Stats.Summary()
	if !summary.Over {
		return nil
	}
	return analytics.EvaluateGameBadges(summary)
}

// Closed is closed once the game loop and its event consumer have stopped.
func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

func (s *Session) stop() {
	s.cancel()
	<-s.closed
}
