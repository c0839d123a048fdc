package analytics

import (
	"sync"
	"taprush/internal/events"
)

// Tracker folds a session's event stream into the summary of the current
// game. It is safe for one writer and any number of readers.
type Tracker struct {
	mu          sync.RWMutex
	summary     GameSummary
	reactionSum int
	missed      bool
}

func NewTracker() *Tracker {
	return &Tracker{summary: GameSummary{Level: 1}}
}

func (t *Tracker) Observe(ev events.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case events.KindStarted, events.KindReset:
		t.summary = GameSummary{Level: 1}
		t.reactionSum = 0
		t.missed = false
	case events.KindTap:
		s := &t.summary
		s.Taps++
		s.Score = ev.Score
		s.Level = ev.Level
		s.MaxCombo = max(s.MaxCombo, ev.Combo)
		t.reactionSum += ev.ReactionMs
		s.AvgReactionMs = float64(t.reactionSum) / float64(s.Taps)
		if s.BestReactionMs == 0 || ev.ReactionMs < s.BestReactionMs {
			s.BestReactionMs = ev.ReactionMs
		}
		if !t.missed {
			s.TapsBeforeFirstMiss++
		}
	case events.KindMiss:
		t.summary.Misses += ev.Missed
		t.missed = true
	case events.KindLevelUp:
		t.summary.Level = ev.Level
	case events.KindGameOver:
		t.summary.Score = ev.Score
		t.summary.Level = ev.Level
		t.summary.MaxCombo = ev.MaxCombo
		t.summary.Over = true
	}
}

func (t *Tracker) Summary() GameSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary
}
