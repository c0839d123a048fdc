package analytics

import (
	"taprush/internal/events"
	"testing"
)

func TestTracker_Taps(t *testing.T) {
	tr := NewTracker()
	tr.Observe(events.Event{Kind: events.KindStarted, Level: 1, Lives: 3})
	tr.Observe(events.Event{Kind: events.KindTap, Score: 10, Combo: 1, Level: 1, ReactionMs: 600})
	tr.Observe(events.Event{Kind: events.KindTap, Score: 22, Combo: 2, Level: 1, ReactionMs: 400})

	s := tr.Summary()
	if s.Taps != 2 {
		t.Errorf("taps = %d, want 2", s.Taps)
	}
	if s.Score != 22 || s.MaxCombo != 2 {
		t.Errorf("score/combo = %d/%d, want 22/2", s.Score, s.MaxCombo)
	}
	if s.AvgReactionMs != 500 {
		t.Errorf("avg reaction = %f, want 500", s.AvgReactionMs)
	}
	if s.BestReactionMs != 400 {
		t.Errorf("best reaction = %d, want 400", s.BestReactionMs)
	}
	if s.TapsBeforeFirstMiss != 2 {
		t.Errorf("taps before first miss = %d, want 2", s.TapsBeforeFirstMiss)
	}
}

func TestTracker_MissStopsFlawlessCount(t *testing.T) {
	tr := NewTracker()
	tr.Observe(events.Event{Kind: events.KindStarted})
	tr.Observe(events.Event{Kind: events.KindTap, Score: 10, Combo: 1, Level: 1})
	tr.Observe(events.Event{Kind: events.KindMiss, Missed: 2, Lives: 1})
	tr.Observe(events.Event{Kind: events.KindTap, Score: 20, Combo: 1, Level: 1})

	s := tr.Summary()
	if s.TapsBeforeFirstMiss != 1 {
		t.Errorf("taps before first miss = %d, want 1", s.TapsBeforeFirstMiss)
	}
	if s.Misses != 2 {
		t.Errorf("misses = %d, want 2", s.Misses)
	}
	if s.Taps != 2 {
		t.Errorf("taps = %d, want 2", s.Taps)
	}
}

func TestTracker_LevelUpAndGameOver(t *testing.T) {
	tr := NewTracker()
	tr.Observe(events.Event{Kind: events.KindStarted})
	tr.Observe(events.Event{Kind: events.KindLevelUp, Level: 2, Combo: 10})
	if got := tr.Summary().Level; got != 2 {
		t.Errorf("level = %d, want 2", got)
	}

	tr.Observe(events.Event{Kind: events.KindGameOver, Score: 300, Level: 2, MaxCombo: 14})
	s := tr.Summary()
	if !s.Over {
		t.Error("summary should be over after game over")
	}
	if s.Score != 300 || s.MaxCombo != 14 {
		t.Errorf("final = %+v", s)
	}
}

func TestTracker_StartClears(t *testing.T) {
	tr := NewTracker()
	tr.Observe(events.Event{Kind: events.KindTap, Score: 10, Combo: 1, Level: 1, ReactionMs: 300})
	tr.Observe(events.Event{Kind: events.KindGameOver, Score: 10, Level: 1, MaxCombo: 1})

	tr.Observe(events.Event{Kind: events.KindStarted})
	s := tr.Summary()
	if s != (GameSummary{Level: 1}) {
		t.Errorf("summary after start = %+v, want fresh", s)
	}
}
