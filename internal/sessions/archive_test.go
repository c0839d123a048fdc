package sessions

import (
	"errors"
	"fmt"
	"sync"
	"taprush/internal/analytics"
	"taprush/internal/db"
	"taprush/internal/events"
	"taprush/internal/game"
	"testing"
	"time"
)

type fakeRecorder struct {
	mu     sync.Mutex
	ops    []string
	taps   []db.TapEvent
	badges map[string][]string
	games  int
	closed bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{badges: make(map[string][]string)}
}

func (f *fakeRecorder) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("database is closed")
	}
	f.ops = append(f.ops, op)
	return nil
}

func (f *fakeRecorder) UpsertPlayer(id, name string) error {
	return f.record("player " + name)
}

func (f *fakeRecorder) CreateGame(id, sessionCode, playerID string) error {
	return f.record("start " + sessionCode)
}

func (f *fakeRecorder) FinishGame(gameID string, score, level, maxCombo int) error {
	f.mu.Lock()
	f.games++
	f.mu.Unlock()
	return f.record(fmt.Sprintf("finish %d", score))
}

func (f *fakeRecorder) BatchRecordTaps(taps []db.TapEvent) error {
	if err := f.record(fmt.Sprintf("taps %d", len(taps))); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taps = append(f.taps, taps...)
	return nil
}

func (f *fakeRecorder) AwardBadges(playerID, gameID string, badgeIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badges[gameID] = append(f.badges[gameID], badgeIDs...)
	return nil
}

func (f *fakeRecorder) GetPlayerLifetimeStats(playerID string) (*analytics.PlayerLifetimeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &analytics.PlayerLifetimeStats{PlayerID: playerID, GamesPlayed: f.games}
	stats.Badges = analytics.EvaluateLifetimeBadges(*stats)
	return stats, nil
}

func (f *fakeRecorder) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeRecorder) snapshot() ([]string, []db.TapEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...), append([]db.TapEvent(nil), f.taps...)
}

func TestArchive_WritesInOrder(t *testing.T) {
	rec := newFakeRecorder()
	a := newArchive(rec, rec)
	a.Start()

	a.RegisterPlayer("p1", "ada")
	a.StartGame("g1", "ABCD", "p1")
	a.RecordTap("g1", events.Event{Kind: events.KindTap, TargetID: 1, Points: 10})
	a.RecordTap("g1", events.Event{Kind: events.KindTap, TargetID: 2, Points: 12})
	a.FinishGame("g1", "p1", analytics.GameSummary{Score: 22, Level: 1, Over: true})
	a.Close()

	ops, taps := rec.snapshot()
	want := []string{"player ada", "start ABCD", "taps 2", "finish 22"}
	if fmt.Sprint(ops) != fmt.Sprint(want) {
		t.Errorf("ops = %v, want %v", ops, want)
	}
	if len(taps) != 2 || taps[0].GameID != "g1" || taps[1].Points != 12 {
		t.Errorf("taps = %+v", taps)
	}
}

func TestArchive_CloseFlushesPendingTaps(t *testing.T) {
	rec := newFakeRecorder()
	a := newArchive(rec, rec)
	a.Start()

	for i := range 3 {
		a.RecordTap("g1", events.Event{Kind: events.KindTap, TargetID: i + 1})
	}
	a.Close()

	// The batch period has not elapsed; Close must still write it.
	if _, taps := rec.snapshot(); len(taps) != 3 {
		t.Errorf("taps written = %d, want 3", len(taps))
	}
}

func TestArchive_AwardsBadges(t *testing.T) {
	rec := newFakeRecorder()
	a := newArchive(rec, rec)
	a.Start()

	a.FinishGame("g1", "p1", analytics.GameSummary{Score: 1200, Level: 2, MaxCombo: 12, Over: true})
	a.Close()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	got := map[string]bool{}
	for _, id := range rec.badges["g1"] {
		got[id] = true
	}
	if !got[string(analytics.BadgeHotStreak)] || !got[string(analytics.BadgeFourDigits)] {
		t.Errorf("badges = %v, want hot_streak and four_digits", rec.badges["g1"])
	}
}

func TestArchive_DropsAfterClose(t *testing.T) {
	rec := newFakeRecorder()
	a := newArchive(rec, rec)
	a.Start()
	a.Close()

	done := make(chan struct{})
	go func() {
		a.FinishGame("g1", "p1", analytics.GameSummary{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FinishGame() blocked after Close")
	}
}

func TestStore_CloseFlushesArchiveBeforeReturning(t *testing.T) {
	rec := newFakeRecorder()
	s := NewStore(testOptions(), time.Hour)
	s.Archive = newArchive(rec, rec)

	sess, err := s.Create("ada")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	sess.Start()
	var st game.State
	eventually(t, "a target", func() bool {
		st = sess.Snapshot()
		return len(st.Targets) > 0
	})
	sess.Tap(st.Targets[0].ID, nil)
	eventually(t, "the tap", func() bool {
		return sess.Snapshot().Score == 10
	})

	s.Close()
	// Anything written after this point would hit a closed database.
	rec.close()

	ops, taps := rec.snapshot()
	if len(ops) < 3 || ops[0] != "player ada" || ops[1] != "start "+sess.Code {
		t.Fatalf("ops = %v, want player, start, then taps", ops)
	}
	if len(taps) != 1 || taps[0].Points != 10 {
		t.Errorf("taps = %+v, want one 10 point tap", taps)
	}
}
