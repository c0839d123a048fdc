package feedback

import (
	"testing"
	"time"
)

type pending struct {
	d  time.Duration
	fn func()
}

type fakeScheduler struct {
	queued []pending
}

func (f *fakeScheduler) after(d time.Duration, fn func()) {
	f.queued = append(f.queued, pending{d: d, fn: fn})
}

// fire runs the i-th scheduled callback.
func (f *fakeScheduler) fire(i int) {
	f.queued[i].fn()
}

func TestQueue_Enqueue(t *testing.T) {
	sched := &fakeScheduler{}
	q := NewQueue(sched.after)

	text := q.Enqueue("+10", 40, 50, ColorGreen)

	if text.ID != 1 {
		t.Errorf("first ID = %d, want 1", text.ID)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	got := q.GetList()[0]
	if got.Text != "+10" || got.X != 40 || got.Y != 50 || got.Color != ColorGreen {
		t.Errorf("text = %+v, want +10 at (40, 50) green", got)
	}
	if len(sched.queued) != 1 {
		t.Fatalf("scheduled %d removals, want 1", len(sched.queued))
	}
	if sched.queued[0].d != DisplayDuration {
		t.Errorf("removal delay = %v, want %v", sched.queued[0].d, DisplayDuration)
	}
}

func TestQueue_RemovalByID(t *testing.T) {
	sched := &fakeScheduler{}
	q := NewQueue(sched.after)

	q.Enqueue("a", 0, 0, ColorGreen)
	q.Enqueue("b", 0, 0, ColorGreen)
	q.Enqueue("c", 0, 0, ColorGreen)

	// Fire the middle one first; the others must stay put.
	sched.fire(1)

	list := q.GetList()
	if len(list) != 2 || list[0].Text != "a" || list[1].Text != "c" {
		t.Fatalf("after removing b, list = %+v", list)
	}

	sched.fire(0)
	sched.fire(2)
	if q.Len() != 0 {
		t.Errorf("Len() = %d after all removals, want 0", q.Len())
	}
}

func TestQueue_RemovalTwiceIsHarmless(t *testing.T) {
	sched := &fakeScheduler{}
	q := NewQueue(sched.after)
	q.Enqueue("a", 0, 0, ColorRed)
	q.Enqueue("b", 0, 0, ColorRed)

	sched.fire(0)
	sched.fire(0)

	if q.Len() != 1 || q.GetList()[0].Text != "b" {
		t.Errorf("list = %+v, want only b", q.GetList())
	}
}

func TestQueue_StaleRemovalAfterClear(t *testing.T) {
	sched := &fakeScheduler{}
	q := NewQueue(sched.after)

	q.Enqueue("old", 0, 0, ColorRed)
	q.Clear()
	fresh := q.Enqueue("new", 0, 0, ColorGreen)

	if fresh.ID != 1 {
		t.Fatalf("ID after Clear() = %d, want 1", fresh.ID)
	}

	// The removal scheduled before Clear carries id 1 too.
	sched.fire(0)

	if q.Len() != 1 || q.GetList()[0].Text != "new" {
		t.Errorf("stale removal touched the new session: %+v", q.GetList())
	}

	sched.fire(1)
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_GetListIsCopy(t *testing.T) {
	q := NewQueue((&fakeScheduler{}).after)
	q.Enqueue("a", 0, 0, ColorGreen)

	list := q.GetList()
	list[0].Text = "changed"

	if q.GetList()[0].Text != "a" {
		t.Error("GetList() exposed internal storage")
	}
}
