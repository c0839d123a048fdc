// Package feedback holds the floating texts shown after taps, misses and level
// ups. Each text removes itself after DisplayDuration.
package feedback

import "time"

const DisplayDuration = 2000 * time.Millisecond

// Color tags understood by the renderers.
const (
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorPurple = "purple"
)

type Text struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Scheduler runs fn once after d. The game loop supplies one that hands fn back
// to its own goroutine.
type Scheduler func(d time.Duration, fn func())

// Queue is owned by the game loop and is not safe for concurrent use.
type Queue struct {
	after  Scheduler
	texts  []Text
	nextID int
	epoch  int
}

func NewQueue(after Scheduler) *Queue {
	return &Queue{
		after:  after,
		nextID: 1,
	}
}

// Enqueue appends a text and schedules its removal. Removal targets this id in
// the current epoch only, so a timer left over from before Clear is harmless.
func (q *Queue) Enqueue(text string, x, y float64, color string) Text {
	t := Text{ID: q.nextID, Text: text, X: x, Y: y, Color: color}
	q.nextID++
	q.texts = append(q.texts, t)

	epoch := q.epoch
	q.after(DisplayDuration, func() {
		q.remove(epoch, t.ID)
	})
	return t
}

func (q *Queue) remove(epoch, id int) {
	if epoch != q.epoch {
		return
	}
	for i, t := range q.texts {
		if t.ID == id {
			q.texts = append(q.texts[:i], q.texts[i+1:]...)
			return
		}
	}
}

func (q *Queue) GetList() []Text {
	list := make([]Text, len(q.texts))
	copy(list, q.texts)
	return list
}

func (q *Queue) Len() int {
	return len(q.texts)
}

// Clear drops every text and restarts ids at 1.
func (q *Queue) Clear() {
	q.texts = nil
	q.nextID = 1
	q.epoch++
}
