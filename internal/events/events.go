package events

type Kind string

const (
	KindStarted   = Kind("started")
	KindTap       = Kind("tap")
	KindMiss      = Kind("miss")
	KindLevelUp   = Kind("levelUp")
	KindMilestone = Kind("milestone")
	KindGameOver  = Kind("gameOver")
	KindReset     = Kind("reset")
)

// Lifecycle reports whether the kind starts or ends a game. Those events are
// never dropped.
func (k Kind) Lifecycle() bool {
	return k == KindStarted || k == KindGameOver || k == KindReset
}

// Event describes something that happened to a session. Fields not relevant to
// the Kind are left zero.
type Event struct {
	Kind     Kind
	Score    int
	Combo    int
	MaxCombo int
	Level    int
	Lives    int
	TargetID int
	Points   int
	// ReactionMs is how long the tapped target had been on the field.
	ReactionMs int
	// Missed is the number of targets that expired in one tick.
	Missed int
}

type Bus struct {
	Events chan Event
}

func NewBus() *Bus {
	return &Bus{
		Events: make(chan Event, 64),
	}
}

// Publish reports false when the buffer is full and the event was dropped.
// Lifecycle events wait for room instead, so a bus must have a consumer.
func (b *Bus) Publish(ev Event) bool {
	if ev.Kind.Lifecycle() {
		b.Events <- ev
		return true
	}
	select {
	case b.Events <- ev:
		return true
	default:
		return false
	}
}

// Close ends the stream for consumers ranging over Events. Nothing may
// publish afterwards.
func (b *Bus) Close() {
	close(b.Events)
}
