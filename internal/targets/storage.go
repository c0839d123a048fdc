package targets

import (
	"math/rand"
	"time"
)

const (
	MinX = 15
	MaxX = 85
	MinY = 25
	MaxY = 75

	BaseLifetimeMs = 3500
	LifetimeStepMs = 200
	MinLifetimeMs  = 2000
)

// Lifetime is how long a target spawned at the given level stays on the field.
func Lifetime(level int) int {
	return max(MinLifetimeMs, BaseLifetimeMs-level*LifetimeStepMs)
}

// Store holds the active targets in spawn order. It is not safe for concurrent
// use; the game loop is its only owner.
type Store struct {
	rng     *rand.Rand
	targets []*Target
	nextID  int
}

func NewStore(rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Store{
		rng:    rng,
		nextID: 1,
	}
}

func (s *Store) Add(level int) *Target {
	id := s.nextID
	s.nextID++
	lifetime := Lifetime(level)
	target := &Target{
		ID:       id,
		Color:    Palette[s.rng.Intn(len(Palette))],
		X:        s.rng.Float64()*(MaxX-MinX) + MinX,
		Y:        s.rng.Float64()*(MaxY-MinY) + MinY,
		TimeLeft: lifetime,
		MaxTime:  lifetime,
		Emoji:    Emojis[s.rng.Intn(len(Emojis))],
	}
	s.targets = append(s.targets, target)
	return target
}

func (s *Store) Get(id int) *Target {
	for _, t := range s.targets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Remove takes the target out of the store. The second result is false when
// no active target has that id.
func (s *Store) Remove(id int) (Target, bool) {
	for i, t := range s.targets {
		if t.ID == id {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return *t, true
		}
	}
	return Target{}, false
}

// Decay subtracts deltaMs from every target and drops the ones that ran out.
// The dropped targets are returned in spawn order.
func (s *Store) Decay(deltaMs int) []Target {
	var expired []Target
	survivors := s.targets[:0]
	for _, t := range s.targets {
		t.TimeLeft -= deltaMs
		if t.TimeLeft <= 0 {
			expired = append(expired, *t)
			continue
		}
		survivors = append(survivors, t)
	}
	clear(s.targets[len(survivors):])
	s.targets = survivors
	return expired
}

func (s *Store) GetList() []Target {
	targetList := make([]Target, 0, len(s.targets))
	for _, t := range s.targets {
		targetList = append(targetList, *t)
	}
	return targetList
}

func (s *Store) Len() int {
	return len(s.targets)
}

func (s *Store) Clear() {
	s.targets = nil
	s.nextID = 1
}
