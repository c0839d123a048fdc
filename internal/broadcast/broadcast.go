package broadcast

import (
	"sync"
	"taprush/internal/game"
)

// Broadcaster fans game snapshots out to subscribers such as SSE streams,
// websocket pumps and terminal screens.
type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan game.State]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		Clients: make(map[chan game.State]bool),
	}
}

func (b *Broadcaster) Subscribe() chan game.State {
	ch := make(chan game.State, 10)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan game.State) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if _, ok := b.Clients[ch]; !ok {
		return
	}
	delete(b.Clients, ch)
	close(ch)
}

// Publish never blocks. A subscriber that has fallen behind loses its oldest
// queued snapshot so the newest one always gets through.
func (b *Broadcaster) Publish(st game.State) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// Len is the number of current subscribers.
func (b *Broadcaster) Len() int {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return len(b.Clients)
}
