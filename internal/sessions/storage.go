package sessions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"taprush/internal/analytics"
	"taprush/internal/broadcast"
	"taprush/internal/events"
	"taprush/internal/game"
	"taprush/internal/loop"
	"taprush/internal/metrics"
	"taprush/internal/wshub"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

const (
	DefaultTTL    = 1 * time.Hour
	sweepInterval = 5 * time.Minute
)

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     loop.Options
	ttl      time.Duration

	// Metrics and Archive are optional; set them before the first Create.
	// The store starts the archive and closes it in Close.
	Metrics *metrics.Metrics
	Archive *Archive
}

// NewStore returns an empty store. Sessions idle for longer than ttl are
// removed by RunSweeper.
func NewStore(opts loop.Options, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// A rand.Rand is not safe to share between session loops.
	opts.Rand = nil
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		ttl:      ttl,
	}
}

// Create starts a new session loop for the named player.
func (s *Store) Create(playerName string) (*Session, error) {
	sess, err := s.add(playerName)
	if err != nil {
		return nil, err
	}
	// Queued before the caller can start a game, so the player row comes
	// first. Done outside the lock: the queue may be full.
	if s.Archive != nil {
		s.Archive.Start()
		s.Archive.RegisterPlayer(sess.PlayerID, sess.PlayerName)
	}
	log.Printf("[Session] Created %s for %q\n", sess.Code, sess.PlayerName)
	return sess, nil
}

func (s *Store) add(playerName string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating session code: %w", err)
		}
		if _, exists := s.sessions[code]; exists {
			continue
		}

		sess := s.newSession(code, playerName)
		s.sessions[code] = sess
		if s.Metrics != nil {
			s.Metrics.SessionsActive.Set(float64(len(s.sessions)))
		}
		return sess, nil
	}
	return nil, fmt.Errorf("failed to generate unique session code after 10 attempts")
}

func (s *Store) newSession(code, playerName string) *Session {
	if playerName == "" {
		playerName = "Player"
	}
	bus := events.NewBus()
	sess := &Session{
		Code:        code,
		ID:          uuid.New().String(),
		PlayerID:    uuid.New().String(),
		PlayerName:  playerName,
		Broadcaster: broadcast.NewBroadcaster(),
		Hub:         wshub.NewHub(),
		Stats:       analytics.NewTracker(),
		CreatedAt:   time.Now(),
		closed:      make(chan struct{}),
	}
	sess.Touch()
	sess.Runner = loop.New(s.opts, bus, func(st game.State) {
		sess.Broadcaster.Publish(st)
		sess.Hub.Broadcast(wshub.ServerMessage{Type: wshub.MsgState, State: &st})
	})

	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	consumed := make(chan struct{})
	go func() {
		sess.Runner.Run(ctx)
		bus.Close()
	}()
	go func() {
		defer close(consumed)
		s.consume(sess, bus)
	}()
	go func() {
		<-consumed
		close(sess.closed)
	}()
	return sess
}

// consume feeds a session's events to its tracker, metrics and archive until
// the bus is closed. It only queues database writes, so it keeps up with the
// bus.
func (s *Store) consume(sess *Session, bus *events.Bus) {
	var gameID string
	for ev := range bus.Events {
		sess.Stats.Observe(ev)
		if s.Metrics != nil {
			s.Metrics.Observe(ev)
		}
		if s.Archive == nil {
			continue
		}
		switch ev.Kind {
		case events.KindStarted:
			gameID = uuid.New().String()
			s.Archive.StartGame(gameID, sess.Code, sess.PlayerID)
		case events.KindTap:
			if gameID != "" {
				s.Archive.RecordTap(gameID, ev)
			}
		case events.KindGameOver:
			if gameID != "" {
				s.Archive.FinishGame(gameID, sess.PlayerID, sess.Stats.Summary())
				gameID = ""
			}
		case events.KindReset:
			// An abandoned game keeps a null ended_at.
			gameID = ""
		}
	}
}

func (s *Store) Get(code string) (*Session, error) {
	code, ok := NormalizeCode(code)
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[code]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete stops the session's loop and forgets it.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	sess, ok := s.sessions[code]
	delete(s.sessions, code)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return
	}
	if s.Metrics != nil {
		s.Metrics.SessionsActive.Set(float64(n))
	}
	sess.stop()
	log.Printf("[Session] Closed %s\n", code)
}

func (s *Store) List() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	return list
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep deletes sessions not touched within the TTL as of now and reports
// how many went.
func (s *Store) Sweep(now time.Time) int {
	var stale []string
	for _, sess := range s.List() {
		if now.Sub(sess.LastSeen()) > s.ttl {
			stale = append(stale, sess.Code)
		}
	}
	for _, code := range stale {
		s.Delete(code)
	}
	return len(stale)
}

// RunSweeper calls Sweep periodically until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.Printf("[Session] Swept %d idle sessions\n", n)
			}
		}
	}
}

// Close stops every session, then waits for the archive to write what they
// queued. The database can be closed once Close returns.
func (s *Store) Close() {
	for _, sess := range s.List() {
		s.Delete(sess.Code)
	}
	if s.Archive != nil {
		s.Archive.Close()
	}
}
