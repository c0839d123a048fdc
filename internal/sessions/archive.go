package sessions

import (
	"context"
	"log"
	"sync"
	"taprush/internal/analytics"
	"taprush/internal/db"
	"taprush/internal/events"
	"time"
)

const (
	archiveQueueSize = 1024
	tapBatchSize     = 50
	tapFlushPeriod   = 500 * time.Millisecond
)

// Recorder is the write side of the results database.
type Recorder interface {
	UpsertPlayer(id, name string) error
	CreateGame(id, sessionCode, playerID string) error
	FinishGame(gameID string, score, level, maxCombo int) error
	BatchRecordTaps(taps []db.TapEvent) error
	AwardBadges(playerID, gameID string, badgeIDs []string) error
}

// LifetimeSource reads a player's totals across archived games.
type LifetimeSource interface {
	GetPlayerLifetimeStats(playerID string) (*analytics.PlayerLifetimeStats, error)
}

type recordKind int

const (
	recordPlayer recordKind = iota
	recordStart
	recordTap
	recordFinish
)

type record struct {
	kind     recordKind
	playerID string
	name     string
	code     string
	gameID   string
	tap      db.TapEvent
	summary  analytics.GameSummary
}

// Archive writes finished games to the database. Callers only queue
// records; one goroutine does every write, in queue order.
type Archive struct {
	rec      Recorder
	lifetime LifetimeSource
	queue    chan record
	done     chan struct{}

	startOnce sync.Once
	cancel    context.CancelFunc
}

func NewArchive(database *db.DB) *Archive {
	return newArchive(database, analytics.NewQueries(database))
}

func newArchive(rec Recorder, lifetime LifetimeSource) *Archive {
	return &Archive{
		rec:      rec,
		lifetime: lifetime,
		queue:    make(chan record, archiveQueueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the writer goroutine.
func (a *Archive) Start() {
	a.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		a.cancel = cancel
		go a.run(ctx)
	})
}

// Close writes whatever is still queued and waits for the writer to stop.
// Records queued afterwards are dropped.
func (a *Archive) Close() {
	a.Start()
	a.cancel()
	<-a.done
}

// run writes queued records until ctx is cancelled, then writes whatever is
// still queued and returns. Taps are batched.
func (a *Archive) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(tapFlushPeriod)
	defer ticker.Stop()

	batch := make([]db.TapEvent, 0, tapBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.rec.BatchRecordTaps(batch); err != nil {
			log.Printf("[DB] BatchRecordTaps error: %v\n", err)
		}
		batch = batch[:0]
	}
	apply := func(r record) {
		if r.kind == recordTap {
			batch = append(batch, r.tap)
			if len(batch) >= tapBatchSize {
				flush()
			}
			return
		}
		// Taps queued earlier belong to an earlier game row; write them first.
		flush()
		a.write(r)
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case r := <-a.queue:
					apply(r)
				default:
					flush()
					return
				}
			}
		case r := <-a.queue:
			apply(r)
		case <-ticker.C:
			flush()
		}
	}
}

func (a *Archive) write(r record) {
	switch r.kind {
	case recordPlayer:
		if err := a.rec.UpsertPlayer(r.playerID, r.name); err != nil {
			log.Printf("[DB] UpsertPlayer error: %v\n", err)
		}
	case recordStart:
		if err := a.rec.CreateGame(r.gameID, r.code, r.playerID); err != nil {
			log.Printf("[DB] CreateGame error: %v\n", err)
		}
	case recordFinish:
		a.finish(r.gameID, r.playerID, r.summary)
	}
}

// finish stores the final result and awards the badges it earned, including
// lifetime ones.
func (a *Archive) finish(gameID, playerID string, summary analytics.GameSummary) {
	if err := a.rec.FinishGame(gameID, summary.Score, summary.Level, summary.MaxCombo); err != nil {
		log.Printf("[DB] FinishGame error: %v\n", err)
		return
	}

	earned := analytics.EvaluateGameBadges(summary)
	if err := a.rec.AwardBadges(playerID, gameID, analytics.BadgeIDs(earned)); err != nil {
		log.Printf("[DB] AwardBadges error: %v\n", err)
	}

	life, err := a.lifetime.GetPlayerLifetimeStats(playerID)
	if err != nil {
		log.Printf("[DB] GetPlayerLifetimeStats error: %v\n", err)
		return
	}
	if err := a.rec.AwardBadges(playerID, gameID, analytics.BadgeIDs(life.Badges)); err != nil {
		log.Printf("[DB] AwardBadges error: %v\n", err)
	}
}

// enqueue waits for room, unless the writer has already stopped.
func (a *Archive) enqueue(r record) {
	select {
	case a.queue <- r:
	case <-a.done:
		log.Println("[DB] Archive stopped, dropping record")
	}
}

func (a *Archive) RegisterPlayer(id, name string) {
	a.enqueue(record{kind: recordPlayer, playerID: id, name: name})
}

func (a *Archive) StartGame(gameID, sessionCode, playerID string) {
	a.enqueue(record{kind: recordStart, gameID: gameID, code: sessionCode, playerID: playerID})
}

// RecordTap never blocks; taps are dropped while the queue is full.
func (a *Archive) RecordTap(gameID string, ev events.Event) {
	select {
	case a.queue <- record{kind: recordTap, tap: db.TapEvent{
		GameID:     gameID,
		TargetID:   ev.TargetID,
		Points:     ev.Points,
		Combo:      ev.Combo,
		Level:      ev.Level,
		ReactionMs: ev.ReactionMs,
		TappedAt:   time.Now(),
	}}:
	default:
		log.Println("[DB] Archive queue full, dropping tap")
	}
}

func (a *Archive) FinishGame(gameID, playerID string, summary analytics.GameSummary) {
	a.enqueue(record{kind: recordFinish, gameID: gameID, playerID: playerID, summary: summary})
}
