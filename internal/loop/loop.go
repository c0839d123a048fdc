// Package loop drives a game.Game from a single goroutine. Spawns, ticks,
// delayed callbacks and player input all arrive at that goroutine one at a
// time, so the game itself needs no locking.
package loop

import (
	"context"
	"math/rand"
	"sync/atomic"
	"taprush/internal/events"
	"taprush/internal/game"
	"time"
)

type Options struct {
	// TickEvery is the tick period; each tick decays targets by exactly this
	// much.
	TickEvery time.Duration
	// SpawnEvery gives the spawn period for a level.
	SpawnEvery func(level int) time.Duration
	// Rand seeds target placement. Nil means a time-seeded source.
	Rand *rand.Rand
}

func DefaultOptions() Options {
	return Options{
		TickEvery:  game.TickInterval,
		SpawnEvery: game.SpawnInterval,
	}
}

// Runner owns one game and the timers that drive it.
type Runner struct {
	game     *game.Game
	opts     Options
	cmds     chan func()
	done     chan struct{}
	snapshot atomic.Pointer[game.State]
	onChange func(game.State)
}

// New creates a runner. onChange, if set, is called from the loop goroutine
// with a fresh snapshot after every change and must not block for long.
func New(opts Options, bus *events.Bus, onChange func(game.State)) *Runner {
	def := DefaultOptions()
	if opts.TickEvery <= 0 {
		opts.TickEvery = def.TickEvery
	}
	if opts.SpawnEvery == nil {
		opts.SpawnEvery = def.SpawnEvery
	}
	r := &Runner{
		opts:     opts,
		cmds:     make(chan func(), 64),
		done:     make(chan struct{}),
		onChange: onChange,
	}
	r.game = game.NewGame(r.after, bus, opts.Rand)
	st := r.game.Snapshot()
	r.snapshot.Store(&st)
	return r
}

// Run processes timers and commands until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	tickMs := int(r.opts.TickEvery / time.Millisecond)

	var (
		ticker     *time.Ticker
		tickC      <-chan time.Time
		spawn      *time.Timer
		spawnC     <-chan time.Time
		armedEpoch = -1
		armedLevel = 0
	)
	stopSpawn := func() {
		if spawn != nil {
			spawn.Stop()
			spawn, spawnC = nil, nil
		}
	}
	stopTick := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	defer stopSpawn()
	defer stopTick()

	for {
		if r.game.Running() {
			epoch, level := r.game.Epoch(), r.game.Level()
			if epoch != armedEpoch {
				// A new session restarts both clocks from zero.
				stopTick()
				stopSpawn()
			}
			if ticker == nil {
				ticker = time.NewTicker(r.opts.TickEvery)
				tickC = ticker.C
			}
			if spawn == nil || level != armedLevel {
				stopSpawn()
				spawn = time.NewTimer(r.opts.SpawnEvery(level))
				spawnC = spawn.C
			}
			armedEpoch, armedLevel = epoch, level
		} else {
			stopTick()
			stopSpawn()
			armedEpoch = -1
		}

		select {
		case <-ctx.Done():
			return
		case fn := <-r.cmds:
			fn()
		case <-tickC:
			r.game.Tick(tickMs)
		case <-spawnC:
			spawn, spawnC = nil, nil
			r.game.SpawnTarget()
		}
		r.publish()
	}
}

func (r *Runner) publish() {
	st := r.game.Snapshot()
	r.snapshot.Store(&st)
	if r.onChange != nil {
		r.onChange(st)
	}
}

// post hands fn to the loop goroutine. It reports false once the loop has
// stopped.
func (r *Runner) post(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.cmds <- fn:
		return true
	case <-r.done:
		return false
	}
}

// after is the game's scheduler: fn runs on the loop goroutine after d.
func (r *Runner) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		r.post(fn)
	})
}

func (r *Runner) Start() bool {
	return r.post(r.game.Start)
}

func (r *Runner) Reset() bool {
	return r.post(r.game.Reset)
}

// Tap forwards a tap on target id. at is the pointer position in playfield
// percent, or nil to show feedback at the target.
func (r *Runner) Tap(id int, at *game.Point) bool {
	return r.post(func() {
		r.game.HandleTap(id, at)
	})
}

// Snapshot returns the state as of the last processed event.
func (r *Runner) Snapshot() game.State {
	return *r.snapshot.Load()
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
