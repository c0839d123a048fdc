// Package game implements the Tap Rush state machine: spawning targets,
// decaying their timers, scoring taps and ending the game when lives run out.
//
// A Game is not safe for concurrent use. Exactly one goroutine (see package
// loop) drives it, including the callbacks it hands to its Scheduler.
package game

import (
	"fmt"
	"log"
	"math/rand"
	"taprush/internal/events"
	"taprush/internal/feedback"
	"taprush/internal/targets"
	"time"
)

type Phase string

const (
	PhaseNotStarted = Phase("notStarted")
	PhaseRunning    = Phase("running")
	PhaseGameOver   = Phase("gameOver")
)

const (
	StartingLives = 3

	TickMs       = 50
	TickInterval = TickMs * time.Millisecond

	PulseDuration = 500 * time.Millisecond

	MilestoneEvery = 5
	LevelUpEvery   = 10

	BaseTapPoints = 10
	ComboBonus    = 2

	BaseSpawnMs = 1500
	SpawnStepMs = 100
	MinSpawnMs  = 800
)

const (
	MissText    = "💔 MISS!"
	LevelUpText = "LEVEL UP! 🎊"
)

var SuccessEmojis = []string{"🎉", "✨", "💫", "🌟", "🎊"}

// LevelUpPosition is where the level-up text appears, in playfield percent.
var LevelUpPosition = Point{X: 50, Y: 30}

// Point is a playfield position in percent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SpawnInterval is the time between spawns at the given level.
func SpawnInterval(level int) time.Duration {
	return time.Duration(max(MinSpawnMs, BaseSpawnMs-level*SpawnStepMs)) * time.Millisecond
}

// TapPoints is the award for a tap made while holding the given combo.
func TapPoints(combo int) int {
	return BaseTapPoints + combo*ComboBonus
}

type Game struct {
	phase    Phase
	score    int
	combo    int
	maxCombo int
	level    int
	lives    int
	epoch    int

	comboPulse  bool
	screenShake bool
	pulseGen    int

	rng   *rand.Rand
	after feedback.Scheduler

	Targets *targets.Store
	Texts   *feedback.Queue
	Events  *events.Bus // nil if nobody listens
}

// NewGame returns a game in the not-started phase. after schedules delayed
// work (text removal, pulse clearing) and must run it on the goroutine that
// owns the game.
func NewGame(after feedback.Scheduler, bus *events.Bus, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{
		phase:   PhaseNotStarted,
		level:   1,
		lives:   StartingLives,
		rng:     rng,
		after:   after,
		Targets: targets.NewStore(rng),
		Texts:   feedback.NewQueue(after),
		Events:  bus,
	}
	return g
}

func (g *Game) Phase() Phase      { return g.phase }
func (g *Game) Score() int        { return g.score }
func (g *Game) Combo() int        { return g.combo }
func (g *Game) MaxCombo() int     { return g.maxCombo }
func (g *Game) Level() int        { return g.level }
func (g *Game) Lives() int        { return g.lives }
func (g *Game) Running() bool     { return g.phase == PhaseRunning }
func (g *Game) ComboPulse() bool  { return g.comboPulse }
func (g *Game) ScreenShake() bool { return g.screenShake }

// Epoch changes every time a session is started or reset.
func (g *Game) Epoch() int { return g.epoch }

// Start begins a fresh session from any phase.
func (g *Game) Start() {
	g.resetState()
	g.phase = PhaseRunning
	g.publish(events.Event{Kind: events.KindStarted, Level: g.level, Lives: g.lives})
}

// Reset returns to the start screen with the same fresh state Start uses.
func (g *Game) Reset() {
	g.resetState()
	g.phase = PhaseNotStarted
	g.publish(events.Event{Kind: events.KindReset})
}

func (g *Game) resetState() {
	g.score = 0
	g.combo = 0
	g.maxCombo = 0
	g.level = 1
	g.lives = StartingLives
	g.Targets.Clear()
	g.Texts.Clear()
	g.comboPulse = false
	g.screenShake = false
	g.pulseGen++
	g.epoch++
}

// SpawnTarget adds a target sized for the current level. It does nothing
// unless the game is running.
func (g *Game) SpawnTarget() (targets.Target, bool) {
	if !g.Running() {
		return targets.Target{}, false
	}
	return *g.Targets.Add(g.level), true
}

// Tick advances every target's countdown by deltaMs. Expired targets cost one
// life each, applied as a single batch, and break the combo.
func (g *Game) Tick(deltaMs int) {
	if !g.Running() {
		return
	}
	expired := g.Targets.Decay(deltaMs)
	if len(expired) == 0 {
		return
	}

	for _, t := range expired {
		g.Texts.Enqueue(MissText, t.X, t.Y, feedback.ColorRed)
	}

	g.lives -= len(expired)
	if g.lives <= 0 {
		g.lives = 0
		g.phase = PhaseGameOver
	}
	g.combo = 0

	g.publish(events.Event{
		Kind:   events.KindMiss,
		Score:  g.score,
		Level:  g.level,
		Lives:  g.lives,
		Missed: len(expired),
	})
	if g.phase == PhaseGameOver {
		g.publish(events.Event{
			Kind:     events.KindGameOver,
			Score:    g.score,
			MaxCombo: g.maxCombo,
			Level:    g.level,
		})
	}
}

// HandleTap scores a tap on the target with the given id. at is where the
// feedback text should appear; nil means at the target itself. Taps on ids
// that are no longer active are ignored and report false.
func (g *Game) HandleTap(id int, at *Point) bool {
	if !g.Running() {
		return false
	}
	target, ok := g.Targets.Remove(id)
	if !ok {
		return false
	}

	awarded := TapPoints(g.combo)
	g.score += awarded
	g.combo++
	g.maxCombo = max(g.maxCombo, g.combo)

	pos := Point{X: target.X, Y: target.Y}
	if at != nil {
		pos = *at
	}
	emoji := SuccessEmojis[g.rng.Intn(len(SuccessEmojis))]
	g.Texts.Enqueue(fmt.Sprintf("+%d %s", awarded, emoji), pos.X, pos.Y, feedback.ColorGreen)

	g.publish(events.Event{
		Kind:       events.KindTap,
		Score:      g.score,
		Combo:      g.combo,
		Level:      g.level,
		Lives:      g.lives,
		TargetID:   target.ID,
		Points:     awarded,
		ReactionMs: target.MaxTime - target.TimeLeft,
	})

	if g.combo%MilestoneEvery == 0 {
		g.startPulse()
		g.publish(events.Event{Kind: events.KindMilestone, Combo: g.combo})
	}

	if g.combo%LevelUpEvery == 0 {
		g.level++
		g.Texts.Enqueue(LevelUpText, LevelUpPosition.X, LevelUpPosition.Y, feedback.ColorPurple)
		g.publish(events.Event{Kind: events.KindLevelUp, Level: g.level, Combo: g.combo})
	}
	return true
}

// startPulse raises the combo pulse and screen shake flags. A newer pulse, or
// a new session, makes the pending clear a no-op.
func (g *Game) startPulse() {
	g.comboPulse = true
	g.screenShake = true
	g.pulseGen++
	gen := g.pulseGen
	g.after(PulseDuration, func() {
		if g.pulseGen != gen {
			return
		}
		g.comboPulse = false
		g.screenShake = false
	})
}

func (g *Game) publish(ev events.Event) {
	if g.Events == nil {
		return
	}
	if !g.Events.Publish(ev) {
		log.Printf("[Game] Event bus full, dropping %s event\n", ev.Kind)
	}
}
