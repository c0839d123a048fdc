package metrics

import (
	"net/http"
	"taprush/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	SessionsActive prometheus.Gauge
	GamesStarted   prometheus.Counter
	GamesOver      prometheus.Counter
	Taps           prometheus.Counter
	Misses         prometheus.Counter
	LevelUps       prometheus.Counter
	FinalScore     prometheus.Histogram
	ReactionMs     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taprush_sessions_active",
			Help: "Game sessions currently held in memory.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taprush_games_started_total",
			Help: "Games started, including replays.",
		}),
		GamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taprush_games_over_total",
			Help: "Games that ended by running out of lives.",
		}),
		Taps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taprush_taps_total",
			Help: "Targets tapped before expiry.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taprush_misses_total",
			Help: "Targets that expired unclicked.",
		}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taprush_level_ups_total",
			Help: "Level ups across all sessions.",
		}),
		FinalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taprush_final_score",
			Help:    "Score at game over.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
		ReactionMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taprush_reaction_ms",
			Help:    "Time a target was on the field before it was tapped.",
			Buckets: prometheus.LinearBuckets(250, 250, 14),
		}),
	}
	m.Registry.MustRegister(
		m.SessionsActive,
		m.GamesStarted,
		m.GamesOver,
		m.Taps,
		m.Misses,
		m.LevelUps,
		m.FinalScore,
		m.ReactionMs,
	)
	return m
}

// Observe records one engine event.
func (m *Metrics) Observe(ev events.Event) {
	switch ev.Kind {
	case events.KindStarted:
		m.GamesStarted.Inc()
	case events.KindTap:
		m.Taps.Inc()
		m.ReactionMs.Observe(float64(ev.ReactionMs))
	case events.KindMiss:
		m.Misses.Add(float64(ev.Missed))
	case events.KindLevelUp:
		m.LevelUps.Inc()
	case events.KindGameOver:
		m.GamesOver.Inc()
		m.FinalScore.Observe(float64(ev.Score))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
