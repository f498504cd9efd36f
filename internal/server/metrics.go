package server

import (
	"net/http"

	"github.com/lox/pokerstate/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. Each Metrics owns its
// registry so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	gamesCreated   prometheus.Counter
	gamesReaped    prometheus.Counter
	activeGames    prometheus.Gauge
	handsStarted   prometheus.Counter
	gamesFinished  prometheus.Counter
	sidePots       prometheus.Counter
	chipsAwarded   prometheus.Counter
	actionsApplied *prometheus.CounterVec
	requestErrors  *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		gamesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_games_created_total",
			Help: "Games created through the API",
		}),
		gamesReaped: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_games_reaped_total",
			Help: "Games removed after sitting idle",
		}),
		activeGames: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pokerstate_active_games",
			Help: "Games currently held by the registry",
		}),
		handsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_hands_started_total",
			Help: "Hands started across all games",
		}),
		gamesFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_games_finished_total",
			Help: "Games that reached game over",
		}),
		sidePots: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_side_pots_total",
			Help: "Side pots split off during betting",
		}),
		chipsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pokerstate_chips_awarded_total",
			Help: "Chips paid out to pot winners",
		}),
		actionsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pokerstate_actions_applied_total",
			Help: "Player actions applied, by action kind",
		}, []string{"action"}),
		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pokerstate_request_errors_total",
			Help: "API requests that failed, by error code",
		}, []string{"code"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnEvent implements game.EventSubscriber.
func (m *Metrics) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.HandStartedEvent:
		m.handsStarted.Inc()
	case game.ActionAppliedEvent:
		m.actionsApplied.WithLabelValues(e.Action.String()).Inc()
	case game.SidePotCreatedEvent:
		m.sidePots.Inc()
	case game.PotAwardedEvent:
		m.chipsAwarded.Add(float64(e.Amount))
	case game.GameOverEvent:
		m.gamesFinished.Inc()
	}
}

func (m *Metrics) gameAdded() {
	m.gamesCreated.Inc()
	m.activeGames.Inc()
}

func (m *Metrics) gameRemoved(reaped bool) {
	m.activeGames.Dec()
	if reaped {
		m.gamesReaped.Inc()
	}
}

func (m *Metrics) requestFailed(code string) {
	m.requestErrors.WithLabelValues(code).Inc()
}
