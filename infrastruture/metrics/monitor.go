package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor exposes game and HTTP metrics on its own registry.
type Monitor struct {
	registry        *prometheus.Registry
	gamesCreated    prometheus.Counter
	gamesEnded      *prometheus.CounterVec
	turns           *prometheus.CounterVec
	activeGames     prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// NewMonitor registers every metric under namespace.
func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Total number of games created",
		}),
		gamesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_ended_total",
			Help:      "Total number of finished games by outcome",
		}, []string{"outcome"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of turns by action and result",
		}, []string{"action", "status"}),
		activeGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of games that have not ended",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gamesCreated,
		m.gamesEnded,
		m.turns,
		m.activeGames,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Monitor) GameCreated() {
	m.gamesCreated.Inc()
}

func (m *Monitor) GameEnded(outcome string) {
	m.gamesEnded.WithLabelValues(outcome).Inc()
}

func (m *Monitor) TurnTaken(action, status string) {
	m.turns.WithLabelValues(action, status).Inc()
}

func (m *Monitor) SetActiveGames(n int) {
	m.activeGames.Set(float64(n))
}

// Middleware observes the latency of every request, labelled by route template.
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
