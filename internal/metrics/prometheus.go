package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector records observations as Prometheus metrics.
type PrometheusCollector struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	commandsTotal     *prometheus.CounterVec
	parseErrorsTotal  *prometheus.CounterVec
	roomsActive       prometheus.Gauge
	usersActive       prometheus.Gauge
	mailboxDepth      prometheus.Histogram
}

// NewPrometheusCollector builds a PrometheusCollector and registers its
// metrics with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatcore",
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "commands_total",
			Help:      "Total number of successfully parsed client commands, by command name.",
		}, []string{"command"}),
		parseErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatcore",
			Name:      "parse_errors_total",
			Help:      "Total number of parse errors, by kind.",
		}, []string{"kind"}),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatcore",
			Name:      "rooms_active",
			Help:      "Number of currently existing rooms.",
		}),
		usersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatcore",
			Name:      "users_active",
			Help:      "Number of currently registered users.",
		}),
		mailboxDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatcore",
			Name:      "mailbox_depth",
			Help:      "Observed depth of a user mailbox at delivery time.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	reg.MustRegister(
		c.connectionsActive,
		c.connectionsTotal,
		c.commandsTotal,
		c.parseErrorsTotal,
		c.roomsActive,
		c.usersActive,
		c.mailboxDepth,
	)

	return c
}

func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsActive.Inc()
	c.connectionsTotal.Inc()
}

func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

func (c *PrometheusCollector) CommandProcessed(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

func (c *PrometheusCollector) ParseErrorOccurred(kind string) {
	c.parseErrorsTotal.WithLabelValues(kind).Inc()
}

func (c *PrometheusCollector) RoomCreated() {
	c.roomsActive.Inc()
}

func (c *PrometheusCollector) RoomDestroyed() {
	c.roomsActive.Dec()
}

func (c *PrometheusCollector) UserRegistered() {
	c.usersActive.Inc()
}

func (c *PrometheusCollector) UserRemoved() {
	c.usersActive.Dec()
}

func (c *PrometheusCollector) MailboxDepthObserved(depth int) {
	c.mailboxDepth.Observe(float64(depth))
}
