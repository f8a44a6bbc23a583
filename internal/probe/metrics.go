package probe

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	clarinet "github.com/nlebedenco/clarinet-go"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "clarinet"
	subsystem = "probe"
)

// Label names for probe metrics.
const (
	labelProtocol = "protocol"
	labelError    = "error"
)

// -------------------------------------------------------------------------
// Collector — Prometheus Probe Metrics
// -------------------------------------------------------------------------

// Collector holds all clarinet-probe Prometheus metrics.
type Collector struct {
	// PacketsEchoed counts datagrams or stream reads echoed back, per
	// protocol.
	PacketsEchoed *prometheus.CounterVec

	// BytesEchoed counts payload bytes echoed back, per protocol.
	BytesEchoed *prometheus.CounterVec

	// Connections tracks currently open TCP echo connections.
	Connections prometheus.Gauge

	// SocketErrors counts socket operations that failed, labeled with the
	// stable taxonomy error name.
	SocketErrors *prometheus.CounterVec
}

// NewCollector creates a Collector registered against reg. If reg is nil,
// prometheus.DefaultRegisterer is used.
//
// All metrics carry the "clarinet_probe_" prefix to avoid collisions with
// other exporters.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		PacketsEchoed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_echoed_total",
			Help:      "Total packets echoed back to peers.",
		}, []string{labelProtocol}),
		BytesEchoed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_echoed_total",
			Help:      "Total payload bytes echoed back to peers.",
		}, []string{labelProtocol}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "connections",
			Help:      "Currently open TCP echo connections.",
		}),
		SocketErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "socket_errors_total",
			Help:      "Socket operations that failed, by taxonomy error name.",
		}, []string{labelError}),
	}

	reg.MustRegister(
		c.PacketsEchoed,
		c.BytesEchoed,
		c.Connections,
		c.SocketErrors,
	)

	return c
}

// RecordEcho accounts one echoed payload.
func (c *Collector) RecordEcho(proto clarinet.Protocol, bytes int) {
	label := "udp"
	if proto == clarinet.ProtoTCP {
		label = "tcp"
	}
	c.PacketsEchoed.WithLabelValues(label).Inc()
	c.BytesEchoed.WithLabelValues(label).Add(float64(bytes))
}

// RecordError accounts one failed socket operation under its stable
// taxonomy name. Non-taxonomy errors count as DEFAULT.
func (c *Collector) RecordError(err error) {
	var ce clarinet.Error
	if !errors.As(err, &ce) {
		ce = clarinet.ErrDefault
	}
	c.SocketErrors.WithLabelValues(ce.Name()).Inc()
}
