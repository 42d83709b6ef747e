package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records activity on the peer sync channel.
type SyncMetrics struct {
	sent       *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	received   *prometheus.CounterVec
	dispatched *prometheus.CounterVec
	ignored    prometheus.Counter
	parseFails prometheus.Counter
}

// NewSyncMetrics registers the peer sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peersync_messages_sent",
		Help: "Messages published to the peer channel.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peersync_messages_dropped",
		Help: "Messages dropped because the channel was not open.",
	}, []string{"kind"})
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peersync_messages_received",
		Help: "Frames received from the peer channel.",
	}, []string{"kind"})
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "peersync_messages_dispatched",
		Help: "Received messages routed to a registered handler.",
	}, []string{"kind"})
	ignored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "peersync_messages_ignored",
		Help: "Received messages with no registered handler.",
	})
	parseFails := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "peersync_parse_failures",
		Help: "Inbound frames that failed to decode.",
	})
	reg.MustRegister(sent, dropped, received, dispatched, ignored, parseFails)
	return &SyncMetrics{
		sent:       sent,
		dropped:    dropped,
		received:   received,
		dispatched: dispatched,
		ignored:    ignored,
		parseFails: parseFails,
	}
}

// IncSent increments the sent counter for the message kind.
func (s *SyncMetrics) IncSent(kind string) {
	if s == nil || s.sent == nil {
		return
	}
	s.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDropped increments the dropped counter for the message kind.
func (s *SyncMetrics) IncDropped(kind string) {
	if s == nil || s.dropped == nil {
		return
	}
	s.dropped.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncReceived increments the received counter for the message kind.
func (s *SyncMetrics) IncReceived(kind string) {
	if s == nil || s.received == nil {
		return
	}
	s.received.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDispatched increments the dispatched counter for the message kind.
func (s *SyncMetrics) IncDispatched(kind string) {
	if s == nil || s.dispatched == nil {
		return
	}
	s.dispatched.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncIgnored increments the counter for messages with no handler.
func (s *SyncMetrics) IncIgnored() {
	if s == nil || s.ignored == nil {
		return
	}
	s.ignored.Inc()
}

// IncParseFailure increments the counter for undecodable frames.
func (s *SyncMetrics) IncParseFailure() {
	if s == nil || s.parseFails == nil {
		return
	}
	s.parseFails.Inc()
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
