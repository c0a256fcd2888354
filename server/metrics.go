package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	connectionsGauge       prometheus.Gauge
	messagesReceivedCount  *prometheus.CounterVec
	actionsRejectedCounter prometheus.Counter
	resyncsSentCounter     prometheus.Counter
	roundsStartedCounter   prometheus.Counter
	roundsFinishedCounter  prometheus.Counter
	connectionsRejected    prometheus.Counter
}

func (m *metrics) Connected() {
	m.connectionsGauge.Inc()
}

func (m *metrics) Disconnected() {
	m.connectionsGauge.Dec()
}

func (m *metrics) MessageReceived(kind string) {
	m.messagesReceivedCount.WithLabelValues(kind).Inc()
}

func (m *metrics) ActionRejected() {
	m.actionsRejectedCounter.Inc()
}

func (m *metrics) ResyncSent() {
	m.resyncsSentCounter.Inc()
}

func (m *metrics) RoundStarted() {
	m.roundsStartedCounter.Inc()
}

func (m *metrics) RoundFinished() {
	m.roundsFinishedCounter.Inc()
}

func (m *metrics) ConnectionRejected() {
	m.connectionsRejected.Inc()
}

var Metrics = &metrics{
	connectionsGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "card31_connections",
		Help: "Number of open player connections",
	}),
	messagesReceivedCount: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "card31_messages_received_total",
		Help: "Total number of messages received from players",
	}, []string{"kind"}),
	actionsRejectedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "card31_actions_rejected_total",
		Help: "Total number of illegal actions rejected",
	}),
	resyncsSentCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "card31_resyncs_sent_total",
		Help: "Total number of SyncGame messages sent",
	}),
	roundsStartedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "card31_rounds_started_total",
		Help: "Total number of rounds dealt",
	}),
	roundsFinishedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "card31_rounds_finished_total",
		Help: "Total number of rounds finished",
	}),
	connectionsRejected: promauto.NewCounter(prometheus.CounterOpts{
		Name: "card31_connections_rejected_total",
		Help: "Total number of connections refused because the table was full or the name taken",
	}),
}
