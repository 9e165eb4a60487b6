package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Frame outcomes
const (
	FrameAccepted = "accepted"
	FrameRejected = "rejected"
	FrameTooLarge = "too_large"
	FrameTimeout  = "timeout"
)

// Ingestion stages
const (
	StageParse   = "parse"
	StageExtract = "extract"
	StagePersist = "persist"
	StageTotal   = "total"
)

// IngestMetrics holds the Prometheus collectors for the MLLP listener and
// the ingestion pipeline. A nil *IngestMetrics records nothing.
type IngestMetrics struct {
	connections prometheus.Counter
	frames      *prometheus.CounterVec
	acks        *prometheus.CounterVec
	results     prometheus.Counter
	duration    *prometheus.HistogramVec
}

func NewIngestMetrics(registerer prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limslite",
			Subsystem: "mllp",
			Name:      "connections_total",
			Help:      "Accepted MLLP connections",
		}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limslite",
			Subsystem: "mllp",
			Name:      "frames_total",
			Help:      "Frames read by outcome",
		}, []string{"outcome"}),
		acks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limslite",
			Subsystem: "mllp",
			Name:      "acks_total",
			Help:      "Acknowledgments sent by code",
		}, []string{"code"}),
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "limslite",
			Subsystem: "ingest",
			Name:      "results_total",
			Help:      "Result rows committed",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "limslite",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time spent per ingestion stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	collectors := []prometheus.Collector{m.connections, m.frames, m.acks, m.results, m.duration}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *IngestMetrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *IngestMetrics) FrameRead(outcome string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(outcome).Inc()
}

func (m *IngestMetrics) AckSent(code string) {
	if m == nil {
		return
	}
	m.acks.WithLabelValues(code).Inc()
}

func (m *IngestMetrics) ResultsCommitted(count int) {
	if m == nil {
		return
	}
	m.results.Add(float64(count))
}

func (m *IngestMetrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
