package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the extraction and rendering counters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Extractions counts extracted messages by winning strategy
	Extractions *prometheus.CounterVec
	// Obligations counts resolved obligations by kind
	Obligations *prometheus.CounterVec
	// RenderFailures counts region render failures by kind
	RenderFailures *prometheus.CounterVec
}

// New registers the counters on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Extractions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatcomponents_extractions_total",
				Help: "Messages processed by the extractor, by winning strategy",
			},
			[]string{"strategy"},
		),
		Obligations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatcomponents_obligations_total",
				Help: "Render obligations resolved from descriptors, by kind",
			},
			[]string{"kind"},
		),
		RenderFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatcomponents_render_failures_total",
				Help: "Component regions that failed to render, by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) Extraction(strategy string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(strategy).Inc()
}

func (m *Metrics) Obligation(kind string) {
	if m == nil {
		return
	}
	m.Obligations.WithLabelValues(kind).Inc()
}

func (m *Metrics) RenderFailure(kind string) {
	if m == nil {
		return
	}
	m.RenderFailures.WithLabelValues(kind).Inc()
}
