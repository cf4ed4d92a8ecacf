package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "heatmap"

// MetricsObserver records analysis events as Prometheus metrics
type MetricsObserver struct {
	analyses  *prometheus.CounterVec
	fetches   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	sentiment prometheus.Histogram
	inflight  prometheus.Gauge
}

// NewMetricsObserver creates the collectors and registers them on reg
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "analyses_total",
			Help:      "Heatmap analyses by outcome and error kind.",
		}, []string{"outcome", "kind"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "image_fetches_total",
			Help:      "Image source resolutions by source and outcome.",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end request duration.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		sentiment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sentiment_score",
			Help:      "Distribution of produced sentiment scores.",
			Buckets:   prometheus.LinearBuckets(-100, 25, 9),
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "analyses_in_flight",
			Help:      "Requests started but not yet finished.",
		}),
	}

	for _, c := range []prometheus.Collector{o.analyses, o.fetches, o.duration, o.sentiment, o.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	switch event.EventType {
	case AnalysisStarted:
		o.inflight.Inc()
	case AnalysisCompleted:
		o.inflight.Dec()
		o.analyses.WithLabelValues("success", "none").Inc()
		o.duration.WithLabelValues("success").Observe(event.ProcessingTime.Seconds())
		o.sentiment.Observe(float64(event.SentimentScore))
	case AnalysisFailed:
		o.inflight.Dec()
		o.analyses.WithLabelValues("failure", event.ErrorKind).Inc()
		o.duration.WithLabelValues("failure").Observe(event.ProcessingTime.Seconds())
	case ImageFetched:
		o.fetches.WithLabelValues(event.Source, "success").Inc()
	case ImageFetchFailed:
		o.fetches.WithLabelValues(event.Source, "failure").Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}
