package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kitbuilder587/skill-optimizer/internal/domain"
)

const (
	OutcomePass    = "pass"
	OutcomeFail    = "fail"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	ReviewsTotal   *prometheus.CounterVec
	ReviewDuration prometheus.Histogram

	Scores           *prometheus.GaugeVec
	ValidationErrors prometheus.Gauge
	CriterionPassed  *prometheus.GaugeVec

	UnrecognizedScoresTotal *prometheus.CounterVec
	SinkFailuresTotal       *prometheus.CounterVec
}

// New registers everything in a private registry: the CLI pushes it to a
// Pushgateway at exit instead of serving /metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ReviewsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_optimizer_reviews_total",
				Help: "Total number of review runs by outcome",
			},
			[]string{"outcome"},
		),
		ReviewDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "skill_optimizer_review_duration_seconds",
				Help:    "Wall time of the external review command",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60},
			},
		),

		Scores: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "skill_optimizer_score_percent",
				Help: "Scores reported by the last review",
			},
			[]string{"score"},
		),
		ValidationErrors: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "skill_optimizer_validation_errors",
				Help: "Distinct validation errors in the last review",
			},
		),
		CriterionPassed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "skill_optimizer_criterion_passed",
				Help: "1 if the criterion passed in the last review, 0 otherwise",
			},
			[]string{"criterion"},
		),

		UnrecognizedScoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_optimizer_unrecognized_scores_total",
				Help: "Scores missing from the review output and defaulted to 0",
			},
			[]string{"score"},
		),
		SinkFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_optimizer_sink_failures_total",
				Help: "Failures of post-review sinks (history, notifications)",
			},
			[]string{"sink"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordReview(outcome string, duration time.Duration) {
	m.ReviewsTotal.WithLabelValues(outcome).Inc()
	m.ReviewDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordScorecard(sc domain.Scorecard, v domain.Verdict) {
	m.Scores.WithLabelValues("average").Set(float64(sc.AverageScore))
	m.Scores.WithLabelValues("description").Set(float64(sc.DescriptionScore))
	m.Scores.WithLabelValues("content").Set(float64(sc.ContentScore))
	m.ValidationErrors.Set(float64(len(sc.ValidationErrors)))

	m.CriterionPassed.WithLabelValues(domain.CriterionNoErrors).Set(boolToFloat(v.NoErrors))
	m.CriterionPassed.WithLabelValues(domain.CriterionDescription).Set(boolToFloat(v.DescriptionPerfect))
	m.CriterionPassed.WithLabelValues(domain.CriterionContent).Set(boolToFloat(v.ContentAcceptable))
}

func (m *Metrics) RecordUnrecognizedScore(score string) {
	m.UnrecognizedScoresTotal.WithLabelValues(score).Inc()
}

func (m *Metrics) RecordSinkFailure(sink string) {
	m.SinkFailuresTotal.WithLabelValues(sink).Inc()
}

// Push sends the registry to a Pushgateway, grouped by skill name.
func (m *Metrics) Push(ctx context.Context, url, job, skill string) error {
	return push.New(url, job).
		Gatherer(m.registry).
		Grouping("skill", skill).
		PushContext(ctx)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
