package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/Rapor/internal/grading"
)

var (
	ScoresComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rapor_scores_computed_total",
		Help: "Final scores computed successfully.",
	})

	ScoreRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rapor_score_rejections_total",
		Help: "Score inputs rejected by the aggregator, by reason.",
	}, []string{"reason"})

	WeightConfigSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rapor_weight_config_saves_total",
		Help: "Weight configuration save attempts, by result.",
	}, []string{"result"})

	BulkSaveSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rapor_bulk_save_size",
		Help:    "Number of students submitted per bulk grade save.",
		Buckets: []float64{1, 5, 10, 20, 30, 40, 60, 100},
	})
)

// ObserveBatch records the outcome of one batch computation.
func ObserveBatch(res grading.BatchResult) {
	BulkSaveSize.Observe(float64(len(res.Scored) + len(res.Rejected)))
	ScoresComputed.Add(float64(len(res.Scored)))
	for _, r := range res.Rejected {
		ScoreRejections.WithLabelValues(r.Reason).Inc()
	}
}

// ObserveCompute records a single computation.
func ObserveCompute(err error) {
	if err == nil {
		ScoresComputed.Inc()
		return
	}
	ScoreRejections.WithLabelValues(ReasonFor(err)).Inc()
}

// ReasonFor maps an aggregator error to its metric label.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, grading.ErrIncompleteScore):
		return grading.ReasonIncompleteScore
	case errors.Is(err, grading.ErrScoreOutOfRange):
		return grading.ReasonOutOfRange
	case errors.Is(err, grading.ErrInvalidWeightConfig):
		return "invalid_weight_config"
	default:
		return "error"
	}
}
