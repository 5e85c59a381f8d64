package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Service level objectives of the analysis pipeline.
const (
	// ScoringSuccessSLO is the minimum share of fetched articles that must
	// score successfully in a cycle.
	ScoringSuccessSLO = 0.95

	// CycleDurationSLO is the target wall time of one analysis cycle in seconds.
	CycleDurationSLO = 300.0

	// FreshnessSLO is the maximum age in seconds of the newest successful
	// cycle before the cache is considered stale (two hourly runs missed).
	FreshnessSLO = 2 * 3600.0
)

// Gauges describing the most recent cycle. They are overwritten at the end
// of every cycle rather than accumulated.
var (
	// SLOScoringSuccess is analyzed / (analyzed + failed) of the last cycle.
	SLOScoringSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_scoring_success_ratio",
			Help: "Share of articles scored in the last cycle (0-1), target: 0.95",
		},
	)

	SLOCycleDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_cycle_duration_seconds",
			Help: "Duration of the last analysis cycle in seconds, target: 300",
		},
	)

	// SLOLastSuccess holds the unix time of the last cycle that met the
	// scoring objective. Alert on time() - slo_last_success_timestamp_seconds.
	SLOLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_last_success_timestamp_seconds",
			Help: "Unix time of the last cycle that met the scoring objective",
		},
	)
)

// ScoringRatio returns analyzed / (analyzed + failed). A cycle with nothing
// to score counts as fully successful.
func ScoringRatio(analyzed, failed int) float64 {
	total := analyzed + failed
	if total == 0 {
		return 1
	}
	return float64(analyzed) / float64(total)
}

// RecordCycle updates every gauge from one finished cycle and reports
// whether the cycle met the scoring objective.
func RecordCycle(analyzed, failed int, d time.Duration, finishedAt time.Time) bool {
	ratio := ScoringRatio(analyzed, failed)
	SLOScoringSuccess.Set(ratio)
	SLOCycleDuration.Set(d.Seconds())

	met := ratio >= ScoringSuccessSLO
	if met {
		SLOLastSuccess.Set(float64(finishedAt.Unix()))
	}
	return met
}

// Stale reports whether the last successful cycle is older than FreshnessSLO.
// A zero lastSuccess means no cycle has succeeded yet.
func Stale(lastSuccess, now time.Time) bool {
	if lastSuccess.IsZero() {
		return true
	}
	return now.Sub(lastSuccess).Seconds() > FreshnessSLO
}
