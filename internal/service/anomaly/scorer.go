package anomaly

import (
	"math"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/anomaly"
)

// Penalty weights per severity, applied to the share of the population affected.
const (
	weightCritical = 60.0
	weightModerate = 30.0
	weightMinor    = 10.0
)

type scorerImpl struct{}

func NewScorer() anomaly.Scorer {
	return scorerImpl{}
}

// Score implements anomaly.Scorer: 100 minus the severity-weighted share of
// the population each record affects, floored and clamped at zero. Any record
// with a positive population pulls the score below 100.
func (scorerImpl) Score(records []anomaly.Record) int {
	penalty := 0.0
	for _, r := range records {
		if r.Population <= 0 || r.TotalPopulation <= 0 {
			continue
		}
		share := float64(r.Population) / float64(r.TotalPopulation)
		penalty += weight(r.Severity) * share
	}

	score := int(math.Floor(100 - penalty))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func weight(s anomaly.Severity) float64 {
	switch s {
	case anomaly.SeverityCritical:
		return weightCritical
	case anomaly.SeverityModerate:
		return weightModerate
	default:
		return weightMinor
	}
}
