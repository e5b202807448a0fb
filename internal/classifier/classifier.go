// Package classifier implements the two scoring functions of the pipeline:
// OTP intent detection and phishing risk. Both are pure functions of a
// FeatureSet; they hold only immutable configuration and are safe for
// concurrent use. Verdicts are tri-state: a confidence above the upper
// threshold settles true, below the lower threshold settles false, and the
// band in between yields unknown, which is what routes a message into the
// review queue.
package classifier

import (
	"sort"

	"github.com/xaenox/sms-sentinel/internal/models"
)

// Thresholds delimit the ambiguous band for one decision axis.
type Thresholds struct {
	Upper float64
	Lower float64
}

// Verdict maps a confidence value onto the tri-state verdict.
func (t Thresholds) Verdict(confidence float64) models.Verdict {
	switch {
	case confidence > t.Upper:
		return models.VerdictTrue
	case confidence < t.Lower:
		return models.VerdictFalse
	default:
		return models.VerdictUnknown
	}
}

// signal is one weighted indicator over a FeatureSet. Definition order in a
// signal table is the deterministic tie-break for equal contributions.
type signal struct {
	code   models.ReasonCode
	weight float64
	fired  func(fs *models.FeatureSet) bool
}

// firedSignals returns the subset of signals present in fs, preserving table
// order.
func firedSignals(table []signal, fs *models.FeatureSet) []signal {
	out := make([]signal, 0, len(table))
	for _, s := range table {
		if s.fired(fs) {
			out = append(out, s)
		}
	}
	return out
}

// orderReasons sorts fired signals by descending contribution; the stable
// sort keeps signal-definition order for ties.
func orderReasons(fired []signal) []models.ReasonCode {
	ordered := append([]signal(nil), fired...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].weight > ordered[j].weight
	})
	reasons := make([]models.ReasonCode, len(ordered))
	for i, s := range ordered {
		reasons[i] = s.code
	}
	return reasons
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
