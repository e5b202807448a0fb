package classifier

import "github.com/xaenox/sms-sentinel/internal/models"

var phishingSignals = []signal{
	{models.ReasonSuspiciousLink, 0.45, func(fs *models.FeatureSet) bool { return fs.HasShortenedURL }},
	{models.ReasonRewardBait, 0.35, func(fs *models.FeatureSet) bool { return fs.HasRewardBait }},
	{models.ReasonUrgencyLanguage, 0.30, func(fs *models.FeatureSet) bool { return fs.HasUrgency }},
	{models.ReasonURLPresent, 0.25, func(fs *models.FeatureSet) bool { return fs.HasURL }},
	{models.ReasonSenderSpoofing, 0.25, func(fs *models.FeatureSet) bool {
		return fs.SenderIsRawNumber && (fs.HasPaymentContext || fs.HasActionPrompt)
	}},
	{models.ReasonActionPrompt, 0.20, func(fs *models.FeatureSet) bool { return fs.HasActionPrompt }},
	{models.ReasonExcessivePunctuation, 0.10, func(fs *models.FeatureSet) bool { return fs.ExclamationCount >= 2 }},
}

// PhishingClassifier scores phishing risk over independent signal
// contributions combined with a saturating model, so the score is always in
// [0,1] no matter how many signals fire.
type PhishingClassifier struct {
	thresholds Thresholds
}

func NewPhishingClassifier(t Thresholds) *PhishingClassifier {
	return &PhishingClassifier{thresholds: t}
}

// Classify returns the risk verdict with its score and the contributing
// reasons ordered by descending contribution. The score is always computable;
// only the verdict carries the three-way ambiguity.
func (c *PhishingClassifier) Classify(fs *models.FeatureSet) models.ClassificationVerdict {
	fired := firedSignals(phishingSignals, fs)

	// Saturating combination: 1 - Π(1 - w_i).
	miss := 1.0
	for _, s := range fired {
		miss *= 1 - s.weight
	}
	score := clamp01(1 - miss)

	return models.ClassificationVerdict{
		Verdict: c.thresholds.Verdict(score),
		Score:   models.Float64(score),
		Reasons: orderReasons(fired),
	}
}
