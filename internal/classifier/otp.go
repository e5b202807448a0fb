package classifier

import (
	"sort"

	"github.com/xaenox/sms-sentinel/internal/models"
)

// A numeric code is the load-bearing OTP signal: without one, confidence is
// capped below the ambiguity band so keyword-only marketing text settles
// false instead of lingering in review.
const noCodeConfidenceCap = 0.35

// Phishing-shaped messages that quote a code are still suspect; OTP
// confidence is dampened by this factor when risk indicators are present
// alongside.
const phishingDampening = 0.7

var otpSignals = []signal{
	{models.ReasonOTPKeyword, 0.40, func(fs *models.FeatureSet) bool { return fs.HasOTPKeyword }},
	{models.ReasonNumericCode, 0.30, func(fs *models.FeatureSet) bool { return fs.HasNumericCode }},
	{models.ReasonCodePhrase, 0.20, func(fs *models.FeatureSet) bool { return fs.HasCodePhrase }},
	{models.ReasonShareWarning, 0.15, func(fs *models.FeatureSet) bool { return fs.HasShareWarning }},
	{models.ReasonValidityWindow, 0.10, func(fs *models.FeatureSet) bool { return fs.HasValidityWindow }},
	{models.ReasonTrustedSenderShape, 0.10, func(fs *models.FeatureSet) bool {
		return fs.SenderIsShortCode || fs.SenderIsAlphaID
	}},
}

// intentSignal scores one intent subtype. Base applies unconditionally;
// login carries a small base weight so a bare "your OTP is …" message
// defaults to login rather than unspecified.
type intentSignal struct {
	weight float64
	fired  func(fs *models.FeatureSet) bool
}

var intentTable = map[models.OTPIntent][]intentSignal{
	models.IntentDelivery: {
		{0.90, func(fs *models.FeatureSet) bool { return fs.HasDeliveryContext }},
	},
	models.IntentPayment: {
		{0.85, func(fs *models.FeatureSet) bool { return fs.HasPaymentContext }},
		{0.30, func(fs *models.FeatureSet) bool { return fs.HasCurrencyAmount }},
		{0.20, func(fs *models.FeatureSet) bool { return fs.HasMaskedAccount }},
	},
	models.IntentLogin: {
		{0.80, func(fs *models.FeatureSet) bool { return fs.HasLoginContext }},
		{0.10, func(fs *models.FeatureSet) bool { return true }},
	},
	models.IntentRegistration: {
		{0.75, func(fs *models.FeatureSet) bool { return fs.HasRegistrationContext }},
	},
	models.IntentUnspecified: {
		{0.05, func(fs *models.FeatureSet) bool { return true }},
	},
}

// OTPResult pairs the tri-state verdict with the intent subtype. Intent is
// set only when the verdict is true.
type OTPResult struct {
	Verdict models.ClassificationVerdict
	Intent  models.OTPIntent
}

// OTPClassifier decides whether a message carries a one-time passcode and,
// if so, which intent subtype it serves.
type OTPClassifier struct {
	thresholds Thresholds
}

func NewOTPClassifier(t Thresholds) *OTPClassifier {
	return &OTPClassifier{thresholds: t}
}

// Classify never fails on a well-formed FeatureSet; absence of any OTP
// signal yields a false verdict, not an error.
func (c *OTPClassifier) Classify(fs *models.FeatureSet) OTPResult {
	fired := firedSignals(otpSignals, fs)

	confidence := 0.0
	for _, s := range fired {
		confidence += s.weight
	}
	confidence = clamp01(confidence)

	if !fs.HasNumericCode && confidence > noCodeConfidenceCap {
		confidence = noCodeConfidenceCap
	}

	reasons := orderReasons(fired)
	if fs.HasURL || fs.HasUrgency || fs.HasRewardBait {
		confidence *= phishingDampening
		reasons = append(reasons, models.ReasonPhishingSignalsNearby)
	}

	verdict := c.thresholds.Verdict(confidence)

	result := OTPResult{
		Verdict: models.ClassificationVerdict{
			Verdict: verdict,
			Score:   models.Float64(confidence),
			Reasons: reasons,
		},
	}
	if verdict == models.VerdictTrue {
		result.Intent = detectIntent(fs)
	}
	return result
}

// detectIntent picks the subtype with the highest summed signal weight.
// Ties break toward the subtype with the highest individual signal weight,
// then lexicographic order on the tag, for full determinism.
func detectIntent(fs *models.FeatureSet) models.OTPIntent {
	type candidate struct {
		intent    models.OTPIntent
		total     float64
		maxSignal float64
	}

	candidates := make([]candidate, 0, len(intentTable))
	for intent, signals := range intentTable {
		var total, maxSignal float64
		for _, s := range signals {
			if s.fired(fs) {
				total += s.weight
				if s.weight > maxSignal {
					maxSignal = s.weight
				}
			}
		}
		candidates = append(candidates, candidate{intent, total, maxSignal})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.total != b.total {
			return a.total > b.total
		}
		if a.maxSignal != b.maxSignal {
			return a.maxSignal > b.maxSignal
		}
		return a.intent < b.intent
	})

	return candidates[0].intent
}
