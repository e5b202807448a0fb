package models

// Verdict is the tri-state output of a classifier on one decision axis.
// The zero value is not Known, so an unclassified message reads as unknown
// without special-casing.
type Verdict string

const (
	VerdictUnknown Verdict = "unknown"
	VerdictTrue    Verdict = "true"
	VerdictFalse   Verdict = "false"
)

// Known reports whether the verdict is settled on either side.
func (v Verdict) Known() bool {
	return v == VerdictTrue || v == VerdictFalse
}

// Bool collapses the verdict for callers that only care about the positive
// case. Unknown counts as false.
func (v Verdict) Bool() bool {
	return v == VerdictTrue
}

// VerdictOf maps a boolean decision to a Verdict.
func VerdictOf(b bool) Verdict {
	if b {
		return VerdictTrue
	}
	return VerdictFalse
}

// ParseVerdict normalizes a stored verdict string. Anything unrecognized
// (including the empty string from legacy rows) reads as unknown.
func ParseVerdict(s string) Verdict {
	switch Verdict(s) {
	case VerdictTrue, VerdictFalse:
		return Verdict(s)
	default:
		return VerdictUnknown
	}
}

// OTPIntent is the closed set of OTP intent subtypes.
type OTPIntent string

const (
	IntentLogin        OTPIntent = "login"
	IntentPayment      OTPIntent = "payment-confirmation"
	IntentRegistration OTPIntent = "registration"
	IntentDelivery     OTPIntent = "delivery-code"
	IntentUnspecified  OTPIntent = "unspecified"
)

// ReasonCode is a short stable tag identifying a signal that contributed to
// a verdict or score, used for user-facing explanation.
type ReasonCode string

const (
	ReasonNumericCode        ReasonCode = "numeric-code"
	ReasonOTPKeyword         ReasonCode = "otp-keyword"
	ReasonCodePhrase         ReasonCode = "code-phrase"
	ReasonShareWarning       ReasonCode = "share-warning"
	ReasonValidityWindow     ReasonCode = "validity-window"
	ReasonTrustedSenderShape ReasonCode = "trusted-sender-shape"

	ReasonSuspiciousLink        ReasonCode = "suspicious-link"
	ReasonURLPresent            ReasonCode = "url-present"
	ReasonUrgencyLanguage       ReasonCode = "urgency-language"
	ReasonRewardBait            ReasonCode = "reward-bait"
	ReasonActionPrompt          ReasonCode = "action-prompt"
	ReasonSenderSpoofing        ReasonCode = "sender-spoofing"
	ReasonExcessivePunctuation  ReasonCode = "excessive-punctuation"
	ReasonPhishingSignalsNearby ReasonCode = "phishing-signals-nearby"
)

// ClassificationVerdict is the paired output of one classifier: a tri-state
// verdict, an optional continuous score and an ordered list of reason codes.
// It is immutable once produced; re-classification replaces it wholesale.
type ClassificationVerdict struct {
	Verdict Verdict      `json:"verdict"`
	Score   *float64     `json:"score,omitempty"`
	Reasons []ReasonCode `json:"reasons,omitempty"`
}

// ScoreValue returns the score or 0 when absent.
func (cv ClassificationVerdict) ScoreValue() float64 {
	if cv.Score == nil {
		return 0
	}
	return *cv.Score
}

// Float64 is a convenience for building optional scores.
func Float64(f float64) *float64 { return &f }
