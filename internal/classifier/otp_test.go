package classifier

import (
	"reflect"
	"testing"

	"github.com/xaenox/sms-sentinel/internal/models"
)

func defaultOTPThresholds() Thresholds {
	return Thresholds{Upper: 0.7, Lower: 0.4}
}

func otpFeatureSet() *models.FeatureSet {
	return &models.FeatureSet{
		HasNumericCode:    true,
		HasOTPKeyword:     true,
		HasCodePhrase:     true,
		HasValidityWindow: true,
		SenderIsAlphaID:   true,
	}
}

func TestOTPClassifierPositive(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	res := c.Classify(otpFeatureSet())
	if res.Verdict.Verdict != models.VerdictTrue {
		t.Fatalf("expected true verdict, got %s", res.Verdict.Verdict)
	}
	if res.Verdict.Score == nil || *res.Verdict.Score <= 0.7 {
		t.Fatalf("expected confidence above upper threshold, got %v", res.Verdict.Score)
	}
	if res.Intent != models.IntentLogin {
		t.Fatalf("expected default login intent, got %s", res.Intent)
	}
	if len(res.Verdict.Reasons) == 0 || res.Verdict.Reasons[0] != models.ReasonOTPKeyword {
		t.Fatalf("expected otp-keyword as strongest reason, got %v", res.Verdict.Reasons)
	}
}

func TestOTPClassifierNoSignals(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	res := c.Classify(&models.FeatureSet{})
	if res.Verdict.Verdict != models.VerdictFalse {
		t.Fatalf("absence of OTP signals must yield false, got %s", res.Verdict.Verdict)
	}
	if res.Verdict.ScoreValue() != 0 {
		t.Fatalf("expected zero confidence, got %v", res.Verdict.ScoreValue())
	}
	if res.Intent != "" {
		t.Fatalf("intent must be empty when verdict is not true, got %s", res.Intent)
	}
}

func TestOTPClassifierAmbiguousBand(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	// Code plus a validity window sums to exactly the lower threshold.
	res := c.Classify(&models.FeatureSet{HasNumericCode: true, HasValidityWindow: true})
	if res.Verdict.Verdict != models.VerdictUnknown {
		t.Fatalf("expected unknown in the ambiguous band, got %s (score %v)", res.Verdict.Verdict, res.Verdict.ScoreValue())
	}
	if res.Intent != "" {
		t.Fatalf("intent must be empty for unknown verdict, got %s", res.Intent)
	}
}

func TestOTPClassifierNoCodeCap(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	// Keyword without any numeric code caps below the lower threshold.
	res := c.Classify(&models.FeatureSet{HasOTPKeyword: true})
	if res.Verdict.Verdict != models.VerdictFalse {
		t.Fatalf("keyword without code must settle false, got %s (score %v)", res.Verdict.Verdict, res.Verdict.ScoreValue())
	}
	if res.Verdict.ScoreValue() > noCodeConfidenceCap {
		t.Fatalf("confidence %v exceeds no-code cap %v", res.Verdict.ScoreValue(), noCodeConfidenceCap)
	}
}

func TestOTPClassifierPhishingDampening(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	fs := otpFeatureSet()
	fs.HasURL = true

	res := c.Classify(fs)
	if res.Verdict.Verdict != models.VerdictUnknown {
		t.Fatalf("expected dampened verdict to fall into ambiguous band, got %s (score %v)",
			res.Verdict.Verdict, res.Verdict.ScoreValue())
	}

	found := false
	for _, r := range res.Verdict.Reasons {
		if r == models.ReasonPhishingSignalsNearby {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected phishing-signals-nearby reason, got %v", res.Verdict.Reasons)
	}
}

func TestOTPClassifierIntentSubtypes(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())

	tests := []struct {
		name string
		mod  func(fs *models.FeatureSet)
		want models.OTPIntent
	}{
		{"delivery context", func(fs *models.FeatureSet) { fs.HasDeliveryContext = true }, models.IntentDelivery},
		{"payment context", func(fs *models.FeatureSet) { fs.HasPaymentContext = true }, models.IntentPayment},
		{"registration context", func(fs *models.FeatureSet) { fs.HasRegistrationContext = true }, models.IntentRegistration},
		{"login context", func(fs *models.FeatureSet) { fs.HasLoginContext = true }, models.IntentLogin},
		{"no context defaults to login", func(fs *models.FeatureSet) {}, models.IntentLogin},
		{"delivery beats payment", func(fs *models.FeatureSet) {
			fs.HasDeliveryContext = true
			fs.HasPaymentContext = true
		}, models.IntentDelivery},
		{"payment with amount beats delivery", func(fs *models.FeatureSet) {
			fs.HasDeliveryContext = true
			fs.HasPaymentContext = true
			fs.HasCurrencyAmount = true
		}, models.IntentPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := otpFeatureSet()
			tt.mod(fs)
			res := c.Classify(fs)
			if res.Verdict.Verdict != models.VerdictTrue {
				t.Fatalf("expected true verdict, got %s", res.Verdict.Verdict)
			}
			if res.Intent != tt.want {
				t.Fatalf("expected intent %s, got %s", tt.want, res.Intent)
			}
		})
	}
}

func TestOTPClassifierDeterministic(t *testing.T) {
	c := NewOTPClassifier(defaultOTPThresholds())
	fs := otpFeatureSet()
	fs.HasDeliveryContext = true

	first := c.Classify(fs)
	for i := 0; i < 20; i++ {
		again := c.Classify(fs)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("classification not deterministic on run %d: %+v vs %+v", i, first, again)
		}
	}
}
