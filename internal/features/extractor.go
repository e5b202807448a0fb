// Package features turns raw message text and sender metadata into the
// canonical FeatureSet consumed by both classifiers. Extraction is pure and
// deterministic; all patterns are precompiled RE2 expressions, so matching is
// linear in the input length.
package features

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/xaenox/sms-sentinel/internal/models"
)

var (
	ErrEmptyBody   = errors.New("empty message body")
	ErrBodyTooLong = errors.New("message body exceeds maximum length")
)

// ExtractionError wraps a rejection of the raw input. The pipeline treats it
// as a degraded outcome, never a fatal one.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("feature extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var (
	numericCodePattern = regexp.MustCompile(`\b\d{4,8}\b`)
	otpKeywordPattern  = regexp.MustCompile(`(?i)\b(otp|one.?time.?pass(word|code)|verification code|authentication code|security code|login code|access code)\b`)
	codePhrasePattern  = regexp.MustCompile(`(?i)(code is|is your|your code|use code|enter code|use otp|your otp|otp is|verify with)`)
	shareWarnPattern   = regexp.MustCompile(`(?i)(do not share|don'?t share|never share|do not disclose|keep (it )?secret|confidential|never reveal)`)
	validityPattern    = regexp.MustCompile(`(?i)\b(valid for|valid till|expires?( in)?|expiry|minutes?|mins?|seconds?|secs?)\b`)

	urlPattern       = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	shortURLPattern  = regexp.MustCompile(`(?i)\b(bit\.ly|tinyurl|goo\.gl|t\.co|short\.link|cutt\.ly|rb\.gy)\b`)
	urgencyPattern   = regexp.MustCompile(`(?i)\b(urgent(ly)?|immediately|act now|right now|claim now|verify now|hurry|expires soon|limited time|last chance)\b`)
	rewardPattern    = regexp.MustCompile(`(?i)\b(reward|winner|won|win|cashback|lottery|prize|gift|congratulations)\b`)
	actionPattern    = regexp.MustCompile(`(?i)\b(click|tap|call|login|log in|verify|update|confirm|claim|download)\b`)
	currencyPattern  = regexp.MustCompile(`(?i)\b(inr|rs\.?|usd|eur|\$|₹|€)\s*\d[\d,]*(\.\d+)?\b`)
	maskedAccPattern = regexp.MustCompile(`(?i)\b(xx+\d+|x{2,}\d+|card ending|a/c ending|account ending)\b`)

	deliveryPattern     = regexp.MustCompile(`(?i)\b(delivery|deliver|courier|package|parcel|order|shipment|tracking|logistics|agent)\b`)
	paymentPattern      = regexp.MustCompile(`(?i)\b(payment|transaction|transfer|debit|credit|upi|card|bank|purchase|pay)\b`)
	registrationPattern = regexp.MustCompile(`(?i)\b(regist(er|ration)|sign.?up|signup|create.*account|new account|activate.*account|welcome)\b`)
	loginPattern        = regexp.MustCompile(`(?i)\b(login|log.?in|sign.?in|signin|access|authenticate|session)\b`)

	shortCodeSender = regexp.MustCompile(`^\d{3,6}$`)
	alphaIDSender   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{2,10}$`)
	rawNumberSender = regexp.MustCompile(`^\+?\d{10,14}$`)
)

// Extractor derives a FeatureSet from sender and body text. It performs no
// I/O and holds no mutable state, so one instance is safe for concurrent use.
type Extractor struct {
	maxBodyLength int
}

// NewExtractor builds an extractor that rejects bodies longer than
// maxBodyLength bytes. A non-positive value falls back to 4096.
func NewExtractor(maxBodyLength int) *Extractor {
	if maxBodyLength <= 0 {
		maxBodyLength = 4096
	}
	return &Extractor{maxBodyLength: maxBodyLength}
}

// Extract produces the FeatureSet for a message, or an *ExtractionError when
// the body is empty or oversized.
func (e *Extractor) Extract(sender, body, language string) (*models.FeatureSet, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, &ExtractionError{Err: ErrEmptyBody}
	}
	if len(body) > e.maxBodyLength {
		return nil, &ExtractionError{Err: fmt.Errorf("%w: %d > %d", ErrBodyTooLong, len(body), e.maxBodyLength)}
	}

	fs := &models.FeatureSet{
		Length:           len(body),
		WordCount:        len(strings.Fields(body)),
		ExclamationCount: strings.Count(body, "!"),
		UppercaseRatio:   uppercaseRatio(body),
		Language:         language,

		HasNumericCode:    numericCodePattern.MatchString(body),
		HasOTPKeyword:     otpKeywordPattern.MatchString(body),
		HasCodePhrase:     codePhrasePattern.MatchString(body),
		HasShareWarning:   shareWarnPattern.MatchString(body),
		HasValidityWindow: validityPattern.MatchString(body),

		HasURL:          urlPattern.MatchString(body),
		HasShortenedURL: shortURLPattern.MatchString(body),
		HasUrgency:      urgencyPattern.MatchString(body),
		HasRewardBait:   rewardPattern.MatchString(body),
		HasActionPrompt: actionPattern.MatchString(body),

		HasCurrencyAmount: currencyPattern.MatchString(body),
		HasMaskedAccount:  maskedAccPattern.MatchString(body),

		HasDeliveryContext:     deliveryPattern.MatchString(body),
		HasPaymentContext:      paymentPattern.MatchString(body),
		HasRegistrationContext: registrationPattern.MatchString(body),
		HasLoginContext:        loginPattern.MatchString(body),
	}

	s := strings.TrimSpace(sender)
	fs.SenderIsShortCode = shortCodeSender.MatchString(s)
	fs.SenderIsAlphaID = alphaIDSender.MatchString(s)
	fs.SenderIsRawNumber = rawNumberSender.MatchString(s)

	return fs, nil
}

func uppercaseRatio(s string) float64 {
	var letters, upper int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
