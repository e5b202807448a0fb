package models

// FeatureSet is the canonical derived representation of a message's text and
// metadata consumed by both classifiers. It is owned by the message it was
// derived from and recomputed wholesale whenever extraction runs; nothing
// mutates a FeatureSet in place. Serialized as JSON for storage.
type FeatureSet struct {
	// Text shape
	Length           int     `json:"length"`
	WordCount        int     `json:"word_count"`
	ExclamationCount int     `json:"exclamation_count"`
	UppercaseRatio   float64 `json:"uppercase_ratio"`
	Language         string  `json:"language,omitempty"`

	// OTP indicators
	HasNumericCode    bool `json:"has_numeric_code"`
	HasOTPKeyword     bool `json:"has_otp_keyword"`
	HasCodePhrase     bool `json:"has_code_phrase"`
	HasShareWarning   bool `json:"has_share_warning"`
	HasValidityWindow bool `json:"has_validity_window"`

	// Risk indicators
	HasURL          bool `json:"has_url"`
	HasShortenedURL bool `json:"has_shortened_url"`
	HasUrgency      bool `json:"has_urgency"`
	HasRewardBait   bool `json:"has_reward_bait"`
	HasActionPrompt bool `json:"has_action_prompt"`

	// Transaction markers
	HasCurrencyAmount bool `json:"has_currency_amount"`
	HasMaskedAccount  bool `json:"has_masked_account"`

	// Intent context
	HasDeliveryContext     bool `json:"has_delivery_context"`
	HasPaymentContext      bool `json:"has_payment_context"`
	HasRegistrationContext bool `json:"has_registration_context"`
	HasLoginContext        bool `json:"has_login_context"`

	// Sender shape
	SenderIsShortCode bool `json:"sender_is_short_code"`
	SenderIsAlphaID   bool `json:"sender_is_alpha_id"`
	SenderIsRawNumber bool `json:"sender_is_raw_number"`
}

// Clone returns an independent copy.
func (f *FeatureSet) Clone() *FeatureSet {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
