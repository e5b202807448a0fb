package models

import "time"

// Message transport types, mirroring the SMS provider column.
const (
	MessageTypeReceived = 1
	MessageTypeSent     = 2
	MessageTypeDraft    = 3
	MessageTypeOutbox   = 4
	MessageTypeFailed   = 5
)

// Message is the unit of classification. Transport metadata (Type, Read,
// Seen, Status, ServiceCenter) is owned by the messaging transport and is
// inert to the classification core; it is carried so Save can upsert the
// full row.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	ThreadID  int64     `json:"thread_id"`

	Type          int    `json:"type"`
	Read          bool   `json:"read"`
	Seen          bool   `json:"seen"`
	Status        *int   `json:"status,omitempty"`
	ServiceCenter string `json:"service_center,omitempty"`

	Language string      `json:"language,omitempty"`
	Features *FeatureSet `json:"features,omitempty"`

	OTPVerdict Verdict   `json:"otp_verdict"`
	OTPIntent  OTPIntent `json:"otp_intent,omitempty"`

	PhishingVerdict Verdict      `json:"phishing_verdict"`
	PhishingScore   *float64     `json:"phishing_score,omitempty"`
	PhishingReasons []ReasonCode `json:"phishing_reasons,omitempty"`

	Reviewed bool `json:"reviewed"`
	Version  int  `json:"version"`
}

// Classified reports whether both verdict axes are settled.
func (m *Message) Classified() bool {
	return m.OTPVerdict.Known() && m.PhishingVerdict.Known()
}

// Clone returns a deep copy so callers can snapshot or merge without tearing
// the original.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	c.Features = m.Features.Clone()
	if m.Status != nil {
		s := *m.Status
		c.Status = &s
	}
	if m.PhishingScore != nil {
		f := *m.PhishingScore
		c.PhishingScore = &f
	}
	if m.PhishingReasons != nil {
		c.PhishingReasons = make([]ReasonCode, len(m.PhishingReasons))
		copy(c.PhishingReasons, m.PhishingReasons)
	}
	return &c
}
