package models

import (
	"time"

	"github.com/google/uuid"
)

// VerdictSnapshot freezes a message's classification at feedback time. The
// snapshot belongs to the feedback record, never to the live message.
type VerdictSnapshot struct {
	OTPVerdict      Verdict   `json:"otp_verdict"`
	OTPIntent       OTPIntent `json:"otp_intent,omitempty"`
	PhishingVerdict Verdict   `json:"phishing_verdict"`
	PhishingScore   *float64  `json:"phishing_score,omitempty"`
}

// SnapshotOf captures the current verdicts of a message by value.
func SnapshotOf(m *Message) VerdictSnapshot {
	s := VerdictSnapshot{
		OTPVerdict:      m.OTPVerdict,
		OTPIntent:       m.OTPIntent,
		PhishingVerdict: m.PhishingVerdict,
	}
	if m.PhishingScore != nil {
		f := *m.PhishingScore
		s.PhishingScore = &f
	}
	return s
}

// Correction is what the user says the labels should have been. Verdict
// fields left unknown mean "no opinion on this axis". Label carries the
// free-form correction text shown in the UI.
type Correction struct {
	OTPVerdict      Verdict   `json:"otp_verdict,omitempty"`
	OTPIntent       OTPIntent `json:"otp_intent,omitempty"`
	PhishingVerdict Verdict   `json:"phishing_verdict,omitempty"`
	Label           string    `json:"label,omitempty"`
	Note            string    `json:"note,omitempty"`
}

// FeedbackRecord is an immutable human correction paired with the frozen
// snapshot it corrects. It never updates the referenced message.
type FeedbackRecord struct {
	ID        uuid.UUID       `json:"id"`
	MessageID int64           `json:"message_id"`
	Original  VerdictSnapshot `json:"original"`
	Corrected Correction      `json:"corrected"`
	CreatedAt time.Time       `json:"created_at"`
}

// MisclassificationLogEntry is an append-only audit record written whenever a
// correction disagrees with the frozen snapshot. Deletable only via the bulk
// clear operation.
type MisclassificationLogEntry struct {
	ID                 uuid.UUID `json:"id"`
	MessageID          int64     `json:"message_id"`
	Sender             string    `json:"sender"`
	Body               string    `json:"body"`
	PredictedOTP       Verdict   `json:"predicted_otp"`
	PredictedOTPIntent OTPIntent `json:"predicted_otp_intent,omitempty"`
	PredictedPhishing  Verdict   `json:"predicted_phishing"`
	CreatedAt          time.Time `json:"created_at"`
	Note               string    `json:"note,omitempty"`
}
