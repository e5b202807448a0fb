// Package feedback captures user corrections against a frozen snapshot of
// the original verdicts and logs misclassifications for audit and future
// retraining input. Feedback is advisory: it never overrides the live
// classification of the message it corrects.
package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/sms-sentinel/internal/models"
	"github.com/xaenox/sms-sentinel/internal/storage"
)

type Recorder struct {
	store  storage.Storage
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(store storage.Storage, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record snapshots the message's current verdicts, stores the correction as
// an immutable FeedbackRecord, and appends exactly one misclassification log
// entry when the correction disagrees with the snapshot on OTP verdict, OTP
// intent, or phishing verdict. The message itself is never mutated.
func (r *Recorder) Record(ctx context.Context, msg *models.Message, correction models.Correction) (*models.FeedbackRecord, error) {
	rec := &models.FeedbackRecord{
		ID:        uuid.New(),
		MessageID: msg.ID,
		Original:  models.SnapshotOf(msg),
		Corrected: correction,
		CreatedAt: r.now(),
	}

	if err := r.store.AppendFeedback(ctx, rec); err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}

	if !disagrees(rec.Original, correction) {
		return rec, nil
	}

	entry := &models.MisclassificationLogEntry{
		ID:                 uuid.New(),
		MessageID:          msg.ID,
		Sender:             msg.Sender,
		Body:               msg.Body,
		PredictedOTP:       rec.Original.OTPVerdict,
		PredictedOTPIntent: rec.Original.OTPIntent,
		PredictedPhishing:  rec.Original.PhishingVerdict,
		CreatedAt:          rec.CreatedAt,
		Note:               correction.Note,
	}

	if err := r.store.AppendMisclassification(ctx, entry); err != nil {
		return nil, fmt.Errorf("append misclassification: %w", err)
	}

	r.logger.Info("misclassification logged",
		zap.Int64("message_id", msg.ID),
		zap.String("predicted_otp", string(entry.PredictedOTP)),
		zap.String("predicted_phishing", string(entry.PredictedPhishing)))

	return rec, nil
}

// ClearMisclassifications bulk-deletes the audit log, typically after an
// export to a retraining batch.
func (r *Recorder) ClearMisclassifications(ctx context.Context) error {
	if err := r.store.ClearMisclassifications(ctx); err != nil {
		return fmt.Errorf("clear misclassifications: %w", err)
	}
	return nil
}

// disagrees reports whether the correction contradicts the snapshot on any
// labeled axis. A correction axis left unknown carries no opinion.
func disagrees(original models.VerdictSnapshot, corrected models.Correction) bool {
	if corrected.OTPVerdict.Known() && corrected.OTPVerdict != original.OTPVerdict {
		return true
	}
	if corrected.OTPIntent != "" && corrected.OTPIntent != original.OTPIntent {
		return true
	}
	if corrected.PhishingVerdict.Known() && corrected.PhishingVerdict != original.PhishingVerdict {
		return true
	}
	return false
}
