// Package review derives review-queue membership from classification
// completeness and tracks the explicit human sign-off transition.
package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/sms-sentinel/internal/models"
	"github.com/xaenox/sms-sentinel/internal/storage"
)

// State is the per-message review state, derived from the stored row.
type State string

const (
	// StateUnclassified: version stamp absent or stale.
	StateUnclassified State = "unclassified"
	// StatePendingReview: current version, but a verdict is unknown or the
	// phishing score is absent.
	StatePendingReview State = "pending-review"
	// StateSettled: current version, both verdicts known, no sign-off yet.
	StateSettled State = "settled"
	// StateReviewed: explicit human confirmation.
	StateReviewed State = "reviewed"
)

// StateOf derives the review state of a message against the current
// classifier version. A stale version wins over everything else, including a
// previous sign-off: the message must re-enter the pipeline before its state
// means anything again.
func StateOf(msg *models.Message, currentVersion int) State {
	if msg.Version < currentVersion {
		return StateUnclassified
	}
	if !msg.OTPVerdict.Known() || !msg.PhishingVerdict.Known() || msg.PhishingScore == nil {
		return StatePendingReview
	}
	if msg.Reviewed {
		return StateReviewed
	}
	return StateSettled
}

// Manager exposes queue listing and the settled → reviewed transition over
// the storage collaborator.
type Manager struct {
	store   storage.Storage
	version int
	logger  *zap.Logger
}

func NewManager(store storage.Storage, version int, logger *zap.Logger) *Manager {
	return &Manager{store: store, version: version, logger: logger}
}

// PendingReview returns the messages currently awaiting human review.
func (m *Manager) PendingReview(ctx context.Context) ([]*models.Message, error) {
	pending, err := m.store.LoadPending(ctx, m.version)
	if err != nil {
		return nil, fmt.Errorf("load pending: %w", err)
	}

	var queue []*models.Message
	for _, msg := range pending {
		if StateOf(msg, m.version) == StatePendingReview {
			queue = append(queue, msg)
		}
	}
	return queue, nil
}

// MarkReviewed records a human confirmation. Only a settled message can be
// signed off; anything else is either not yet worth confirming or already
// confirmed.
func (m *Manager) MarkReviewed(ctx context.Context, id int64) error {
	msg, err := m.store.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("load message %d: %w", id, err)
	}

	state := StateOf(msg, m.version)
	if state != StateSettled {
		return fmt.Errorf("message %d is %s, not settled", id, state)
	}

	if err := m.store.MarkReviewed(ctx, id); err != nil {
		return fmt.Errorf("mark reviewed %d: %w", id, err)
	}

	m.logger.Info("message reviewed", zap.Int64("message_id", id))
	return nil
}
