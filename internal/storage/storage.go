// Package storage provides the persistence collaborator of the
// classification core: an atomic full-row upsert per message plus append-only
// feedback and misclassification tables. The core treats serialized feature
// sets and reason lists as an encoding detail of this package.
package storage

import (
	"context"
	"errors"

	"github.com/xaenox/sms-sentinel/internal/models"
)

var ErrNotFound = errors.New("not found")

type Storage interface {
	// CreateMessage inserts a new message row and fills in its ID.
	CreateMessage(ctx context.Context, msg *models.Message) error

	// GetMessage loads one message or ErrNotFound.
	GetMessage(ctx context.Context, id int64) (*models.Message, error)

	// LoadPending returns messages whose stored version is older than
	// version, or whose verdicts are still unknown, or whose phishing score
	// is absent.
	LoadPending(ctx context.Context, version int) ([]*models.Message, error)

	// Save upserts one message's full row, verdict fields and version stamp
	// included, atomically.
	Save(ctx context.Context, msg *models.Message) error

	// MarkReviewed sets the reviewed flag on one message.
	MarkReviewed(ctx context.Context, id int64) error

	AppendFeedback(ctx context.Context, rec *models.FeedbackRecord) error
	AppendMisclassification(ctx context.Context, entry *models.MisclassificationLogEntry) error
	ListMisclassifications(ctx context.Context) ([]*models.MisclassificationLogEntry, error)
	ClearMisclassifications(ctx context.Context) error

	Close() error
}
