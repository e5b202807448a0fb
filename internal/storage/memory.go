package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/sms-sentinel/internal/models"
)

// MemoryStorage is an in-memory Storage used by tests and single-process
// deployments. It deep-copies messages on the way in and out, so callers can
// never mutate a stored row through a stale pointer.
type MemoryStorage struct {
	mu       sync.RWMutex
	nextID   int64
	messages map[int64]*models.Message
	feedback []*models.FeedbackRecord
	logs     []*models.MisclassificationLogEntry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		nextID:   1,
		messages: make(map[int64]*models.Message),
	}
}

func (s *MemoryStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	s.nextID++
	s.messages[msg.ID] = msg.Clone()
	return nil
}

func (s *MemoryStorage) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if msg, exists := s.messages[id]; exists {
		return msg.Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) LoadPending(ctx context.Context, version int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*models.Message
	for _, msg := range s.messages {
		if msg.Version < version || !msg.OTPVerdict.Known() || !msg.PhishingVerdict.Known() || msg.PhishingScore == nil {
			pending = append(pending, msg.Clone())
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].Timestamp.Equal(pending[j].Timestamp) {
			return pending[i].Timestamp.After(pending[j].Timestamp)
		}
		return pending[i].ID < pending[j].ID
	})

	return pending, nil
}

func (s *MemoryStorage) Save(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[msg.ID]; !exists {
		return ErrNotFound
	}
	s.messages[msg.ID] = msg.Clone()
	return nil
}

func (s *MemoryStorage) MarkReviewed(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, exists := s.messages[id]
	if !exists {
		return ErrNotFound
	}
	msg.Reviewed = true
	return nil
}

func (s *MemoryStorage) AppendFeedback(ctx context.Context, rec *models.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rec
	s.feedback = append(s.feedback, &r)
	return nil
}

func (s *MemoryStorage) AppendMisclassification(ctx context.Context, entry *models.MisclassificationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	s.logs = append(s.logs, &e)
	return nil
}

func (s *MemoryStorage) ListMisclassifications(ctx context.Context) ([]*models.MisclassificationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*models.MisclassificationLogEntry, 0, len(s.logs))
	for _, entry := range s.logs {
		e := *entry
		entries = append(entries, &e)
	}
	return entries, nil
}

func (s *MemoryStorage) ClearMisclassifications(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = nil
	return nil
}

// Feedback returns copies of all recorded feedback, newest last. Test helper.
func (s *MemoryStorage) Feedback() []*models.FeedbackRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*models.FeedbackRecord, 0, len(s.feedback))
	for _, rec := range s.feedback {
		r := *rec
		records = append(records, &r)
	}
	return records
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
