package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/xaenox/sms-sentinel/internal/models"
)

func createMessage(t *testing.T, s *MemoryStorage, msg *models.Message) int64 {
	t.Helper()
	if err := s.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return msg.ID
}

func TestMemoryCreateAndGet(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	id := createMessage(t, s, &models.Message{
		Sender:    "HDFCBK",
		Body:      "Your OTP is 482913",
		Timestamp: time.Now(),
		Type:      models.MessageTypeReceived,
	})
	if id == 0 {
		t.Fatalf("expected an assigned id")
	}

	msg, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	if msg.Sender != "HDFCBK" || msg.Body != "Your OTP is 482913" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if _, err := s.GetMessage(context.Background(), id+1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	s := NewMemoryStorage()
	id := createMessage(t, s, &models.Message{Sender: "A", Body: "hello", Timestamp: time.Now()})

	first, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	first.Body = "mutated"
	first.OTPVerdict = models.VerdictTrue

	second, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	if second.Body != "hello" || second.OTPVerdict == models.VerdictTrue {
		t.Fatalf("mutation through a returned pointer leaked into storage: %+v", second)
	}
}

func TestMemoryLoadPending(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Now()

	staleID := createMessage(t, s, &models.Message{
		Sender: "A", Body: "stale version", Timestamp: base,
		Version:         1,
		OTPVerdict:      models.VerdictTrue,
		PhishingVerdict: models.VerdictFalse,
		PhishingScore:   models.Float64(0.0),
	})
	unknownID := createMessage(t, s, &models.Message{
		Sender: "B", Body: "unknown verdict", Timestamp: base.Add(time.Minute),
		Version:         2,
		OTPVerdict:      models.VerdictUnknown,
		PhishingVerdict: models.VerdictFalse,
		PhishingScore:   models.Float64(0.2),
	})
	noScoreID := createMessage(t, s, &models.Message{
		Sender: "C", Body: "score missing", Timestamp: base.Add(2 * time.Minute),
		Version:         2,
		OTPVerdict:      models.VerdictFalse,
		PhishingVerdict: models.VerdictFalse,
	})
	createMessage(t, s, &models.Message{
		Sender: "D", Body: "settled", Timestamp: base.Add(3 * time.Minute),
		Version:         2,
		OTPVerdict:      models.VerdictTrue,
		PhishingVerdict: models.VerdictFalse,
		PhishingScore:   models.Float64(0.0),
	})

	pending, err := s.LoadPending(context.Background(), 2)
	if err != nil {
		t.Fatalf("load pending failed: %v", err)
	}

	// Newest first; the settled message is excluded.
	wantIDs := []int64{noScoreID, unknownID, staleID}
	if len(pending) != len(wantIDs) {
		t.Fatalf("expected %d pending messages, got %d", len(wantIDs), len(pending))
	}
	for i, want := range wantIDs {
		if pending[i].ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, pending[i].ID)
		}
	}
}

func TestMemorySave(t *testing.T) {
	s := NewMemoryStorage()
	id := createMessage(t, s, &models.Message{Sender: "A", Body: "hello", Timestamp: time.Now()})

	msg, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	msg.OTPVerdict = models.VerdictFalse
	msg.PhishingVerdict = models.VerdictFalse
	msg.PhishingScore = models.Float64(0.1)
	msg.Version = 3

	if err := s.Save(context.Background(), msg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	stored, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload message: %v", err)
	}
	if stored.Version != 3 || stored.OTPVerdict != models.VerdictFalse {
		t.Fatalf("save did not persist: %+v", stored)
	}

	missing := &models.Message{ID: 99, Sender: "X", Body: "ghost"}
	if err := s.Save(context.Background(), missing); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestMemoryMarkReviewed(t *testing.T) {
	s := NewMemoryStorage()
	id := createMessage(t, s, &models.Message{Sender: "A", Body: "hello", Timestamp: time.Now()})

	if err := s.MarkReviewed(context.Background(), id); err != nil {
		t.Fatalf("mark reviewed failed: %v", err)
	}
	msg, err := s.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get message: %v", err)
	}
	if !msg.Reviewed {
		t.Fatalf("expected reviewed flag to be set")
	}

	if err := s.MarkReviewed(context.Background(), 99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryMisclassificationLog(t *testing.T) {
	s := NewMemoryStorage()

	for i := 0; i < 3; i++ {
		entry := &models.MisclassificationLogEntry{
			ID:                uuid.New(),
			MessageID:         int64(i + 1),
			Sender:            "A",
			Body:              "misread",
			PredictedOTP:      models.VerdictTrue,
			PredictedPhishing: models.VerdictFalse,
			CreatedAt:         time.Now(),
		}
		if err := s.AppendMisclassification(context.Background(), entry); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	logs, err := s.ListMisclassifications(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}

	if err := s.ClearMisclassifications(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	logs, err = s.ListMisclassifications(context.Background())
	if err != nil {
		t.Fatalf("list after clear failed: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected empty log after clear, got %d entries", len(logs))
	}
}
