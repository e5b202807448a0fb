package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/sms-sentinel/internal/models"
	"github.com/xaenox/sms-sentinel/internal/storage"
)

func seedMessage(t *testing.T, store *storage.MemoryStorage, sender, body string) int64 {
	t.Helper()

	msg := &models.Message{
		Sender:    sender,
		Body:      body,
		Timestamp: time.Now(),
		Type:      models.MessageTypeReceived,
	}
	if err := store.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return msg.ID
}

func TestSweepClassifiesPendingBatch(t *testing.T) {
	store := storage.NewMemoryStorage()
	otpID := seedMessage(t, store, "HDFCBK", "Your OTP is 482913, valid for 5 minutes")
	phishID := seedMessage(t, store, "+919812345678", "Congratulations! You won! Click http://bit.ly/xyz to claim now!!!")
	emptyID := seedMessage(t, store, "UNKNOWN", "")

	p := New(newTestCoordinator(1), store, 2, zap.NewNop())

	stats, err := p.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	want := SweepStats{Loaded: 3, Classified: 2, Degraded: 1}
	if stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, stats)
	}

	otpMsg, err := store.GetMessage(context.Background(), otpID)
	if err != nil {
		t.Fatalf("failed to load otp message: %v", err)
	}
	if otpMsg.OTPVerdict != models.VerdictTrue || otpMsg.PhishingVerdict != models.VerdictFalse {
		t.Fatalf("otp message: got otp=%s phishing=%s", otpMsg.OTPVerdict, otpMsg.PhishingVerdict)
	}
	if otpMsg.Version != 1 {
		t.Fatalf("otp message: expected version 1, got %d", otpMsg.Version)
	}

	phishMsg, err := store.GetMessage(context.Background(), phishID)
	if err != nil {
		t.Fatalf("failed to load phishing message: %v", err)
	}
	if phishMsg.PhishingVerdict != models.VerdictTrue {
		t.Fatalf("phishing message: expected true verdict, got %s", phishMsg.PhishingVerdict)
	}

	emptyMsg, err := store.GetMessage(context.Background(), emptyID)
	if err != nil {
		t.Fatalf("failed to load empty message: %v", err)
	}
	if emptyMsg.OTPVerdict != models.VerdictUnknown || emptyMsg.PhishingVerdict != models.VerdictUnknown {
		t.Fatalf("empty message: expected unknown verdicts, got otp=%s phishing=%s",
			emptyMsg.OTPVerdict, emptyMsg.PhishingVerdict)
	}
	if emptyMsg.Version != 1 {
		t.Fatalf("empty message: version must still be stamped, got %d", emptyMsg.Version)
	}
}

func TestSweepSettledMessagesDropOut(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedMessage(t, store, "HDFCBK", "Your OTP is 482913, valid for 5 minutes")
	seedMessage(t, store, "UNKNOWN", "")

	p := New(newTestCoordinator(1), store, 2, zap.NewNop())

	if _, err := p.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}

	// The settled message is done; only the degraded one stays pending, and
	// re-running it is deterministic.
	stats, err := p.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	want := SweepStats{Loaded: 1, Degraded: 1}
	if stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, stats)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := New(newTestCoordinator(1), store, 2, zap.NewNop())

	stats, err := p.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if stats != (SweepStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestProcessOne(t *testing.T) {
	store := storage.NewMemoryStorage()
	id := seedMessage(t, store, "HDFCBK", "Your OTP is 482913, valid for 5 minutes")

	p := New(newTestCoordinator(1), store, 1, zap.NewNop())

	if err := p.ProcessOne(context.Background(), id); err != nil {
		t.Fatalf("process one failed: %v", err)
	}

	msg, err := store.GetMessage(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to load message: %v", err)
	}
	if msg.OTPVerdict != models.VerdictTrue || msg.Version != 1 {
		t.Fatalf("expected classified message at version 1, got verdict=%s version=%d", msg.OTPVerdict, msg.Version)
	}
}

func TestProcessOneMissingMessage(t *testing.T) {
	store := storage.NewMemoryStorage()
	p := New(newTestCoordinator(1), store, 1, zap.NewNop())

	if err := p.ProcessOne(context.Background(), 42); err == nil {
		t.Fatalf("expected error for missing message")
	}
}
