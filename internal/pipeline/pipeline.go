package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/sms-sentinel/internal/storage"
)

// SweepStats counts what one sweep did.
type SweepStats struct {
	Loaded     int
	Classified int
	Skipped    int
	Degraded   int
	Failed     int
}

// Pipeline pulls pending messages from storage and classifies them on a
// bounded worker pool. Classification is deterministic and idempotent at a
// given version, so duplicate processing is only wasted work; in-flight
// message IDs are still deduplicated to avoid it.
type Pipeline struct {
	coord   *Coordinator
	store   storage.Storage
	workers int
	logger  *zap.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
}

func New(coord *Coordinator, store storage.Storage, workers int, logger *zap.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		coord:    coord,
		store:    store,
		workers:  workers,
		logger:   logger,
		inflight: make(map[int64]struct{}),
	}
}

// Sweep loads every pending message at the coordinator's version and
// classifies them in parallel. A failure on one message never aborts the
// rest of the batch; storage failures leave the message pending so the next
// sweep retries it at the same version.
func (p *Pipeline) Sweep(ctx context.Context) (SweepStats, error) {
	pending, err := p.store.LoadPending(ctx, p.coord.Version())
	if err != nil {
		return SweepStats{}, fmt.Errorf("load pending: %w", err)
	}

	var classified, skipped, degraded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, msg := range pending {
		msg := msg
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			if !p.acquire(msg.ID) {
				skipped.Add(1)
				return nil
			}
			defer p.release(msg.ID)

			switch p.coord.Process(msg) {
			case OutcomeSkipped:
				skipped.Add(1)
				return nil
			case OutcomeDegraded:
				degraded.Add(1)
			default:
				classified.Add(1)
			}

			if err := p.store.Save(gctx, msg); err != nil {
				failed.Add(1)
				p.logger.Error("failed to save classified message",
					zap.Int64("message_id", msg.ID),
					zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return SweepStats{}, err
	}

	stats := SweepStats{
		Loaded:     len(pending),
		Classified: int(classified.Load()),
		Skipped:    int(skipped.Load()),
		Degraded:   int(degraded.Load()),
		Failed:     int(failed.Load()),
	}

	p.logger.Info("classification sweep complete",
		zap.Int("version", p.coord.Version()),
		zap.Int("loaded", stats.Loaded),
		zap.Int("classified", stats.Classified),
		zap.Int("skipped", stats.Skipped),
		zap.Int("degraded", stats.Degraded),
		zap.Int("failed", stats.Failed))

	return stats, nil
}

// ProcessOne classifies a single message by ID, for the ingestion path. A
// concurrent duplicate for the same ID is dropped; re-running later is
// harmless.
func (p *Pipeline) ProcessOne(ctx context.Context, id int64) error {
	if !p.acquire(id) {
		p.logger.Debug("classification already in flight", zap.Int64("message_id", id))
		return nil
	}
	defer p.release(id)

	msg, err := p.store.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("load message %d: %w", id, err)
	}

	if p.coord.Process(msg) == OutcomeSkipped {
		return nil
	}

	if err := p.store.Save(ctx, msg); err != nil {
		return fmt.Errorf("save message %d: %w", id, err)
	}
	return nil
}

func (p *Pipeline) acquire(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.inflight[id]; busy {
		return false
	}
	p.inflight[id] = struct{}{}
	return true
}

func (p *Pipeline) release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
}
