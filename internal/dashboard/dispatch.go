package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	dispatchBuffer  = 32
	deliveryTimeout = 15 * time.Second
)

// dispatcher delivers notices to notifiers on a small pool of workers so
// a slow chat API never holds up a refresh.
//
// Lifecycle:
//  1. newDispatcher starts the workers
//  2. submit queues a notice, dropping it when the buffer is full
//  3. close stops accepting notices and waits for queued ones to drain
type dispatcher struct {
	jobs      chan Notice
	notifiers []Notifier
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func newDispatcher(notifiers []Notifier, workers int, logger *zap.Logger) *dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &dispatcher{
		jobs:      make(chan Notice, dispatchBuffer),
		notifiers: notifiers,
		logger:    logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work(i + 1)
	}
	logger.Debug("  ✓ Notice dispatcher started", zap.Int("workers", workers), zap.Int("notifiers", len(notifiers)))
	return d
}

// submit is non-blocking. It reports whether the notice was queued.
func (d *dispatcher) submit(n Notice) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- n:
		return true
	default:
		d.logger.Warn("⚠️  Notice queue full, dropping notice", zap.String("message", n.Message))
		return false
	}
}

func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *dispatcher) work(id int) {
	defer d.wg.Done()
	for n := range d.jobs {
		for _, notifier := range d.notifiers {
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			err := notifier.Notify(ctx, n)
			cancel()
			if err != nil {
				d.logger.Warn("⚠️  Notice delivery failed", zap.Int("worker", id), zap.Error(err))
			}
		}
	}
}
