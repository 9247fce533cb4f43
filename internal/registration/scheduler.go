package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrSchedulerClosed is returned when a task is scheduled after shutdown began
	ErrSchedulerClosed = errors.New("scheduler is shut down")

	// ErrSchedulerFull is returned when the concurrent run limit is reached
	ErrSchedulerFull = errors.New("too many registration runs in progress")
)

// Task is a unit of background work. The context is cancelled on shutdown.
type Task func(ctx context.Context)

// Scheduler runs tasks off the caller's goroutine
//
//go:generate mockgen -destination=mocks/mock_scheduler.go -package=mocks github.com/stacklok/dataset-registrar/internal/registration Scheduler
type Scheduler interface {
	// Schedule starts task without waiting for it
	Schedule(task Task) error
}

// AsyncScheduler runs every task on its own goroutine and waits for all of them on shutdown
type AsyncScheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	limit  int

	mu     sync.Mutex
	closed bool
}

// NewAsyncScheduler creates a scheduler whose tasks run under a context derived
// from parent. A positive limit bounds the number of concurrent tasks; further
// tasks are rejected with ErrSchedulerFull instead of blocking the caller.
func NewAsyncScheduler(parent context.Context, limit int) *AsyncScheduler {
	ctx, cancel := context.WithCancel(parent)
	s := &AsyncScheduler{ctx: ctx, cancel: cancel, limit: limit}
	if limit > 0 {
		s.group.SetLimit(limit)
	}
	return s
}

// Schedule starts task on a new goroutine
func (s *AsyncScheduler) Schedule(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}

	run := func() error {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Background task panicked", "panic", rec)
			}
		}()
		task(s.ctx)
		return nil
	}

	if s.limit <= 0 {
		s.group.Go(run)
		return nil
	}
	if !s.group.TryGo(run) {
		return fmt.Errorf("%w (limit %d)", ErrSchedulerFull, s.limit)
	}
	return nil
}

// Wait blocks until every scheduled task has returned
func (s *AsyncScheduler) Wait() {
	_ = s.group.Wait()
}

// Shutdown rejects new tasks, cancels running ones and waits for them until ctx is done
func (s *AsyncScheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for registration runs: %w", ctx.Err())
	}
}

// InlineScheduler runs tasks synchronously on the caller's goroutine
type InlineScheduler struct {
	// Ctx is passed to tasks; context.Background() when nil
	Ctx context.Context
}

// Schedule runs task before returning
func (s InlineScheduler) Schedule(task Task) error {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	task(ctx)
	return nil
}
