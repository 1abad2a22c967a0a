// internal/hub/hub.go
package hub

import (
	"context"
	"errors"
	"time"

	"github.com/Luckmuc/TicTacToe/internal/game"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned by Call once the hub has stopped.
var ErrStopped = errors.New("hub stopped")

// Hub runs every posted task on one goroutine, one at a time. The game registry
// is only ever touched from here.
type Hub struct {
	tasks  chan func()
	done   chan struct{}
	logger *logrus.Logger
}

// New creates a hub with room for queueSize pending tasks.
func New(queueSize int, logger *logrus.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		tasks:  make(chan func(), queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes tasks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case task := <-h.tasks:
			h.run(task)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithField("panic", r).Error("hub task panicked")
		}
	}()
	task()
}

// Post queues task for the loop. It blocks while the queue is full and drops
// the task once the hub has stopped.
func (h *Hub) Post(task func()) {
	select {
	case h.tasks <- task:
	case <-h.done:
	}
}

// Call runs task on the loop and waits for it to finish.
func (h *Hub) Call(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		task()
	}
	select {
	case h.tasks <- wrapped:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

// AfterFunc implements game.Scheduler: f is posted to the loop when d elapses.
func (h *Hub) AfterFunc(d time.Duration, f func()) game.Timer {
	return time.AfterFunc(d, func() { h.Post(f) })
}

var _ game.Scheduler = (*Hub)(nil)
