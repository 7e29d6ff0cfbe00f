package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DeferredTask is a best-effort unit of work run once after Delay. A failure is
// logged and dropped: nobody is waiting for the result.
type DeferredTask struct {
	Name  string
	Delay time.Duration
	Run   func(ctx context.Context) error
}

// Deferrer runs deferred tasks on timers detached from the request that scheduled them.
type Deferrer struct {
	ctx    context.Context
	logger *logrus.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDeferrer(ctx context.Context, logger *logrus.Logger) *Deferrer {
	return &Deferrer{ctx: ctx, logger: logger}
}

// Schedule arms task. Tasks scheduled after Wait has started are dropped.
func (d *Deferrer) Schedule(task DeferredTask) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warnf("[%s] deferred task dropped: shutting down", task.Name)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	time.AfterFunc(task.Delay, func() {
		defer d.wg.Done()
		if err := d.ctx.Err(); err != nil {
			d.logger.Warnf("[%s] deferred task dropped: %s", task.Name, err)
			return
		}
		if err := task.Run(d.ctx); err != nil {
			d.logger.Warnf("[%s] deferred task failed: %s", task.Name, err)
		}
	})
}

// Wait stops accepting tasks and blocks until every scheduled one has run or ctx is done.
func (d *Deferrer) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
