// Package shutdownqueue is a process-wide LIFO queue of named cleanup tasks.
//
// Components register their own teardown when they are built, and main
// drains the queue once on exit:
//
//	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
//	defer cancel()
//	err := shutdownqueue.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration, so whatever was built
// last is torn down first. Panics are recovered. Shutdown is idempotent and
// returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

type queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
	log    *zap.Logger
}

var q = &queue{
	tasks: make([]namedTask, 0, 8),
	log:   zap.NewNop(),
}

// SetLogger makes Shutdown report each task. A nil logger disables reporting.
func SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.log = log
}

// Add registers a task under name to be run on Shutdown, in LIFO order.
// Safe to call from any goroutine. If t is nil or shutdown has already
// started, Add does nothing.
func Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.log.Warn("shutdown task registered too late", zap.String("task", name))
		return
	}

	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Shutdown drains all registered tasks in LIFO order.
// It is safe to call multiple times; after the first complete (or partial) run,
// subsequent calls are no-ops.
//
// If ctx is canceled or times out mid-drain, Shutdown stops early and returns
// an error that includes both the context error and any task errors so far.
func Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.tasks) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil
	log := q.log

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			log.Error("shutdown interrupted", zap.Int("tasks_skipped", i+1), zap.Error(ctx.Err()))
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])

		fields := []zap.Field{zap.String("task", tasks[i].name)}
		if err != nil {
			log.Error("shutdown task failed", append(fields, zap.Error(err))...)
			errs = append(errs, err)

			continue
		}

		log.Info("shutdown task done", fields...)
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	start := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %s: %v", t.name, r)
		}
	}()

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("%s (after %s): %w", t.name, time.Since(start).Round(time.Millisecond), err)
	}

	return nil
}
