package dispatch

import (
	"context"
	stderrors "errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	amqperrors "github.com/maxpert/amqp-client-go/errors"
)

// Task is the handle of a supervised unit of work
type Task struct {
	name   string
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

// Name returns the task's identifying name
func (t *Task) Name() string {
	return t.name
}

// Done is closed when the task has completed
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's outcome. Only valid after Done is closed.
func (t *Task) Err() error {
	return t.err
}

// Cancel requests cooperative cancellation of the task's context
func (t *Task) Cancel() {
	t.cancel()
}

// FailureHandler observes a failed supervised task
type FailureHandler func(task *Task, err error)

// Supervisor schedules units of concurrent work so their failures are
// observed and reported instead of silently dropped. Cancellation is a
// distinguished outcome and is absorbed; every other fault reaches a failure
// handler. The supervisor never owns the runtime it schedules on, it only
// spawns and watches.
type Supervisor struct {
	log      *zap.Logger
	observer Observer
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

// WithSupervisorLogger sets the logger used when no failure handler is given
func WithSupervisorLogger(log *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.log = log
	}
}

// WithSupervisorObserver sets the task observer
func WithSupervisorObserver(observer Observer) SupervisorOption {
	return func(s *Supervisor) {
		s.observer = observer
	}
}

// WithTaskLimit bounds the number of concurrently running tasks
func WithTaskLimit(n int64) SupervisorOption {
	return func(s *Supervisor) {
		s.sem = semaphore.NewWeighted(n)
	}
}

// NewSupervisor creates a Supervisor
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		log:      zap.NewNop(),
		observer: NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Go schedules fn for concurrent execution and returns its handle
// immediately. When fn completes: cancellation is silently absorbed, any
// other fault is handed to onFailure (or logged when onFailure is nil), and
// ordinary success does nothing further.
func (s *Supervisor) Go(ctx context.Context, name string, fn func(context.Context) error, onFailure FailureHandler) *Task {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		name:   name,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	s.wg.Add(1)
	s.observer.TaskStarted(name)
	go func() {
		defer s.wg.Done()
		defer cancel()

		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				// acquisition only fails on context expiry, which is a
				// cancellation outcome
				task.err = err
				close(task.done)
				return
			}
			defer s.sem.Release(1)
		}

		err := fn(ctx)
		task.err = err
		close(task.done)

		if err == nil {
			return
		}
		if isCancellation(err) {
			return
		}

		s.observer.TaskFailed(name)
		if onFailure != nil {
			onFailure(task, err)
			return
		}
		s.log.Error("supervised task failed",
			zap.String("task", name),
			zap.Error(err))
	}()
	return task
}

// Wait blocks until every supervised task has completed
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		amqperrors.IsWaitCanceled(err)
}
