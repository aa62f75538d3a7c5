package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	amqperrors "github.com/maxpert/amqp-client-go/errors"
)

func TestSupervisorSuccess(t *testing.T) {
	s := NewSupervisor()
	ran := false
	task := s.Go(context.Background(), "ok", func(ctx context.Context) error {
		ran = true
		return nil
	}, func(task *Task, err error) {
		t.Errorf("failure handler invoked for successful task: %v", err)
	})

	<-task.Done()
	s.Wait()
	assert.True(t, ran)
	assert.NoError(t, task.Err())
	assert.Equal(t, "ok", task.Name())
}

func TestSupervisorFailureHandler(t *testing.T) {
	s := NewSupervisor()
	boom := errors.New("boom")

	failures := make(chan error, 1)
	task := s.Go(context.Background(), "failing", func(ctx context.Context) error {
		return boom
	}, func(task *Task, err error) {
		failures <- err
	})

	select {
	case err := <-failures:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("failure handler not invoked")
	}
	<-task.Done()
	assert.ErrorIs(t, task.Err(), boom)
}

func TestSupervisorSwallowsCancellation(t *testing.T) {
	s := NewSupervisor()

	task := s.Go(context.Background(), "canceled", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, func(task *Task, err error) {
		t.Errorf("failure handler invoked for cancellation: %v", err)
	})

	task.Cancel()
	<-task.Done()
	s.Wait()
	assert.ErrorIs(t, task.Err(), context.Canceled)
}

func TestSupervisorSwallowsWaitCanceled(t *testing.T) {
	s := NewSupervisor()

	task := s.Go(context.Background(), "wait-canceled", func(ctx context.Context) error {
		return amqperrors.NewWaitCanceled("reply")
	}, func(task *Task, err error) {
		t.Errorf("failure handler invoked for wait cancellation: %v", err)
	})

	<-task.Done()
	s.Wait()
}

func TestSupervisorLogsWhenNoFailureHandler(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewSupervisor(WithSupervisorLogger(zap.New(core)))

	task := s.Go(context.Background(), "failing", func(ctx context.Context) error {
		return errors.New("boom")
	}, nil)

	<-task.Done()
	s.Wait()

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "supervised task failed", entries[0].Message)
	assert.Equal(t, "failing", entries[0].ContextMap()["task"])
}

func TestSupervisorTaskLimit(t *testing.T) {
	s := NewSupervisor(WithTaskLimit(1))

	var running int32
	var peak int32
	block := make(chan struct{})

	for i := 0; i < 3; i++ {
		s.Go(context.Background(), "limited", func(ctx context.Context) error {
			now := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
					break
				}
			}
			<-block
			atomic.AddInt32(&running, -1)
			return nil
		}, nil)
	}

	time.Sleep(50 * time.Millisecond)
	close(block)
	s.Wait()
	assert.Equal(t, int32(1), peak)
}

func TestSupervisorObserver(t *testing.T) {
	obs := &taskObserver{}
	s := NewSupervisor(WithSupervisorObserver(obs))

	t1 := s.Go(context.Background(), "a", func(ctx context.Context) error { return nil }, nil)
	t2 := s.Go(context.Background(), "b", func(ctx context.Context) error { return errors.New("boom") }, func(*Task, error) {})
	<-t1.Done()
	<-t2.Done()
	s.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&obs.started))
	assert.Equal(t, int32(1), atomic.LoadInt32(&obs.failed))
}

type taskObserver struct {
	NoOpObserver
	started int32
	failed  int32
}

func (o *taskObserver) TaskStarted(string) { atomic.AddInt32(&o.started, 1) }
func (o *taskObserver) TaskFailed(string)  { atomic.AddInt32(&o.failed, 1) }
