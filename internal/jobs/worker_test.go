package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTask struct {
	mock.Mock
}

func (m *MockTask) Run(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionEvictor is a mock implementation of SessionEvictor
type MockSessionEvictor struct {
	mock.Mock
}

func (m *MockSessionEvictor) EvictIdle(ctx context.Context, ttl time.Duration) (int, error) {
	args := m.Called(ctx, ttl)
	return args.Int(0), args.Error(1)
}

func TestWorker_StartStop(t *testing.T) {
	processor := new(MockTask)
	processor.On("Run", mock.Anything).Return(nil)

	worker := NewWorker("test-worker", processor, 20*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(context.Background())
	}()

	time.Sleep(110 * time.Millisecond)
	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(processor.Calls), 2)
}

func TestWorker_ContextCancellation(t *testing.T) {
	processor := new(MockTask)
	processor.On("Run", mock.Anything).Return(nil)

	worker := NewWorker("test-worker", processor, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
	processor.AssertNotCalled(t, "Run", mock.Anything)
}

func TestWorker_KeepsRunningAfterError(t *testing.T) {
	processor := new(MockTask)
	processor.On("Run", mock.Anything).Return(errors.New("boom"))

	worker := NewWorker("test-worker", processor, 20*time.Millisecond)
	go worker.Start(context.Background())

	time.Sleep(110 * time.Millisecond)
	worker.Stop()
	worker.Stop()

	assert.GreaterOrEqual(t, len(processor.Calls), 2)
}

func TestWorker_StopCancelsRunningPass(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	processor := new(MockTask)
	processor.On("Run", mock.Anything).Run(func(args mock.Arguments) {
		once.Do(func() { close(started) })
		<-args.Get(0).(context.Context).Done()
	}).Return(context.Canceled)

	worker := NewWorker("test-worker", processor, 10*time.Millisecond)
	go worker.Start(context.Background())

	<-started
	stopped := make(chan struct{})
	go func() {
		worker.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not cancel the running pass")
	}
}

func TestSessionReaper_Run(t *testing.T) {
	evictor := new(MockSessionEvictor)
	evictor.On("EvictIdle", mock.Anything, 30*time.Minute).Return(2, nil).Once()

	err := NewSessionReaper(evictor, 30*time.Minute).Run(context.Background())
	assert.NoError(t, err)
	evictor.AssertExpectations(t)
}

func TestSessionReaper_Run_Error(t *testing.T) {
	evictor := new(MockSessionEvictor)
	cause := errors.New("store unavailable")
	evictor.On("EvictIdle", mock.Anything, time.Minute).Return(0, cause)

	err := NewSessionReaper(evictor, time.Minute).Run(context.Background())
	assert.ErrorIs(t, err, cause)
}
