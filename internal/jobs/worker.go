// Package jobs runs periodic background work next to the HTTP server.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task is one pass of periodic work.
type Task interface {
	Run(ctx context.Context) error
}

// Worker runs a Task every interval until Stop is called or the context
// passed to Start ends.
type Worker struct {
	name     string
	task     Task
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewWorker(name string, task Task, interval time.Duration) *Worker {
	return &Worker{
		name:     name,
		task:     task,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks in the tick loop. A failed pass is logged and does not end it.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("%s: every %v", w.name, w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("%s: stopped", w.name)
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				log.Printf("%s: %v", w.name, err)
			}
		}
	}
}

// Stop ends the loop, cancelling an in-flight pass, and waits for Start to
// return. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
