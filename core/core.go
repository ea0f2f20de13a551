package core

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/krau/ocw-saver/pkg/queue"
)

// Executable is a unit of work taken from the queue by a worker.
type Executable interface {
	TaskID() string
	Title() string
	Execute(ctx context.Context) error
}

func worker(ctx context.Context, id int, q *queue.TaskQueue[Executable]) {
	logger := log.FromContext(ctx).WithPrefix("worker")
	for {
		qtask, err := q.Get()
		if err != nil {
			logger.Debugf("Worker %d exiting: %v", id, err)
			return
		}
		exe := qtask.Data
		logger.Infof("Processing task: %s", exe.Title())
		err = exe.Execute(qtask.Context())
		switch {
		case errors.Is(err, context.Canceled):
			logger.Infof("Task canceled: %s", exe.Title())
		case err != nil:
			logger.Errorf("Task failed: %s: %v", exe.Title(), err)
		default:
			logger.Infof("Task succeeded: %s", exe.Title())
		}
		q.Done(qtask.ID)
	}
}

// Run starts workers goroutines on q and returns once q is closed and drained.
// Cancelling ctx cancels every queued and running task.
func Run(ctx context.Context, q *queue.TaskQueue[Executable], workers int) {
	if workers < 1 {
		workers = 1
	}
	log.FromContext(ctx).Debugf("Start processing %d tasks with %d workers", q.ActiveLength(), workers)
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.CancelAll()
		case <-stop:
		}
	}()
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, i, q)
		}()
	}
	wg.Wait()
	close(stop)
}
