package queue

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
)

var ErrQueueClosed = errors.New("queue is closed and empty")

// TaskQueue is a FIFO of cancellable tasks. Get blocks until a live task is
// available or the queue is closed and drained.
type TaskQueue[T any] struct {
	tasks          *list.List
	taskMap        map[string]*Task[T]
	runningTaskMap map[string]*Task[T]
	mu             sync.RWMutex
	cond           *sync.Cond
	closed         bool
}

func NewTaskQueue[T any]() *TaskQueue[T] {
	tq := &TaskQueue[T]{
		tasks:          list.New(),
		taskMap:        make(map[string]*Task[T]),
		runningTaskMap: make(map[string]*Task[T]),
	}
	tq.cond = sync.NewCond(&tq.mu)
	return tq
}

func (tq *TaskQueue[T]) Add(task *Task[T]) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	if tq.closed {
		return errors.New("queue is closed")
	}
	if _, exists := tq.taskMap[task.ID]; exists {
		return fmt.Errorf("task with ID %s already exists", task.ID)
	}
	if task.IsCancelled() {
		return fmt.Errorf("task %s has been cancelled", task.ID)
	}

	task.element = tq.tasks.PushBack(task)
	tq.taskMap[task.ID] = task
	tq.cond.Signal()
	return nil
}

// Get skips cancelled tasks and returns ErrQueueClosed once the queue is closed and empty.
func (tq *TaskQueue[T]) Get() (*Task[T], error) {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	for {
		for tq.tasks.Len() == 0 && !tq.closed {
			tq.cond.Wait()
		}
		if tq.tasks.Len() == 0 {
			return nil, ErrQueueClosed
		}
		element := tq.tasks.Front()
		task := element.Value.(*Task[T])
		tq.tasks.Remove(element)
		task.element = nil
		if task.IsCancelled() {
			delete(tq.taskMap, task.ID)
			continue
		}
		tq.runningTaskMap[task.ID] = task
		return task, nil
	}
}

func (tq *TaskQueue[T]) Done(taskID string) {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	delete(tq.taskMap, taskID)
	delete(tq.runningTaskMap, taskID)
}

// Length counts queued tasks, cancelled ones included.
func (tq *TaskQueue[T]) Length() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()
	return tq.tasks.Len()
}

func (tq *TaskQueue[T]) ActiveLength() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()

	count := 0
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		if !element.Value.(*Task[T]).IsCancelled() {
			count++
		}
	}
	return count
}

func (tq *TaskQueue[T]) RunningLength() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()
	return len(tq.runningTaskMap)
}

// CancelAll cancels queued tasks first, then running ones, so a worker
// released by the cancellation finds nothing left to start.
func (tq *TaskQueue[T]) CancelAll() {
	tq.mu.Lock()
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		element.Value.(*Task[T]).Cancel()
	}
	running := make([]*Task[T], 0, len(tq.runningTaskMap))
	for _, task := range tq.runningTaskMap {
		running = append(running, task)
	}
	tq.mu.Unlock()

	for _, task := range running {
		task.Cancel()
	}
}

func (tq *TaskQueue[T]) Close() {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	tq.closed = true
	tq.cond.Broadcast()
}
