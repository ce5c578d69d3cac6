// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Task is a scheduled callback. Interval > 0 reschedules it after each fire.
type Task struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*Task)
	task.index = n
	*q = append(*q, task)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// Manager runs scheduled tasks off a single heap. Callbacks are dispatched in
// their own goroutines, so a slow callback never delays other tasks or other
// game sessions.
type Manager struct {
	queue     taskQueue
	mutex     sync.Mutex
	nextID    int64
	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:   make(taskQueue, 0),
		nextID:  1,
		closeCh: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// Schedule registers fn to run after delay, then every interval if interval
// is nonzero. It returns an id usable with Cancel.
func (m *Manager) Schedule(delay, interval time.Duration, fn func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &Task{
		ID:       m.nextID,
		Execute:  time.Now().Add(delay),
		Interval: interval,
		Callback: fn,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

// Cancel removes the task from the queue. A callback already dispatched (or
// a one-shot that already fired) is not chased: callers that care guard
// against stale invocations themselves, the way MoveTimer does with its
// generation counter. Cancelling an unknown or finished id is a no-op.
func (m *Manager) Cancel(taskID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == taskID {
			heap.Remove(&m.queue, i)
			return
		}
	}
}

func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.closeCh) })
}

func (m *Manager) process() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runDue()
		case <-m.closeCh:
			return
		}
	}
}

func (m *Manager) runDue() {
	now := time.Now()

	m.mutex.Lock()
	var due []*Task
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, task)
		if task.Interval > 0 {
			next := *task
			next.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, &next)
		}
	}
	m.mutex.Unlock()

	for _, task := range due {
		go task.Callback()
	}
}
