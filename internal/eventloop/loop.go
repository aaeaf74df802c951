// Package eventloop provides the single cooperative loop that owns review
// state. Work from other goroutines reaches that state only by posting a
// function onto the loop.
package eventloop

import "time"

// DefaultBacklog is the number of posted tasks that can queue before Post
// blocks.
const DefaultBacklog = 64

// Loop runs posted functions one at a time, in posting order.
type Loop struct {
	tasks chan func()
}

// New creates a loop with room for backlog pending tasks.
func New(backlog int) *Loop {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Loop{tasks: make(chan func(), backlog)}
}

// Post queues fn to run on the loop. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.tasks <- fn
}

// C exposes the task channel so another event loop (such as a Bubble Tea
// program) can drain it and run tasks on its own goroutine.
func (l *Loop) C() <-chan func() {
	return l.tasks
}

// RunOne waits up to timeout for a single task and runs it. It reports
// whether a task ran. Tests use it to step an engine without a program.
func (l *Loop) RunOne(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case fn := <-l.tasks:
		fn()
		return true
	case <-t.C:
		return false
	}
}

// RunPending runs every task that is already queued without waiting for
// more, and returns how many ran.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-l.tasks:
			fn()
			n++
		default:
			return n
		}
	}
}
