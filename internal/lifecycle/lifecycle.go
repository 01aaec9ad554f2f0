// Package lifecycle models the two-state Serving -> Stopped lifecycle of a
// service. Stop is the sole transition and is one-way: once a service has
// stopped it never serves again.
package lifecycle

import "sync"

// Lifecycle coordinates termination between a service's EndExecution
// operation and the run loop hosting it. The run loop parks on Done; the
// service calls Stop after it has produced the shutdown response.
type Lifecycle struct {
	once sync.Once
	done chan struct{}
}

// New returns a lifecycle in the Serving state.
func New() *Lifecycle {
	return &Lifecycle{done: make(chan struct{})}
}

// Stop transitions to Stopped. Safe to call more than once.
func (l *Lifecycle) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Done returns a channel that is closed once the lifecycle has stopped.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Stopped reports whether Stop has been called.
func (l *Lifecycle) Stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
