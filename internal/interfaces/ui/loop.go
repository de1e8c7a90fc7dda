package ui

import (
	"sync"
	"time"
)

// EventLoop serialises everything that touches the client: shell events
// hold it for their whole run and deferred callbacks take it before running.
type EventLoop struct {
	sync.Mutex
}

// AfterFunc runs fn on the loop once delay has elapsed. The returned stop
// function reports whether it prevented fn from being queued; a callback
// already waiting for the loop still runs.
func (l *EventLoop) AfterFunc(delay time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(delay, func() {
		l.Lock()
		defer l.Unlock()
		fn()
	})
	return t.Stop
}
