package main

import (
	"log"
	"sync"
	"time"
)

// notifier is the reminder collaborator: fire-and-forget, best-effort.
// Scheduling an id that is already pending replaces it, so a signal fires at
// most once per id no matter how often the fire time is recomputed.
type notifier interface {
	Schedule(id string, fireAt time.Time, title, body string)
	Cancel(id string)
}

// logNotifier delivers notifications to the process log. It keeps the
// replace-on-reschedule and cancel semantics real so the fasting tracker's
// fire-once behavior is honest even without a push backend.
type logNotifier struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newLogNotifier() *logNotifier {
	return &logNotifier{timers: make(map[string]*time.Timer)}
}

func (n *logNotifier) Schedule(id string, fireAt time.Time, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
	}
	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}
	n.timers[id] = time.AfterFunc(delay, func() {
		log.Printf("[notify] %s: %s — %s", id, title, body)
		n.mu.Lock()
		delete(n.timers, id)
		n.mu.Unlock()
	})
}

func (n *logNotifier) Cancel(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
}
