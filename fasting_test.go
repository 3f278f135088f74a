package main

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

// fakeNotifier records Schedule/Cancel calls for assertions. Replacement
// semantics mirror the real notifier: one pending slot per id.
type fakeNotifier struct {
	scheduled map[string]time.Time
	canceled  []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{scheduled: make(map[string]time.Time)}
}

func (n *fakeNotifier) Schedule(id string, fireAt time.Time, title, body string) {
	n.scheduled[id] = fireAt
}

func (n *fakeNotifier) Cancel(id string) {
	delete(n.scheduled, id)
	n.canceled = append(n.canceled, id)
}

/* ─── Countdown arithmetic tests ─────────────────────────────────────── */

// TestFastingRemaining verifies remaining time at start, mid-fast, and past
// the window (negative).
func TestFastingRemaining(t *testing.T) {
	start := time.Date(2026, 8, 10, 20, 0, 0, 0, time.UTC)

	if got := fastingRemaining(start, 120, start); got != 2*time.Hour {
		t.Errorf("remaining at start = %v, want 2h", got)
	}
	if got := fastingRemaining(start, 120, start.Add(time.Hour)); got != time.Hour {
		t.Errorf("remaining at +1h = %v, want 1h", got)
	}
	if got := fastingRemaining(start, 120, start.Add(7300*time.Second)); got >= 0 {
		t.Errorf("remaining past window = %v, want negative", got)
	}
}

// TestFastingProgress verifies the [0,1] clamp including overtime.
func TestFastingProgress(t *testing.T) {
	start := time.Date(2026, 8, 10, 20, 0, 0, 0, time.UTC)

	if got := fastingProgress(start, 120, start.Add(time.Hour)); got != 0.5 {
		t.Errorf("progress at half = %v, want 0.5", got)
	}
	if got := fastingProgress(start, 120, start.Add(3*time.Hour)); got != 1 {
		t.Errorf("progress past window = %v, want 1", got)
	}
	if got := fastingProgress(start, 0, start.Add(time.Hour)); got != 0 {
		t.Errorf("progress with zero duration = %v, want 0", got)
	}
}

// TestBuildFastingStatus verifies the idle and running shapes.
func TestBuildFastingStatus(t *testing.T) {
	idle := buildFastingStatus(userSettings{}, time.Now())
	if idle.State != "idle" {
		t.Errorf("state = %q, want idle", idle.State)
	}

	start := time.Date(2026, 8, 10, 20, 0, 0, 0, time.UTC)
	s := userSettings{FastingStartedAt: &start, FastingDurationMin: 120}

	running := buildFastingStatus(s, start.Add(time.Hour))
	if running.State != "running" {
		t.Fatalf("state = %q, want running", running.State)
	}
	if running.RemainingSec != 3600 || running.ElapsedSec != 3600 {
		t.Errorf("elapsed/remaining = %d/%d, want 3600/3600", running.ElapsedSec, running.RemainingSec)
	}
	if running.OverTime {
		t.Error("OverTime set mid-window")
	}

	over := buildFastingStatus(s, start.Add(7300*time.Second))
	if !over.OverTime {
		t.Error("OverTime not set past the window")
	}
	if over.RemainingSec >= 0 {
		t.Errorf("RemainingSec past window = %d, want negative", over.RemainingSec)
	}
}

/* ─── Protocol resolution tests ──────────────────────────────────────── */

// TestResolveFastingDuration verifies the preset windows, custom durations,
// and the zero result for unusable input.
func TestResolveFastingDuration(t *testing.T) {
	cases := []struct {
		protocol  string
		customMin int
		want      int
	}{
		{"12:12", 0, 720},
		{"14:10", 0, 840},
		{"16:8", 0, 960},
		{"custom", 900, 900},
		{"custom", 0, 0},
		{"custom", -5, 0},
		{"18:6", 0, 0},
		{"", 0, 0},
	}
	for _, tc := range cases {
		if got := resolveFastingDuration(tc.protocol, tc.customMin); got != tc.want {
			t.Errorf("resolveFastingDuration(%q, %d) = %d, want %d", tc.protocol, tc.customMin, got, tc.want)
		}
	}
}

// TestCompletionPending verifies the reminder is pending only while the
// window has time left; at and past the boundary it counts as spent.
func TestCompletionPending(t *testing.T) {
	start := time.Date(2026, 8, 10, 20, 0, 0, 0, time.UTC)

	if !completionPending(start, 120, start.Add(time.Hour)) {
		t.Error("mid-window reminder should be pending")
	}
	if completionPending(start, 120, start.Add(2*time.Hour)) {
		t.Error("reminder at the window boundary should be spent")
	}
	if completionPending(start, 120, start.Add(3*time.Hour)) {
		t.Error("reminder past the window should be spent")
	}
}

/* ─── Notification semantics tests ───────────────────────────────────── */

// TestFakeNotifier_RescheduleReplaces verifies scheduling the same id twice
// leaves one pending notification at the newest fire time — the fire-once
// contract a protocol change relies on.
func TestFakeNotifier_RescheduleReplaces(t *testing.T) {
	n := newFakeNotifier()
	id := fastingNotificationID(1)
	first := time.Now().Add(16 * time.Hour)
	second := time.Now().Add(12 * time.Hour)

	n.Schedule(id, first, "Fast complete", "")
	n.Schedule(id, second, "Fast complete", "")

	if len(n.scheduled) != 1 {
		t.Fatalf("pending count = %d, want 1", len(n.scheduled))
	}
	if !n.scheduled[id].Equal(second) {
		t.Errorf("pending fire time = %v, want %v", n.scheduled[id], second)
	}
}

// TestFastingNotificationID_PerUser verifies ids differ per user so one
// user's reschedule can't replace another's reminder.
func TestFastingNotificationID_PerUser(t *testing.T) {
	if fastingNotificationID(1) == fastingNotificationID(2) {
		t.Error("notification ids collide across users")
	}
}

// TestLogNotifier_SpentReminderNotRearmed replays a protocol change after
// the window elapsed against the real notifier: the first completion fires
// once, and the completionPending gate keeps the rescheduled fire time (which
// is already past, so it would fire immediately) out of the queue.
func TestLogNotifier_SpentReminderNotRearmed(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	n := newLogNotifier()
	id := fastingNotificationID(1)
	start := time.Now().Add(-121 * time.Minute)
	oldDur, newDur := 120, 60

	// The original completion is already due, so it fires right away.
	n.Schedule(id, start.Add(time.Duration(oldDur)*time.Minute), "Fast complete", "")
	time.Sleep(50 * time.Millisecond)

	// Protocol change: the old window is spent, so no reschedule.
	if completionPending(start, oldDur, time.Now()) {
		n.Schedule(id, start.Add(time.Duration(newDur)*time.Minute), "Fast complete", "")
	}
	time.Sleep(50 * time.Millisecond)

	if got := strings.Count(buf.String(), "Fast complete"); got != 1 {
		t.Errorf("completion fired %d times for one fast, want exactly 1", got)
	}
}

// TestLogNotifier_CancelStopsPending verifies Cancel removes the pending
// timer so a canceled reminder can never fire.
func TestLogNotifier_CancelStopsPending(t *testing.T) {
	n := newLogNotifier()
	n.Schedule("x", time.Now().Add(time.Hour), "t", "b")
	n.Cancel("x")

	n.mu.Lock()
	_, pending := n.timers["x"]
	n.mu.Unlock()
	if pending {
		t.Error("timer still pending after Cancel")
	}
}
