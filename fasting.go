package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Countdown core ─────────────────────────────────────────────────── */

// fastingProtocols maps preset protocol names to their fasting-window length.
// "custom" takes an explicit duration_min instead.
var fastingProtocols = map[string]int{
	"12:12": 12 * 60,
	"14:10": 14 * 60,
	"16:8":  16 * 60,
}

// fastingRemaining is the time left in a fast: (start + duration) − now.
// Negative once the window has been exceeded.
func fastingRemaining(start time.Time, durationMin int, now time.Time) time.Duration {
	return start.Add(time.Duration(durationMin) * time.Minute).Sub(now)
}

// fastingProgress is elapsed/duration clamped to [0,1].
func fastingProgress(start time.Time, durationMin int, now time.Time) float64 {
	if durationMin <= 0 {
		return 0
	}
	p := now.Sub(start).Minutes() / float64(durationMin)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// fastingStatus is the response shape for GET /api/fasting. State is "idle"
// or "running"; the time fields are only meaningful while running.
type fastingStatus struct {
	State        string     `json:"state"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	DurationMin  int        `json:"duration_min,omitempty"`
	ElapsedSec   int        `json:"elapsed_sec,omitempty"`
	RemainingSec int        `json:"remaining_sec,omitempty"`
	Progress     float64    `json:"progress,omitempty"`
	OverTime     bool       `json:"over_time,omitempty"`
}

// buildFastingStatus derives the countdown view from the persisted fast state.
func buildFastingStatus(s userSettings, now time.Time) fastingStatus {
	if s.FastingStartedAt == nil {
		return fastingStatus{State: "idle"}
	}
	start := *s.FastingStartedAt
	remaining := fastingRemaining(start, s.FastingDurationMin, now)
	return fastingStatus{
		State:        "running",
		StartedAt:    &start,
		DurationMin:  s.FastingDurationMin,
		ElapsedSec:   int(now.Sub(start).Seconds()),
		RemainingSec: int(remaining.Seconds()),
		Progress:     fastingProgress(start, s.FastingDurationMin, now),
		OverTime:     remaining <= 0,
	}
}

// fastingNotificationID keys the completion reminder per user. One id per
// user means rescheduling replaces rather than stacking — the completion
// signal fires at most once per fast.
func fastingNotificationID(userID int) string {
	return fmt.Sprintf("fasting-complete-%d", userID)
}

// completionPending reports whether a running fast's completion signal is
// still ahead: the window measured against durationMin has time left. Once a
// window has elapsed the reminder is spent for this fast; changing the
// protocol afterwards must not re-arm it, even if the new window would put
// the fire time back in the future.
func completionPending(start time.Time, durationMin int, now time.Time) bool {
	return fastingRemaining(start, durationMin, now) > 0
}

// resolveFastingDuration turns a protocol name (+ optional custom minutes)
// into a window length. Returns 0 for anything unusable.
func resolveFastingDuration(protocol string, customMin int) int {
	if minutes, ok := fastingProtocols[protocol]; ok {
		return minutes
	}
	if protocol == "custom" && customMin > 0 {
		return customMin
	}
	return 0
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getFastingStatus returns the current fast countdown.
// GET /api/fasting.
func (h *Handler) getFastingStatus(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[userSettings](h.db, c,
		"SELECT * FROM user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		return
	}

	c.JSON(http.StatusOK, buildFastingStatus(s, time.Now()))
}

// startFast begins a fast: records the start timestamp and window length and
// schedules the completion reminder. Starting while already running restarts
// the fast (idle → running is the only transition into a fresh window).
// POST /api/fasting/start. Body: { "protocol": "16:8" } or
// { "protocol": "custom", "duration_min": 900 }.
func (h *Handler) startFast(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Protocol    string `json:"protocol"`
		DurationMin int    `json:"duration_min"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	duration := resolveFastingDuration(body.Protocol, body.DurationMin)
	if duration <= 0 {
		apiError(c, http.StatusBadRequest, "protocol must be one of: 12:12, 14:10, 16:8, custom (with duration_min)")
		return
	}

	now := time.Now()
	s, err := queryOne[userSettings](h.db, c,
		`UPDATE user_settings
		 SET fasting_started_at = @startedAt, fasting_duration_min = @durationMin
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"userID": userID, "startedAt": now, "durationMin": duration})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to start fast")
		return
	}

	h.notify.Schedule(fastingNotificationID(userID),
		now.Add(time.Duration(duration)*time.Minute),
		"Fast complete", "Your fasting window is over — time to eat.")

	c.JSON(http.StatusOK, buildFastingStatus(s, now))
}

// changeFastingProtocol updates the window length of a running fast without
// resetting the start timestamp — elapsed time is preserved and the remaining
// time recalculates immediately against the new target. The completion
// reminder moves to the new fire time, unless it already fired for this fast.
// POST /api/fasting/protocol.
func (h *Handler) changeFastingProtocol(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Protocol    string `json:"protocol"`
		DurationMin int    `json:"duration_min"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	duration := resolveFastingDuration(body.Protocol, body.DurationMin)
	if duration <= 0 {
		apiError(c, http.StatusBadRequest, "protocol must be one of: 12:12, 14:10, 16:8, custom (with duration_min)")
		return
	}

	// The old window length decides whether the completion reminder already
	// fired, so read it before overwriting.
	prev, err := queryOne[userSettings](h.db, c,
		"SELECT * FROM user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		return
	}

	s, err := queryOne[userSettings](h.db, c,
		`UPDATE user_settings SET fasting_duration_min = @durationMin
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"userID": userID, "durationMin": duration})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update protocol")
		return
	}

	now := time.Now()
	// Reschedule only while the previous window has not elapsed: the signal
	// fires at most once per fast, and once spent neither a lengthened nor a
	// shortened window may fire it again.
	if s.FastingStartedAt != nil && completionPending(*s.FastingStartedAt, prev.FastingDurationMin, now) {
		h.notify.Schedule(fastingNotificationID(userID),
			s.FastingStartedAt.Add(time.Duration(duration)*time.Minute),
			"Fast complete", "Your fasting window is over — time to eat.")
	}

	c.JSON(http.StatusOK, buildFastingStatus(s, now))
}

// endFast clears the active fast and cancels any pending completion reminder.
// Ending while idle is a no-op that still returns the idle status.
// POST /api/fasting/end.
func (h *Handler) endFast(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[userSettings](h.db, c,
		`UPDATE user_settings SET fasting_started_at = NULL
		 WHERE user_id = @userID RETURNING *`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to end fast")
		return
	}

	h.notify.Cancel(fastingNotificationID(userID))

	c.JSON(http.StatusOK, buildFastingStatus(s, time.Now()))
}
