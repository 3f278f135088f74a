package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/* ─── Progress core ──────────────────────────────────────────────────── */

// activityProgress returns current/goal clamped to [0,1], and 0 for a goal of
// zero or less — no goal means nothing to be a fraction of.
func activityProgress(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	p := current / goal
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// combinedMetric is the displayed value of an activity metric: the sensed
// reading plus the manual-adjustment delta, floored at zero.
func combinedMetric(sensed, manual float64) float64 {
	v := sensed + manual
	if v < 0 {
		return 0
	}
	return v
}

// manualDelta derives the stored manual adjustment from a user-entered total
// and the last sensed reading. Keeping the delta (not the total) means a new
// sensed reading shifts the displayed value without discarding what the user
// added by hand.
func manualDelta(displayedTotal, sensed float64) float64 {
	return displayedTotal - sensed
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// recordSensedActivity ingests a device reading for a day. Only provided
// metrics are touched; manual deltas are preserved across refreshes.
// POST /api/days/:date/activity/sensed.
func (h *Handler) recordSensedActivity(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var body struct {
		Steps          *int     `json:"steps"`
		DistanceKM     *float64 `json:"distance_km"`
		CaloriesBurned *int     `json:"calories_burned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if (body.Steps != nil && *body.Steps < 0) ||
		(body.DistanceKM != nil && *body.DistanceKM < 0) ||
		(body.CaloriesBurned != nil && *body.CaloriesBurned < 0) {
		apiError(c, http.StatusBadRequest, "sensed values must not be negative")
		return
	}

	d, err := h.days.mutate(c, userID, date, func(d *day) error {
		if body.Steps != nil {
			d.StepsSensed = *body.Steps
		}
		if body.DistanceKM != nil {
			d.DistanceSensedKM = *body.DistanceKM
		}
		if body.CaloriesBurned != nil {
			d.BurnSensed = *body.CaloriesBurned
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to record activity")
		return
	}

	c.JSON(http.StatusOK, d)
}

// validActivityMetrics is the set of adjustable activity metrics.
var validActivityMetrics = map[string]bool{
	"steps":           true,
	"distance_km":     true,
	"calories_burned": true,
}

// setManualActivityTotal records a user-entered total for one metric. The
// stored adjustment is the delta against the current sensed reading.
// POST /api/days/:date/activity/manual.
func (h *Handler) setManualActivityTotal(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var body struct {
		Metric string  `json:"metric"`
		Total  float64 `json:"total"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validActivityMetrics[body.Metric] {
		apiError(c, http.StatusBadRequest, "metric must be one of: steps, distance_km, calories_burned")
		return
	}
	if body.Total < 0 {
		apiError(c, http.StatusBadRequest, "total must not be negative")
		return
	}

	d, err := h.days.mutate(c, userID, date, func(d *day) error {
		switch body.Metric {
		case "steps":
			d.StepsManual = int(manualDelta(body.Total, float64(d.StepsSensed)))
		case "distance_km":
			d.DistanceManualKM = manualDelta(body.Total, d.DistanceSensedKM)
		case "calories_burned":
			d.BurnManual = int(manualDelta(body.Total, float64(d.BurnSensed)))
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to adjust activity")
		return
	}

	c.JSON(http.StatusOK, d)
}
