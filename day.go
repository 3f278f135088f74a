package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Response shapes ────────────────────────────────────────────────── */

// macroStatus is one tracked macro's target-vs-consumed standing for a day.
// Every tracked macro appears, logged or not — an untouched macro reads as 0.
type macroStatus struct {
	MacroID  string  `json:"macro_id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Label    string  `json:"label"`
	Target   float64 `json:"target"`
	Consumed float64 `json:"consumed"`
	Percent  float64 `json:"percent"`
}

// metricStatus is one activity metric's combined value and goal progress.
type metricStatus struct {
	Value    float64 `json:"value"`
	Goal     float64 `json:"goal"`
	Progress float64 `json:"progress"`
}

// dailySummary is the response shape for GET /api/days/:date.
type dailySummary struct {
	Date             string            `json:"date"`
	CalorieGoal      int               `json:"calorie_goal"`
	CaloriesConsumed int               `json:"calories_consumed"`
	CalorieProgress  float64           `json:"calorie_progress"`
	Macros           []macroStatus     `json:"macros"`
	Entries          []mealIntakeEntry `json:"entries"`
	NutritionTaken   supplementSet     `json:"nutrition_taken"`
	WorkoutTaken     supplementSet     `json:"workout_taken"`
	Steps            metricStatus      `json:"steps"`
	DistanceKM       metricStatus      `json:"distance_km"`
	CaloriesBurned   metricStatus      `json:"calories_burned"`
}

// buildMacroStatuses resolves each tracked macro's day standing. Resolution
// order per macro: id match, case-insensitive name match, then zero.
func buildMacroStatuses(tracked []trackedMacro, consumptions []macroConsumption) []macroStatus {
	statuses := make([]macroStatus, 0, len(tracked))
	for _, m := range tracked {
		consumed := resolveConsumption(m, consumptions)
		statuses = append(statuses, macroStatus{
			MacroID:  m.ID,
			Name:     m.Name,
			Unit:     m.Unit,
			Label:    formatValue(consumed, m.Unit),
			Target:   m.Target,
			Consumed: consumed,
			Percent:  percentConsumed(m, macroConsumption{Consumed: consumed}),
		})
	}
	return statuses
}

// buildDailySummary shapes a day aggregate for the API using the user's
// tracked macros and activity goals.
func buildDailySummary(d day, tracked []trackedMacro, settings userSettings) dailySummary {
	entries := d.Entries
	if entries == nil {
		entries = []mealIntakeEntry{}
	}
	return dailySummary{
		Date:             d.Date.Format("2006-01-02"),
		CalorieGoal:      d.CalorieGoal,
		CaloriesConsumed: d.CaloriesConsumed,
		CalorieProgress:  activityProgress(float64(d.CaloriesConsumed), float64(d.CalorieGoal)),
		Macros:           buildMacroStatuses(tracked, d.Consumptions),
		Entries:          entries,
		NutritionTaken:   d.NutritionTaken,
		WorkoutTaken:     d.WorkoutTaken,
		Steps: metricStatus{
			Value:    combinedMetric(float64(d.StepsSensed), float64(d.StepsManual)),
			Goal:     float64(settings.StepGoal),
			Progress: activityProgress(combinedMetric(float64(d.StepsSensed), float64(d.StepsManual)), float64(settings.StepGoal)),
		},
		DistanceKM: metricStatus{
			Value:    combinedMetric(d.DistanceSensedKM, d.DistanceManualKM),
			Goal:     settings.DistanceGoalKM,
			Progress: activityProgress(combinedMetric(d.DistanceSensedKM, d.DistanceManualKM), settings.DistanceGoalKM),
		},
		CaloriesBurned: metricStatus{
			Value:    combinedMetric(float64(d.BurnSensed), float64(d.BurnManual)),
			Goal:     float64(settings.BurnGoal),
			Progress: activityProgress(combinedMetric(float64(d.BurnSensed), float64(d.BurnManual)), float64(settings.BurnGoal)),
		},
	}
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// getDailySummary returns the full day aggregate with computed standings.
// GET /api/days/:date. Pass ?refresh=true to reconcile the cached aggregate
// against the database first (empty remote lists never erase local data).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var (
		d   day
		err error
	)
	if c.Query("refresh") == "true" {
		d, err = h.days.refresh(c, userID, date)
	} else {
		d, err = h.days.view(c, userID, date)
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch day")
		return
	}

	tracked, err := queryMany[trackedMacro](h.db, c,
		`SELECT * FROM tracked_macros WHERE user_id = @userID ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch macros")
		return
	}

	settings, err := queryOne[userSettings](h.db, c,
		"SELECT * FROM user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		return
	}

	c.JSON(http.StatusOK, buildDailySummary(d, tracked, settings))
}
