package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

/* ─── Week bucketing core ────────────────────────────────────────────── */

// normalizeDate strips the time-of-day and pins the date to UTC midnight.
// All week arithmetic happens on normalized dates so a week never gains or
// loses a day across timezone boundaries.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the first day of the week containing anchor, honoring
// the configured week start. Uses AddDate to safely handle month/year
// boundaries — direct day subtraction can produce day=0 or negative, which
// time.Date normalizes but is confusing.
func startOfWeek(anchor time.Time, startsMonday bool) time.Time {
	t := normalizeDate(anchor)
	weekday := int(t.Weekday()) // 0=Sun
	var daysBack int
	if startsMonday {
		daysBack = (weekday + 6) % 7
	} else {
		daysBack = weekday
	}
	return t.AddDate(0, 0, -daysBack)
}

// weekDaySummary is one day's bucket in the GET /api/week response. Future
// days are placeholders — "not yet" is not the same as "logged nothing".
type weekDaySummary struct {
	Date        DateOnly      `json:"date"`
	IsFuture    bool          `json:"is_future"`
	HasData     bool          `json:"has_data"`
	CalorieGoal int           `json:"calorie_goal"`
	Calories    int           `json:"calories"`
	Macros      []macroStatus `json:"macros"`
}

// buildWeek buckets per-day aggregates into the 7-day window containing
// anchor. Always exactly 7 entries; every tracked macro appears in each
// non-future bucket, with consumed==0 when nothing was logged. lookup returns
// the day's aggregate or nil when the date has no data.
func buildWeek(anchor time.Time, startsMonday bool, tracked []trackedMacro, lookup func(time.Time) *day, today time.Time) []weekDaySummary {
	start := startOfWeek(anchor, startsMonday)
	todayNorm := normalizeDate(today)

	week := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		bucket := weekDaySummary{
			Date:     DateOnly{date},
			IsFuture: date.After(todayNorm),
			Macros:   []macroStatus{},
		}
		if !bucket.IsFuture {
			var consumptions []macroConsumption
			if d := lookup(date); d != nil {
				bucket.HasData = len(d.Entries) > 0 || len(d.Consumptions) > 0
				bucket.CalorieGoal = d.CalorieGoal
				bucket.Calories = d.CaloriesConsumed
				consumptions = d.Consumptions
			}
			bucket.Macros = buildMacroStatuses(tracked, consumptions)
		}
		week[i] = bucket
	}
	return week
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// getWeekSummary returns the 7-day window containing the anchor date.
// GET /api/week?anchor=YYYY-MM-DD (defaults to today). The anchor day is
// served from the day cache so a just-logged meal shows up immediately; the
// other six days come from the database.
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	anchorStr := c.DefaultQuery("anchor", time.Now().UTC().Format("2006-01-02"))
	anchor, err := parseDate(anchorStr)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid anchor, expected YYYY-MM-DD")
		return
	}

	settings, err := queryOne[userSettings](h.db, c,
		"SELECT * FROM user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch settings")
		return
	}

	tracked, err := queryMany[trackedMacro](h.db, c,
		`SELECT * FROM tracked_macros WHERE user_id = @userID ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch macros")
		return
	}

	start := startOfWeek(anchor, settings.WeekStartsMonday)
	end := start.AddDate(0, 0, 6)
	rangeArgs := pgx.NamedArgs{
		"userID": userID,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	// Per-day calorie totals across the window, derived from the entry rows.
	calRows, err := queryMany[struct {
		Date     DateOnly `db:"date"`
		Calories int      `db:"calories"`
	}](h.db, c,
		`SELECT date, COALESCE(SUM(calories), 0)::int AS calories
		 FROM meal_intake_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 GROUP BY date`, rangeArgs)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	consRows, err := queryMany[macroConsumption](h.db, c,
		`SELECT * FROM macro_consumptions
		 WHERE user_id = @userID AND date >= @start AND date <= @end`, rangeArgs)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	dayRows, err := queryMany[struct {
		Date        DateOnly `db:"date"`
		CalorieGoal int      `db:"calorie_goal"`
	}](h.db, c,
		`SELECT date, calorie_goal FROM days
		 WHERE user_id = @userID AND date >= @start AND date <= @end`, rangeArgs)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	// Index everything by date string for O(1) bucket assembly.
	byDate := make(map[string]*day)
	ensure := func(dateStr string) *day {
		d, ok := byDate[dateStr]
		if !ok {
			t, _ := parseDate(dateStr)
			d = &day{UserID: userID, Date: DateOnly{t}, CalorieGoal: settings.CalorieGoal}
			byDate[dateStr] = d
		}
		return d
	}
	for _, r := range calRows {
		d := ensure(r.Date.Format("2006-01-02"))
		d.CaloriesConsumed = r.Calories
		if d.CaloriesConsumed > 0 {
			// A calorie total implies entries exist; mark the bucket non-empty.
			d.Entries = []mealIntakeEntry{{}}
		}
	}
	for _, r := range consRows {
		d := ensure(r.Date.Format("2006-01-02"))
		d.Consumptions = append(d.Consumptions, r)
	}
	for _, r := range dayRows {
		ensure(r.Date.Format("2006-01-02")).CalorieGoal = r.CalorieGoal
	}

	// Freshness over consistency for the anchor day: the cached aggregate has
	// any mutation from this session, even if its save is still in flight.
	if cached, err := h.days.view(c, userID, anchor.Format("2006-01-02")); err == nil {
		cd := cached
		byDate[anchorStr] = &cd
	}

	lookup := func(t time.Time) *day {
		return byDate[t.Format("2006-01-02")]
	}

	// Today must be taken in UTC like every other date here, or future-day
	// marking shifts by one near midnight on a non-UTC server.
	c.JSON(http.StatusOK, buildWeek(anchor, settings.WeekStartsMonday, tracked, lookup, time.Now().UTC()))
}
