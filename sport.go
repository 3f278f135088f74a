package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getSportActivities returns logged sport sessions, newest first, optionally
// filtered by sport and date range.
// GET /api/sport?sport=…&start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getSportActivities(c *gin.Context) {
	userID := c.GetInt("user_id")

	clauses := []string{"user_id = @userID"}
	args := pgx.NamedArgs{"userID": userID}

	if sport := c.Query("sport"); sport != "" {
		clauses = append(clauses, "sport = @sport")
		args["sport"] = sport
	}
	if start := c.Query("start"); start != "" {
		if _, err := parseDate(start); err != nil {
			apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "date >= @start")
		args["start"] = start
	}
	if end := c.Query("end"); end != "" {
		if _, err := parseDate(end); err != nil {
			apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
			return
		}
		clauses = append(clauses, "date <= @end")
		args["end"] = end
	}

	records, err := queryMany[sportActivityRecord](h.db, c,
		`SELECT * FROM sport_activity_records
		 WHERE `+strings.Join(clauses, " AND ")+`
		 ORDER BY date DESC, created_at DESC`, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch activities")
		return
	}
	if records == nil {
		records = []sportActivityRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// validateSportMetrics checks a metric list for empty or duplicate keys and
// negative values. Returns a client-facing message, or "" when the list is fine.
func validateSportMetrics(metrics sportMetricList) string {
	seen := map[string]bool{}
	for _, m := range metrics {
		if m.Key == "" {
			return "each metric needs a key"
		}
		if seen[m.Key] {
			return "duplicate metric key: " + m.Key
		}
		seen[m.Key] = true
		if m.Value < 0 {
			return "metric values must not be negative"
		}
	}
	return ""
}

// createSportActivity logs one sport session with its open-ended metric list.
// Metric values must be non-negative; keys must be unique within the record.
// POST /api/sport.
func (h *Handler) createSportActivity(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Sport   string          `json:"sport"`
		Date    string          `json:"date"`
		Metrics sportMetricList `json:"metrics"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Sport == "" {
		apiError(c, http.StatusBadRequest, "sport is required")
		return
	}
	t, err := parseDate(body.Date)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if msg := validateSportMetrics(body.Metrics); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	record, err := queryOne[sportActivityRecord](h.db, c,
		`INSERT INTO sport_activity_records (id, user_id, sport, date, metrics)
		 VALUES (@id, @userID, @sport, @date, @metrics)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.New().String(), "userID": userID,
			"sport": body.Sport, "date": t.Format("2006-01-02"),
			"metrics": body.Metrics,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log activity")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// updateSportActivity partially updates one logged session by record id.
// PUT /api/sport/:id. Uses COALESCE so omitted fields keep their current
// values; a provided metrics list replaces the stored one wholesale.
func (h *Handler) updateSportActivity(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Sport   *string          `json:"sport"`
		Date    *string          `json:"date"`
		Metrics *sportMetricList `json:"metrics"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Sport != nil && *body.Sport == "" {
		apiError(c, http.StatusBadRequest, "sport must not be empty")
		return
	}
	if body.Date != nil {
		if _, err := parseDate(*body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	var metricsArg any
	if body.Metrics != nil {
		if msg := validateSportMetrics(*body.Metrics); msg != "" {
			apiError(c, http.StatusBadRequest, msg)
			return
		}
		metricsArg = *body.Metrics
	}

	record, err := queryOne[sportActivityRecord](h.db, c,
		`UPDATE sport_activity_records SET
			sport   = COALESCE(@sport, sport),
			date    = COALESCE(@date, date),
			metrics = COALESCE(@metrics, metrics)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"sport": body.Sport, "date": body.Date, "metrics": metricsArg,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "activity not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update activity")
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// deleteSportActivity removes one logged session.
// DELETE /api/sport/:id.
func (h *Handler) deleteSportActivity(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM sport_activity_records WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete activity")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "activity not found")
		return
	}

	c.Status(http.StatusNoContent)
}
