package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getProgressEntries returns body-composition snapshots within [start, end].
// GET /api/progress?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getProgressEntries(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := queryMany[progressEntry](h.db, c,
		`SELECT * FROM progress_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress entries")
		return
	}
	if entries == nil {
		entries = []progressEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertProgressEntry creates or updates the snapshot for the given date.
// POST /api/progress. One snapshot per day is the expectation; posting the
// same date updates in place via the UNIQUE(user_id, date) constraint.
func (h *Handler) upsertProgressEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date       string   `json:"date"`
		WeightKG   float64  `json:"weight_kg"`
		WaterPct   *float64 `json:"water_pct"`
		BodyFatPct *float64 `json:"body_fat_pct"`
		PhotoURL   *string  `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.WeightKG <= 0 || body.WeightKG > 999.9 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}
	if body.WaterPct != nil && (*body.WaterPct < 0 || *body.WaterPct > 100) {
		apiError(c, http.StatusBadRequest, "water_pct must be between 0 and 100")
		return
	}
	if body.BodyFatPct != nil && (*body.BodyFatPct < 0 || *body.BodyFatPct > 100) {
		apiError(c, http.StatusBadRequest, "body_fat_pct must be between 0 and 100")
		return
	}

	entry, err := queryOne[progressEntry](h.db, c,
		`INSERT INTO progress_entries (id, user_id, date, weight_kg, water_pct, body_fat_pct, photo_url)
		 VALUES (@id, @userID, @date, @weightKG, @waterPct, @bodyFatPct, @photoURL)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			weight_kg    = EXCLUDED.weight_kg,
			water_pct    = EXCLUDED.water_pct,
			body_fat_pct = EXCLUDED.body_fat_pct,
			photo_url    = EXCLUDED.photo_url
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.New().String(), "userID": userID, "date": body.Date,
			"weightKG": body.WeightKG, "waterPct": body.WaterPct,
			"bodyFatPct": body.BodyFatPct, "photoURL": body.PhotoURL,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert progress entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateProgressEntry partially updates an existing snapshot.
// PUT /api/progress/:id. Uses COALESCE so omitted fields keep their current values.
func (h *Handler) updateProgressEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date       *string  `json:"date"`
		WeightKG   *float64 `json:"weight_kg"`
		WaterPct   *float64 `json:"water_pct"`
		BodyFatPct *float64 `json:"body_fat_pct"`
		PhotoURL   *string  `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse("2006-01-02", *body.Date); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	if body.WeightKG != nil && (*body.WeightKG <= 0 || *body.WeightKG > 999.9) {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999.9")
		return
	}

	entry, err := queryOne[progressEntry](h.db, c,
		`UPDATE progress_entries SET
			date         = COALESCE(@date, date),
			weight_kg    = COALESCE(@weightKG, weight_kg),
			water_pct    = COALESCE(@waterPct, water_pct),
			body_fat_pct = COALESCE(@bodyFatPct, body_fat_pct),
			photo_url    = COALESCE(@photoURL, photo_url)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "date": body.Date,
			"weightKG": body.WeightKG, "waterPct": body.WaterPct,
			"bodyFatPct": body.BodyFatPct, "photoURL": body.PhotoURL,
		})
	if err != nil {
		// Distinguish a missing row from a real DB failure so callers get an
		// actionable status code rather than a misleading 404.
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "progress entry not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update progress entry")
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteProgressEntry removes a snapshot by ID.
// DELETE /api/progress/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteProgressEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM progress_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete progress entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "progress entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
