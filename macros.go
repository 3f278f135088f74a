package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/* ─── Aggregation core ───────────────────────────────────────────────── */

// percentConsumed returns consumed/target clamped to [0,1]. A target of zero
// or less means "no meaningful goal" and always reads as 0, never a division
// blow-up.
func percentConsumed(m trackedMacro, c macroConsumption) float64 {
	if m.Target <= 0 {
		return 0
	}
	p := c.Consumed / m.Target
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// applyContribution adds amount to the day's consumption record for macroID,
// creating the record lazily on first contribution. The consumed total is
// cumulative and floored at zero; name and unit are display snapshots that
// follow the latest contribution (last write wins).
func applyContribution(d *day, macroID string, amount float64, unit, name string) {
	for i := range d.Consumptions {
		if d.Consumptions[i].MacroID == macroID {
			d.Consumptions[i].Consumed += amount
			if d.Consumptions[i].Consumed < 0 {
				d.Consumptions[i].Consumed = 0
			}
			d.Consumptions[i].Name = name
			d.Consumptions[i].Unit = unit
			return
		}
	}
	consumed := amount
	if consumed < 0 {
		consumed = 0
	}
	d.Consumptions = append(d.Consumptions, macroConsumption{
		ID:       uuid.New().String(),
		UserID:   d.UserID,
		Date:     d.Date,
		MacroID:  macroID,
		Name:     name,
		Unit:     unit,
		Consumed: consumed,
	})
}

// reverseContribution subtracts amount from the day's consumption record for
// macroID, floored at zero. A missing record is a no-op — there is nothing to
// reverse.
func reverseContribution(d *day, macroID string, amount float64) {
	for i := range d.Consumptions {
		if d.Consumptions[i].MacroID == macroID {
			d.Consumptions[i].Consumed -= amount
			if d.Consumptions[i].Consumed < 0 {
				d.Consumptions[i].Consumed = 0
			}
			return
		}
	}
}

// resolveConsumption finds the consumption value for a tracked macro on a day:
// exact id match first, then case-insensitive name match (legacy/renamed
// macros), defaulting to 0. A tracked macro with nothing logged still resolves
// to a zero value rather than being absent.
func resolveConsumption(m trackedMacro, consumptions []macroConsumption) float64 {
	for i := range consumptions {
		if consumptions[i].MacroID == m.ID {
			return consumptions[i].Consumed
		}
	}
	for i := range consumptions {
		if strings.EqualFold(consumptions[i].Name, m.Name) {
			return consumptions[i].Consumed
		}
	}
	return 0
}

/* ─── Tracked macro handlers ─────────────────────────────────────────── */

// getTrackedMacros returns the user's tracked macro list.
// GET /api/macros.
func (h *Handler) getTrackedMacros(c *gin.Context) {
	userID := c.GetInt("user_id")

	macros, err := queryMany[trackedMacro](h.db, c,
		`SELECT * FROM tracked_macros WHERE user_id = @userID ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch macros")
		return
	}
	if macros == nil {
		macros = []trackedMacro{}
	}

	c.JSON(http.StatusOK, macros)
}

// createTrackedMacro adds a macro to the tracked list with a fresh uuid.
// POST /api/macros.
func (h *Handler) createTrackedMacro(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name   string  `json:"name"`
		Unit   string  `json:"unit"`
		Target float64 `json:"target"`
		Color  string  `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if body.Target < 0 {
		apiError(c, http.StatusBadRequest, "target must not be negative")
		return
	}
	if body.Unit == "" {
		body.Unit = "g"
	}

	m, err := queryOne[trackedMacro](h.db, c,
		`INSERT INTO tracked_macros (id, user_id, name, unit, target, color)
		 VALUES (@id, @userID, @name, @unit, @target, @color)
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.New().String(), "userID": userID,
			"name": body.Name, "unit": body.Unit,
			"target": body.Target, "color": body.Color,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create macro")
		return
	}

	c.JSON(http.StatusCreated, m)
}

// updateTrackedMacro edits a tracked macro's mutable fields. Identity stays
// fixed; only display fields and the target change.
// PUT /api/macros/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateTrackedMacro(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Name   *string  `json:"name"`
		Unit   *string  `json:"unit"`
		Target *float64 `json:"target"`
		Color  *string  `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Target != nil && *body.Target < 0 {
		apiError(c, http.StatusBadRequest, "target must not be negative")
		return
	}

	m, err := queryOne[trackedMacro](h.db, c,
		`UPDATE tracked_macros SET
			name   = COALESCE(@name, name),
			unit   = COALESCE(@unit, unit),
			target = COALESCE(@target, target),
			color  = COALESCE(@color, color)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"name": body.Name, "unit": body.Unit,
			"target": body.Target, "color": body.Color,
		})
	if err != nil {
		apiError(c, http.StatusNotFound, "macro not found")
		return
	}

	c.JSON(http.StatusOK, m)
}

// deleteTrackedMacro removes a macro from the tracked list. Historical
// consumption rows are kept — past days still render what was logged.
// DELETE /api/macros/:id.
func (h *Handler) deleteTrackedMacro(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM tracked_macros WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete macro")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "macro not found")
		return
	}

	c.Status(http.StatusNoContent)
}
