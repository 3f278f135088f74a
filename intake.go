package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// validMealTypes is the set of allowed meal slots for an intake entry.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

/* ─── Ledger core ────────────────────────────────────────────────────── */

// recomputeCalories rebuilds the day's calorie total from its entry list.
// The entry list is the source of truth; the total is a derived cache, so the
// entries/total consistency invariant can't be violated by a missed patch.
func recomputeCalories(d *day) {
	total := 0
	for i := range d.Entries {
		total += d.Entries[i].Calories
	}
	if total < 0 {
		total = 0
	}
	d.CaloriesConsumed = total
}

// logIntake appends an entry to the day's ledger, recomputes the calorie
// total, and applies each macro contribution to the day's consumption records.
func logIntake(d *day, e mealIntakeEntry) {
	d.Entries = append(d.Entries, e)
	recomputeCalories(d)
	for _, m := range e.Macros {
		applyContribution(d, m.MacroID, m.Amount, m.Unit, m.Name)
	}
}

// deleteIntake removes the entry with the given id, reversing its calorie and
// macro contributions. An unknown id is a no-op, not an error — the second
// tap on a delete button must not corrupt anything.
func deleteIntake(d *day, entryID string) (mealIntakeEntry, bool) {
	for i := range d.Entries {
		if d.Entries[i].ID != entryID {
			continue
		}
		e := d.Entries[i]
		d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
		recomputeCalories(d)
		for _, m := range e.Macros {
			reverseContribution(d, m.MacroID, m.Amount)
		}
		return e, true
	}
	return mealIntakeEntry{}, false
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// createIntakeEntry logs a meal intake entry against a day.
// POST /api/days/:date/intake.
func (h *Handler) createIntakeEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var body logIntakeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ItemName == "" {
		apiError(c, http.StatusBadRequest, "item_name is required")
		return
	}
	if !validMealTypes[body.Meal] {
		apiError(c, http.StatusBadRequest, "meal must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Calories < 0 {
		apiError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	for _, m := range body.Macros {
		if m.MacroID == "" {
			apiError(c, http.StatusBadRequest, "each macro contribution needs a macro_id")
			return
		}
		if m.Amount < 0 {
			apiError(c, http.StatusBadRequest, "macro amounts must not be negative")
			return
		}
	}

	t, _ := parseDate(date)
	now := time.Now()
	entry := mealIntakeEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      DateOnly{t},
		Meal:      body.Meal,
		ItemName:  body.ItemName,
		Portion:   body.Portion,
		Calories:  body.Calories,
		Macros:    body.Macros,
		CreatedAt: &now,
	}

	d, err := h.days.mutate(c, userID, date, func(d *day) error {
		logIntake(d, entry)
		// Entry rows are append-only; persist the row alongside the aggregate.
		if err := h.days.insertEntry(c, &entry); err != nil {
			logSaveFailure("createIntakeEntry", userID, date, err)
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log intake")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry, "day": d})
}

// deleteIntakeEntry removes a logged entry and reverses its contributions.
// DELETE /api/days/:date/intake/:id. Deleting an unknown id succeeds — the
// ledger treats it as already gone.
func (h *Handler) deleteIntakeEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}
	entryID := c.Param("id")

	_, err := h.days.mutate(c, userID, date, func(d *day) error {
		if _, found := deleteIntake(d, entryID); found {
			if err := h.days.removeEntry(c, userID, entryID); err != nil {
				logSaveFailure("deleteIntakeEntry", userID, date, err)
			}
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete intake entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// adjustMacroConsumption applies a manual delta to one macro's consumption
// for a day, floored at zero. Used by the manual-adjustment flow outside meal
// logging.
// POST /api/days/:date/macro-adjust.
func (h *Handler) adjustMacroConsumption(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var body struct {
		MacroID string  `json:"macro_id"`
		Delta   float64 `json:"delta"`
		Name    string  `json:"name"`
		Unit    string  `json:"unit"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MacroID == "" {
		apiError(c, http.StatusBadRequest, "macro_id is required")
		return
	}

	d, err := h.days.mutate(c, userID, date, func(d *day) error {
		if body.Delta >= 0 {
			applyContribution(d, body.MacroID, body.Delta, body.Unit, body.Name)
		} else {
			reverseContribution(d, body.MacroID, -body.Delta)
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to adjust macro")
		return
	}

	c.JSON(http.StatusOK, d)
}
