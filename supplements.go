package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/* ─── Presets ────────────────────────────────────────────────────────── */

// supplementPreset is a built-in trackable item. Presets carry stable
// "preset:" ids that can never collide with the uuids of user-created items,
// so renaming a custom item cannot shadow a preset.
type supplementPreset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

var supplementPresets = []supplementPreset{
	{ID: "preset:creatine", Name: "Creatine", Kind: "nutrition"},
	{ID: "preset:omega-3", Name: "Omega-3", Kind: "nutrition"},
	{ID: "preset:vitamin-d", Name: "Vitamin D", Kind: "nutrition"},
	{ID: "preset:magnesium", Name: "Magnesium", Kind: "nutrition"},
	{ID: "preset:multivitamin", Name: "Multivitamin", Kind: "nutrition"},
	{ID: "preset:protein-shake", Name: "Protein Shake", Kind: "workout"},
	{ID: "preset:pre-workout", Name: "Pre-Workout", Kind: "workout"},
	{ID: "preset:electrolytes", Name: "Electrolytes", Kind: "workout"},
}

var presetByID = func() map[string]supplementPreset {
	m := make(map[string]supplementPreset, len(supplementPresets))
	for _, p := range supplementPresets {
		m[p.ID] = p
	}
	return m
}()

// validSupplementKinds is the set of supplement lists a day tracks.
var validSupplementKinds = map[string]bool{
	"nutrition": true,
	"workout":   true,
}

// toggleID adds id to ids if absent, removes it if present. Returns the new
// slice and whether the id is now present.
func toggleID(ids []string, id string) ([]string, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...), false
		}
	}
	return append(ids, id), true
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// listSupplements returns the preset catalog plus the user's custom items.
// GET /api/supplements.
func (h *Handler) listSupplements(c *gin.Context) {
	userID := c.GetInt("user_id")

	custom, err := queryMany[supplement](h.db, c,
		`SELECT * FROM supplements WHERE user_id = @userID ORDER BY name`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch supplements")
		return
	}
	if custom == nil {
		custom = []supplement{}
	}

	c.JSON(http.StatusOK, gin.H{"presets": supplementPresets, "custom": custom})
}

// createSupplement adds a user-defined supplement.
// POST /api/supplements.
func (h *Handler) createSupplement(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if !validSupplementKinds[body.Kind] {
		apiError(c, http.StatusBadRequest, "kind must be one of: nutrition, workout")
		return
	}

	s, err := queryOne[supplement](h.db, c,
		`INSERT INTO supplements (id, user_id, name, kind)
		 VALUES (@id, @userID, @name, @kind)
		 RETURNING *`,
		pgx.NamedArgs{"id": uuid.New().String(), "userID": userID, "name": body.Name, "kind": body.Kind})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create supplement")
		return
	}

	c.JSON(http.StatusCreated, s)
}

// deleteSupplement removes a user-defined supplement from the catalog. Taken
// marks on past days keep the id; they read as an unknown (deleted) item.
// DELETE /api/supplements/:id.
func (h *Handler) deleteSupplement(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM supplements WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete supplement")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "supplement not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// toggleSupplementTaken flips one supplement's taken-state on a day. This is
// the high-frequency path, so the mutation touches only the relevant id set —
// the partial-update contract of the sync layer.
// POST /api/days/:date/supplements/toggle. Body: { "kind": "nutrition",
// "id": "preset:creatine" } (preset id or custom uuid).
func (h *Handler) toggleSupplementTaken(c *gin.Context) {
	userID := c.GetInt("user_id")
	date, ok := requireDateParam(c)
	if !ok {
		return
	}

	var body struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validSupplementKinds[body.Kind] {
		apiError(c, http.StatusBadRequest, "kind must be one of: nutrition, workout")
		return
	}
	if body.ID == "" {
		apiError(c, http.StatusBadRequest, "id is required")
		return
	}
	_, isPreset := presetByID[body.ID]

	var taken bool
	d, err := h.days.mutate(c, userID, date, func(d *day) error {
		set := &d.NutritionTaken
		if body.Kind == "workout" {
			set = &d.WorkoutTaken
		}
		if isPreset {
			set.PresetIDs, taken = toggleID(set.PresetIDs, body.ID)
		} else {
			set.CustomIDs, taken = toggleID(set.CustomIDs, body.ID)
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to toggle supplement")
		return
	}

	c.JSON(http.StatusOK, gin.H{"taken": taken, "nutrition_taken": d.NutritionTaken, "workout_taken": d.WorkoutTaken})
}
