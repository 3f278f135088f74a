package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/* ─── Weight groups ──────────────────────────────────────────────────── */

// getWeightGroups returns the user's exercise groups ordered by name.
// GET /api/training/groups.
func (h *Handler) getWeightGroups(c *gin.Context) {
	userID := c.GetInt("user_id")

	groups, err := queryMany[weightGroup](h.db, c,
		"SELECT * FROM weight_groups WHERE user_id = @userID ORDER BY name",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch groups")
		return
	}
	if groups == nil {
		groups = []weightGroup{}
	}

	c.JSON(http.StatusOK, groups)
}

// createWeightGroup creates a new exercise group.
// POST /api/training/groups.
func (h *Handler) createWeightGroup(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	group, err := queryOne[weightGroup](h.db, c,
		`INSERT INTO weight_groups (id, user_id, name)
		 VALUES (@id, @userID, @name)
		 RETURNING *`,
		pgx.NamedArgs{"id": uuid.New().String(), "userID": userID, "name": body.Name})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create group")
		return
	}

	c.JSON(http.StatusCreated, group)
}

// updateWeightGroup renames a group.
// PUT /api/training/groups/:id.
func (h *Handler) updateWeightGroup(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	group, err := queryOne[weightGroup](h.db, c,
		`UPDATE weight_groups SET name = @name
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "name": body.Name})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "group not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update group")
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// deleteWeightGroup removes a group and all its exercises.
// DELETE /api/training/groups/:id.
func (h *Handler) deleteWeightGroup(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	// Exercises go first; the schema has no ON DELETE CASCADE so orphans would
	// otherwise block the group delete.
	_, err := h.db.Exec(c,
		"DELETE FROM weight_exercises WHERE group_id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete group")
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM weight_groups WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete group")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "group not found")
		return
	}

	c.Status(http.StatusNoContent)
}

/* ─── Weight exercises ───────────────────────────────────────────────── */

// getWeightExercises returns the exercises of one group.
// GET /api/training/groups/:id/exercises.
func (h *Handler) getWeightExercises(c *gin.Context) {
	userID := c.GetInt("user_id")
	groupID := c.Param("id")

	exercises, err := queryMany[weightExercise](h.db, c,
		`SELECT * FROM weight_exercises
		 WHERE group_id = @groupID AND user_id = @userID
		 ORDER BY name`,
		pgx.NamedArgs{"groupID": groupID, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch exercises")
		return
	}
	if exercises == nil {
		exercises = []weightExercise{}
	}

	c.JSON(http.StatusOK, exercises)
}

// createWeightExercise adds an exercise to a group. The last-logged fields
// start empty; they fill in on the first PUT.
// POST /api/training/groups/:id/exercises.
func (h *Handler) createWeightExercise(c *gin.Context) {
	userID := c.GetInt("user_id")
	groupID := c.Param("id")

	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	// Group must exist and belong to the caller.
	if _, err := queryOne[weightGroup](h.db, c,
		"SELECT * FROM weight_groups WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": groupID, "userID": userID}); err != nil {
		apiError(c, http.StatusNotFound, "group not found")
		return
	}

	exercise, err := queryOne[weightExercise](h.db, c,
		`INSERT INTO weight_exercises (id, group_id, user_id, name, last_weight, last_sets, last_reps)
		 VALUES (@id, @groupID, @userID, @name, '', '', '')
		 RETURNING *`,
		pgx.NamedArgs{
			"id": uuid.New().String(), "groupID": groupID,
			"userID": userID, "name": body.Name,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create exercise")
		return
	}

	c.JSON(http.StatusCreated, exercise)
}

// updateWeightExercise updates an exercise's name or last-logged performance.
// Logging any of weight/sets/reps stamps logged_on with today unless the
// client sends an explicit date. Uses COALESCE for partial updates.
// PUT /api/training/exercises/:id.
func (h *Handler) updateWeightExercise(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Name       *string `json:"name"`
		LastWeight *string `json:"last_weight"`
		LastSets   *string `json:"last_sets"`
		LastReps   *string `json:"last_reps"`
		LoggedOn   *string `json:"logged_on"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LoggedOn != nil {
		if _, err := parseDate(*body.LoggedOn); err != nil {
			apiError(c, http.StatusBadRequest, "invalid logged_on, expected YYYY-MM-DD")
			return
		}
	}

	loggedOn := body.LoggedOn
	if loggedOn == nil && (body.LastWeight != nil || body.LastSets != nil || body.LastReps != nil) {
		today := time.Now().UTC().Format("2006-01-02")
		loggedOn = &today
	}

	exercise, err := queryOne[weightExercise](h.db, c,
		`UPDATE weight_exercises SET
			name        = COALESCE(@name, name),
			last_weight = COALESCE(@lastWeight, last_weight),
			last_sets   = COALESCE(@lastSets, last_sets),
			last_reps   = COALESCE(@lastReps, last_reps),
			logged_on   = COALESCE(@loggedOn, logged_on)
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID, "name": body.Name,
			"lastWeight": body.LastWeight, "lastSets": body.LastSets,
			"lastReps": body.LastReps, "loggedOn": loggedOn,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "exercise not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update exercise")
		}
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// deleteWeightExercise removes one exercise.
// DELETE /api/training/exercises/:id.
func (h *Handler) deleteWeightExercise(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_exercises WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete exercise")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "exercise not found")
		return
	}

	c.Status(http.StatusNoContent)
}
