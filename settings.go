package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getUserSettings returns the settings row for the authenticated user.
// The computed_maintenance field is populated when the body profile is complete.
// GET /api/settings.
func (h *Handler) getUserSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[userSettings](h.db, c,
		"SELECT * FROM user_settings WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "settings not found")
		return
	}

	populateComputedMaintenance(&s)

	c.JSON(http.StatusOK, s)
}

// patchUserSettings updates only the provided settings fields.
// PATCH /api/settings. Uses pointer fields in the request body to distinguish
// "not provided" from zero — only non-nil fields get updated.
//
// Strategy coupling after the update:
//   - a manual calorie_goal edit switches goal_strategy to "custom"
//   - a non-custom goal_strategy recomputes the goal from maintenance calories
//   - a non-custom split_strategy rewrites the protein/fat/carb macro targets
func (h *Handler) patchUserSettings(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enums before saving — an unknown value silently breaks all
	// future goal recomputation with no visible error.
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[*body.ActivityLevel]; !ok {
			apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, active, very_active")
			return
		}
	}
	if body.GoalStrategy != nil {
		if _, ok := goalAdjustments[*body.GoalStrategy]; !ok {
			apiError(c, http.StatusBadRequest, "unknown goal_strategy")
			return
		}
	}
	if body.SplitStrategy != nil && !validSplitStrategies[*body.SplitStrategy] {
		apiError(c, http.StatusBadRequest, "split_strategy must be one of: high_protein, balanced, low_fat, low_carb, custom")
		return
	}
	if body.DateOfBirth != nil {
		if _, err := parseDate(*body.DateOfBirth); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date_of_birth, expected YYYY-MM-DD")
			return
		}
	}

	// A named goal strategy derives the calorie goal from maintenance calories.
	// Check the baseline against the row this patch would produce before
	// writing anything — a 409 must leave the stored strategy and goal
	// consistent with each other.
	if body.GoalStrategy != nil && *body.GoalStrategy != "custom" {
		current, err := queryOne[userSettings](h.db, c,
			"SELECT * FROM user_settings WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID})
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch settings")
			return
		}
		preview := applySettingsPatch(current, body)
		if _, ok := computeMaintenance(&preview); !ok {
			apiError(c, http.StatusConflict, "goal_strategy requires a complete body profile (sex, date_of_birth, height_cm, weight_kg, activity_level)")
			return
		}
	}

	// Build SET clause dynamically — only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}

	if body.CalorieGoal != nil {
		setClauses = append(setClauses, "calorie_goal = @calorieGoal")
		args["calorieGoal"] = *body.CalorieGoal
	}
	if body.GoalStrategy != nil {
		setClauses = append(setClauses, "goal_strategy = @goalStrategy")
		args["goalStrategy"] = *body.GoalStrategy
	}
	if body.SplitStrategy != nil {
		setClauses = append(setClauses, "split_strategy = @splitStrategy")
		args["splitStrategy"] = *body.SplitStrategy
	}
	if body.Sex != nil {
		setClauses = append(setClauses, "sex = @sex")
		args["sex"] = *body.Sex
	}
	if body.DateOfBirth != nil {
		setClauses = append(setClauses, "date_of_birth = @dateOfBirth")
		args["dateOfBirth"] = *body.DateOfBirth
	}
	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.ActivityLevel != nil {
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = *body.ActivityLevel
	}
	if body.WeekStartsMonday != nil {
		setClauses = append(setClauses, "week_starts_monday = @weekStartsMonday")
		args["weekStartsMonday"] = *body.WeekStartsMonday
	}
	if body.StepGoal != nil {
		setClauses = append(setClauses, "step_goal = @stepGoal")
		args["stepGoal"] = *body.StepGoal
	}
	if body.DistanceGoalKM != nil {
		setClauses = append(setClauses, "distance_goal_km = @distanceGoalKM")
		args["distanceGoalKM"] = *body.DistanceGoalKM
	}
	if body.BurnGoal != nil {
		setClauses = append(setClauses, "burn_goal = @burnGoal")
		args["burnGoal"] = *body.BurnGoal
	}

	// Editing the goal number by hand means the user is no longer following a
	// named strategy. An explicit goal_strategy in the same request wins.
	if body.CalorieGoal != nil && body.GoalStrategy == nil {
		setClauses = append(setClauses, "goal_strategy = 'custom'")
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE user_settings SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	s, err := queryOne[userSettings](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update settings")
		return
	}

	// Recompute the goal from the maintenance baseline validated above.
	if body.GoalStrategy != nil && *body.GoalStrategy != "custom" {
		if maintenance, ok := computeMaintenance(&s); ok {
			rec := recommendCalorieGoal(s.GoalStrategy, maintenance)
			updated, err := queryOne[userSettings](h.db, c,
				"UPDATE user_settings SET calorie_goal = @goal WHERE user_id = @userID RETURNING *",
				pgx.NamedArgs{"goal": rec.Value, "userID": userID})
			if err != nil {
				log.Printf("[patchUserSettings] goal recompute failed for user %d: %v", userID, err)
			} else {
				s = updated
			}
		}
	}

	// A named split strategy rewrites the targets of the canonical macros.
	if body.SplitStrategy != nil && *body.SplitStrategy != "custom" {
		if err := h.applyMacroSplit(c, userID, &s); err != nil {
			log.Printf("[patchUserSettings] split apply failed for user %d: %v", userID, err)
		}
	}

	populateComputedMaintenance(&s)

	c.JSON(http.StatusOK, s)
}

// applyMacroSplit computes gram targets for the active split strategy and
// writes them onto the user's protein/fat/carb macros, creating any that are
// missing. Macros beyond the canonical three keep their targets untouched.
func (h *Handler) applyMacroSplit(c *gin.Context, userID int, s *userSettings) error {
	weight := 0.0
	if s.WeightKG != nil {
		weight = *s.WeightKG
	}
	split, ok := computeMacroSplit(s.SplitStrategy, float64(s.CalorieGoal), weight)
	if !ok {
		return fmt.Errorf("no split for strategy %q", s.SplitStrategy)
	}

	tracked, err := queryMany[trackedMacro](h.db, c,
		"SELECT * FROM tracked_macros WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return err
	}

	byCanonical := map[string]*trackedMacro{}
	for i := range tracked {
		if canon := canonicalMacroName(tracked[i].Name); canon != "" {
			byCanonical[canon] = &tracked[i]
		}
	}

	for _, canon := range []string{"protein", "fats", "carbs"} {
		target, ok := splitTargetFor(canon, split)
		if !ok {
			continue
		}
		if m, found := byCanonical[canon]; found {
			_, err = h.db.Exec(c,
				"UPDATE tracked_macros SET target = @target WHERE id = @id AND user_id = @userID",
				pgx.NamedArgs{"target": target, "id": m.ID, "userID": userID})
		} else {
			_, err = h.db.Exec(c,
				`INSERT INTO tracked_macros (id, user_id, name, unit, target, color)
				 VALUES (@id, @userID, @name, 'g', @target, @color)`,
				pgx.NamedArgs{
					"id": uuid.New().String(), "userID": userID,
					"name": defaultMacroNames[canon], "target": target,
					"color": defaultMacroColors[canon],
				})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// applySettingsPatch overlays the non-nil request fields onto a settings row,
// producing the row a PATCH would persist. Pure — used to check derived
// values (the maintenance baseline) before anything is written.
func applySettingsPatch(s userSettings, p patchSettingsRequest) userSettings {
	if p.CalorieGoal != nil {
		s.CalorieGoal = *p.CalorieGoal
	}
	if p.GoalStrategy != nil {
		s.GoalStrategy = *p.GoalStrategy
	}
	if p.SplitStrategy != nil {
		s.SplitStrategy = *p.SplitStrategy
	}
	if p.Sex != nil {
		s.Sex = p.Sex
	}
	if p.DateOfBirth != nil {
		if t, err := parseDate(*p.DateOfBirth); err == nil {
			s.DateOfBirth = &DateOnly{t}
		}
	}
	if p.HeightCM != nil {
		s.HeightCM = p.HeightCM
	}
	if p.WeightKG != nil {
		s.WeightKG = p.WeightKG
	}
	if p.ActivityLevel != nil {
		s.ActivityLevel = p.ActivityLevel
	}
	if p.WeekStartsMonday != nil {
		s.WeekStartsMonday = *p.WeekStartsMonday
	}
	if p.StepGoal != nil {
		s.StepGoal = *p.StepGoal
	}
	if p.DistanceGoalKM != nil {
		s.DistanceGoalKM = *p.DistanceGoalKM
	}
	if p.BurnGoal != nil {
		s.BurnGoal = *p.BurnGoal
	}
	return s
}

var defaultMacroNames = map[string]string{
	"protein": "Protein",
	"fats":    "Fat",
	"carbs":   "Carbs",
}

var defaultMacroColors = map[string]string{
	"protein": "#E4572E",
	"fats":    "#F3A712",
	"carbs":   "#29B6A8",
}
