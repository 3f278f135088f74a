package main

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Account & settings ─────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userSettings maps to user_settings. One row per user holding the active
// calorie goal, the strategies that produced it, body-profile fields used for
// the maintenance baseline, week/display preferences, activity goals, and the
// persisted fasting state.
type userSettings struct {
	UserID        int    `json:"user_id"        db:"user_id"`
	CalorieGoal   int    `json:"calorie_goal"   db:"calorie_goal"`
	GoalStrategy  string `json:"goal_strategy"  db:"goal_strategy"`
	SplitStrategy string `json:"split_strategy" db:"split_strategy"`

	// Profile fields — all nullable; zero-knowledge rows still work.
	Sex           *string   `json:"sex"            db:"sex"`
	DateOfBirth   *DateOnly `json:"date_of_birth"  db:"date_of_birth"`
	HeightCM      *float64  `json:"height_cm"      db:"height_cm"`
	WeightKG      *float64  `json:"weight_kg"      db:"weight_kg"`
	ActivityLevel *string   `json:"activity_level" db:"activity_level"`

	WeekStartsMonday bool `json:"week_starts_monday" db:"week_starts_monday"`

	StepGoal       int     `json:"step_goal"        db:"step_goal"`
	DistanceGoalKM float64 `json:"distance_goal_km" db:"distance_goal_km"`
	BurnGoal       int     `json:"burn_goal"        db:"burn_goal"`

	// Active fast: non-nil FastingStartedAt means a fast is running.
	FastingStartedAt   *time.Time `json:"fasting_started_at"   db:"fasting_started_at"`
	FastingDurationMin int        `json:"fasting_duration_min" db:"fasting_duration_min"`

	// Computed field — maintenance calories from the body profile; not stored.
	// db:"-" tells RowToStructByName to skip it during scanning.
	ComputedMaintenance *int `json:"computed_maintenance,omitempty" db:"-"`
}

/* ─── Macros ─────────────────────────────────────────────────────────── */

// trackedMacro maps to tracked_macros: a nutrient the user tracks against a
// daily target. Identity is a uuid, stable once created; the target is mutable.
type trackedMacro struct {
	ID        string     `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Unit      string     `json:"unit" db:"unit"`
	Target    float64    `json:"target" db:"target"`
	Color     string     `json:"color" db:"color"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// macroConsumption maps to macro_consumptions: the cumulative amount of one
// tracked macro consumed on one calendar day. One row per (day, macro),
// created lazily on first contribution. Name and Unit are display snapshots
// updated to the latest contribution's values.
type macroConsumption struct {
	ID       string   `json:"id" db:"id"`
	UserID   int      `json:"user_id" db:"user_id"`
	Date     DateOnly `json:"date" db:"date"`
	MacroID  string   `json:"macro_id" db:"macro_id"`
	Name     string   `json:"name" db:"name"`
	Unit     string   `json:"unit" db:"unit"`
	Consumed float64  `json:"consumed" db:"consumed"`
}

// mealMacroEntry is one macro contribution inside a meal intake entry.
// Stored as part of the entry's jsonb macros column.
type mealMacroEntry struct {
	MacroID string  `json:"macro_id"`
	Name    string  `json:"name"`
	Unit    string  `json:"unit"`
	Amount  float64 `json:"amount"`
}

// mealMacroList is the jsonb-backed macro contribution list of an entry.
// Implements driver.Valuer so pgx can encode it as a query parameter under
// the simple query protocol; scanning goes through pgx's jsonb codec.
type mealMacroList []mealMacroEntry

func (l mealMacroList) Value() (driver.Value, error) {
	if l == nil {
		l = mealMacroList{}
	}
	return json.Marshal(l)
}

// mealIntakeEntry maps to meal_intake_entries. Immutable once created except
// for deletion; the per-day entry list is the source of truth for the day's
// calorie and macro aggregates.
type mealIntakeEntry struct {
	ID        string           `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Date      DateOnly         `json:"date" db:"date"`
	Meal      string           `json:"meal" db:"meal"`
	ItemName  string           `json:"item_name" db:"item_name"`
	Portion   string           `json:"portion" db:"portion"`
	Calories  int              `json:"calories" db:"calories"`
	Macros    mealMacroList    `json:"macros" db:"macros"`
	CreatedAt *time.Time       `json:"created_at" db:"created_at"`
}

/* ─── Day aggregate ──────────────────────────────────────────────────── */

// supplementSet is one day's taken-state for a supplement list. Preset items
// are tracked by stable preset ids, user-created items by their uuids — the
// two never collide, so renaming a custom item can't shadow a preset.
type supplementSet struct {
	PresetIDs []string `json:"preset_ids"`
	CustomIDs []string `json:"custom_ids"`
}

func (s supplementSet) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// day is the aggregate root for one (user, calendar date): scalar columns map
// to the days table; entries and consumptions live in their own tables and
// are attached on load. CaloriesConsumed is derived from the entry list and
// never stored.
type day struct {
	UserID      int      `json:"user_id" db:"user_id"`
	Date        DateOnly `json:"date" db:"date"`
	CalorieGoal int      `json:"calorie_goal" db:"calorie_goal"`

	NutritionTaken supplementSet `json:"nutrition_taken" db:"nutrition_taken"`
	WorkoutTaken   supplementSet `json:"workout_taken" db:"workout_taken"`

	// Activity metrics: sensed comes from the device feed, manual is the
	// user-adjustment delta. The displayed value is sensed+manual floored at
	// zero; neither component is shown on its own.
	StepsSensed      int     `json:"steps_sensed" db:"steps_sensed"`
	StepsManual      int     `json:"steps_manual" db:"steps_manual"`
	DistanceSensedKM float64 `json:"distance_sensed_km" db:"distance_sensed_km"`
	DistanceManualKM float64 `json:"distance_manual_km" db:"distance_manual_km"`
	BurnSensed       int     `json:"burn_sensed" db:"burn_sensed"`
	BurnManual       int     `json:"burn_manual" db:"burn_manual"`

	CaloriesConsumed int                `json:"calories_consumed" db:"-"`
	Entries          []mealIntakeEntry  `json:"entries" db:"-"`
	Consumptions     []macroConsumption `json:"consumptions" db:"-"`
}

/* ─── Body progress, supplements, training, sport ────────────────────── */

// progressEntry maps to progress_entries: a dated body-composition snapshot.
type progressEntry struct {
	ID         string     `json:"id" db:"id"`
	UserID     int        `json:"user_id" db:"user_id"`
	Date       DateOnly   `json:"date" db:"date"`
	WeightKG   float64    `json:"weight_kg" db:"weight_kg"`
	WaterPct   *float64   `json:"water_pct" db:"water_pct"`
	BodyFatPct *float64   `json:"body_fat_pct" db:"body_fat_pct"`
	PhotoURL   *string    `json:"photo_url" db:"photo_url"`
	CreatedAt  *time.Time `json:"created_at" db:"created_at"`
}

// supplement maps to supplements: a user-defined trackable item. Presets are
// static in code (see supplements.go) and never hit this table.
type supplement struct {
	ID     string `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
	Kind   string `json:"kind" db:"kind"` // nutrition | workout
}

// weightGroup maps to weight_groups: a body-part group of exercises.
type weightGroup struct {
	ID     string `json:"id" db:"id"`
	UserID int    `json:"user_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
}

// weightExercise maps to weight_exercises. The last-logged fields are
// free-text — "8-10" reps or "2x45kg + bar" are valid logs.
type weightExercise struct {
	ID         string    `json:"id" db:"id"`
	GroupID    string    `json:"group_id" db:"group_id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	LastWeight string    `json:"last_weight" db:"last_weight"`
	LastSets   string    `json:"last_sets" db:"last_sets"`
	LastReps   string    `json:"last_reps" db:"last_reps"`
	LoggedOn   *DateOnly `json:"logged_on" db:"logged_on"`
}

// sportMetric is one named value inside a sport activity record (jsonb).
type sportMetric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// sportMetricList is the jsonb-backed metric list of a sport record.
type sportMetricList []sportMetric

func (l sportMetricList) Value() (driver.Value, error) {
	if l == nil {
		l = sportMetricList{}
	}
	return json.Marshal(l)
}

// sportActivityRecord maps to sport_activity_records: one logged session of a
// sport on a date, carrying an open-ended metric list.
type sportActivityRecord struct {
	ID        string          `json:"id" db:"id"`
	UserID    int             `json:"user_id" db:"user_id"`
	Sport     string          `json:"sport" db:"sport"`
	Date      DateOnly        `json:"date" db:"date"`
	Metrics   sportMetricList `json:"metrics" db:"metrics"`
	CreatedAt *time.Time      `json:"created_at" db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// logIntakeRequest is the request body for POST /api/days/:date/intake.
type logIntakeRequest struct {
	Meal     string        `json:"meal"`
	ItemName string        `json:"item_name"`
	Portion  string        `json:"portion"`
	Calories int           `json:"calories"`
	Macros   mealMacroList `json:"macros"`
}

// patchSettingsRequest is the request body for PATCH /api/settings.
// All fields are pointers — only non-nil fields get written to the database.
type patchSettingsRequest struct {
	CalorieGoal   *int    `json:"calorie_goal"`
	GoalStrategy  *string `json:"goal_strategy"`
	SplitStrategy *string `json:"split_strategy"`

	Sex           *string  `json:"sex"`
	DateOfBirth   *string  `json:"date_of_birth"` // YYYY-MM-DD string, stored as date
	HeightCM      *float64 `json:"height_cm"`
	WeightKG      *float64 `json:"weight_kg"`
	ActivityLevel *string  `json:"activity_level"`

	WeekStartsMonday *bool `json:"week_starts_monday"`

	StepGoal       *int     `json:"step_goal"`
	DistanceGoalKM *float64 `json:"distance_goal_km"`
	BurnGoal       *int     `json:"burn_goal"`
}
