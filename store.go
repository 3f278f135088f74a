package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dayStore is a two-tier store for Day aggregates: an in-memory authoritative
// cache keyed by (user, date) over Postgres. Every mutation holds the day's
// mutex for its whole read-modify-write sequence, so the totals and per-macro
// records can't drift apart under concurrent requests. A failed save is
// logged and the cached aggregate stays authoritative for the session — retry
// policy belongs to the database layer, not here.
type dayStore struct {
	db *pgxpool.Pool

	mu      sync.Mutex
	handles map[string]*dayHandle

	obsMu     sync.Mutex
	observers []func(userID int, date string)
}

// dayHandle serializes all access to one cached day. One mutex per day key —
// mutations on different days never contend.
type dayHandle struct {
	mu sync.Mutex
	d  *day
}

func newDayStore(db *pgxpool.Pool) *dayStore {
	return &dayStore{db: db, handles: make(map[string]*dayHandle)}
}

func dayKey(userID int, date string) string {
	return fmt.Sprintf("%d|%s", userID, date)
}

// onDayChanged registers an observer called after every day mutation, keyed by
// calendar date — same-day observers refresh, other days don't.
func (s *dayStore) onDayChanged(fn func(userID int, date string)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *dayStore) notifyChanged(userID int, date string) {
	s.obsMu.Lock()
	obs := make([]func(int, string), len(s.observers))
	copy(obs, s.observers)
	s.obsMu.Unlock()
	for _, fn := range obs {
		fn(userID, date)
	}
}

func (s *dayStore) handle(userID int, date string) *dayHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(userID, date)
	h, ok := s.handles[key]
	if !ok {
		h = &dayHandle{}
		s.handles[key] = h
	}
	return h
}

/* ─── Fetch / mutate ─────────────────────────────────────────────────── */

// view returns a copy of the day aggregate, loading it on first access
// (fetch-or-create). The cached copy wins over the database — optimistic
// local state must not flicker away while an async save is still in flight.
func (s *dayStore) view(ctx context.Context, userID int, date string) (day, error) {
	h := s.handle(userID, date)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.d == nil {
		d, err := s.load(ctx, userID, date)
		if err != nil {
			return day{}, err
		}
		h.d = d
	}
	return copyDay(h.d), nil
}

// mutate runs fn against the cached day aggregate under the day's lock, then
// persists the aggregate. fn returning an error aborts without persisting;
// a failed persist is logged and swallowed — the cache stays authoritative.
func (s *dayStore) mutate(ctx context.Context, userID int, date string, fn func(*day) error) (day, error) {
	h := s.handle(userID, date)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.d == nil {
		d, err := s.load(ctx, userID, date)
		if err != nil {
			return day{}, err
		}
		h.d = d
	}

	if err := fn(h.d); err != nil {
		return day{}, err
	}

	if err := s.save(ctx, h.d); err != nil {
		log.Printf("[dayStore] save failed for user %d date %s: %v", userID, date, err)
	}
	s.notifyChanged(userID, date)
	return copyDay(h.d), nil
}

// refresh re-reads the day from the database and merges it into the cache.
// This is the eventual-reconciliation path: remote data is taken where it is
// at least as complete, but an empty remote list never erases non-empty local
// entries.
func (s *dayStore) refresh(ctx context.Context, userID int, date string) (day, error) {
	h := s.handle(userID, date)
	h.mu.Lock()
	defer h.mu.Unlock()

	remote, err := s.load(ctx, userID, date)
	if err != nil {
		return day{}, err
	}
	if h.d == nil {
		h.d = remote
	} else {
		h.d = mergeDay(h.d, remote)
	}
	return copyDay(h.d), nil
}

/* ─── Merge rule ─────────────────────────────────────────────────────── */

// mergeDay reconciles an optimistic local aggregate with a later remote fetch.
// Remote wins field-by-field except where taking it would be a strict loss:
// empty remote lists keep the local ones, and zero remote counters keep a
// non-zero local value. Pure — no store access.
func mergeDay(local, remote *day) *day {
	merged := *remote

	if len(remote.Entries) == 0 && len(local.Entries) > 0 {
		merged.Entries = local.Entries
	}
	if len(remote.Consumptions) == 0 && len(local.Consumptions) > 0 {
		merged.Consumptions = local.Consumptions
	}
	merged.NutritionTaken = mergeSupplementSet(local.NutritionTaken, remote.NutritionTaken)
	merged.WorkoutTaken = mergeSupplementSet(local.WorkoutTaken, remote.WorkoutTaken)

	if remote.CalorieGoal == 0 && local.CalorieGoal != 0 {
		merged.CalorieGoal = local.CalorieGoal
	}
	if remote.StepsSensed == 0 && local.StepsSensed != 0 {
		merged.StepsSensed = local.StepsSensed
	}
	if remote.StepsManual == 0 && local.StepsManual != 0 {
		merged.StepsManual = local.StepsManual
	}
	if remote.DistanceSensedKM == 0 && local.DistanceSensedKM != 0 {
		merged.DistanceSensedKM = local.DistanceSensedKM
	}
	if remote.DistanceManualKM == 0 && local.DistanceManualKM != 0 {
		merged.DistanceManualKM = local.DistanceManualKM
	}
	if remote.BurnSensed == 0 && local.BurnSensed != 0 {
		merged.BurnSensed = local.BurnSensed
	}
	if remote.BurnManual == 0 && local.BurnManual != 0 {
		merged.BurnManual = local.BurnManual
	}

	recomputeCalories(&merged)
	return &merged
}

func mergeSupplementSet(local, remote supplementSet) supplementSet {
	out := remote
	if len(remote.PresetIDs) == 0 && len(local.PresetIDs) > 0 {
		out.PresetIDs = local.PresetIDs
	}
	if len(remote.CustomIDs) == 0 && len(local.CustomIDs) > 0 {
		out.CustomIDs = local.CustomIDs
	}
	return out
}

// copyDay deep-copies the slices so callers can't mutate the cache behind the
// day lock.
func copyDay(d *day) day {
	out := *d
	out.Entries = append([]mealIntakeEntry(nil), d.Entries...)
	out.Consumptions = append([]macroConsumption(nil), d.Consumptions...)
	out.NutritionTaken.PresetIDs = append([]string(nil), d.NutritionTaken.PresetIDs...)
	out.NutritionTaken.CustomIDs = append([]string(nil), d.NutritionTaken.CustomIDs...)
	out.WorkoutTaken.PresetIDs = append([]string(nil), d.WorkoutTaken.PresetIDs...)
	out.WorkoutTaken.CustomIDs = append([]string(nil), d.WorkoutTaken.CustomIDs...)
	return out
}

/* ─── Postgres tier ──────────────────────────────────────────────────── */

// load reads the full day aggregate from Postgres. A missing days row is the
// fetch-or-create case: the aggregate starts from defaults with the calorie
// goal snapshotted from the user's current settings, and is only inserted on
// the first save.
func (s *dayStore) load(ctx context.Context, userID int, date string) (*day, error) {
	args := pgx.NamedArgs{"userID": userID, "date": date}

	d, err := queryOne[day](s.db, ctx,
		`SELECT user_id, date, calorie_goal, nutrition_taken, workout_taken,
		        steps_sensed, steps_manual, distance_sensed_km, distance_manual_km,
		        burn_sensed, burn_manual
		 FROM days WHERE user_id = @userID AND date = @date`, args)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		t, perr := parseDate(date)
		if perr != nil {
			return nil, perr
		}
		d = day{UserID: userID, Date: DateOnly{t}}
		// Snapshot the current goal; a missing settings row just means goal 0.
		if settings, serr := queryOne[userSettings](s.db, ctx,
			"SELECT * FROM user_settings WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID}); serr == nil {
			d.CalorieGoal = settings.CalorieGoal
		}
	}

	entries, err := queryMany[mealIntakeEntry](s.db, ctx,
		`SELECT * FROM meal_intake_entries
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`, args)
	if err != nil {
		return nil, err
	}
	d.Entries = entries

	consumptions, err := queryMany[macroConsumption](s.db, ctx,
		`SELECT * FROM macro_consumptions
		 WHERE user_id = @userID AND date = @date`, args)
	if err != nil {
		return nil, err
	}
	d.Consumptions = consumptions

	recomputeCalories(&d)
	return &d, nil
}

// save upserts the day row and its consumption records. Entry rows are
// persisted individually by the intake handlers inside the same mutation.
func (s *dayStore) save(ctx context.Context, d *day) error {
	date := d.Date.Format("2006-01-02")
	_, err := s.db.Exec(ctx,
		`INSERT INTO days (user_id, date, calorie_goal, nutrition_taken, workout_taken,
		                   steps_sensed, steps_manual, distance_sensed_km, distance_manual_km,
		                   burn_sensed, burn_manual)
		 VALUES (@userID, @date, @calorieGoal, @nutritionTaken, @workoutTaken,
		         @stepsSensed, @stepsManual, @distanceSensedKM, @distanceManualKM,
		         @burnSensed, @burnManual)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			calorie_goal       = EXCLUDED.calorie_goal,
			nutrition_taken    = EXCLUDED.nutrition_taken,
			workout_taken      = EXCLUDED.workout_taken,
			steps_sensed       = EXCLUDED.steps_sensed,
			steps_manual       = EXCLUDED.steps_manual,
			distance_sensed_km = EXCLUDED.distance_sensed_km,
			distance_manual_km = EXCLUDED.distance_manual_km,
			burn_sensed        = EXCLUDED.burn_sensed,
			burn_manual        = EXCLUDED.burn_manual`,
		pgx.NamedArgs{
			"userID": d.UserID, "date": date, "calorieGoal": d.CalorieGoal,
			"nutritionTaken": d.NutritionTaken, "workoutTaken": d.WorkoutTaken,
			"stepsSensed": d.StepsSensed, "stepsManual": d.StepsManual,
			"distanceSensedKM": d.DistanceSensedKM, "distanceManualKM": d.DistanceManualKM,
			"burnSensed": d.BurnSensed, "burnManual": d.BurnManual,
		})
	if err != nil {
		return err
	}

	for i := range d.Consumptions {
		mc := &d.Consumptions[i]
		_, err = s.db.Exec(ctx,
			`INSERT INTO macro_consumptions (id, user_id, date, macro_id, name, unit, consumed)
			 VALUES (@id, @userID, @date, @macroID, @name, @unit, @consumed)
			 ON CONFLICT (user_id, date, macro_id) DO UPDATE SET
				name = EXCLUDED.name, unit = EXCLUDED.unit, consumed = EXCLUDED.consumed`,
			pgx.NamedArgs{
				"id": mc.ID, "userID": mc.UserID, "date": date,
				"macroID": mc.MacroID, "name": mc.Name, "unit": mc.Unit,
				"consumed": mc.Consumed,
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// insertEntry persists one meal intake entry row. Called inside a mutate fn.
func (s *dayStore) insertEntry(ctx context.Context, e *mealIntakeEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO meal_intake_entries (id, user_id, date, meal, item_name, portion, calories, macros)
		 VALUES (@id, @userID, @date, @meal, @itemName, @portion, @calories, @macros)`,
		pgx.NamedArgs{
			"id": e.ID, "userID": e.UserID, "date": e.Date.Format("2006-01-02"),
			"meal": e.Meal, "itemName": e.ItemName, "portion": e.Portion,
			"calories": e.Calories, "macros": e.Macros,
		})
	return err
}

// removeEntry deletes one meal intake entry row. Called inside a mutate fn.
func (s *dayStore) removeEntry(ctx context.Context, userID int, entryID string) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM meal_intake_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": entryID, "userID": userID})
	return err
}
