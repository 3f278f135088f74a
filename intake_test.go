package main

import (
	"testing"
	"time"
)

func testDay() *day {
	return &day{
		UserID: 1,
		Date:   DateOnly{time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
	}
}

func entryWithMacros(id string, calories int, macros mealMacroList) mealIntakeEntry {
	return mealIntakeEntry{
		ID:       id,
		UserID:   1,
		Meal:     "lunch",
		ItemName: "test item",
		Calories: calories,
		Macros:   macros,
	}
}

/* ─── Ledger invariant tests ─────────────────────────────────────────── */

// TestLogIntake_TotalsFollowEntries verifies the day calorie total always
// equals the sum of the entry list after every log.
func TestLogIntake_TotalsFollowEntries(t *testing.T) {
	d := testDay()

	logIntake(d, entryWithMacros("a", 500, nil))
	if d.CaloriesConsumed != 500 {
		t.Errorf("after first entry CaloriesConsumed = %d, want 500", d.CaloriesConsumed)
	}

	logIntake(d, entryWithMacros("b", 300, nil))
	if d.CaloriesConsumed != 800 {
		t.Errorf("after second entry CaloriesConsumed = %d, want 800", d.CaloriesConsumed)
	}
	if len(d.Entries) != 2 {
		t.Errorf("entry count = %d, want 2", len(d.Entries))
	}
}

// TestLogThenDelete_RestoresTotals verifies logging two entries and deleting
// the first leaves exactly the second entry's contributions.
func TestLogThenDelete_RestoresTotals(t *testing.T) {
	d := testDay()
	logIntake(d, entryWithMacros("a", 500, mealMacroList{
		{MacroID: "m1", Name: "Protein", Unit: "g", Amount: 50},
	}))
	logIntake(d, entryWithMacros("b", 300, mealMacroList{
		{MacroID: "m1", Name: "Protein", Unit: "g", Amount: 20},
	}))

	if _, found := deleteIntake(d, "a"); !found {
		t.Fatal("deleteIntake did not find entry a")
	}

	if d.CaloriesConsumed != 300 {
		t.Errorf("CaloriesConsumed = %d, want 300", d.CaloriesConsumed)
	}
	if len(d.Entries) != 1 || d.Entries[0].ID != "b" {
		t.Fatalf("entries = %+v, want only entry b", d.Entries)
	}
	if got := d.Consumptions[0].Consumed; got != 20 {
		t.Errorf("protein consumed = %v, want 20", got)
	}
}

// TestDeleteIntake_UnknownIDIsNoOp verifies deleting a missing id changes
// nothing and reports found=false.
func TestDeleteIntake_UnknownIDIsNoOp(t *testing.T) {
	d := testDay()
	logIntake(d, entryWithMacros("a", 500, nil))

	if _, found := deleteIntake(d, "ghost"); found {
		t.Error("deleteIntake found a ghost entry")
	}
	if d.CaloriesConsumed != 500 || len(d.Entries) != 1 {
		t.Errorf("no-op delete mutated the day: calories=%d entries=%d", d.CaloriesConsumed, len(d.Entries))
	}
}

/* ─── Contribution tests ─────────────────────────────────────────────── */

// TestApplyContribution_LazyCreateAndAccumulate verifies the consumption
// record appears on first contribution and accumulates afterwards.
func TestApplyContribution_LazyCreateAndAccumulate(t *testing.T) {
	d := testDay()

	applyContribution(d, "m1", 30, "g", "Protein")
	if len(d.Consumptions) != 1 {
		t.Fatalf("consumption count = %d, want 1", len(d.Consumptions))
	}
	applyContribution(d, "m1", 20, "g", "Protein")
	if len(d.Consumptions) != 1 {
		t.Fatalf("second contribution created a duplicate record")
	}
	if d.Consumptions[0].Consumed != 50 {
		t.Errorf("consumed = %v, want 50", d.Consumptions[0].Consumed)
	}
}

// TestApplyContribution_NameUnitFollowLatest verifies the display snapshot
// fields take the latest contribution's values (last write wins).
func TestApplyContribution_NameUnitFollowLatest(t *testing.T) {
	d := testDay()
	applyContribution(d, "m1", 30, "g", "Protein")
	applyContribution(d, "m1", 5, "mg", "protein")
	if d.Consumptions[0].Name != "protein" || d.Consumptions[0].Unit != "mg" {
		t.Errorf("snapshot = %s/%s, want protein/mg", d.Consumptions[0].Name, d.Consumptions[0].Unit)
	}
}

// TestReverseContribution_FloorsAtZero verifies reversing more than was
// consumed clamps to zero instead of going negative.
func TestReverseContribution_FloorsAtZero(t *testing.T) {
	d := testDay()
	applyContribution(d, "m1", 10, "g", "Protein")
	reverseContribution(d, "m1", 25)
	if d.Consumptions[0].Consumed != 0 {
		t.Errorf("consumed = %v, want 0", d.Consumptions[0].Consumed)
	}
}

// TestReverseContribution_MissingRecordIsNoOp verifies reversing an unknown
// macro does nothing.
func TestReverseContribution_MissingRecordIsNoOp(t *testing.T) {
	d := testDay()
	reverseContribution(d, "ghost", 25)
	if len(d.Consumptions) != 0 {
		t.Errorf("reverse created a record: %+v", d.Consumptions)
	}
}

/* ─── Resolution tests ───────────────────────────────────────────────── */

// TestResolveConsumption_Precedence verifies id match wins over name match,
// name matching is case-insensitive, and an untouched macro resolves to 0.
func TestResolveConsumption_Precedence(t *testing.T) {
	consumptions := []macroConsumption{
		{MacroID: "old-id", Name: "Protein", Consumed: 40},
		{MacroID: "m2", Name: "Carbs", Consumed: 120},
	}

	byID := trackedMacro{ID: "m2", Name: "Carbohydrates"}
	if got := resolveConsumption(byID, consumptions); got != 120 {
		t.Errorf("id match = %v, want 120", got)
	}

	byName := trackedMacro{ID: "new-id", Name: "PROTEIN"}
	if got := resolveConsumption(byName, consumptions); got != 40 {
		t.Errorf("case-insensitive name match = %v, want 40", got)
	}

	untouched := trackedMacro{ID: "m9", Name: "Fiber"}
	if got := resolveConsumption(untouched, consumptions); got != 0 {
		t.Errorf("untouched macro = %v, want 0", got)
	}
}

// TestPercentConsumed_Clamps verifies the [0,1] clamp and the zero-target rule.
func TestPercentConsumed_Clamps(t *testing.T) {
	m := trackedMacro{Target: 100}
	if got := percentConsumed(m, macroConsumption{Consumed: 50}); got != 0.5 {
		t.Errorf("half consumed = %v, want 0.5", got)
	}
	if got := percentConsumed(m, macroConsumption{Consumed: 250}); got != 1 {
		t.Errorf("over target = %v, want 1", got)
	}
	noGoal := trackedMacro{Target: 0}
	if got := percentConsumed(noGoal, macroConsumption{Consumed: 50}); got != 0 {
		t.Errorf("zero target = %v, want 0", got)
	}
}

/* ─── Summary shaping tests ──────────────────────────────────────────── */

// TestBuildMacroStatuses_EveryMacroAppears verifies every tracked macro gets
// a status row, logged or not.
func TestBuildMacroStatuses_EveryMacroAppears(t *testing.T) {
	tracked := []trackedMacro{
		{ID: "m1", Name: "Protein", Unit: "g", Target: 150},
		{ID: "m2", Name: "Fiber", Unit: "g", Target: 30},
	}
	consumptions := []macroConsumption{{MacroID: "m1", Name: "Protein", Consumed: 75}}

	statuses := buildMacroStatuses(tracked, consumptions)
	if len(statuses) != 2 {
		t.Fatalf("status count = %d, want 2", len(statuses))
	}
	if statuses[0].Consumed != 75 || statuses[0].Percent != 0.5 {
		t.Errorf("protein status = %+v, want consumed 75 percent 0.5", statuses[0])
	}
	if statuses[1].Consumed != 0 || statuses[1].Percent != 0 {
		t.Errorf("fiber status = %+v, want zeros", statuses[1])
	}
	if statuses[0].Label != "75 g" {
		t.Errorf("protein label = %q, want \"75 g\"", statuses[0].Label)
	}
}
