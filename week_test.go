package main

import (
	"testing"
	"time"
)

/* ─── Week boundary tests ────────────────────────────────────────────── */

// TestStartOfWeek_MondayStart verifies the Monday-start window for each day
// of a known week (2026-08-10 is a Monday).
func TestStartOfWeek_MondayStart(t *testing.T) {
	monday := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		anchor := monday.AddDate(0, 0, i)
		if got := startOfWeek(anchor, true); !got.Equal(monday) {
			t.Errorf("startOfWeek(%s, monday) = %s, want %s",
				anchor.Format("2006-01-02"), got.Format("2006-01-02"), monday.Format("2006-01-02"))
		}
	}
}

// TestStartOfWeek_SundayStart verifies the Sunday-start window.
func TestStartOfWeek_SundayStart(t *testing.T) {
	sunday := time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		anchor := sunday.AddDate(0, 0, i)
		if got := startOfWeek(anchor, false); !got.Equal(sunday) {
			t.Errorf("startOfWeek(%s, sunday) = %s, want %s",
				anchor.Format("2006-01-02"), got.Format("2006-01-02"), sunday.Format("2006-01-02"))
		}
	}
}

// TestStartOfWeek_MonthBoundary verifies a week spanning a month boundary
// resolves without day arithmetic glitches (2026-09-01 is a Tuesday).
func TestStartOfWeek_MonthBoundary(t *testing.T) {
	anchor := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := startOfWeek(anchor, true); !got.Equal(want) {
		t.Errorf("startOfWeek over month boundary = %s, want %s",
			got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

// TestNormalizeDate verifies time-of-day and zone are stripped.
func TestNormalizeDate(t *testing.T) {
	zone := time.FixedZone("plus2", 2*3600)
	in := time.Date(2026, 8, 10, 23, 45, 12, 999, zone)
	got := normalizeDate(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("normalizeDate left a time component: %v", got)
	}
	if got.Location() != time.UTC {
		t.Errorf("normalizeDate location = %v, want UTC", got.Location())
	}
}

/* ─── Week assembly tests ────────────────────────────────────────────── */

// TestBuildWeek_AlwaysSevenBuckets verifies the window is exactly 7 entries
// even with no data at all.
func TestBuildWeek_AlwaysSevenBuckets(t *testing.T) {
	anchor := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	week := buildWeek(anchor, true, nil, func(time.Time) *day { return nil }, today)
	if len(week) != 7 {
		t.Fatalf("bucket count = %d, want 7", len(week))
	}
	for i, b := range week {
		if b.HasData {
			t.Errorf("bucket %d has data with an empty lookup", i)
		}
	}
}

// TestBuildWeek_FutureDaysMarked verifies days after today are future
// placeholders with empty macro lists, while today itself is not.
func TestBuildWeek_FutureDaysMarked(t *testing.T) {
	// Week of Mon 2026-08-10; today is Wednesday the 12th.
	anchor := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	today := anchor
	tracked := []trackedMacro{{ID: "m1", Name: "Protein", Unit: "g", Target: 150}}

	week := buildWeek(anchor, true, tracked, func(time.Time) *day { return nil }, today)

	for i, b := range week {
		wantFuture := i > 2 // Mon, Tue, Wed are not future
		if b.IsFuture != wantFuture {
			t.Errorf("bucket %d IsFuture = %v, want %v", i, b.IsFuture, wantFuture)
		}
		if b.IsFuture && len(b.Macros) != 0 {
			t.Errorf("future bucket %d carries macro statuses", i)
		}
		if !b.IsFuture && len(b.Macros) != 1 {
			t.Errorf("non-future bucket %d macro count = %d, want 1", i, len(b.Macros))
		}
	}
}

// TestBuildWeek_TodayInUTC pins future marking to the UTC calendar day near
// midnight, where a zoned wall clock would already read as the next day.
func TestBuildWeek_TodayInUTC(t *testing.T) {
	// 23:30 UTC on Monday 2026-08-10; in UTC+10 this instant is Tuesday.
	instant := time.Date(2026, 8, 10, 23, 30, 0, 0, time.UTC)
	anchor := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	week := buildWeek(anchor, true, nil, func(time.Time) *day { return nil }, instant)
	if week[0].IsFuture {
		t.Error("today marked future")
	}
	if !week[1].IsFuture {
		t.Error("tomorrow not marked future")
	}

	// The same instant read in UTC+10 normalizes to the next calendar day,
	// which is why callers hand buildWeek a UTC clock.
	east := instant.In(time.FixedZone("UTC+10", 10*3600))
	if normalizeDate(east).Equal(normalizeDate(instant)) {
		t.Error("zoned and UTC reads of one instant normalized to the same day")
	}
}

// TestBuildWeek_ZeroMacrosPresent verifies a day with no logged consumption
// still shows every tracked macro at zero — distinct from a future day.
func TestBuildWeek_ZeroMacrosPresent(t *testing.T) {
	anchor := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC) // whole week in the past
	tracked := []trackedMacro{
		{ID: "m1", Name: "Protein", Unit: "g", Target: 150},
		{ID: "m2", Name: "Carbs", Unit: "g", Target: 250},
	}

	week := buildWeek(anchor, true, tracked, func(time.Time) *day { return nil }, today)
	for i, b := range week {
		if len(b.Macros) != 2 {
			t.Fatalf("bucket %d macro count = %d, want 2", i, len(b.Macros))
		}
		for _, m := range b.Macros {
			if m.Consumed != 0 || m.Percent != 0 {
				t.Errorf("bucket %d macro %s nonzero: %+v", i, m.Name, m)
			}
		}
	}
}

// TestBuildWeek_DataLandsInRightBucket verifies a looked-up day fills its own
// bucket and marks it HasData.
func TestBuildWeek_DataLandsInRightBucket(t *testing.T) {
	anchor := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)

	logged := &day{
		UserID:           1,
		Date:             DateOnly{wednesday},
		CalorieGoal:      2000,
		CaloriesConsumed: 1450,
		Entries:          []mealIntakeEntry{{ID: "a"}},
		Consumptions:     []macroConsumption{{MacroID: "m1", Name: "Protein", Consumed: 90}},
	}
	tracked := []trackedMacro{{ID: "m1", Name: "Protein", Unit: "g", Target: 150}}

	week := buildWeek(anchor, true, tracked, func(t time.Time) *day {
		if t.Equal(wednesday) {
			return logged
		}
		return nil
	}, today)

	wed := week[2]
	if !wed.HasData || wed.Calories != 1450 || wed.CalorieGoal != 2000 {
		t.Errorf("wednesday bucket = %+v, want HasData with 1450/2000", wed)
	}
	if wed.Macros[0].Consumed != 90 {
		t.Errorf("wednesday protein = %v, want 90", wed.Macros[0].Consumed)
	}
	if week[1].HasData {
		t.Error("tuesday bucket marked HasData without data")
	}
}
