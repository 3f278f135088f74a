package main

import (
	"math"
	"testing"
	"time"
)

// makeProfile constructs a fully-populated userSettings for maintenance
// tests. Individual tests nil out specific fields to exercise the guards.
func makeProfile(sex string, dobYear int, heightCM, weightKG float64, activityLevel string) *userSettings {
	dob := DateOnly{time.Date(dobYear, 1, 1, 0, 0, 0, 0, time.UTC)}
	return &userSettings{
		Sex:           &sex,
		DateOfBirth:   &dob,
		HeightCM:      &heightCM,
		WeightKG:      &weightKG,
		ActivityLevel: &activityLevel,
	}
}

/* ─── Missing-field guard tests ──────────────────────────────────────── */

// TestComputeMaintenance_MissingFields verifies ok=false when any required
// profile field is nil.
func TestComputeMaintenance_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(s *userSettings)
	}{
		{"nil Sex", func(s *userSettings) { s.Sex = nil }},
		{"nil DateOfBirth", func(s *userSettings) { s.DateOfBirth = nil }},
		{"nil HeightCM", func(s *userSettings) { s.HeightCM = nil }},
		{"nil WeightKG", func(s *userSettings) { s.WeightKG = nil }},
		{"nil ActivityLevel", func(s *userSettings) { s.ActivityLevel = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := makeProfile("male", 1990, 175, 80, "sedentary")
			tc.mutFn(s)
			if _, ok := computeMaintenance(s); ok {
				t.Errorf("expected ok=false when %s, got ok=true", tc.name)
			}
		})
	}
}

// TestComputeMaintenance_UnknownActivityLevel verifies an unrecognized
// activity level string produces ok=false.
func TestComputeMaintenance_UnknownActivityLevel(t *testing.T) {
	s := makeProfile("male", 1990, 175, 80, "couch")
	if _, ok := computeMaintenance(s); ok {
		t.Error("expected ok=false for unknown activity level, got ok=true")
	}
}

// TestComputeMaintenance_ImplausibleAge verifies a future DOB and an
// over-130-year age both produce ok=false.
func TestComputeMaintenance_ImplausibleAge(t *testing.T) {
	future := makeProfile("male", time.Now().Year()+1, 175, 80, "sedentary")
	if _, ok := computeMaintenance(future); ok {
		t.Error("expected ok=false for future date of birth, got ok=true")
	}
	ancient := makeProfile("male", time.Now().Year()-200, 175, 80, "sedentary")
	if _, ok := computeMaintenance(ancient); ok {
		t.Error("expected ok=false for age > 130, got ok=true")
	}
}

/* ─── Formula accuracy tests ─────────────────────────────────────────── */

// TestComputeMaintenance_MaleSedentary verifies the male Mifflin-St Jeor
// baseline. Age is computed from DOB at runtime so tolerance is ±15 to
// account for off-by-one around the birthday.
//
// Inputs: male, born 1990-01-01 (~36 in 2026), 175cm, 80kg, sedentary.
// BMR = 10*80 + 6.25*175 - 5*36 + 5 = 1719; maintenance = 1719*1.2 ≈ 2063.
func TestComputeMaintenance_MaleSedentary(t *testing.T) {
	s := makeProfile("male", 1990, 175, 80, "sedentary")
	maintenance, ok := computeMaintenance(s)
	if !ok {
		t.Fatal("expected ok=true, got ok=false")
	}
	if math.Abs(float64(maintenance)-2063) >= 15 {
		t.Errorf("maintenance = %d, want ~2063 (tolerance ±15)", maintenance)
	}
}

// TestComputeMaintenance_FemaleOffset verifies the female constant: same
// profile reads 166 BMR calories lower, so maintenance drops by 166*1.2 ≈ 199.
func TestComputeMaintenance_FemaleOffset(t *testing.T) {
	male, ok := computeMaintenance(makeProfile("male", 1990, 175, 80, "sedentary"))
	if !ok {
		t.Fatal("male profile did not compute")
	}
	female, ok := computeMaintenance(makeProfile("female", 1990, 175, 80, "sedentary"))
	if !ok {
		t.Fatal("female profile did not compute")
	}
	diff := male - female
	if math.Abs(float64(diff)-199) >= 5 {
		t.Errorf("male-female maintenance gap = %d, want ~199", diff)
	}
}

// TestComputeMaintenance_ActivityScaling verifies very_active scales the same
// BMR by 1.9 instead of 1.2.
func TestComputeMaintenance_ActivityScaling(t *testing.T) {
	sedentary, _ := computeMaintenance(makeProfile("male", 1990, 175, 80, "sedentary"))
	veryActive, _ := computeMaintenance(makeProfile("male", 1990, 175, 80, "very_active"))
	ratio := float64(veryActive) / float64(sedentary)
	if math.Abs(ratio-1.9/1.2) > 0.01 {
		t.Errorf("very_active/sedentary ratio = %.3f, want %.3f", ratio, 1.9/1.2)
	}
}

// TestPopulateComputedMaintenance verifies the computed field fills on a
// complete profile and stays nil on an incomplete one.
func TestPopulateComputedMaintenance(t *testing.T) {
	s := makeProfile("male", 1990, 175, 80, "sedentary")
	populateComputedMaintenance(s)
	if s.ComputedMaintenance == nil {
		t.Fatal("ComputedMaintenance is nil for a complete profile")
	}

	incomplete := makeProfile("male", 1990, 175, 80, "sedentary")
	incomplete.Sex = nil
	populateComputedMaintenance(incomplete)
	if incomplete.ComputedMaintenance != nil {
		t.Error("ComputedMaintenance set for an incomplete profile")
	}
}
