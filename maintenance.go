package main

import (
	"math"
	"time"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used for
// input validation in patchSettings.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// computeMaintenance computes the maintenance-calorie baseline (TDEE) from the
// body profile: BMR via Mifflin-St Jeor scaled by the activity multiplier.
// Returns ok=false when any required profile field is nil, the activity level
// is unknown, or the derived age is implausible — a zero baseline must read as
// "cannot compute", never as a calorie value.
func computeMaintenance(s *userSettings) (maintenance int, ok bool) {
	if s.Sex == nil || s.DateOfBirth == nil || s.HeightCM == nil ||
		s.WeightKG == nil || s.ActivityLevel == nil {
		return 0, false
	}

	// Age derived from date of birth
	today := time.Now()
	age := today.Year() - s.DateOfBirth.Year()
	if today.Before(s.DateOfBirth.AddDate(age, 0, 0)) {
		age--
	}
	// Guard against implausible ages (e.g. DOB in the future, or over 130 years ago)
	if age < 0 || age > 130 {
		return 0, false
	}

	// BMR via Mifflin-St Jeor: different constant for male vs female
	bmr := 10**s.WeightKG + 6.25**s.HeightCM - 5*float64(age)
	if *s.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	mult, found := activityMultipliers[*s.ActivityLevel]
	if !found {
		return 0, false
	}

	return int(math.Round(bmr * mult)), true
}

// populateComputedMaintenance fills the computed-only maintenance field on s.
// No-ops if the profile is incomplete.
func populateComputedMaintenance(s *userSettings) {
	if maintenance, ok := computeMaintenance(s); ok {
		s.ComputedMaintenance = &maintenance
	}
}
