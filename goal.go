package main

import (
	"math"
	"strings"
)

/* ─── Calorie goal planner ───────────────────────────────────────────── */

// goalAdjustments maps weight-goal strategies to their daily kcal adjustment.
// This is the single source of truth for valid strategies — also used for
// input validation in patchSettings.
var goalAdjustments = map[string]int{
	"maintain":     0,
	"mild_loss":    -250,
	"loss":         -500,
	"extreme_loss": -1000,
	"mild_gain":    250,
	"gain":         500,
	"extreme_gain": 1000,
	"custom":       0,
}

// Hard safety bounds on any recommended daily calorie goal. Never bypassed,
// regardless of maintenance baseline or strategy.
const (
	minCalorieGoal = 1200
	maxCalorieGoal = 4500
)

// goalRecommendation is the output of recommendCalorieGoal: the clamped goal
// and the raw adjustment that produced it.
type goalRecommendation struct {
	Value      int `json:"value"`
	Adjustment int `json:"adjustment"`
}

// recommendCalorieGoal derives a daily calorie goal from a maintenance
// baseline and a weight-goal strategy. A baseline of zero or less means the
// goal cannot be computed — callers must treat a zero Value as "no baseline",
// not as a calorie target.
func recommendCalorieGoal(strategy string, maintenance int) goalRecommendation {
	if maintenance <= 0 {
		return goalRecommendation{}
	}
	adj := goalAdjustments[strategy]
	value := maintenance + adj
	if value < minCalorieGoal {
		value = minCalorieGoal
	}
	if value > maxCalorieGoal {
		value = maxCalorieGoal
	}
	return goalRecommendation{Value: value, Adjustment: adj}
}

/* ─── Macro split calculator ─────────────────────────────────────────── */

// Energy densities in kcal per gram. Physical constants — do not touch.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// macroSplit is the computed daily gram targets for the three core macros.
type macroSplit struct {
	ProteinG int `json:"protein_g"`
	FatG     int `json:"fat_g"`
	CarbsG   int `json:"carbs_g"`
}

// validSplitStrategies is the set of accepted macro distribution strategies.
var validSplitStrategies = map[string]bool{
	"high_protein": true,
	"balanced":     true,
	"low_fat":      true,
	"low_carb":     true,
	"custom":       true,
}

// computeMacroSplit derives protein/fat/carb gram targets from a calorie goal,
// body weight, and distribution strategy. "custom" asks for no recomputation
// and returns ok=false so callers leave existing targets untouched. Carbs (or
// fat for low_carb) absorb the remaining calories, floored at zero so a heavy
// body weight with a small goal can't produce negative grams.
func computeMacroSplit(strategy string, calories, bodyWeightKG float64) (macroSplit, bool) {
	if strategy == "custom" || !validSplitStrategies[strategy] {
		return macroSplit{}, false
	}

	var proteinG, fatG, carbsG float64
	switch strategy {
	case "high_protein":
		proteinG = math.Max(2.5*bodyWeightKG, 0.30*calories/kcalPerGramProtein)
		fatKcal := 0.20 * calories
		fatG = fatKcal / kcalPerGramFat
		carbsG = math.Max(0, (calories-proteinG*kcalPerGramProtein-fatKcal)/kcalPerGramCarbs)
	case "balanced":
		proteinKcal := 0.25 * calories
		proteinG = proteinKcal / kcalPerGramProtein
		fatKcal := 0.25 * calories
		fatG = fatKcal / kcalPerGramFat
		carbsG = math.Max(0, (calories-proteinKcal-fatKcal)/kcalPerGramCarbs)
	case "low_fat":
		proteinG = 1.6 * bodyWeightKG
		fatKcal := 0.15 * calories
		fatG = fatKcal / kcalPerGramFat
		carbsG = math.Max(0, (calories-proteinG*kcalPerGramProtein-fatKcal)/kcalPerGramCarbs)
	case "low_carb":
		proteinG = 2.0 * bodyWeightKG
		carbKcal := 0.10 * calories
		carbsG = carbKcal / kcalPerGramCarbs
		fatG = math.Max(0, (calories-proteinG*kcalPerGramProtein-carbKcal)/kcalPerGramFat)
	}

	return macroSplit{
		ProteinG: int(math.Round(proteinG)),
		FatG:     int(math.Round(fatG)),
		CarbsG:   int(math.Round(carbsG)),
	}, true
}

// canonicalMacroNames maps accepted spellings of the three core macros to a
// canonical key. Matching is case-insensitive via canonicalMacroName.
var canonicalMacroNames = map[string]string{
	"protein":       "protein",
	"proteins":      "protein",
	"carb":          "carbs",
	"carbs":         "carbs",
	"carbohydrate":  "carbs",
	"carbohydrates": "carbs",
	"fat":           "fats",
	"fats":          "fats",
}

// canonicalMacroName normalizes a tracked macro's display name for split
// matching. Returns "" for names outside the protein/carbs/fats trio.
func canonicalMacroName(name string) string {
	return canonicalMacroNames[strings.ToLower(strings.TrimSpace(name))]
}

// splitTargetFor returns the gram target a canonical macro name receives from
// a computed split, and false for names the split doesn't cover (fiber etc.).
func splitTargetFor(canonical string, s macroSplit) (float64, bool) {
	switch canonical {
	case "protein":
		return float64(s.ProteinG), true
	case "carbs":
		return float64(s.CarbsG), true
	case "fats":
		return float64(s.FatG), true
	}
	return 0, false
}
