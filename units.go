package main

import (
	"strconv"
	"strings"
)

// bareSuffixUnits are units conventionally written directly after the number
// ("250kcal", "500mL"). Everything else gets a separating space ("100 g").
var bareSuffixUnits = map[string]bool{
	"cal":  true,
	"kcal": true,
	"mL":   true,
	"L":    true,
	"%":    true,
}

// formatValue renders a quantity + unit as a display label: no decimals for
// integral values, one decimal otherwise. Pure and deterministic — the parse
// functions below recover both parts.
func formatValue(value float64, unit string) string {
	var num string
	if value == float64(int64(value)) {
		num = strconv.FormatFloat(value, 'f', 0, 64)
	} else {
		num = strconv.FormatFloat(value, 'f', 1, 64)
	}
	if unit == "" {
		return num
	}
	if bareSuffixUnits[unit] {
		return num + unit
	}
	return num + " " + unit
}

// parseNumericValue extracts the leading numeric characters (digits and at
// most one decimal point) from a label. Returns nil if the label has no
// leading digits — callers treat that as "no usable number", not an error.
func parseNumericValue(label string) *float64 {
	label = strings.TrimSpace(label)
	end := 0
	seenDot := false
	for end < len(label) {
		ch := label[end]
		if ch >= '0' && ch <= '9' {
			end++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 || label[:end] == "." {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(label[:end], "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseUnitSuffix extracts the trailing non-numeric, non-whitespace characters
// from a label ("100 g" -> "g", "250kcal" -> "kcal", "42" -> "").
func parseUnitSuffix(label string) string {
	label = strings.TrimSpace(label)
	start := len(label)
	for start > 0 {
		ch := label[start-1]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == ' ' || ch == '\t' {
			break
		}
		start--
	}
	return label[start:]
}
