package main

import "testing"

/* ─── formatValue tests ──────────────────────────────────────────────── */

// TestFormatValue_IntegralDropsDecimals verifies whole numbers render with no
// decimal places.
func TestFormatValue_IntegralDropsDecimals(t *testing.T) {
	if got := formatValue(100, "g"); got != "100 g" {
		t.Errorf("formatValue(100, \"g\") = %q, want \"100 g\"", got)
	}
}

// TestFormatValue_FractionalOneDecimal verifies non-integral values keep
// exactly one decimal place.
func TestFormatValue_FractionalOneDecimal(t *testing.T) {
	if got := formatValue(99.55, "g"); got != "99.6 g" {
		t.Errorf("formatValue(99.55, \"g\") = %q, want \"99.6 g\"", got)
	}
}

// TestFormatValue_BareSuffixUnits verifies that calorie/volume/percent units
// attach directly to the number while everything else gets a space.
func TestFormatValue_BareSuffixUnits(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		want  string
	}{
		{250, "kcal", "250kcal"},
		{250, "cal", "250cal"},
		{500, "mL", "500mL"},
		{1.5, "L", "1.5L"},
		{80, "%", "80%"},
		{100, "g", "100 g"},
		{2, "servings", "2 servings"},
		{42, "", "42"},
	}
	for _, tc := range cases {
		if got := formatValue(tc.value, tc.unit); got != tc.want {
			t.Errorf("formatValue(%v, %q) = %q, want %q", tc.value, tc.unit, got, tc.want)
		}
	}
}

/* ─── Parse round-trip tests ─────────────────────────────────────────── */

// TestParseNumericValue verifies leading-digit extraction, including labels
// with no usable number.
func TestParseNumericValue(t *testing.T) {
	cases := []struct {
		label string
		want  *float64
	}{
		{"100 g", ptrF(100)},
		{"250kcal", ptrF(250)},
		{"99.6 g", ptrF(99.6)},
		{"  42", ptrF(42)},
		{"g", nil},
		{"", nil},
		{"abc123", nil},
	}
	for _, tc := range cases {
		got := parseNumericValue(tc.label)
		switch {
		case got == nil && tc.want != nil:
			t.Errorf("parseNumericValue(%q) = nil, want %v", tc.label, *tc.want)
		case got != nil && tc.want == nil:
			t.Errorf("parseNumericValue(%q) = %v, want nil", tc.label, *got)
		case got != nil && tc.want != nil && *got != *tc.want:
			t.Errorf("parseNumericValue(%q) = %v, want %v", tc.label, *got, *tc.want)
		}
	}
}

// TestParseUnitSuffix verifies trailing-unit extraction for both spaced and
// bare-suffix labels.
func TestParseUnitSuffix(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"100 g", "g"},
		{"250kcal", "kcal"},
		{"500mL", "mL"},
		{"42", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := parseUnitSuffix(tc.label); got != tc.want {
			t.Errorf("parseUnitSuffix(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

// TestFormatParseRoundTrip verifies the formatter's output is recoverable by
// the parse functions for representative units.
func TestFormatParseRoundTrip(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
	}{
		{100, "g"},
		{99.6, "g"},
		{250, "kcal"},
		{500, "mL"},
	}
	for _, tc := range cases {
		label := formatValue(tc.value, tc.unit)
		v := parseNumericValue(label)
		if v == nil || *v != tc.value {
			t.Errorf("round trip value for %q failed: got %v, want %v", label, v, tc.value)
		}
		if got := parseUnitSuffix(label); got != tc.unit {
			t.Errorf("round trip unit for %q failed: got %q, want %q", label, got, tc.unit)
		}
	}
}

func ptrF(v float64) *float64 { return &v }
