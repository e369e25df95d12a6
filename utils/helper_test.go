package utils

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1.234.567,89", "1234567.89"},
		{"-1.210,00", "-1210"},
		{"", "0"},
		{"  42  ", "42"},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		if err != nil {
			t.Errorf("ParseDecimal(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseDecimal(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDecimal("no es un numero"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestMonthKeyRoundTrip(t *testing.T) {
	key := MonthKey(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	if key != "2024-03" {
		t.Fatalf("MonthKey = %q, want 2024-03", key)
	}
	year, month, ok := ParseMonthKey(key)
	if !ok || year != 2024 || month != 3 {
		t.Errorf("ParseMonthKey(%q) = %d, %d, %v", key, year, month, ok)
	}
	if _, _, ok := ParseMonthKey("2024-3"); ok {
		t.Error("unpadded month key should not parse")
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 12, 31},
		{2024, 4, 30},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestCalendarYearsBetween(t *testing.T) {
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := CalendarYearsBetween(birth, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)); got != 33 {
		t.Errorf("day before anniversary: got %d, want 33", got)
	}
	if got := CalendarYearsBetween(birth, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)); got != 34 {
		t.Errorf("on anniversary: got %d, want 34", got)
	}
}

func TestYearsFraction(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := YearsFraction(from, from); got != 0 {
		t.Errorf("same instant: got %f, want 0", got)
	}
	got := YearsFraction(from, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if math.Abs(got-5.0) > 0.01 {
		t.Errorf("five years: got %f", got)
	}
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		current, previous, want float64
	}{
		{150, 100, 50},
		{50, 100, -50},
		{10, 0, 100},
		{0, 0, 0},
		{-5, 0, 0},
	}
	for _, tt := range tests {
		if got := PctChange(tt.current, tt.previous); got != tt.want {
			t.Errorf("PctChange(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestRatioPctZeroDenominator(t *testing.T) {
	if got := RatioPct(decimal.NewFromInt(5), decimal.Zero); got != 0 {
		t.Errorf("got %f, want 0", got)
	}
	if got := RatioPct(decimal.NewFromInt(1), decimal.NewFromInt(4)); got != 25 {
		t.Errorf("got %f, want 25", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  salta "); got != "SALTA" {
		t.Errorf("got %q, want SALTA", got)
	}
}

func TestMonthNames(t *testing.T) {
	if MonthShortName(1) != "Ene" || MonthShortName(12) != "Dic" {
		t.Error("short month names wrong")
	}
	if MonthFullName(3) != "Marzo" {
		t.Errorf("MonthFullName(3) = %q", MonthFullName(3))
	}
	if MonthShortName(0) != "" || MonthFullName(13) != "" {
		t.Error("out-of-range months must yield empty strings")
	}
}
