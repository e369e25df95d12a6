package utils

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var spanishMonthsShort = [12]string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sep", "Oct", "Nov", "Dic",
}

var spanishMonthsFull = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthShortName returns the Spanish three-letter month label for a 1-based
// month number.
func MonthShortName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return spanishMonthsShort[month-1]
}

func MonthFullName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return spanishMonthsFull[month-1]
}

// MonthKey renders the canonical sortable month bucket ("2006-01").
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey is the inverse of MonthKey.
func ParseMonthKey(key string) (year int, month int, ok bool) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// DaysInMonth handles leap years via time normalization.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfMonth is the last day of the given year/month at midnight UTC.
func EndOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

// CalendarYearsBetween is the whole-year difference between two dates,
// decremented when the anniversary has not yet occurred. Used for ages.
func CalendarYearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if int(to.Month()) < int(from.Month()) ||
		(to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}

// YearsFraction is the elapsed time between two dates expressed in fractional
// years (365.25-day years). Used for seniority.
func YearsFraction(from, to time.Time) float64 {
	if !to.After(from) {
		return 0
	}
	return to.Sub(from).Hours() / (24 * 365.25)
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool)
	result := []T{}
	for _, val := range slice {
		if _, ok := seen[val]; !ok {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// NormalizeKey is the single normalization rule for dynamic grouping keys
// (branch, salesperson, client, provider names): trim then uppercase. It is
// applied exactly once, at the aggregator boundary.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RatioPct computes a/b*100 as a float, resolving a zero denominator to 0
// instead of letting NaN or Inf escape to callers.
func RatioPct(a, b decimal.Decimal) float64 {
	if b.IsZero() {
		return 0
	}
	f, _ := a.Div(b).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

// Ratio is RatioPct without the x100.
func Ratio(a, b decimal.Decimal) float64 {
	if b.IsZero() {
		return 0
	}
	f, _ := a.Div(b).Float64()
	return f
}

// PctChange is the relative change between a previous and a current value.
// A zero base resolves to 100 when the current value is positive (signals
// emergence) and 0 otherwise.
func PctChange(current, previous float64) float64 {
	if previous > 0 {
		return (current - previous) / previous * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

func ProcessValidationErrors(err error) map[string]string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"error": err.Error()}
	}
	errorResponse := make(map[string]string)
	for _, fieldError := range validationErrors {
		errorResponse[fieldError.Field()] = fieldError.Tag()
	}
	return errorResponse
}

// ParseDecimal accepts both plain ("1234.56") and Argentine formatted
// ("1.234,56") amounts.
func ParseDecimal(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	return decimal.NewFromString(v)
}
