package reports

import (
	"testing"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/shopspring/decimal"
)

func goalFor(branch string, year, month int, goal, actual float64) models.SalesGoal {
	return models.SalesGoal{
		Branch:       branch,
		Year:         year,
		Month:        month,
		GoalAmount:   decimal.NewFromFloat(goal),
		ActualAmount: decimal.NewFromFloat(actual),
	}
}

func TestGoalStatusBoundaries(t *testing.T) {
	cases := []struct {
		compliance float64
		want       GoalStatus
	}{
		{120, GoalStatusGreen},
		{100, GoalStatusGreen},
		{99.99, GoalStatusYellow},
		{90, GoalStatusYellow},
		{89.99, GoalStatusRed},
		{0, GoalStatusRed},
	}
	for _, tc := range cases {
		if got := goalStatus(tc.compliance); got != tc.want {
			t.Errorf("status(%v) = %s, want %s", tc.compliance, got, tc.want)
		}
	}
}

func TestRecomputeGoalActuals(t *testing.T) {
	sales := []models.Sale{
		saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 1000),
		saleOn("2024-03-20", "MITRE", "ACME", "NC A", -1, -200),
		saleOn("2024-03-06", "MITRE", "ACME", "ND A", 1, 500),
		saleOn("2024-03-07", "salta ", "BETA", "FC A", 1, 300),
	}
	goals := []models.SalesGoal{
		goalFor("MITRE", 2024, 3, 1000, 0),
		goalFor("SALTA", 2024, 3, 400, 0),
		goalFor("MITRE", 2024, 4, 1000, 99),
	}
	updated := RecomputeGoalActuals(goals, sales)

	if got := updated[0].ActualAmount.StringFixed(2); got != "800.00" {
		t.Errorf("mitre actual = %s, want 800.00 (credit signed, debit excluded)", got)
	}
	// Branch names normalize before matching.
	if got := updated[1].ActualAmount.StringFixed(2); got != "300.00" {
		t.Errorf("salta actual = %s, want 300.00", got)
	}
	// A period with no sales resets to zero.
	if !updated[2].ActualAmount.IsZero() {
		t.Errorf("april actual = %s, want 0", updated[2].ActualAmount)
	}
	// Inputs are not mutated.
	if !goals[0].ActualAmount.IsZero() {
		t.Error("input slice was mutated")
	}
}

func TestGoalComplianceReport(t *testing.T) {
	goals := []models.SalesGoal{
		goalFor("MITRE", 2024, 2, 1000, 950),
		goalFor("MITRE", 2024, 3, 1000, 1100),
		goalFor("SALTA", 2024, 3, 500, 440),
	}
	report := BuildGoalComplianceReport(goals, models.SalesFilter{}, "")

	// Latest period with actuals picked by default.
	if report.SelectedPeriod != "2024-03" {
		t.Errorf("selected period = %s, want 2024-03", report.SelectedPeriod)
	}
	if len(report.AvailablePeriods) != 2 || report.AvailablePeriods[0] != "2024-03" {
		t.Errorf("available periods = %v", report.AvailablePeriods)
	}

	perf := report.PeriodPerformance
	if perf == nil {
		t.Fatal("expected period performance")
	}
	// 1540 / 1500 ≈ 102.67 → green.
	if perf.Status != GoalStatusGreen {
		t.Errorf("period status = %s, want green", perf.Status)
	}

	if len(report.Branches) != 2 {
		t.Fatalf("expected 2 branch gauges, got %d", len(report.Branches))
	}
	// Sorted by compliance descending: MITRE 110% then SALTA 88%.
	if report.Branches[0].Branch != "MITRE" || report.Branches[0].Status != GoalStatusGreen {
		t.Errorf("first gauge = %+v", report.Branches[0])
	}
	if report.Branches[1].Status != GoalStatusRed {
		t.Errorf("salta at 88%% should be red, got %s", report.Branches[1].Status)
	}
	if got := report.Branches[1].Shortfall.StringFixed(2); got != "60.00" {
		t.Errorf("salta shortfall = %s, want 60.00", got)
	}
	// Overachievement never reports a negative shortfall.
	if !report.Branches[0].Shortfall.IsZero() {
		t.Errorf("mitre shortfall = %s, want 0", report.Branches[0].Shortfall)
	}

	// Trend vs February: Feb compliance 95, Mar 102.67 → ~8.07.
	if report.TrendPct == nil {
		t.Fatal("expected trend vs previous period")
	}
	if *report.TrendPct < 8 || *report.TrendPct > 8.2 {
		t.Errorf("trend = %f, want ~8.07", *report.TrendPct)
	}
}

func TestGoalComplianceEmptyAndFiltered(t *testing.T) {
	report := BuildGoalComplianceReport(nil, models.SalesFilter{}, "")
	if report.Overall != nil || len(report.Branches) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}

	goals := []models.SalesGoal{
		goalFor("MITRE", 2024, 3, 1000, 1000),
		goalFor("SALTA", 2024, 3, 500, 500),
	}
	filtered := BuildGoalComplianceReport(goals, models.SalesFilter{Branches: []string{"MITRE"}}, "")
	if len(filtered.Branches) != 1 || filtered.Branches[0].Branch != "MITRE" {
		t.Errorf("branch filter not applied: %+v", filtered.Branches)
	}
}

func TestGoalComplianceZeroGoalGuard(t *testing.T) {
	goals := []models.SalesGoal{
		goalFor("MITRE", 2024, 3, 0, 500),
	}
	report := BuildGoalComplianceReport(goals, models.SalesFilter{}, "")
	if report.Branches[0].CompliancePct != 0 {
		t.Errorf("zero goal compliance = %f, want 0", report.Branches[0].CompliancePct)
	}
	if report.Branches[0].Status != GoalStatusRed {
		t.Errorf("zero goal status = %s, want red", report.Branches[0].Status)
	}
}
