package reports

import (
	"fmt"
	"slices"
	"sort"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusGreen  GoalStatus = "green"
	GoalStatusYellow GoalStatus = "yellow"
	GoalStatusRed    GoalStatus = "red"
)

func goalStatus(compliancePct float64) GoalStatus {
	switch {
	case compliancePct >= 100:
		return GoalStatusGreen
	case compliancePct >= 90:
		return GoalStatusYellow
	default:
		return GoalStatusRed
	}
}

type GoalPerformance struct {
	TotalActual   decimal.Decimal `json:"total_actual"`
	TotalGoal     decimal.Decimal `json:"total_goal"`
	CompliancePct float64         `json:"compliance_pct"`
	Difference    decimal.Decimal `json:"difference"`
	Status        GoalStatus      `json:"status"`
}

type BranchCompliance struct {
	Branch        string          `json:"branch"`
	CompliancePct float64         `json:"compliance_pct"`
	Status        GoalStatus      `json:"status"`
	Actual        decimal.Decimal `json:"actual"`
	Goal          decimal.Decimal `json:"goal"`
	Shortfall     decimal.Decimal `json:"shortfall"`
}

type GoalComplianceReport struct {
	Overall           *GoalPerformance   `json:"overall"`
	AvailablePeriods  []string           `json:"available_periods"`
	SelectedPeriod    string             `json:"selected_period"`
	PeriodPerformance *GoalPerformance   `json:"period_performance"`
	TrendPct          *float64           `json:"trend_pct"`
	Branches          []BranchCompliance `json:"branches"`
}

// RecomputeGoalActuals refreshes each goal's actual amount from the full
// sales set: signed month totals per branch, debit notes excluded. Goals for
// periods with no sales get a zero actual.
func RecomputeGoalActuals(goals []models.SalesGoal, allSales []models.Sale) []models.SalesGoal {
	salesByPeriod := make(map[string]decimal.Decimal)
	for _, rec := range allSales {
		if rec.IsDebitNote() {
			continue
		}
		key := goalKey(rec.Branch, rec.Date.Year(), int(rec.Date.Month()))
		salesByPeriod[key] = salesByPeriod[key].Add(rec.SignedTotal())
	}

	out := make([]models.SalesGoal, len(goals))
	for i, goal := range goals {
		goal.ActualAmount = salesByPeriod[goalKey(goal.Branch, goal.Year, goal.Month)]
		out[i] = goal
	}
	return out
}

func goalKey(branch string, year, month int) string {
	return fmt.Sprintf("%s-%d-%d", utils.NormalizeKey(branch), year, month)
}

// BuildGoalComplianceReport evaluates uploaded sales goals against actuals.
// selectedPeriod ("2006-01") pins the per-branch view; when empty, the latest
// period that already has actuals is used, falling back to the latest goal
// period. Date-range bounds in the filter are ignored here: goals are monthly.
func BuildGoalComplianceReport(goals []models.SalesGoal, filter models.SalesFilter, selectedPeriod string) *GoalComplianceReport {
	filtered := make([]models.SalesGoal, 0, len(goals))
	for _, g := range goals {
		if len(filter.Branches) > 0 && !slices.Contains(filter.Branches, g.Branch) {
			continue
		}
		if len(filter.Years) > 0 && !slices.Contains(filter.Years, g.Year) {
			continue
		}
		if len(filter.Months) > 0 && !slices.Contains(filter.Months, g.Month) {
			continue
		}
		filtered = append(filtered, g)
	}

	report := &GoalComplianceReport{
		AvailablePeriods: []string{},
		Branches:         []BranchCompliance{},
	}
	if len(filtered) == 0 {
		return report
	}

	report.Overall = performanceOf(filtered)

	periods := make(map[string]bool)
	periodsWithActuals := make(map[string]bool)
	for _, g := range filtered {
		period := fmt.Sprintf("%d-%02d", g.Year, g.Month)
		periods[period] = true
		if g.ActualAmount.IsPositive() {
			periodsWithActuals[period] = true
		}
	}
	for period := range periods {
		report.AvailablePeriods = append(report.AvailablePeriods, period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(report.AvailablePeriods)))

	if selectedPeriod == "" || !periods[selectedPeriod] {
		latestWithActuals := ""
		for period := range periodsWithActuals {
			if period > latestWithActuals {
				latestWithActuals = period
			}
		}
		if latestWithActuals != "" {
			selectedPeriod = latestWithActuals
		} else {
			selectedPeriod = report.AvailablePeriods[0]
		}
	}
	report.SelectedPeriod = selectedPeriod

	year, month, ok := utils.ParseMonthKey(selectedPeriod)
	if !ok {
		return report
	}

	periodGoals := goalsForPeriod(filtered, year, month)
	if len(periodGoals) > 0 {
		report.PeriodPerformance = performanceOf(periodGoals)

		prevYear, prevMonth := year, month-1
		if prevMonth == 0 {
			prevYear, prevMonth = year-1, 12
		}
		previousGoals := goalsForPeriod(filtered, prevYear, prevMonth)
		if len(previousGoals) > 0 {
			previous := performanceOf(previousGoals)
			trend := utils.PctChange(report.PeriodPerformance.CompliancePct, previous.CompliancePct)
			report.TrendPct = &trend
		}
	}

	for _, g := range periodGoals {
		compliance := utils.RatioPct(g.ActualAmount, g.GoalAmount)
		shortfall := g.GoalAmount.Sub(g.ActualAmount)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
		report.Branches = append(report.Branches, BranchCompliance{
			Branch:        g.Branch,
			CompliancePct: compliance,
			Status:        goalStatus(compliance),
			Actual:        g.ActualAmount,
			Goal:          g.GoalAmount,
			Shortfall:     shortfall,
		})
	}
	sort.SliceStable(report.Branches, func(i, j int) bool {
		return report.Branches[i].CompliancePct > report.Branches[j].CompliancePct
	})

	return report
}

func goalsForPeriod(goals []models.SalesGoal, year, month int) []models.SalesGoal {
	out := []models.SalesGoal{}
	for _, g := range goals {
		if g.Year == year && g.Month == month {
			out = append(out, g)
		}
	}
	return out
}

func performanceOf(goals []models.SalesGoal) *GoalPerformance {
	totalActual, totalGoal := decimal.Zero, decimal.Zero
	for _, g := range goals {
		totalActual = totalActual.Add(g.ActualAmount)
		totalGoal = totalGoal.Add(g.GoalAmount)
	}
	compliance := utils.RatioPct(totalActual, totalGoal)
	return &GoalPerformance{
		TotalActual:   totalActual,
		TotalGoal:     totalGoal,
		CompliancePct: compliance,
		Difference:    totalActual.Sub(totalGoal),
		Status:        goalStatus(compliance),
	}
}
