package reports

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

var managementKeywords = []string{"GERENCIA", "GERENTE"}

// excludedSalaryTypes are pay components left out of the per-head salary
// averages. They still count toward total payroll cost.
var excludedSalaryTypes = map[string]bool{
	"AGUINALDO":              true,
	"COMISIONES/ADICIONALES": true,
}

type HRKpis struct {
	TotalSalaries       decimal.Decimal `json:"total_salaries"`
	EmployeeCount       int             `json:"employee_count"`
	AvgSalaryEmployee   decimal.Decimal `json:"avg_salary_employee"`
	AvgSalaryManagement decimal.Decimal `json:"avg_salary_management"`
	AvgAge              float64         `json:"avg_age"`
	AvgSeniority        float64         `json:"avg_seniority"`
	AvgVacationDays     float64         `json:"avg_vacation_days"`
}

type EmployeeRankingItem struct {
	CUIL            string          `json:"cuil"`
	Name            string          `json:"name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Area            string          `json:"area"`
	Category        string          `json:"category"`
	TerminationDate *time.Time      `json:"termination_date,omitempty"`
	Seniority       float64         `json:"seniority"`
	VacationDays    int             `json:"vacation_days"`
}

type CategorySalarySeniority struct {
	Category      string          `json:"category"`
	EmployeeCount int             `json:"employee_count"`
	AvgSalary     decimal.Decimal `json:"avg_salary"`
	AvgSeniority  float64         `json:"avg_seniority"`
}

type VacationRow struct {
	EmployeeName string  `json:"employee_name"`
	Seniority    float64 `json:"seniority"`
	VacationDays int     `json:"vacation_days"`
}

type CountBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type AverageBucket struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Birthday struct {
	Name       string    `json:"name"`
	BirthDate  time.Time `json:"birth_date"`
	AgeTurning int       `json:"age_turning"`
	Area       string    `json:"area"`
	Position   string    `json:"position"`
}

type HRReport struct {
	Kpis                     HRKpis                    `json:"kpis"`
	SalaryDistributionByType []ChartPoint              `json:"salary_distribution_by_type"`
	CostByArea               []ChartPoint              `json:"cost_by_area"`
	CostByActivity           []ChartPoint              `json:"cost_by_activity"`
	EmployeesByActivity      []ChartPoint              `json:"employees_by_activity"`
	SalaryEvolution          []TimeSeriesPoint         `json:"salary_evolution"`
	EmployeeRanking          []EmployeeRankingItem     `json:"employee_ranking"`
	SeniorityVsSalary        []CategorySalarySeniority `json:"seniority_vs_salary"`
	YearlySalaryTrend        []YearlyTrendRow          `json:"yearly_salary_trend"`
	TrendYears               []string                  `json:"trend_years"`
	VacationAnalysis         []VacationRow             `json:"vacation_analysis"`
	SeniorityDistribution    []CountBucket             `json:"seniority_distribution"`
	AvgVacationByArea        []AverageBucket           `json:"avg_vacation_by_area"`
	AvgVacationByCategory    []AverageBucket           `json:"avg_vacation_by_category"`
	BirthdaysInMonth         []Birthday                `json:"birthdays_in_month"`
}

func emptyHRReport() *HRReport {
	return &HRReport{
		SalaryDistributionByType: []ChartPoint{},
		CostByArea:               []ChartPoint{},
		CostByActivity:           []ChartPoint{},
		EmployeesByActivity:      []ChartPoint{},
		SalaryEvolution:          []TimeSeriesPoint{},
		EmployeeRanking:          []EmployeeRankingItem{},
		SeniorityVsSalary:        []CategorySalarySeniority{},
		YearlySalaryTrend:        []YearlyTrendRow{},
		TrendYears:               []string{},
		VacationAnalysis:         []VacationRow{},
		SeniorityDistribution:    []CountBucket{},
		AvgVacationByArea:        []AverageBucket{},
		AvgVacationByCategory:    []AverageBucket{},
		BirthdaysInMonth:         []Birthday{},
	}
}

func isManagement(category string) bool {
	upper := utils.NormalizeKey(category)
	for _, keyword := range managementKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// vacationEntitlement maps seniority at the reference date to statutory
// vacation days. Under six months the entitlement is one day per twenty
// worked.
func vacationEntitlement(hireDate, ref time.Time) (seniority float64, days int) {
	if hireDate.IsZero() || !hireDate.Before(ref) {
		return 0, 0
	}
	seniority = utils.YearsFraction(hireDate, ref)
	switch {
	case seniority < 0.5:
		worked := ref.Sub(hireDate).Hours() / 24
		days = int(math.Floor(worked / 20))
	case seniority < 5:
		days = 14
	case seniority < 10:
		days = 21
	case seniority < 20:
		days = 28
	default:
		days = 35
	}
	return seniority, days
}

// BuildHRReport aggregates payroll transactions. records is the filtered set
// used for monetary aggregates; allRecords is the full set the roster and the
// yearly trend derive from. The roster deliberately ignores month and
// pay-component filters so that headcount, ages and vacation entitlements stay
// stable when drilling into a single month.
func BuildHRReport(records []models.PayrollEntry, allRecords []models.PayrollEntry, filter models.HRFilter) *HRReport {
	if len(allRecords) == 0 {
		return emptyHRReport()
	}

	report := emptyHRReport()

	latestYear := 0
	for _, rec := range allRecords {
		if rec.Year > latestYear {
			latestYear = rec.Year
		}
	}
	periodYear := latestYear
	if len(filter.Years) > 0 {
		periodYear = filter.Years[0]
		for _, y := range filter.Years[1:] {
			if y > periodYear {
				periodYear = y
			}
		}
	}
	periodMonth := 12
	if len(filter.Months) > 0 {
		periodMonth = filter.Months[0]
		for _, m := range filter.Months[1:] {
			if m > periodMonth {
				periodMonth = m
			}
		}
	}
	periodEnd := utils.EndOfMonth(periodYear, periodMonth)

	// Roster: latest transaction per CUIL over the non-month filters, then
	// restricted to employees active at the period end.
	latestByCUIL := make(map[string]models.PayrollEntry)
	cuilOrder := []string{}
	for _, rec := range allRecords {
		if !filter.MatchRoster(rec) {
			continue
		}
		existing, seen := latestByCUIL[rec.CUIL]
		if !seen {
			cuilOrder = append(cuilOrder, rec.CUIL)
			latestByCUIL[rec.CUIL] = rec
		} else if rec.Date.After(existing.Date) {
			latestByCUIL[rec.CUIL] = rec
		}
	}
	roster := make([]models.PayrollEntry, 0, len(cuilOrder))
	for _, cuil := range cuilOrder {
		rec := latestByCUIL[cuil]
		if rec.ActiveAt(periodEnd) {
			roster = append(roster, rec)
		}
	}

	kpis := &report.Kpis
	kpis.EmployeeCount = len(roster)

	var totalAge, totalSeniority float64
	for _, emp := range roster {
		if !emp.BirthDate.IsZero() {
			totalAge += float64(utils.CalendarYearsBetween(emp.BirthDate, periodEnd))
		}
		if !emp.HireDate.IsZero() {
			totalSeniority += utils.YearsFraction(emp.HireDate, periodEnd)
		}
	}
	if len(roster) > 0 {
		kpis.AvgAge = totalAge / float64(len(roster))
		kpis.AvgSeniority = totalSeniority / float64(len(roster))
	}

	// Cohort averages over the filtered transactions: excluded pay types stay
	// out of the numerator but their CUILs still count heads.
	employeeTotal, managementTotal := decimal.Zero, decimal.Zero
	employeeCUILs := make(map[string]bool)
	managementCUILs := make(map[string]bool)
	for _, rec := range records {
		kpis.TotalSalaries = kpis.TotalSalaries.Add(rec.Amount)
		excluded := excludedSalaryTypes[utils.NormalizeKey(rec.Type)]
		if isManagement(rec.Category) {
			if !excluded {
				managementTotal = managementTotal.Add(rec.Amount)
			}
			managementCUILs[rec.CUIL] = true
		} else {
			if !excluded {
				employeeTotal = employeeTotal.Add(rec.Amount)
			}
			employeeCUILs[rec.CUIL] = true
		}
	}
	if len(employeeCUILs) > 0 {
		kpis.AvgSalaryEmployee = employeeTotal.Div(decimal.NewFromInt(int64(len(employeeCUILs))))
	}
	if len(managementCUILs) > 0 {
		kpis.AvgSalaryManagement = managementTotal.Div(decimal.NewFromInt(int64(len(managementCUILs))))
	}

	// Vacation entitlements are computed as of Dec 31 of the latest year with
	// data, not the filter window.
	endOfAnalysisYear := time.Date(latestYear, 12, 31, 0, 0, 0, 0, time.UTC)
	vacations := make([]vacAccum, 0, len(roster))
	totalVacationDays := 0
	for _, emp := range roster {
		seniority, days := vacationEntitlement(emp.HireDate, endOfAnalysisYear)
		vacations = append(vacations, vacAccum{
			seniority: seniority,
			days:      days,
			area:      emp.Area,
			category:  emp.Category,
			name:      emp.Employee,
		})
		totalVacationDays += days
	}
	if len(roster) > 0 {
		kpis.AvgVacationDays = float64(totalVacationDays) / float64(len(roster))
	}

	for _, v := range vacations {
		report.VacationAnalysis = append(report.VacationAnalysis, VacationRow{
			EmployeeName: v.name,
			Seniority:    v.seniority,
			VacationDays: v.days,
		})
	}
	sort.SliceStable(report.VacationAnalysis, func(i, j int) bool {
		return report.VacationAnalysis[i].EmployeeName < report.VacationAnalysis[j].EmployeeName
	})

	buckets := []CountBucket{
		{Name: "0-5 años"}, {Name: "5-10 años"}, {Name: "10-20 años"}, {Name: "+20 años"},
	}
	for _, v := range vacations {
		switch {
		case v.seniority < 5:
			buckets[0].Count++
		case v.seniority < 10:
			buckets[1].Count++
		case v.seniority < 20:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}
	report.SeniorityDistribution = buckets

	report.AvgVacationByArea = averageVacationBy(vacations, func(v vacAccum) string { return v.area })
	report.AvgVacationByCategory = averageVacationBy(vacations, func(v vacAccum) string { return v.category })

	// Monetary chart aggregates over the filtered transactions.
	typeTotals := NewKeyedTotals()
	areaTotals := NewKeyedTotals()
	activityTotals := NewKeyedTotals()
	monthTotals := NewKeyedTotals()
	salaryByCUIL := make(map[string]decimal.Decimal)
	categorySalary := NewKeyedTotals()
	for _, rec := range records {
		typeTotals.Add(rec.Type, rec.Amount)
		areaTotals.Add(rec.Area, rec.Amount)
		activityTotals.Add(rec.Activity, rec.Amount)
		monthTotals.Add(utils.MonthKey(rec.Date), rec.Amount)
		salaryByCUIL[rec.CUIL] = salaryByCUIL[rec.CUIL].Add(rec.Amount)
		categorySalary.Add(rec.Category, rec.Amount)
	}

	report.SalaryDistributionByType = FormatForPieChart(typeTotals)
	report.CostByArea = FormatForPieChart(areaTotals)
	report.CostByActivity = FormatForPieChart(activityTotals)
	report.SalaryEvolution = timeSeriesFromTotals(monthTotals)

	activityHeadcount := NewKeyedTotals()
	for _, emp := range roster {
		activity := emp.Activity
		if activity == "" {
			activity = "N/A"
		}
		activityHeadcount.Add(activity, decimal.NewFromInt(1))
	}
	report.EmployeesByActivity = FormatForPieChart(activityHeadcount)

	report.EmployeeRanking = employeeRanking(roster, salaryByCUIL, periodEnd)
	report.SeniorityVsSalary = seniorityVsSalary(roster, categorySalary, periodEnd)
	report.YearlySalaryTrend, report.TrendYears = yearlySalaryTrend(allRecords)
	report.BirthdaysInMonth = birthdaysInMonths(roster, filter.Months, periodYear)

	return report
}

type vacAccum struct {
	seniority float64
	days      int
	area      string
	category  string
	name      string
}

func averageVacationBy(vacations []vacAccum, keyOf func(vacAccum) string) []AverageBucket {
	totals := make(map[string]int)
	counts := make(map[string]int)
	order := []string{}
	for _, v := range vacations {
		key := keyOf(v)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		totals[key] += v.days
		counts[key]++
	}
	out := make([]AverageBucket, 0, len(order))
	for _, key := range order {
		out = append(out, AverageBucket{Name: key, Value: float64(totals[key]) / float64(counts[key])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

func employeeRanking(roster []models.PayrollEntry, salaryByCUIL map[string]decimal.Decimal, periodEnd time.Time) []EmployeeRankingItem {
	items := make([]EmployeeRankingItem, 0, len(roster))
	for _, emp := range roster {
		seniority := float64(0)
		if !emp.HireDate.IsZero() {
			end := periodEnd
			if emp.TerminationDate != nil {
				end = *emp.TerminationDate
			}
			seniority = utils.YearsFraction(emp.HireDate, end)
		}
		items = append(items, EmployeeRankingItem{
			CUIL:            emp.CUIL,
			Name:            emp.Employee,
			TotalAmount:     salaryByCUIL[emp.CUIL],
			Area:            emp.Area,
			Category:        emp.Category,
			TerminationDate: emp.TerminationDate,
			Seniority:       seniority,
			VacationDays:    emp.VacationDays,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalAmount.GreaterThan(items[j].TotalAmount)
	})
	return items
}

// seniorityVsSalary crosses period salary cost per category with roster
// seniority per category.
func seniorityVsSalary(roster []models.PayrollEntry, categorySalary *KeyedTotals, periodEnd time.Time) []CategorySalarySeniority {
	type catAccum struct {
		cuils     map[string]bool
		seniority float64
	}
	byCategory := make(map[string]*catAccum)
	for _, emp := range roster {
		acc := byCategory[emp.Category]
		if acc == nil {
			acc = &catAccum{cuils: make(map[string]bool)}
			byCategory[emp.Category] = acc
		}
		if !acc.cuils[emp.CUIL] {
			acc.cuils[emp.CUIL] = true
			if !emp.HireDate.IsZero() {
				acc.seniority += utils.YearsFraction(emp.HireDate, periodEnd)
			}
		}
	}

	rows := make([]CategorySalarySeniority, 0, categorySalary.Len())
	for _, category := range categorySalary.order {
		acc := byCategory[category]
		if acc == nil || len(acc.cuils) == 0 {
			continue
		}
		count := len(acc.cuils)
		rows = append(rows, CategorySalarySeniority{
			Category:      category,
			EmployeeCount: count,
			AvgSalary:     categorySalary.Get(category).Div(decimal.NewFromInt(int64(count))),
			AvgSeniority:  acc.seniority / float64(count),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AvgSalary.GreaterThan(rows[j].AvgSalary)
	})
	return rows
}

func yearlySalaryTrend(allRecords []models.PayrollEntry) ([]YearlyTrendRow, []string) {
	yearly := make(map[string]map[int]decimal.Decimal)
	for _, rec := range allRecords {
		year := strconv.Itoa(rec.Year)
		if yearly[year] == nil {
			yearly[year] = make(map[int]decimal.Decimal)
		}
		yearly[year][rec.Month] = yearly[year][rec.Month].Add(rec.Amount)
	}

	years := make([]string, 0, len(yearly))
	for year := range yearly {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	rows := make([]YearlyTrendRow, 0, 12)
	for month := 1; month <= 12; month++ {
		row := YearlyTrendRow{Month: utils.MonthFullName(month), Values: make(map[string]*decimal.Decimal)}
		for _, year := range years {
			v := yearly[year][month]
			row.Values[year] = &v
		}
		rows = append(rows, row)
	}
	return rows, years
}

// birthdaysInMonths lists roster employees whose birthday falls in any of the
// selected months, sorted by day of month.
func birthdaysInMonths(roster []models.PayrollEntry, months []int, referenceYear int) []Birthday {
	if len(months) == 0 || len(roster) == 0 {
		return []Birthday{}
	}
	selected := make(map[int]bool, len(months))
	for _, m := range months {
		selected[m] = true
	}

	out := []Birthday{}
	for _, emp := range roster {
		if emp.BirthDate.IsZero() || !selected[int(emp.BirthDate.Month())] {
			continue
		}
		out = append(out, Birthday{
			Name:       emp.Employee,
			BirthDate:  emp.BirthDate,
			AgeTurning: referenceYear - emp.BirthDate.Year(),
			Area:       emp.Area,
			Position:   emp.Category,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BirthDate.Day() < out[j].BirthDate.Day()
	})
	return out
}
