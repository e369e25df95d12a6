package reports

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

// taxCategories are the expense categories that count as tax burden rather
// than operating spend.
var taxCategories = map[string]bool{
	"TRIBUTOS Y TASAS":      true,
	"TRIBUTOS MUNICIPALES":  true,
	"TRIBUTOS NACIONALES":   true,
	"TRIBUTOS PROVINCIALES": true,
}

type ExpenseKpis struct {
	TotalExpenses         decimal.Decimal `json:"total_expenses"`
	MonthlyVariationPct   float64         `json:"monthly_variation_pct"`
	AvgExpensePerCategory decimal.Decimal `json:"avg_expense_per_category"`
	OpexTotal             decimal.Decimal `json:"opex_total"`
	TaxTotal              decimal.Decimal `json:"tax_total"`
	TopMonth              TopBucket       `json:"top_month"`
}

type AggregatedExpense struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ExpensesReport struct {
	Kpis                ExpenseKpis         `json:"kpis"`
	ExpensesOverTime    []TimeSeriesPoint   `json:"expenses_over_time"`
	ExpensesByCategory  []ChartPoint        `json:"expenses_by_category"`
	TopSubcategories    []RankingItem       `json:"top_subcategories"`
	YearlyExpenseTrend  []YearlyTrendRow    `json:"yearly_expense_trend"`
	TrendYears          []string            `json:"trend_years"`
	ByCategoryDetail    []AggregatedExpense `json:"by_category_detail"`
	BySubcategoryDetail []AggregatedExpense `json:"by_subcategory_detail"`
	ByDetailDetail      []AggregatedExpense `json:"by_detail_detail"`
}

func emptyExpensesReport() *ExpensesReport {
	return &ExpensesReport{
		Kpis:                ExpenseKpis{TopMonth: TopBucket{Name: "-"}},
		ExpensesOverTime:    []TimeSeriesPoint{},
		ExpensesByCategory:  []ChartPoint{},
		TopSubcategories:    []RankingItem{},
		YearlyExpenseTrend:  []YearlyTrendRow{},
		TrendYears:          []string{},
		ByCategoryDetail:    []AggregatedExpense{},
		BySubcategoryDetail: []AggregatedExpense{},
		ByDetailDetail:      []AggregatedExpense{},
	}
}

// BuildExpensesReport aggregates the filtered expense set; allRecords (full
// set) feeds the yearly comparison trend and may be nil.
func BuildExpensesReport(records []models.Expense, allRecords []models.Expense) *ExpensesReport {
	if len(records) == 0 {
		return emptyExpensesReport()
	}

	report := emptyExpensesReport()

	monthTotals := NewKeyedTotals()
	categoryTotals := NewKeyedTotals()
	subcategoryTotals := NewKeyedTotals()
	total := decimal.Zero
	taxTotal := decimal.Zero

	for _, rec := range records {
		total = total.Add(rec.Amount)
		monthTotals.Add(utils.MonthKey(rec.Date), rec.Amount)
		categoryTotals.Add(rec.Category, rec.Amount)
		subcategoryTotals.Add(rec.Subcategory, rec.Amount)
		if taxCategories[utils.NormalizeKey(rec.Category)] {
			taxTotal = taxTotal.Add(rec.Amount)
		}
	}

	kpis := &report.Kpis
	kpis.TotalExpenses = total
	kpis.TaxTotal = taxTotal
	kpis.OpexTotal = total.Sub(taxTotal)
	if categoryTotals.Len() > 0 {
		kpis.AvgExpensePerCategory = total.Div(decimal.NewFromInt(int64(categoryTotals.Len())))
	}
	kpis.MonthlyVariationPct = lastMonthVariation(monthTotals)
	if monthKey, topTotal := topEntry(monthTotals); monthKey != "-" {
		if year, month, ok := utils.ParseMonthKey(monthKey); ok {
			kpis.TopMonth = TopBucket{Name: fmt.Sprintf("%s %d", utils.MonthFullName(month), year), Total: topTotal}
		}
	}

	report.ExpensesOverTime = timeSeriesFromTotals(monthTotals)
	report.ExpensesByCategory = FormatForPieChart(categoryTotals)
	report.TopSubcategories = topRanking(subcategoryTotals, 10)
	report.YearlyExpenseTrend, report.TrendYears = yearlyExpenseTrend(allRecords)
	report.ByCategoryDetail = aggregateExpenses(records, func(e models.Expense) string { return e.Category })
	report.BySubcategoryDetail = aggregateExpenses(records, func(e models.Expense) string { return e.Subcategory })
	report.ByDetailDetail = aggregateExpenses(records, func(e models.Expense) string { return e.Detail })

	return report
}

// lastMonthVariation compares the chronologically last two month buckets.
func lastMonthVariation(monthTotals *KeyedTotals) float64 {
	keys := append([]string(nil), monthTotals.order...)
	sort.Strings(keys)
	if len(keys) < 2 {
		return 0
	}
	last := monthTotals.Get(keys[len(keys)-1])
	previous := monthTotals.Get(keys[len(keys)-2])
	if !previous.IsPositive() {
		return 0
	}
	diff, _ := last.Sub(previous).Div(previous).Float64()
	return diff * 100
}

func topRanking(totals *KeyedTotals, limit int) []RankingItem {
	items := make([]RankingItem, 0, totals.Len())
	for _, name := range totals.order {
		items = append(items, RankingItem{Name: name, Total: totals.Get(name)})
	}
	sortRankingDesc(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// yearlyExpenseTrend compares months across every year of the full set. An
// absent month plots as zero here: unlike sales there is no "data not loaded
// yet" distinction worth preserving for expenses.
func yearlyExpenseTrend(allRecords []models.Expense) ([]YearlyTrendRow, []string) {
	if len(allRecords) == 0 {
		return []YearlyTrendRow{}, []string{}
	}

	yearly := make(map[string]map[int]decimal.Decimal)
	for _, rec := range allRecords {
		year := strconv.Itoa(rec.Date.Year())
		month := int(rec.Date.Month())
		if yearly[year] == nil {
			yearly[year] = make(map[int]decimal.Decimal)
		}
		yearly[year][month] = yearly[year][month].Add(rec.Amount)
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

func aggregateExpenses(records []models.Expense, keyOf func(models.Expense) string) []AggregatedExpense {
	agg := make(map[string]*AggregatedExpense)
	order := []string{}
	for _, rec := range records {
		name := keyOf(rec)
		if name == "" {
			name = "N/A"
		}
		item := agg[name]
		if item == nil {
			item = &AggregatedExpense{Name: name}
			agg[name] = item
			order = append(order, name)
		}
		item.Total = item.Total.Add(rec.Amount)
		item.Count++
	}
	rows := make([]AggregatedExpense, 0, len(order))
	for _, name := range order {
		rows = append(rows, *agg[name])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows
}
