package reports

import (
	"sort"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

// operatingBranches is the allow-list for per-branch turnover. Warehouse and
// transit locations carry stock but no sales, which would read as zero
// rotation.
var operatingBranches = map[string]bool{
	"LIBANO":      true,
	"MITRE":       true,
	"CATAMARCA":   true,
	"SALTA":       true,
	"JUJUY":       true,
	"YERBA BUENA": true,
	"PERICO":      true,
}

type StockKpis struct {
	TotalOfficialARS    decimal.Decimal `json:"total_official_ars"`
	TotalOfficialUSD    decimal.Decimal `json:"total_official_usd"`
	TotalSystemUSD      decimal.Decimal `json:"total_system_usd"`
	MonthlyVariationPct float64         `json:"monthly_variation_pct"`
	AvgMonthlyStock     decimal.Decimal `json:"avg_monthly_stock"`
	AvgOfficialRate     decimal.Decimal `json:"avg_official_rate"`
	AvgSystemRate       decimal.Decimal `json:"avg_system_rate"`
	RateGapPct          float64         `json:"rate_gap_pct"`
	StockTurnover       float64         `json:"stock_turnover"`
	DaysOfCoverage      float64         `json:"days_of_coverage"`
	StockToPurchase     float64         `json:"stock_to_purchase"`
	FinancialCoverage   float64         `json:"financial_coverage"`
}

type RateTimePoint struct {
	Date         string          `json:"date"`
	OfficialRate decimal.Decimal `json:"official_rate"`
	SystemRate   decimal.Decimal `json:"system_rate"`
}

type BranchTurnover struct {
	Name     string  `json:"name"`
	Turnover float64 `json:"turnover"`
}

type StockReport struct {
	Kpis               StockKpis         `json:"kpis"`
	StockEvolution     []TimeSeriesPoint `json:"stock_evolution"`
	StockByRubro       []ChartPoint      `json:"stock_by_rubro"`
	StockByRubroUSD    []ChartPoint      `json:"stock_by_rubro_usd"`
	StockByBranch      []ChartPoint      `json:"stock_by_branch"`
	StockByBranchUSD   []ChartPoint      `json:"stock_by_branch_usd"`
	RubroRankingUSD    []RankingItem     `json:"rubro_ranking_usd"`
	RateEvolution      []RateTimePoint   `json:"rate_evolution"`
	TurnoverByBranch   []BranchTurnover  `json:"turnover_by_branch"`
	TotalStockTurnover float64           `json:"total_stock_turnover"`
}

// StockContext carries the full cross-domain datasets the ratio KPIs re-filter
// by the stock period. Any of them may be empty.
type StockContext struct {
	Sales     []models.Sale
	Purchases []models.Purchase
	Expenses  []models.Expense
	Payroll   []models.PayrollEntry
}

func emptyStockReport() *StockReport {
	return &StockReport{
		StockEvolution:   []TimeSeriesPoint{},
		StockByRubro:     []ChartPoint{},
		StockByRubroUSD:  []ChartPoint{},
		StockByBranch:    []ChartPoint{},
		StockByBranchUSD: []ChartPoint{},
		RubroRankingUSD:  []RankingItem{},
		RateEvolution:    []RateTimePoint{},
		TurnoverByBranch: []BranchTurnover{},
	}
}

// BuildStockReport aggregates stock valuation snapshots. Category and branch
// breakdowns use only the latest snapshot month of the filtered set, since a
// snapshot is a point-in-time photo, not a flow. Evolution charts use the full
// set when the filter pins exactly one year and month, so the single-month
// view still shows history.
func BuildStockReport(records []models.StockSnapshot, allRecords []models.StockSnapshot, filter models.StockFilter, ctx StockContext) *StockReport {
	singleMonthView := len(filter.Years) == 1 && len(filter.Months) == 1
	evolutionData := records
	if singleMonthView {
		evolutionData = allRecords
	}
	if len(records) == 0 && len(evolutionData) == 0 {
		return emptyStockReport()
	}

	report := emptyStockReport()
	kpis := &report.Kpis

	period := models.PeriodFilter{Years: filter.Years, Months: filter.Months}
	totalSales := decimal.Zero
	salesByBranch := make(map[string]decimal.Decimal)
	for _, rec := range ctx.Sales {
		if rec.IsDebitNote() || !period.MatchDate(rec.Date) {
			continue
		}
		amount := rec.SignedTotal()
		totalSales = totalSales.Add(amount)
		branch := utils.NormalizeKey(rec.Branch)
		salesByBranch[branch] = salesByBranch[branch].Add(amount)
	}
	totalPurchases := decimal.Zero
	for _, rec := range ctx.Purchases {
		if period.MatchDate(rec.Date) {
			totalPurchases = totalPurchases.Add(rec.Total)
		}
	}
	totalExpenses := decimal.Zero
	for _, rec := range ctx.Expenses {
		if period.MatchDate(rec.Date) {
			totalExpenses = totalExpenses.Add(rec.Amount)
		}
	}
	totalSalaries := decimal.Zero
	for _, rec := range ctx.Payroll {
		if period.MatchDate(rec.Date) {
			totalSalaries = totalSalaries.Add(rec.Amount)
		}
	}

	// Latest snapshot month of the filtered set feeds the pies and the
	// point-in-time KPIs.
	var latestMonth []models.StockSnapshot
	if len(records) > 0 {
		latest := records[0].Date
		for _, rec := range records[1:] {
			if rec.Date.After(latest) {
				latest = rec.Date
			}
		}
		for _, rec := range records {
			if rec.Date.Year() == latest.Year() && rec.Date.Month() == latest.Month() {
				latestMonth = append(latestMonth, rec)
			}
		}
	}

	rubroARS := NewKeyedTotals()
	rubroUSD := NewKeyedTotals()
	branchARS := NewKeyedTotals()
	branchUSD := NewKeyedTotals()
	officialRateSum, systemRateSum := decimal.Zero, decimal.Zero
	for _, rec := range latestMonth {
		rubroARS.Add(rec.Rubro, rec.ValueARS)
		rubroUSD.Add(rec.Rubro, rec.ValueUSD)
		branchARS.Add(rec.Branch, rec.ValueARS)
		branchUSD.Add(rec.Branch, rec.ValueUSD)
		kpis.TotalOfficialARS = kpis.TotalOfficialARS.Add(rec.ValueARS)
		kpis.TotalOfficialUSD = kpis.TotalOfficialUSD.Add(rec.ValueUSD)
		kpis.TotalSystemUSD = kpis.TotalSystemUSD.Add(rec.ValueUSDSystem)
		officialRateSum = officialRateSum.Add(rec.OfficialRate)
		systemRateSum = systemRateSum.Add(rec.SystemRate)
	}
	if n := len(latestMonth); n > 0 {
		kpis.AvgOfficialRate = officialRateSum.Div(decimal.NewFromInt(int64(n)))
		kpis.AvgSystemRate = systemRateSum.Div(decimal.NewFromInt(int64(n)))
	}
	if kpis.AvgOfficialRate.IsPositive() {
		gap, _ := kpis.AvgSystemRate.Div(kpis.AvgOfficialRate).Sub(decimal.NewFromInt(1)).Float64()
		kpis.RateGapPct = gap * 100
	}

	report.StockByRubro = FormatForPieChart(rubroARS)
	report.StockByRubroUSD = FormatForPieChart(rubroUSD)
	report.StockByBranch = FormatForPieChart(branchARS)
	report.StockByBranchUSD = FormatForPieChart(branchUSD)
	report.RubroRankingUSD = topRanking(rubroUSD, rubroUSD.Len())

	// Filtered-set month totals in ARS drive variation, averages and
	// turnover.
	monthTotals := NewKeyedTotals()
	branchMonthARS := make(map[string]*KeyedTotals)
	for _, rec := range records {
		monthKey := utils.MonthKey(rec.Date)
		monthTotals.Add(monthKey, rec.ValueARS)
		branch := utils.NormalizeKey(rec.Branch)
		if branchMonthARS[branch] == nil {
			branchMonthARS[branch] = NewKeyedTotals()
		}
		branchMonthARS[branch].Add(monthKey, rec.ValueARS)
	}
	kpis.MonthlyVariationPct = lastMonthVariation(monthTotals)
	monthsInPeriod := monthTotals.Len()
	if monthsInPeriod > 0 {
		kpis.AvgMonthlyStock = monthTotals.Sum().Div(decimal.NewFromInt(int64(monthsInPeriod)))
	}

	// Annualized turnover and coverage ratios, all zero-guarded.
	if monthsInPeriod > 0 {
		annualizedSales := totalSales.Div(decimal.NewFromInt(int64(monthsInPeriod))).Mul(decimal.NewFromInt(12))
		kpis.StockTurnover = utils.Ratio(annualizedSales, kpis.AvgMonthlyStock)

		avgDailySales := totalSales.Div(decimal.NewFromInt(int64(monthsInPeriod * 30)))
		// Credit-note-heavy periods can push average daily sales negative;
		// coverage is undefined there and stays 0.
		if avgDailySales.IsPositive() {
			kpis.DaysOfCoverage = utils.Ratio(kpis.TotalOfficialARS, avgDailySales)
		}
	}
	kpis.StockToPurchase = utils.Ratio(kpis.TotalOfficialARS, totalPurchases)
	kpis.FinancialCoverage = utils.Ratio(kpis.TotalOfficialARS, totalExpenses.Add(totalSalaries))

	report.TurnoverByBranch, report.TotalStockTurnover = branchTurnover(branchMonthARS, salesByBranch, monthsInPeriod)

	// Evolution charts in USD plus the exchange-rate series.
	usdByMonth := NewKeyedTotals()
	type rateAccum struct {
		official decimal.Decimal
		system   decimal.Decimal
		count    int64
	}
	rateByMonth := make(map[string]*rateAccum)
	for _, rec := range evolutionData {
		monthKey := utils.MonthKey(rec.Date)
		usdByMonth.Add(monthKey, rec.ValueUSD)
		acc := rateByMonth[monthKey]
		if acc == nil {
			acc = &rateAccum{}
			rateByMonth[monthKey] = acc
		}
		acc.official = acc.official.Add(rec.OfficialRate)
		acc.system = acc.system.Add(rec.SystemRate)
		acc.count++
	}
	report.StockEvolution = timeSeriesFromTotals(usdByMonth)

	rateKeys := make([]string, 0, len(rateByMonth))
	for key := range rateByMonth {
		rateKeys = append(rateKeys, key)
	}
	sort.Strings(rateKeys)
	for _, key := range rateKeys {
		acc := rateByMonth[key]
		n := decimal.NewFromInt(acc.count)
		report.RateEvolution = append(report.RateEvolution, RateTimePoint{
			Date:         key,
			OfficialRate: acc.official.Div(n),
			SystemRate:   acc.system.Div(n),
		})
	}

	return report
}

// branchTurnover annualizes per-branch sales against average monthly stock,
// restricted to the operating-branch allow-list, plus the company-wide figure
// over the same branches.
func branchTurnover(branchMonthARS map[string]*KeyedTotals, salesByBranch map[string]decimal.Decimal, monthsInPeriod int) ([]BranchTurnover, float64) {
	if monthsInPeriod == 0 {
		return []BranchTurnover{}, 0
	}

	branches := make([]string, 0, len(branchMonthARS))
	for branch := range branchMonthARS {
		if operatingBranches[branch] {
			branches = append(branches, branch)
		}
	}
	sort.Strings(branches)

	months := decimal.NewFromInt(int64(monthsInPeriod))
	twelve := decimal.NewFromInt(12)

	out := make([]BranchTurnover, 0, len(branches))
	totalSalesIncluded, totalAvgStockIncluded := decimal.Zero, decimal.Zero
	for _, branch := range branches {
		monthly := branchMonthARS[branch]
		avgStock := monthly.Sum().Div(decimal.NewFromInt(int64(monthly.Len())))
		annualizedSales := salesByBranch[branch].Div(months).Mul(twelve)
		out = append(out, BranchTurnover{Name: branch, Turnover: utils.Ratio(annualizedSales, avgStock)})

		totalSalesIncluded = totalSalesIncluded.Add(salesByBranch[branch])
		totalAvgStockIncluded = totalAvgStockIncluded.Add(avgStock)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Turnover > out[j].Turnover })

	annualizedTotal := totalSalesIncluded.Div(months).Mul(twelve)
	return out, utils.Ratio(annualizedTotal, totalAvgStockIncluded)
}
