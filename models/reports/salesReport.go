package reports

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

// unknownClient is the bucket for rows whose client field is blank.
const unknownClient = "CLIENTE DESCONOCIDO"

type SalesKpis struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	AverageSale     decimal.Decimal `json:"average_sale"`
	InvoiceCount    int             `json:"invoice_count"`
	InvoiceTotal    decimal.Decimal `json:"invoice_total"`
	CreditNoteCount int             `json:"credit_note_count"`
	CreditNoteTotal decimal.Decimal `json:"credit_note_total"`
	DeclaredSales   decimal.Decimal `json:"declared_sales"`
	UndeclaredSales decimal.Decimal `json:"undeclared_sales"`
	CreditNotePct   float64         `json:"credit_note_pct"`
	NetTotal        decimal.Decimal `json:"net_total"`
	VatTotal        decimal.Decimal `json:"vat_total"`
	// AdjustmentTotal runs over every voucher; InvoiceAdjustments only over
	// invoices, which is the figure the financial-impact ratio uses.
	AdjustmentTotal     decimal.Decimal `json:"adjustment_total"`
	InvoiceTypes        map[string]int  `json:"invoice_types"`
	VoucherUnits        int             `json:"voucher_units"`
	PurchaseFrequency   float64         `json:"purchase_frequency"`
	FinancialImpactPct  float64         `json:"financial_impact_pct"`
	GrossBeforeDiscount decimal.Decimal `json:"gross_before_discount"`
	InvoiceAdjustments  decimal.Decimal `json:"invoice_adjustments"`
}

// SalesTimePoint carries the ex-tax and VAT sub-totals alongside the signed
// total for the chart tooltip breakdown.
type SalesTimePoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
	Net   decimal.Decimal `json:"net"`
	Vat   decimal.Decimal `json:"vat"`
}

type SalespersonAverage struct {
	Name         string          `json:"name"`
	Branches     string          `json:"branches"`
	Total        decimal.Decimal `json:"total"`
	InvoiceCount int             `json:"invoice_count"`
	AverageSale  decimal.Decimal `json:"average_sale"`
}

type CountPct struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type AcquisitionMonth struct {
	Month     string `json:"month"`
	New       int    `json:"new"`
	Recurring int    `json:"recurring"`
}

type CustomerAcquisition struct {
	LatestMonth        string             `json:"latest_month"`
	TotalCustomers     int                `json:"total_customers"`
	NewCustomers       CountPct           `json:"new_customers"`
	RecurringCustomers CountPct           `json:"recurring_customers"`
	NewPctChange       float64            `json:"new_pct_change"`
	RecurringPctChange float64            `json:"recurring_pct_change"`
	LastSixMonths      []AcquisitionMonth `json:"last_six_months"`
}

type SalesReport struct {
	Kpis                     SalesKpis            `json:"kpis"`
	SalesByBranch            []ChartPoint         `json:"sales_by_branch"`
	SalesBySalesperson       []ChartPoint         `json:"sales_by_salesperson"`
	SalesByType              []ChartPoint         `json:"sales_by_type"`
	SalesOverTime            []SalesTimePoint     `json:"sales_over_time"`
	BranchRanking            []RankingItem        `json:"branch_ranking"`
	SalespersonRanking       []RankingItem        `json:"salesperson_ranking"`
	ClientRanking            []RankingItem        `json:"client_ranking"`
	YearlySalesTrend         []YearlyTrendRow     `json:"yearly_sales_trend"`
	TrendYears               []string             `json:"trend_years"`
	DailySalesOverTime       []SalesTimePoint     `json:"daily_sales_over_time,omitempty"`
	DailyYearlyTrend         []DailyTrendRow      `json:"daily_yearly_trend,omitempty"`
	DailyTrendYears          []string             `json:"daily_trend_years,omitempty"`
	AverageSaleBySalesperson []SalespersonAverage `json:"average_sale_by_salesperson"`
	CustomerAcquisition      *CustomerAcquisition `json:"customer_acquisition,omitempty"`
}

func emptySalesReport() *SalesReport {
	return &SalesReport{
		Kpis:                     SalesKpis{InvoiceTypes: map[string]int{}},
		SalesByBranch:            []ChartPoint{},
		SalesBySalesperson:       []ChartPoint{},
		SalesByType:              []ChartPoint{},
		SalesOverTime:            []SalesTimePoint{},
		BranchRanking:            []RankingItem{},
		SalespersonRanking:       []RankingItem{},
		ClientRanking:            []RankingItem{},
		YearlySalesTrend:         []YearlyTrendRow{},
		TrendYears:               []string{},
		AverageSaleBySalesperson: []SalespersonAverage{},
	}
}

// salespersonAccum tracks the branches a salesperson sold from alongside the
// net total and invoice count.
type salespersonAccum struct {
	total    decimal.Decimal
	count    int
	branches []string
}

type clientAccum struct {
	total decimal.Decimal
	count int
}

type monthAccum struct {
	total decimal.Decimal
	net   decimal.Decimal
	vat   decimal.Decimal
}

// BuildSalesReport aggregates the filtered sales set into the dashboard's
// result shape. allRecords is the unfiltered full set used for year-over-year
// comparison and customer acquisition; it may be nil, which just disables
// those two sections. The function never mutates its inputs and never fails
// on empty data: zero rows yield the fully zeroed shape.
func BuildSalesReport(records []models.Sale, allRecords []models.Sale, filter models.SalesFilter) *SalesReport {
	// Debit notes are accounting adjustments and are stripped before any
	// other computation runs.
	processed := make([]models.Sale, 0, len(records))
	for _, rec := range records {
		if !rec.IsDebitNote() {
			processed = append(processed, rec)
		}
	}

	if len(processed) == 0 {
		return emptySalesReport()
	}

	report := emptySalesReport()
	kpis := &report.Kpis

	clientsOnInvoices := make(map[string]bool)
	for _, rec := range processed {
		gross := rec.Total.Abs()
		kpis.VoucherUnits += rec.VoucherQty

		if rec.IsCreditNote() {
			kpis.CreditNoteCount++
			kpis.CreditNoteTotal = kpis.CreditNoteTotal.Add(gross)
		} else {
			kpis.InvoiceCount++
			kpis.InvoiceTotal = kpis.InvoiceTotal.Add(gross)
			voucherType := rec.VoucherType
			if voucherType == "" {
				voucherType = "OTROS"
			}
			kpis.InvoiceTypes[voucherType]++

			kpis.GrossBeforeDiscount = kpis.GrossBeforeDiscount.Add(rec.GrossBeforeDiscount)
			kpis.InvoiceAdjustments = kpis.InvoiceAdjustments.Add(rec.FinancialAdjustment)
			clientsOnInvoices[rec.Client] = true
		}

		signed := rec.SignedTotal()
		if rec.Channel == models.ChannelDeclared {
			kpis.DeclaredSales = kpis.DeclaredSales.Add(signed)
		} else {
			kpis.UndeclaredSales = kpis.UndeclaredSales.Add(signed)
		}

		kpis.NetTotal = kpis.NetTotal.Add(rec.SignedNet())
		kpis.VatTotal = kpis.VatTotal.Add(rec.SignedVat())
		kpis.AdjustmentTotal = kpis.AdjustmentTotal.Add(rec.FinancialAdjustment)
	}

	kpis.TotalSales = kpis.InvoiceTotal.Sub(kpis.CreditNoteTotal)
	if kpis.InvoiceCount > 0 {
		kpis.AverageSale = kpis.InvoiceTotal.Div(decimal.NewFromInt(int64(kpis.InvoiceCount)))
	}
	kpis.CreditNotePct = utils.RatioPct(kpis.CreditNoteTotal, kpis.InvoiceTotal)
	if len(clientsOnInvoices) > 0 {
		kpis.PurchaseFrequency = float64(kpis.InvoiceCount) / float64(len(clientsOnInvoices))
	}
	kpis.FinancialImpactPct = utils.RatioPct(kpis.InvoiceAdjustments, kpis.GrossBeforeDiscount)

	// Grouped aggregates on net (signed) amounts.
	branchTotals := NewKeyedTotals()
	typeTotals := NewKeyedTotals()
	branchInvoiceCounts := make(map[string]int)
	salespersonAgg := make(map[string]*salespersonAccum)
	salespersonOrder := []string{}
	clientAgg := make(map[string]*clientAccum)
	clientOrder := []string{}
	monthAgg := make(map[string]*monthAccum)

	for _, rec := range processed {
		amount := rec.SignedTotal()
		branchKey := utils.NormalizeKey(rec.Branch)
		salespersonKey := utils.NormalizeKey(rec.Salesperson)
		clientKey := utils.NormalizeKey(rec.Client)
		if clientKey == "" {
			clientKey = unknownClient
		}

		// Rows without a branch stay in the scalar KPIs above but cannot be
		// attributed to any grouping.
		if branchKey == "" {
			continue
		}

		branchTotals.Add(branchKey, amount)

		if salespersonKey != "" {
			acc := salespersonAgg[salespersonKey]
			if acc == nil {
				acc = &salespersonAccum{}
				salespersonAgg[salespersonKey] = acc
				salespersonOrder = append(salespersonOrder, salespersonKey)
			}
			acc.total = acc.total.Add(amount)
			if !containsString(acc.branches, branchKey) {
				acc.branches = append(acc.branches, branchKey)
			}
			if !rec.IsCreditNote() {
				acc.count++
			}
		}

		cacc := clientAgg[clientKey]
		if cacc == nil {
			cacc = &clientAccum{}
			clientAgg[clientKey] = cacc
			clientOrder = append(clientOrder, clientKey)
		}
		cacc.total = cacc.total.Add(amount)
		if !rec.IsCreditNote() {
			cacc.count++
		}

		if !rec.IsCreditNote() {
			typeTotals.Add(string(rec.Channel), rec.Total.Abs())
			branchInvoiceCounts[branchKey]++
		}

		monthKey := utils.MonthKey(rec.Date)
		macc := monthAgg[monthKey]
		if macc == nil {
			macc = &monthAccum{}
			monthAgg[monthKey] = macc
		}
		macc.total = macc.total.Add(amount)
		macc.net = macc.net.Add(rec.SignedNet())
		macc.vat = macc.vat.Add(rec.SignedVat())
	}

	report.SalesByBranch = FormatForPieChart(branchTotals)
	report.SalesByType = FormatForBarChart(typeTotals)
	report.SalesOverTime = salesTimeSeries(monthAgg)

	salespersonTotals := NewKeyedTotals()
	for _, name := range salespersonOrder {
		salespersonTotals.Add(name, salespersonAgg[name].total)
	}
	report.SalesBySalesperson = FormatForBarChart(salespersonTotals)

	report.BranchRanking = branchRanking(branchTotals, branchInvoiceCounts)
	report.SalespersonRanking = salespersonRanking(salespersonOrder, salespersonAgg)
	report.ClientRanking = clientRanking(clientOrder, clientAgg)
	report.YearlySalesTrend, report.TrendYears = yearlySalesTrend(processed, allRecords, filter)
	report.AverageSaleBySalesperson = averageSaleBySalesperson(salespersonOrder, salespersonAgg)
	report.CustomerAcquisition = customerAcquisition(processed, allRecords)

	buildDailyDrilldown(report, processed, filter)

	return report
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func salesTimeSeries(monthAgg map[string]*monthAccum) []SalesTimePoint {
	keys := make([]string, 0, len(monthAgg))
	for key := range monthAgg {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	points := make([]SalesTimePoint, 0, len(keys))
	for _, key := range keys {
		acc := monthAgg[key]
		points = append(points, SalesTimePoint{Date: key, Value: acc.total, Net: acc.net, Vat: acc.vat})
	}
	return points
}

func branchRanking(branchTotals *KeyedTotals, invoiceCounts map[string]int) []RankingItem {
	items := make([]RankingItem, 0, branchTotals.Len())
	for _, name := range branchTotals.order {
		items = append(items, RankingItem{
			Name:  name,
			Total: branchTotals.Get(name),
			Count: invoiceCounts[name],
		})
	}
	sortRankingDesc(items)
	return items
}

func salespersonRanking(order []string, agg map[string]*salespersonAccum) []RankingItem {
	items := make([]RankingItem, 0, len(order))
	for _, name := range order {
		items = append(items, RankingItem{Name: name, Total: agg[name].total, Count: agg[name].count})
	}
	sortRankingDesc(items)
	return items
}

func clientRanking(order []string, agg map[string]*clientAccum) []RankingItem {
	items := make([]RankingItem, 0, len(order))
	for _, name := range order {
		items = append(items, RankingItem{Name: name, Total: agg[name].total, Count: agg[name].count})
	}
	sortRankingDesc(items)
	return items
}

func averageSaleBySalesperson(order []string, agg map[string]*salespersonAccum) []SalespersonAverage {
	rows := make([]SalespersonAverage, 0, len(order))
	for _, name := range order {
		acc := agg[name]
		if acc.count == 0 {
			continue
		}
		branches := ""
		for i, b := range acc.branches {
			if i > 0 {
				branches += ", "
			}
			branches += b
		}
		rows = append(rows, SalespersonAverage{
			Name:         name,
			Branches:     branches,
			Total:        acc.total,
			InvoiceCount: acc.count,
			AverageSale:  acc.total.Div(decimal.NewFromInt(int64(acc.count))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AverageSale.GreaterThan(rows[j].AverageSale)
	})
	return rows
}

// yearlySalesTrend builds the month-by-year comparison matrix. When exactly
// one year is selected and the full set is available, the selected year and
// the prior one are re-derived from the full set with every non-year filter
// re-applied (date bounds compared by month and day only), so both years pass
// the same intra-year window.
func yearlySalesTrend(processed, allRecords []models.Sale, filter models.SalesFilter) ([]YearlyTrendRow, []string) {
	trendData := processed
	if len(filter.Years) == 1 && allRecords != nil {
		selectedYear := filter.Years[0]
		previousYear := selectedYear - 1
		comparison := make([]models.Sale, 0)
		for _, rec := range allRecords {
			year := rec.Date.Year()
			if year != selectedYear && year != previousYear {
				continue
			}
			if !filter.MatchIgnoringYear(rec) {
				continue
			}
			if rec.IsDebitNote() {
				continue
			}
			comparison = append(comparison, rec)
		}
		trendData = comparison
	}

	yearlySales := make(map[string]map[int]decimal.Decimal)
	latestMonths := make(map[string]int)
	for _, rec := range trendData {
		year := strconv.Itoa(rec.Date.Year())
		month := int(rec.Date.Month())
		if yearlySales[year] == nil {
			yearlySales[year] = make(map[int]decimal.Decimal)
		}
		yearlySales[year][month] = yearlySales[year][month].Add(rec.SignedTotal())
		if month > latestMonths[year] {
			latestMonths[year] = month
		}
	}

	years := make([]string, 0, len(yearlySales))
	for year := range yearlySales {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	rows := make([]YearlyTrendRow, 0, 12)
	for month := 1; month <= 12; month++ {
		row := YearlyTrendRow{Month: utils.MonthShortName(month), Values: make(map[string]*decimal.Decimal)}
		for _, year := range years {
			// Months past a year's latest observed month are gaps, not
			// zeros: "no data yet" must not plot as a drop in sales.
			if month > latestMonths[year] {
				row.Values[year] = nil
				continue
			}
			v := yearlySales[year][month]
			row.Values[year] = &v
		}
		rows = append(rows, row)
	}
	return rows, years
}

// customerAcquisition splits the latest filtered month's buyers into new and
// recurring, based on each client's first-ever purchase month over the full
// unfiltered history.
func customerAcquisition(processed, allRecords []models.Sale) *CustomerAcquisition {
	if len(allRecords) == 0 || len(processed) == 0 {
		return nil
	}

	sorted := append([]models.Sale(nil), allRecords...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	firstPurchase := make(map[string]time.Time)
	for _, rec := range sorted {
		key := utils.NormalizeKey(rec.Client)
		if key == "" {
			key = unknownClient
		}
		if _, ok := firstPurchase[key]; !ok {
			firstPurchase[key] = rec.Date
		}
	}

	type split struct {
		newCount, recurringCount, total int
		newPct, recurringPct            float64
	}
	splitForMonth := func(year, month int) split {
		customers := make(map[string]bool)
		for _, rec := range allRecords {
			if rec.Date.Year() != year || int(rec.Date.Month()) != month {
				continue
			}
			if rec.IsCreditNote() || rec.IsDebitNote() {
				continue
			}
			key := utils.NormalizeKey(rec.Client)
			if key == "" {
				key = unknownClient
			}
			customers[key] = true
		}
		var s split
		for customer := range customers {
			first, ok := firstPurchase[customer]
			if ok && first.Year() == year && int(first.Month()) == month {
				s.newCount++
			} else {
				s.recurringCount++
			}
		}
		s.total = len(customers)
		if s.total > 0 {
			s.newPct = float64(s.newCount) / float64(s.total) * 100
			s.recurringPct = float64(s.recurringCount) / float64(s.total) * 100
		}
		return s
	}

	latest := processed[0].Date
	for _, rec := range processed[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	year, month := latest.Year(), int(latest.Month())
	current := splitForMonth(year, month)

	prevYear, prevMonth := year, month-1
	if prevMonth == 0 {
		prevYear, prevMonth = year-1, 12
	}
	previous := splitForMonth(prevYear, prevMonth)

	lastSix := make([]AcquisitionMonth, 0, 6)
	y, m := year, month
	for i := 0; i < 6; i++ {
		s := splitForMonth(y, m)
		lastSix = append(lastSix, AcquisitionMonth{
			Month:     utils.MonthShortName(m),
			New:       s.newCount,
			Recurring: s.recurringCount,
		})
		m--
		if m == 0 {
			y, m = y-1, 12
		}
	}
	// Oldest to newest.
	for i, j := 0, len(lastSix)-1; i < j; i, j = i+1, j-1 {
		lastSix[i], lastSix[j] = lastSix[j], lastSix[i]
	}

	return &CustomerAcquisition{
		LatestMonth:        fmt.Sprintf("%s %d", utils.MonthShortName(month), year),
		TotalCustomers:     current.total,
		NewCustomers:       CountPct{Count: current.newCount, Percentage: current.newPct},
		RecurringCustomers: CountPct{Count: current.recurringCount, Percentage: current.recurringPct},
		NewPctChange:       utils.PctChange(current.newPct, previous.newPct),
		RecurringPctChange: utils.PctChange(current.recurringPct, previous.recurringPct),
		LastSixMonths:      lastSix,
	}
}

// buildDailyDrilldown attaches day-level series when the filtered set spans a
// single calendar month (the same month across multiple years still counts,
// since that is exactly the year-over-year daily comparison case).
func buildDailyDrilldown(report *SalesReport, processed []models.Sale, filter models.SalesFilter) {
	months := make(map[int]bool)
	for _, rec := range processed {
		months[int(rec.Date.Month())] = true
	}
	if len(months) != 1 {
		return
	}

	dailyAgg := make(map[string]*monthAccum)
	dailyByYear := make(map[string]map[int]decimal.Decimal)
	for _, rec := range processed {
		dayKey := rec.Date.Format("2006-01-02")
		acc := dailyAgg[dayKey]
		if acc == nil {
			acc = &monthAccum{}
			dailyAgg[dayKey] = acc
		}
		amount := rec.SignedTotal()
		acc.total = acc.total.Add(amount)
		acc.net = acc.net.Add(rec.SignedNet())
		acc.vat = acc.vat.Add(rec.SignedVat())

		year := strconv.Itoa(rec.Date.Year())
		if dailyByYear[year] == nil {
			dailyByYear[year] = make(map[int]decimal.Decimal)
		}
		day := rec.Date.Day()
		dailyByYear[year][day] = dailyByYear[year][day].Add(amount)
	}

	report.DailySalesOverTime = salesTimeSeries(dailyAgg)

	// Years come from the filter selection when present, so a year with zero
	// sales for the month still shows up in the comparison.
	var years []string
	if len(filter.Years) > 0 {
		for _, y := range filter.Years {
			years = append(years, strconv.Itoa(y))
		}
	} else {
		for year := range dailyByYear {
			years = append(years, year)
		}
	}
	sort.Strings(years)

	month := 0
	for m := range months {
		month = m
	}

	// Size the day axis to the longest month across the compared years so a
	// leap-year Feb 29 is not cut off.
	daysInMonth := 0
	for _, yearStr := range years {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		if d := utils.DaysInMonth(y, month); d > daysInMonth {
			daysInMonth = d
		}
	}
	if daysInMonth == 0 {
		daysInMonth = utils.DaysInMonth(processed[0].Date.Year(), month)
	}

	rows := make([]DailyTrendRow, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		row := DailyTrendRow{Day: strconv.Itoa(day), Values: make(map[string]decimal.Decimal)}
		for _, year := range years {
			row.Values[year] = dailyByYear[year][day]
		}
		rows = append(rows, row)
	}
	report.DailyYearlyTrend = rows
	report.DailyTrendYears = years
}
