package reports

import (
	"sort"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

type PLKpis struct {
	NetSales          decimal.Decimal `json:"net_sales"`
	FinancialIncome   decimal.Decimal `json:"financial_income"`
	DiscountsGranted  decimal.Decimal `json:"discounts_granted"`
	AdjustedNetSales  decimal.Decimal `json:"adjusted_net_sales"`
	Purchases         decimal.Decimal `json:"purchases"`
	CostOfGoodsSold   decimal.Decimal `json:"cost_of_goods_sold"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	GrossMarginPct    float64         `json:"gross_margin_pct"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	Salaries          decimal.Decimal `json:"salaries"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	Ebit              decimal.Decimal `json:"ebit"`
	NetIncome         decimal.Decimal `json:"net_income"`
	NetMarginPct      float64         `json:"net_margin_pct"`
}

// PLLine is one row of the income statement table. PctOfSales is nil when the
// denominator is undefined for the row.
type PLLine struct {
	Category   string          `json:"category"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	PctOfSales *float64        `json:"pct_of_sales"`
	IsTitle    bool            `json:"is_title,omitempty"`
	IsSubtotal bool            `json:"is_subtotal,omitempty"`
}

type PLMonthPoint struct {
	Date          string          `json:"date"`
	NetSales      decimal.Decimal `json:"net_sales"`
	CostOfGoods   decimal.Decimal `json:"cost_of_goods"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	GrossMargin   decimal.Decimal `json:"gross_margin"`
	Ebit          decimal.Decimal `json:"ebit"`
}

type ProfitAndLossReport struct {
	Kpis          PLKpis         `json:"kpis"`
	Table         []PLLine       `json:"table"`
	MonthlySeries []PLMonthPoint `json:"monthly_series"`
}

// BuildProfitAndLossReport assembles a simplified income statement for the
// period from the full cross-domain datasets. Cost of goods sold is taken as
// net purchases for the period: without per-unit cost data a purchases proxy
// is the closest available figure.
func BuildProfitAndLossReport(
	sales []models.Sale,
	purchases []models.Purchase,
	expenses []models.Expense,
	payroll []models.PayrollEntry,
	period models.PeriodFilter,
) *ProfitAndLossReport {
	netSales := decimal.Zero
	financialIncome := decimal.Zero
	discountsGranted := decimal.Zero
	salesByMonth := make(map[string]decimal.Decimal)

	for _, rec := range sales {
		if rec.IsDebitNote() || !period.MatchDate(rec.Date) {
			continue
		}
		net := rec.SignedNet()
		netSales = netSales.Add(net)

		adj := rec.FinancialAdjustment
		if adj.IsPositive() {
			financialIncome = financialIncome.Add(adj)
		} else {
			// Discounts stay negative so the table reads as a deduction.
			discountsGranted = discountsGranted.Add(adj)
		}

		monthKey := utils.MonthKey(rec.Date)
		salesByMonth[monthKey] = salesByMonth[monthKey].Add(net).Add(adj)
	}

	adjustedNetSales := netSales.Add(financialIncome).Add(discountsGranted)

	purchasesNet := decimal.Zero
	cogsByMonth := make(map[string]decimal.Decimal)
	for _, rec := range purchases {
		if !period.MatchDate(rec.Date) {
			continue
		}
		purchasesNet = purchasesNet.Add(rec.Net)
		monthKey := utils.MonthKey(rec.Date)
		cogsByMonth[monthKey] = cogsByMonth[monthKey].Add(rec.Net)
	}
	cogs := purchasesNet

	grossMargin := adjustedNetSales.Sub(cogs)
	grossMarginPct := utils.RatioPct(grossMargin, adjustedNetSales)

	operatingExpenses := decimal.Zero
	expensesByMonth := make(map[string]decimal.Decimal)
	for _, rec := range expenses {
		if !period.MatchDate(rec.Date) {
			continue
		}
		operatingExpenses = operatingExpenses.Add(rec.Amount)
		monthKey := utils.MonthKey(rec.Date)
		expensesByMonth[monthKey] = expensesByMonth[monthKey].Add(rec.Amount)
	}

	salaries := decimal.Zero
	salariesByMonth := make(map[string]decimal.Decimal)
	for _, rec := range payroll {
		if !period.MatchDate(rec.Date) {
			continue
		}
		salaries = salaries.Add(rec.Amount)
		monthKey := utils.MonthKey(rec.Date)
		salariesByMonth[monthKey] = salariesByMonth[monthKey].Add(rec.Amount)
	}

	totalExpenses := operatingExpenses.Add(salaries)
	ebit := grossMargin.Sub(totalExpenses)
	// Taxes and interest are not modeled, so net income equals EBIT.
	netIncome := ebit
	netMarginPct := utils.RatioPct(netIncome, adjustedNetSales)

	kpis := PLKpis{
		NetSales:          netSales,
		FinancialIncome:   financialIncome,
		DiscountsGranted:  discountsGranted,
		AdjustedNetSales:  adjustedNetSales,
		Purchases:         purchasesNet,
		CostOfGoodsSold:   cogs,
		GrossMargin:       grossMargin,
		GrossMarginPct:    grossMarginPct,
		OperatingExpenses: operatingExpenses,
		Salaries:          salaries,
		TotalExpenses:     totalExpenses,
		Ebit:              ebit,
		NetIncome:         netIncome,
		NetMarginPct:      netMarginPct,
	}

	return &ProfitAndLossReport{
		Kpis:          kpis,
		Table:         plTable(kpis),
		MonthlySeries: plMonthlySeries(salesByMonth, cogsByMonth, expensesByMonth, salariesByMonth),
	}
}

func plTable(k PLKpis) []PLLine {
	// Percentages only make sense against a positive sales base. A negative
	// base would flip every sign and read as nonsense.
	pctOf := func(amount decimal.Decimal) *float64 {
		if !k.AdjustedNetSales.IsPositive() {
			zero := float64(0)
			return &zero
		}
		v := utils.RatioPct(amount, k.AdjustedNetSales)
		return &v
	}
	hundred := float64(100)

	var netSalesPct *float64
	if k.AdjustedNetSales.IsPositive() {
		netSalesPct = pctOf(k.NetSales)
	}

	return []PLLine{
		{Category: "Ingresos", Concept: "Ventas Netas", Amount: k.NetSales, PctOfSales: netSalesPct, IsTitle: true},
		{Category: "Ingresos", Concept: "(+) Ingresos Financieros (Recargos)", Amount: k.FinancialIncome, PctOfSales: pctOf(k.FinancialIncome)},
		{Category: "Ingresos", Concept: "(-) Descuentos Otorgados", Amount: k.DiscountsGranted, PctOfSales: pctOf(k.DiscountsGranted)},
		{Category: "Ingresos", Concept: "Ventas Netas Ajustadas", Amount: k.AdjustedNetSales, PctOfSales: &hundred, IsSubtotal: true},
		{Category: "Costos", Concept: "Costo de Mercadería Vendida (CMV)", Amount: k.CostOfGoodsSold.Neg(), PctOfSales: pctOf(k.CostOfGoodsSold.Neg()), IsTitle: true},
		{Category: "Resultados", Concept: "Margen Bruto", Amount: k.GrossMargin, PctOfSales: pctOf(k.GrossMargin), IsSubtotal: true},
		{Category: "Gastos", Concept: "Gastos Operativos", Amount: k.OperatingExpenses.Neg(), PctOfSales: pctOf(k.OperatingExpenses.Neg()), IsTitle: true},
		{Category: "Gastos", Concept: "Sueldos y Cargas Sociales", Amount: k.Salaries.Neg(), PctOfSales: pctOf(k.Salaries.Neg())},
		{Category: "Gastos", Concept: "Gastos Totales", Amount: k.TotalExpenses.Neg(), PctOfSales: pctOf(k.TotalExpenses.Neg()), IsSubtotal: true},
		{Category: "Resultados", Concept: "Resultado Operativo (EBIT)", Amount: k.Ebit, PctOfSales: pctOf(k.Ebit), IsSubtotal: true},
		{Category: "Resultados", Concept: "Resultado Neto", Amount: k.NetIncome, PctOfSales: pctOf(k.NetIncome), IsTitle: true, IsSubtotal: true},
	}
}

// plMonthlySeries derives EBIT per month over the union of months, trimmed
// past the last month with any sales so a trailing cost-only month does not
// chart as a loss.
func plMonthlySeries(salesByMonth, cogsByMonth, expensesByMonth, salariesByMonth map[string]decimal.Decimal) []PLMonthPoint {
	months := make(map[string]bool)
	for m := range salesByMonth {
		months[m] = true
	}
	for m := range cogsByMonth {
		months[m] = true
	}
	for m := range expensesByMonth {
		months[m] = true
	}
	for m := range salariesByMonth {
		months[m] = true
	}
	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	lastSalesMonth := ""
	for m := range salesByMonth {
		if m > lastSalesMonth {
			lastSalesMonth = m
		}
	}
	if lastSalesMonth == "" {
		return []PLMonthPoint{}
	}

	points := make([]PLMonthPoint, 0, len(keys))
	for _, m := range keys {
		if m > lastSalesMonth {
			break
		}
		monthSales := salesByMonth[m]
		monthCogs := cogsByMonth[m]
		monthExpenses := expensesByMonth[m].Add(salariesByMonth[m])
		grossMargin := monthSales.Sub(monthCogs)
		points = append(points, PLMonthPoint{
			Date:          m,
			NetSales:      monthSales,
			CostOfGoods:   monthCogs,
			TotalExpenses: monthExpenses,
			GrossMargin:   grossMargin,
			Ebit:          grossMargin.Sub(monthExpenses),
		})
	}
	return points
}
