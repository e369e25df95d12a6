package reports

import (
	"testing"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/shopspring/decimal"
)

func TestProfitAndLossEmpty(t *testing.T) {
	report := BuildProfitAndLossReport(nil, nil, nil, nil, models.PeriodFilter{})
	if !report.Kpis.NetSales.IsZero() || !report.Kpis.Ebit.IsZero() {
		t.Errorf("expected zero kpis, got %+v", report.Kpis)
	}
	if len(report.Table) != 11 {
		t.Errorf("expected full 11-line table even when empty, got %d", len(report.Table))
	}
	if len(report.MonthlySeries) != 0 {
		t.Errorf("expected empty series, got %d points", len(report.MonthlySeries))
	}
}

func TestProfitAndLossStatement(t *testing.T) {
	sales := []models.Sale{
		saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 1210),
		saleOn("2024-03-10", "MITRE", "BETA", "NC A", -1, -121),
	}
	// Net amounts come out of saleOn as total/1.21: 1000 and -100 signed.
	sales[0].FinancialAdjustment = decimal.NewFromInt(50)
	sales[1].FinancialAdjustment = decimal.NewFromInt(-20)

	purchases := []models.Purchase{
		purchaseOn("2024-03-01", "PROV", models.ChannelDeclared, 400, 84, 484),
	}
	expenses := []models.Expense{
		expenseOn("2024-03-02", "SERVICIOS", "LUZ", "EDET", 100),
	}
	payroll := []models.PayrollEntry{
		payrollOn("2024-03-31", "20-1-1", "PEREZ JUAN", "SUELDO", "VENDEDOR", 200, "2020-01-01"),
	}

	report := BuildProfitAndLossReport(sales, purchases, expenses, payroll, models.PeriodFilter{Years: []int{2024}})
	k := report.Kpis

	if got := k.NetSales.StringFixed(2); got != "900.00" {
		t.Errorf("net sales = %s, want 900.00", got)
	}
	if got := k.FinancialIncome.StringFixed(2); got != "50.00" {
		t.Errorf("financial income = %s, want 50.00", got)
	}
	if got := k.DiscountsGranted.StringFixed(2); got != "-20.00" {
		t.Errorf("discounts = %s, want -20.00", got)
	}
	if got := k.AdjustedNetSales.StringFixed(2); got != "930.00" {
		t.Errorf("adjusted net sales = %s, want 930.00", got)
	}
	if got := k.CostOfGoodsSold.StringFixed(2); got != "400.00" {
		t.Errorf("cogs = %s, want 400.00 (net purchases)", got)
	}
	if got := k.GrossMargin.StringFixed(2); got != "530.00" {
		t.Errorf("gross margin = %s, want 530.00", got)
	}
	if got := k.TotalExpenses.StringFixed(2); got != "300.00" {
		t.Errorf("total expenses = %s, want 300.00", got)
	}
	if got := k.Ebit.StringFixed(2); got != "230.00" {
		t.Errorf("ebit = %s, want 230.00", got)
	}
	if !k.NetIncome.Equal(k.Ebit) {
		t.Errorf("net income %s should equal ebit %s", k.NetIncome, k.Ebit)
	}

	// Table signs: cost and expense rows carry negative amounts.
	var cmvLine, subtotalLine *PLLine
	for i := range report.Table {
		switch report.Table[i].Concept {
		case "Costo de Mercadería Vendida (CMV)":
			cmvLine = &report.Table[i]
		case "Ventas Netas Ajustadas":
			subtotalLine = &report.Table[i]
		}
	}
	if cmvLine == nil || !cmvLine.Amount.Equal(decimal.NewFromInt(-400)) {
		t.Errorf("cmv line = %+v, want amount -400", cmvLine)
	}
	if subtotalLine == nil || subtotalLine.PctOfSales == nil || *subtotalLine.PctOfSales != 100 {
		t.Errorf("adjusted net sales line should be the 100%% base, got %+v", subtotalLine)
	}
}

func TestProfitAndLossNegativeSalesBaseSuppressesPercentages(t *testing.T) {
	// A credit-note-only period leaves adjusted net sales negative; the
	// table must not report percentages against a negative base.
	sales := []models.Sale{
		saleOn("2024-03-10", "MITRE", "BETA", "NC A", -1, -1210),
	}
	report := BuildProfitAndLossReport(sales, nil, nil, nil, models.PeriodFilter{})

	if !report.Kpis.AdjustedNetSales.IsNegative() {
		t.Fatalf("adjusted net sales = %s, expected negative", report.Kpis.AdjustedNetSales)
	}
	for _, line := range report.Table {
		switch line.Concept {
		case "Ventas Netas":
			if line.PctOfSales != nil {
				t.Errorf("net sales pct = %v, want nil on a non-positive base", *line.PctOfSales)
			}
		case "Ventas Netas Ajustadas":
			// The subtotal stays the 100% reference by construction.
		default:
			if line.PctOfSales == nil || *line.PctOfSales != 0 {
				t.Errorf("%s: pct = %v, want 0 on a non-positive base", line.Concept, line.PctOfSales)
			}
		}
	}
}

func TestProfitAndLossMonthlySeriesTrim(t *testing.T) {
	sales := []models.Sale{
		saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 1210),
	}
	expenses := []models.Expense{
		expenseOn("2024-03-02", "SERVICIOS", "LUZ", "EDET", 100),
		// April has costs but no sales yet.
		expenseOn("2024-04-02", "SERVICIOS", "LUZ", "EDET", 100),
	}
	report := BuildProfitAndLossReport(sales, nil, expenses, nil, models.PeriodFilter{})
	if len(report.MonthlySeries) != 1 {
		t.Fatalf("expected series trimmed at last sales month, got %d points", len(report.MonthlySeries))
	}
	if report.MonthlySeries[0].Date != "2024-03" {
		t.Errorf("series point = %s, want 2024-03", report.MonthlySeries[0].Date)
	}
}
