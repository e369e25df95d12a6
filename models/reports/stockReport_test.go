package reports

import (
	"testing"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/shopspring/decimal"
)

func stockOn(date, rubro, branch string, valueARS, valueUSD, officialRate, systemRate float64) models.StockSnapshot {
	d, _ := time.Parse("2006-01-02", date)
	return models.StockSnapshot{
		Date:           d,
		Year:           d.Year(),
		Month:          int(d.Month()),
		Rubro:          rubro,
		Branch:         branch,
		ValueARS:       decimal.NewFromFloat(valueARS),
		ValueUSD:       decimal.NewFromFloat(valueUSD),
		ValueUSDSystem: decimal.NewFromFloat(valueUSD),
		OfficialRate:   decimal.NewFromFloat(officialRate),
		SystemRate:     decimal.NewFromFloat(systemRate),
	}
}

func TestBuildStockReportEmpty(t *testing.T) {
	report := BuildStockReport(nil, nil, models.StockFilter{}, StockContext{})
	if !report.Kpis.TotalOfficialARS.IsZero() {
		t.Errorf("expected zero total, got %s", report.Kpis.TotalOfficialARS)
	}
	if report.Kpis.StockTurnover != 0 || report.Kpis.DaysOfCoverage != 0 {
		t.Error("ratio KPIs must be zero on empty data")
	}
	if report.StockByRubro == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestStockPiesUseLatestMonthOnly(t *testing.T) {
	records := []models.StockSnapshot{
		stockOn("2024-02-28", "SPLIT", "MITRE", 1000, 1, 1000, 1200),
		stockOn("2024-03-31", "SPLIT", "MITRE", 1500, 1.5, 1000, 1200),
		stockOn("2024-03-31", "CALEFACCION", "SALTA", 500, 0.5, 1000, 1200),
	}
	report := BuildStockReport(records, records, models.StockFilter{}, StockContext{})

	// Only March snapshots count toward the point-in-time totals.
	if got := report.Kpis.TotalOfficialARS.StringFixed(2); got != "2000.00" {
		t.Errorf("total ARS = %s, want 2000.00", got)
	}
	if len(report.StockByRubro) != 2 {
		t.Fatalf("expected 2 rubros in latest month, got %d", len(report.StockByRubro))
	}
	if report.StockByRubro[0].Name != "SPLIT" {
		t.Errorf("expected SPLIT first, got %s", report.StockByRubro[0].Name)
	}
	// Evolution still spans both months.
	if len(report.StockEvolution) != 2 {
		t.Errorf("expected 2 evolution points, got %d", len(report.StockEvolution))
	}
}

func TestStockRateGap(t *testing.T) {
	records := []models.StockSnapshot{
		stockOn("2024-03-31", "SPLIT", "MITRE", 1000, 1, 1000, 1200),
	}
	report := BuildStockReport(records, records, models.StockFilter{}, StockContext{})
	if report.Kpis.RateGapPct < 19.99 || report.Kpis.RateGapPct > 20.01 {
		t.Errorf("rate gap = %f, want 20", report.Kpis.RateGapPct)
	}
}

func TestStockTurnoverRatios(t *testing.T) {
	records := []models.StockSnapshot{
		stockOn("2024-03-31", "SPLIT", "MITRE", 1000, 1, 1000, 1000),
	}
	ctx := StockContext{
		Sales: []models.Sale{
			saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 600),
		},
		Purchases: []models.Purchase{
			purchaseOn("2024-03-01", "A", models.ChannelDeclared, 400, 84, 484),
		},
	}
	filter := models.StockFilter{PeriodFilter: models.PeriodFilter{Years: []int{2024}, Months: []int{3}}}
	report := BuildStockReport(records, records, filter, ctx)

	// One month: annualized sales = 600*12 = 7200, avg stock 1000.
	if report.Kpis.StockTurnover < 7.19 || report.Kpis.StockTurnover > 7.21 {
		t.Errorf("turnover = %f, want 7.2", report.Kpis.StockTurnover)
	}
	// Daily sales 600/30 = 20, coverage 1000/20 = 50 days.
	if report.Kpis.DaysOfCoverage < 49.99 || report.Kpis.DaysOfCoverage > 50.01 {
		t.Errorf("coverage = %f, want 50", report.Kpis.DaysOfCoverage)
	}
	if report.Kpis.StockToPurchase < 2.06 || report.Kpis.StockToPurchase > 2.07 {
		t.Errorf("stock/purchase = %f, want ~2.066", report.Kpis.StockToPurchase)
	}
	// No expense or payroll data: financial coverage guard resolves to 0.
	if report.Kpis.FinancialCoverage != 0 {
		t.Errorf("financial coverage = %f, want 0", report.Kpis.FinancialCoverage)
	}
}

func TestStockCoverageSuppressedOnNegativeSales(t *testing.T) {
	records := []models.StockSnapshot{
		stockOn("2024-03-31", "SPLIT", "MITRE", 1000, 1, 1000, 1000),
	}
	// Credit notes outweigh invoices, so average daily sales for the period
	// is negative and coverage has no meaning.
	ctx := StockContext{
		Sales: []models.Sale{
			saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 200),
			saleOn("2024-03-10", "MITRE", "ACME", "NC A", -1, -600),
		},
	}
	filter := models.StockFilter{PeriodFilter: models.PeriodFilter{Years: []int{2024}, Months: []int{3}}}
	report := BuildStockReport(records, records, filter, ctx)

	if report.Kpis.DaysOfCoverage != 0 {
		t.Errorf("coverage = %f, want 0 on negative average daily sales", report.Kpis.DaysOfCoverage)
	}
}

func TestBranchTurnoverAllowList(t *testing.T) {
	records := []models.StockSnapshot{
		stockOn("2024-03-31", "SPLIT", "MITRE", 1000, 1, 1000, 1000),
		stockOn("2024-03-31", "SPLIT", "DEPOSITO CENTRAL", 5000, 5, 1000, 1000),
	}
	ctx := StockContext{
		Sales: []models.Sale{
			saleOn("2024-03-05", "MITRE", "ACME", "FC A", 1, 600),
		},
	}
	report := BuildStockReport(records, records, models.StockFilter{}, ctx)

	if len(report.TurnoverByBranch) != 1 {
		t.Fatalf("expected only operating branches, got %v", report.TurnoverByBranch)
	}
	if report.TurnoverByBranch[0].Name != "MITRE" {
		t.Errorf("expected MITRE, got %s", report.TurnoverByBranch[0].Name)
	}
	// Company-wide figure also excludes the warehouse stock.
	if report.TotalStockTurnover < 7.19 || report.TotalStockTurnover > 7.21 {
		t.Errorf("total turnover = %f, want 7.2", report.TotalStockTurnover)
	}
}

func TestStockEvolutionSingleMonthViewUsesFullSet(t *testing.T) {
	all := []models.StockSnapshot{
		stockOn("2024-01-31", "SPLIT", "MITRE", 800, 0.8, 1000, 1000),
		stockOn("2024-02-28", "SPLIT", "MITRE", 900, 0.9, 1000, 1000),
		stockOn("2024-03-31", "SPLIT", "MITRE", 1000, 1, 1000, 1000),
	}
	filter := models.StockFilter{PeriodFilter: models.PeriodFilter{Years: []int{2024}, Months: []int{3}}}
	filtered := models.FilterStock(all, filter)
	report := BuildStockReport(filtered, all, filter, StockContext{})

	if len(report.StockEvolution) != 3 {
		t.Errorf("single-month view should chart full history, got %d points", len(report.StockEvolution))
	}
	// But the KPI totals still reflect only the filtered month.
	if got := report.Kpis.TotalOfficialARS.StringFixed(2); got != "1000.00" {
		t.Errorf("total ARS = %s, want 1000.00", got)
	}
}
