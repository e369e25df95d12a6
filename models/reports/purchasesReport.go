package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
)

type PurchaseKpis struct {
	TotalPurchases             decimal.Decimal `json:"total_purchases"`
	AveragePurchasePerProvider decimal.Decimal `json:"average_purchase_per_provider"`
	TopMonth                   TopBucket       `json:"top_month"`
	TopProvider                TopBucket       `json:"top_provider"`
	DeclaredTotal              decimal.Decimal `json:"declared_total"`
	UndeclaredTotal            decimal.Decimal `json:"undeclared_total"`
	DeclaredPct                float64         `json:"declared_pct"`
	UndeclaredPct              float64         `json:"undeclared_pct"`
}

type TopBucket struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// ModalityTimePoint splits each month's purchase total by payment modality so
// the chart can stack the two channels.
type ModalityTimePoint struct {
	Date       string          `json:"date"`
	Declared   decimal.Decimal `json:"declared"`
	Undeclared decimal.Decimal `json:"undeclared"`
}

type ProviderDetail struct {
	Name       string          `json:"name"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Vat        decimal.Decimal `json:"vat"`
	OtherTaxes decimal.Decimal `json:"other_taxes"`
	Total      decimal.Decimal `json:"total"`
}

// SalesVsPurchasesPoint pairs the signed sales total against the gross
// purchase total for the same month.
type SalesVsPurchasesPoint struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

type PurchasesReport struct {
	Kpis                  PurchaseKpis            `json:"kpis"`
	PurchasesOverTime     []ModalityTimePoint     `json:"purchases_over_time"`
	ProviderRanking       []RankingItem           `json:"provider_ranking"`
	PurchasesByType       []ChartPoint            `json:"purchases_by_type"`
	VatOverTime           []TimeSeriesPoint       `json:"vat_over_time"`
	ProviderDetails       []ProviderDetail        `json:"provider_details"`
	SalesVsPurchasesTrend []SalesVsPurchasesPoint `json:"sales_vs_purchases_trend,omitempty"`
}

func emptyPurchasesReport() *PurchasesReport {
	return &PurchasesReport{
		Kpis:              PurchaseKpis{TopMonth: TopBucket{Name: "-"}, TopProvider: TopBucket{Name: "-"}},
		PurchasesOverTime: []ModalityTimePoint{},
		ProviderRanking:   []RankingItem{},
		PurchasesByType:   []ChartPoint{},
		VatOverTime:       []TimeSeriesPoint{},
		ProviderDetails:   []ProviderDetail{},
	}
}

type providerAccum struct {
	total      decimal.Decimal
	count      int
	subtotal   decimal.Decimal
	vat        decimal.Decimal
	otherTaxes decimal.Decimal
}

type modalityAccum struct {
	declared   decimal.Decimal
	undeclared decimal.Decimal
}

// BuildPurchasesReport aggregates the filtered purchase set. allSales (full,
// unfiltered) feeds the sales-vs-purchases comparison and may be nil, which
// omits that section. now anchors the trailing-month trim; callers pass
// time.Now().
func BuildPurchasesReport(records []models.Purchase, allSales []models.Sale, now time.Time) *PurchasesReport {
	if len(records) == 0 {
		return emptyPurchasesReport()
	}

	report := emptyPurchasesReport()

	providerAgg := make(map[string]*providerAccum)
	providerOrder := []string{}
	monthModality := make(map[string]*modalityAccum)
	vatTotals := NewKeyedTotals()
	typeTotals := NewKeyedTotals()
	monthTotals := NewKeyedTotals()
	totalPurchases := decimal.Zero

	for _, rec := range records {
		providerKey := utils.NormalizeKey(rec.Provider)
		if providerKey == "" {
			providerKey = "N/A"
		}
		amount := rec.Total
		totalPurchases = totalPurchases.Add(amount)

		acc := providerAgg[providerKey]
		if acc == nil {
			acc = &providerAccum{}
			providerAgg[providerKey] = acc
			providerOrder = append(providerOrder, providerKey)
		}
		acc.total = acc.total.Add(amount)
		acc.count++
		acc.subtotal = acc.subtotal.Add(rec.Net)
		acc.vat = acc.vat.Add(rec.Vat)
		acc.otherTaxes = acc.otherTaxes.Add(rec.OtherTaxes)

		monthKey := utils.MonthKey(rec.Date)
		mod := monthModality[monthKey]
		if mod == nil {
			mod = &modalityAccum{}
			monthModality[monthKey] = mod
		}
		if rec.Modality == models.ChannelDeclared {
			mod.declared = mod.declared.Add(amount)
		} else {
			mod.undeclared = mod.undeclared.Add(amount)
		}

		vatTotals.Add(monthKey, rec.Vat)
		typeTotals.Add(string(rec.Modality), amount)
		monthTotals.Add(monthKey, amount)
	}

	kpis := &report.Kpis
	kpis.TotalPurchases = totalPurchases
	if len(providerOrder) > 0 {
		kpis.AveragePurchasePerProvider = totalPurchases.Div(decimal.NewFromInt(int64(len(providerOrder))))
	}
	kpis.DeclaredTotal = typeTotals.Get(string(models.ChannelDeclared))
	kpis.UndeclaredTotal = typeTotals.Get(string(models.ChannelUndeclared))
	kpis.DeclaredPct = utils.RatioPct(kpis.DeclaredTotal, totalPurchases)
	kpis.UndeclaredPct = utils.RatioPct(kpis.UndeclaredTotal, totalPurchases)

	if monthKey, total := topEntry(monthTotals); monthKey != "-" {
		if year, month, ok := utils.ParseMonthKey(monthKey); ok {
			kpis.TopMonth = TopBucket{Name: fmt.Sprintf("%s %d", utils.MonthFullName(month), year), Total: total}
		}
	}

	report.ProviderRanking = providerRanking(providerOrder, providerAgg)
	if len(report.ProviderRanking) > 0 {
		kpis.TopProvider = TopBucket{
			Name:  report.ProviderRanking[0].Name,
			Total: report.ProviderRanking[0].Total,
		}
	}

	report.PurchasesOverTime = modalitySeries(monthModality)
	report.PurchasesByType = FormatForPieChart(typeTotals)
	report.VatOverTime = timeSeriesFromTotals(vatTotals)
	report.ProviderDetails = providerDetails(providerOrder, providerAgg)
	report.SalesVsPurchasesTrend = salesVsPurchases(monthTotals, allSales, now)

	return report
}

func providerRanking(order []string, agg map[string]*providerAccum) []RankingItem {
	items := make([]RankingItem, 0, len(order))
	for _, name := range order {
		items = append(items, RankingItem{Name: name, Total: agg[name].total, Count: agg[name].count})
	}
	sortRankingDesc(items)
	return items
}

func providerDetails(order []string, agg map[string]*providerAccum) []ProviderDetail {
	rows := make([]ProviderDetail, 0, len(order))
	for _, name := range order {
		acc := agg[name]
		rows = append(rows, ProviderDetail{
			Name:       name,
			Subtotal:   acc.subtotal,
			Vat:        acc.vat,
			OtherTaxes: acc.otherTaxes,
			Total:      acc.total,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
	return rows
}

func modalitySeries(monthModality map[string]*modalityAccum) []ModalityTimePoint {
	keys := make([]string, 0, len(monthModality))
	for key := range monthModality {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	points := make([]ModalityTimePoint, 0, len(keys))
	for _, key := range keys {
		acc := monthModality[key]
		points = append(points, ModalityTimePoint{Date: key, Declared: acc.declared, Undeclared: acc.undeclared})
	}
	return points
}

// salesVsPurchases aligns the full signed-sales month totals with the
// purchase month totals over the union of months. The trailing point is
// dropped when it is the calendar month still in progress and either side is
// zero, so a half-loaded month does not read as a collapse.
func salesVsPurchases(purchaseMonths *KeyedTotals, allSales []models.Sale, now time.Time) []SalesVsPurchasesPoint {
	if len(allSales) == 0 {
		return nil
	}

	salesByMonth := make(map[string]decimal.Decimal)
	for _, rec := range allSales {
		if rec.IsDebitNote() {
			continue
		}
		monthKey := utils.MonthKey(rec.Date)
		salesByMonth[monthKey] = salesByMonth[monthKey].Add(rec.SignedTotal())
	}

	months := make(map[string]bool)
	for _, key := range purchaseMonths.order {
		months[key] = true
	}
	for key := range salesByMonth {
		months[key] = true
	}
	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]SalesVsPurchasesPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, SalesVsPurchasesPoint{
			Date:      key,
			Sales:     salesByMonth[key],
			Purchases: purchaseMonths.Get(key),
		})
	}

	if len(points) > 0 {
		last := points[len(points)-1]
		if last.Date == utils.MonthKey(now) && (last.Sales.IsZero() || last.Purchases.IsZero()) {
			points = points[:len(points)-1]
		}
	}
	return points
}
