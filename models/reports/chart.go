package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ChartPoint is one slice/bar of a categorical chart. Percentage is filled
// only by the pie formatter.
type ChartPoint struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage,omitempty"`
}

// RankingItem is one row of a ranking table.
type RankingItem struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// TimeSeriesPoint is one bucket of a monthly (or daily) series.
type TimeSeriesPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// YearlyTrendRow is one month row of a year-over-year matrix. A nil value
// means "no data yet for that year", which charting must render as a gap,
// never as zero.
type YearlyTrendRow struct {
	Month  string                      `json:"month"`
	Values map[string]*decimal.Decimal `json:"values"`
}

// DailyTrendRow is one day row of a day-indexed year-over-year matrix.
type DailyTrendRow struct {
	Day    string                     `json:"day"`
	Values map[string]decimal.Decimal `json:"values"`
}

// KeyedTotals accumulates name -> total while remembering first-insertion
// order, so ties keep a deterministic, insertion-stable ordering after the
// descending sorts below.
type KeyedTotals struct {
	order  []string
	totals map[string]decimal.Decimal
}

func NewKeyedTotals() *KeyedTotals {
	return &KeyedTotals{totals: make(map[string]decimal.Decimal)}
}

func (k *KeyedTotals) Add(name string, v decimal.Decimal) {
	if _, ok := k.totals[name]; !ok {
		k.order = append(k.order, name)
	}
	k.totals[name] = k.totals[name].Add(v)
}

func (k *KeyedTotals) Get(name string) decimal.Decimal {
	return k.totals[name]
}

func (k *KeyedTotals) Len() int {
	return len(k.order)
}

// Sum of every accumulated total.
func (k *KeyedTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, name := range k.order {
		sum = sum.Add(k.totals[name])
	}
	return sum
}

// FormatForPieChart annotates each entry with its share of the grand total as
// a 0..1 fraction and sorts descending by value. A zero grand total yields an
// empty slice; no division happens against zero.
func FormatForPieChart(totals *KeyedTotals) []ChartPoint {
	sum := totals.Sum()
	if sum.IsZero() {
		return []ChartPoint{}
	}
	points := make([]ChartPoint, 0, len(totals.order))
	for _, name := range totals.order {
		value := totals.totals[name]
		pct, _ := value.Div(sum).Float64()
		points = append(points, ChartPoint{Name: name, Value: value, Percentage: pct})
	}
	sortPointsDesc(points)
	return points
}

// FormatForBarChart sorts descending by value without percentages.
func FormatForBarChart(totals *KeyedTotals) []ChartPoint {
	points := make([]ChartPoint, 0, len(totals.order))
	for _, name := range totals.order {
		points = append(points, ChartPoint{Name: name, Value: totals.totals[name]})
	}
	sortPointsDesc(points)
	return points
}

func sortPointsDesc(points []ChartPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value.GreaterThan(points[j].Value)
	})
}

func sortRankingDesc(items []RankingItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total.GreaterThan(items[j].Total)
	})
}

// timeSeriesFromTotals renders a keyed accumulator whose keys are sortable
// date buckets ("2006-01" or "2006-01-02") as an ascending series.
func timeSeriesFromTotals(totals *KeyedTotals) []TimeSeriesPoint {
	keys := append([]string(nil), totals.order...)
	sort.Strings(keys)
	points := make([]TimeSeriesPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, TimeSeriesPoint{Date: key, Value: totals.totals[key]})
	}
	return points
}

// topEntry returns the largest bucket of an accumulator, or ("-", 0) when it
// is empty.
func topEntry(totals *KeyedTotals) (string, decimal.Decimal) {
	name, best := "-", decimal.Zero
	found := false
	for _, key := range totals.order {
		v := totals.totals[key]
		if !found || v.GreaterThan(best) {
			name, best = key, v
			found = true
		}
	}
	if !found {
		return "-", decimal.Zero
	}
	return name, best
}
