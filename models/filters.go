package models

import (
	"slices"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
)

// Filter descriptors mirror the dashboard's filter widgets: every dimension is
// a list of selected discrete values, where an empty list (or nil date bound)
// means "no restriction", never "exclude everything".

type PeriodFilter struct {
	Years  []int `json:"years"`
	Months []int `json:"months"`
}

func (f PeriodFilter) MatchDate(t time.Time) bool {
	if len(f.Years) > 0 && !slices.Contains(f.Years, t.Year()) {
		return false
	}
	if len(f.Months) > 0 && !slices.Contains(f.Months, int(t.Month())) {
		return false
	}
	return true
}

// SingleMonth reports whether the filter pins down exactly one calendar month.
func (f PeriodFilter) SingleMonth() bool {
	return len(f.Years) == 1 && len(f.Months) == 1
}

type SalesFilter struct {
	Branches    []string   `json:"branches"`
	Salespeople []string   `json:"salespeople"`
	Years       []int      `json:"years"`
	Months      []int      `json:"months"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (f SalesFilter) Match(s Sale) bool {
	if len(f.Years) > 0 && !slices.Contains(f.Years, s.Date.Year()) {
		return false
	}
	if len(f.Months) > 0 && !slices.Contains(f.Months, int(s.Date.Month())) {
		return false
	}
	if len(f.Branches) > 0 && !slices.Contains(f.Branches, s.Branch) {
		return false
	}
	if len(f.Salespeople) > 0 && !slices.Contains(f.Salespeople, s.Salesperson) {
		return false
	}
	if f.StartDate != nil && s.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && s.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// MatchIgnoringYear applies every dimension except the year selection, and
// compares the date bounds by month and day only. It is used to build
// year-over-year comparison subsets where the prior year must pass the same
// intra-year window as the selected one.
func (f SalesFilter) MatchIgnoringYear(s Sale) bool {
	if len(f.Months) > 0 && !slices.Contains(f.Months, int(s.Date.Month())) {
		return false
	}
	if len(f.Branches) > 0 && !slices.Contains(f.Branches, s.Branch) {
		return false
	}
	if len(f.Salespeople) > 0 && !slices.Contains(f.Salespeople, s.Salesperson) {
		return false
	}
	if f.StartDate != nil && beforeInYear(s.Date, *f.StartDate) {
		return false
	}
	if f.EndDate != nil && beforeInYear(*f.EndDate, s.Date) {
		return false
	}
	return true
}

// beforeInYear reports whether a falls before b when only month and day are
// compared.
func beforeInYear(a, b time.Time) bool {
	if a.Month() != b.Month() {
		return a.Month() < b.Month()
	}
	return a.Day() < b.Day()
}

// containsKey reports list membership with key normalization applied to both
// sides, so "proveedor uno " selects "PROVEEDOR UNO".
func containsKey(list []string, v string) bool {
	key := utils.NormalizeKey(v)
	for _, item := range list {
		if utils.NormalizeKey(item) == key {
			return true
		}
	}
	return false
}

type PurchaseFilter struct {
	PeriodFilter
	Providers  []string `json:"providers"`
	Modalities []string `json:"modalities"`
}

func (f PurchaseFilter) Match(p Purchase) bool {
	if !f.MatchDate(p.Date) {
		return false
	}
	if len(f.Providers) > 0 && !containsKey(f.Providers, p.Provider) {
		return false
	}
	if len(f.Modalities) > 0 && !containsKey(f.Modalities, string(p.Modality)) {
		return false
	}
	return true
}

type ExpenseFilter struct {
	PeriodFilter
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
}

func (f ExpenseFilter) Match(e Expense) bool {
	if !f.MatchDate(e.Date) {
		return false
	}
	if len(f.Categories) > 0 && !containsKey(f.Categories, e.Category) {
		return false
	}
	if len(f.Subcategories) > 0 && !containsKey(f.Subcategories, e.Subcategory) {
		return false
	}
	return true
}

type HRFilter struct {
	Years      []int    `json:"years"`
	Months     []int    `json:"months"`
	Areas      []string `json:"areas"`
	Activities []string `json:"activities"`
	Types      []string `json:"types"`
}

func (f HRFilter) Match(p PayrollEntry) bool {
	if !f.MatchRoster(p) {
		return false
	}
	if len(f.Months) > 0 && !slices.Contains(f.Months, p.Month) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, p.Type) {
		return false
	}
	return true
}

// MatchRoster applies only the dimensions that define who belongs to the
// roster: year, area and activity. Month and pay-component selections must not
// change headcount.
func (f HRFilter) MatchRoster(p PayrollEntry) bool {
	if len(f.Years) > 0 && !slices.Contains(f.Years, p.Year) {
		return false
	}
	if len(f.Areas) > 0 && !slices.Contains(f.Areas, p.Area) {
		return false
	}
	if len(f.Activities) > 0 && !slices.Contains(f.Activities, p.Activity) {
		return false
	}
	return true
}

type StockFilter struct {
	PeriodFilter
	Branches []string `json:"branches"`
	Rubros   []string `json:"rubros"`
}

func (f StockFilter) Match(s StockSnapshot) bool {
	if !f.MatchDate(s.Date) {
		return false
	}
	if len(f.Branches) > 0 && !slices.Contains(f.Branches, s.Branch) {
		return false
	}
	if len(f.Rubros) > 0 && !slices.Contains(f.Rubros, s.Rubro) {
		return false
	}
	return true
}

// The Filter* helpers return fresh slices; stored record sets are shared
// across aggregator calls and must never be reordered or mutated.

func FilterSales(records []Sale, f SalesFilter) []Sale {
	out := make([]Sale, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func FilterPurchases(records []Purchase, f PurchaseFilter) []Purchase {
	out := make([]Purchase, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func FilterExpenses(records []Expense, f ExpenseFilter) []Expense {
	out := make([]Expense, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func FilterPayroll(records []PayrollEntry, f HRFilter) []PayrollEntry {
	out := make([]PayrollEntry, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func FilterStock(records []StockSnapshot, f StockFilter) []StockSnapshot {
	out := make([]StockSnapshot, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
