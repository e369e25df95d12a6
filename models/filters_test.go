package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodFilterMatchDate(t *testing.T) {
	tests := []struct {
		name   string
		filter PeriodFilter
		date   time.Time
		want   bool
	}{
		{"empty filter matches everything", PeriodFilter{}, date(2024, 3, 15), true},
		{"year match", PeriodFilter{Years: []int{2024}}, date(2024, 3, 15), true},
		{"year mismatch", PeriodFilter{Years: []int{2023}}, date(2024, 3, 15), false},
		{"month match", PeriodFilter{Months: []int{3}}, date(2024, 3, 15), true},
		{"month mismatch", PeriodFilter{Months: []int{4}}, date(2024, 3, 15), false},
		{"both dimensions", PeriodFilter{Years: []int{2024}, Months: []int{3, 4}}, date(2024, 4, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.MatchDate(tt.date); got != tt.want {
				t.Errorf("MatchDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodFilterSingleMonth(t *testing.T) {
	if (PeriodFilter{Years: []int{2024}, Months: []int{3}}).SingleMonth() != true {
		t.Error("one year + one month should be a single-month view")
	}
	if (PeriodFilter{Years: []int{2024}}).SingleMonth() {
		t.Error("year without month is not a single-month view")
	}
	if (PeriodFilter{Years: []int{2023, 2024}, Months: []int{3}}).SingleMonth() {
		t.Error("two years is not a single-month view")
	}
}

func TestSalesFilterMatchIgnoringYear(t *testing.T) {
	start := date(2024, 2, 10)
	end := date(2024, 4, 20)
	f := SalesFilter{
		Years:     []int{2024},
		StartDate: &start,
		EndDate:   &end,
	}

	// A prior-year sale inside the same intra-year window passes even though
	// the year selection would reject it.
	prior := Sale{Date: date(2023, 3, 5)}
	if !f.MatchIgnoringYear(prior) {
		t.Error("prior-year sale inside the month/day window should match")
	}
	if f.Match(prior) {
		t.Error("Match should still reject the prior year")
	}

	early := Sale{Date: date(2023, 1, 15)}
	if f.MatchIgnoringYear(early) {
		t.Error("sale before the month/day window should not match")
	}
	late := Sale{Date: date(2023, 4, 21)}
	if f.MatchIgnoringYear(late) {
		t.Error("sale after the month/day window should not match")
	}
	boundary := Sale{Date: date(2023, 2, 10)}
	if !f.MatchIgnoringYear(boundary) {
		t.Error("window bounds are inclusive")
	}
}

func TestPurchaseFilterMatch(t *testing.T) {
	f := PurchaseFilter{
		PeriodFilter: PeriodFilter{Years: []int{2024}},
		Providers:    []string{" proveedor uno "},
		Modalities:   []string{"blanco"},
	}
	ok := Purchase{Date: date(2024, 3, 1), Provider: "PROVEEDOR UNO", Modality: ChannelDeclared}
	if !f.Match(ok) {
		t.Error("provider and modality selection must match case-insensitively after trimming")
	}
	if f.Match(Purchase{Date: date(2024, 3, 1), Provider: "OTRO", Modality: ChannelDeclared}) {
		t.Error("provider mismatch accepted")
	}
	if f.Match(Purchase{Date: date(2024, 3, 1), Provider: "PROVEEDOR UNO", Modality: ChannelUndeclared}) {
		t.Error("modality mismatch accepted")
	}
	if f.Match(Purchase{Date: date(2023, 3, 1), Provider: "PROVEEDOR UNO", Modality: ChannelDeclared}) {
		t.Error("year mismatch accepted")
	}

	records := []Purchase{ok, {Date: date(2024, 4, 1), Provider: "OTRO", Modality: ChannelDeclared}}
	if out := FilterPurchases(records, f); len(out) != 1 || out[0].Provider != "PROVEEDOR UNO" {
		t.Errorf("FilterPurchases kept %d records", len(out))
	}
}

func TestExpenseFilterMatch(t *testing.T) {
	f := ExpenseFilter{
		PeriodFilter:  PeriodFilter{Years: []int{2024}},
		Categories:    []string{"alquileres"},
		Subcategories: []string{"LOCALES"},
	}
	ok := Expense{Date: date(2024, 2, 1), Category: "ALQUILERES", Subcategory: "LOCALES"}
	if !f.Match(ok) {
		t.Error("category and subcategory selection must match after normalization")
	}
	if f.Match(Expense{Date: date(2024, 2, 1), Category: "SERVICIOS", Subcategory: "LOCALES"}) {
		t.Error("category mismatch accepted")
	}
	if f.Match(Expense{Date: date(2024, 2, 1), Category: "ALQUILERES", Subcategory: "DEPOSITOS"}) {
		t.Error("subcategory mismatch accepted")
	}

	// A parent-only selection keeps every subcategory under it.
	parentOnly := ExpenseFilter{Categories: []string{"ALQUILERES"}}
	records := []Expense{
		ok,
		{Date: date(2024, 2, 1), Category: "ALQUILERES", Subcategory: "DEPOSITOS"},
		{Date: date(2024, 2, 1), Category: "SERVICIOS", Subcategory: "LUZ"},
	}
	if out := FilterExpenses(records, parentOnly); len(out) != 2 {
		t.Errorf("parent selection kept %d records, want 2", len(out))
	}
}

func TestHRFilterRosterIgnoresMonthAndType(t *testing.T) {
	f := HRFilter{
		Years:  []int{2024},
		Months: []int{3},
		Types:  []string{"SUELDO"},
	}
	p := PayrollEntry{Year: 2024, Month: 7, Type: "AGUINALDO", Area: "VENTAS"}

	if !f.MatchRoster(p) {
		t.Error("roster membership must ignore month and pay-type selections")
	}
	if f.Match(p) {
		t.Error("full match must still apply month and type")
	}
}

func TestStockFilterMatch(t *testing.T) {
	f := StockFilter{
		PeriodFilter: PeriodFilter{Years: []int{2024}},
		Branches:     []string{"MITRE"},
		Rubros:       []string{"SPLIT"},
	}
	ok := StockSnapshot{Date: date(2024, 5, 1), Branch: "MITRE", Rubro: "SPLIT"}
	if !f.Match(ok) {
		t.Error("matching snapshot rejected")
	}
	if f.Match(StockSnapshot{Date: date(2024, 5, 1), Branch: "SALTA", Rubro: "SPLIT"}) {
		t.Error("branch mismatch accepted")
	}
}

func TestFilterSalesReturnsFreshSlice(t *testing.T) {
	records := []Sale{
		{Date: date(2024, 1, 1), Branch: "MITRE"},
		{Date: date(2023, 1, 1), Branch: "MITRE"},
	}
	out := FilterSales(records, SalesFilter{Years: []int{2024}})
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	out[0].Branch = "CHANGED"
	if records[0].Branch != "MITRE" {
		t.Error("filtering must not alias the input records")
	}
}

func TestClassifyVoucher(t *testing.T) {
	tests := []struct {
		voucherType string
		qty         int
		want        VoucherKind
	}{
		{"FC A", 1, VoucherInvoice},
		{"FC B", -1, VoucherCreditNote},
		{"ND A", 1, VoucherDebitNote},
		{"nd b", -1, VoucherDebitNote},
		{"FC A", -2, VoucherInvoice},
	}
	for _, tt := range tests {
		if got := ClassifyVoucher(tt.voucherType, tt.qty); got != tt.want {
			t.Errorf("ClassifyVoucher(%q, %d) = %v, want %v", tt.voucherType, tt.qty, got, tt.want)
		}
	}
}

func TestParseDatasetKind(t *testing.T) {
	if kind, err := ParseDatasetKind("  Sales "); err != nil || kind != DatasetSales {
		t.Errorf("ParseDatasetKind(\"  Sales \") = %v, %v", kind, err)
	}
	if _, err := ParseDatasetKind("ledger"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
