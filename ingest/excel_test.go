package ingest

import (
	"bytes"
	"testing"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/xuri/excelize/v2"
)

func workbookWith(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseSales(t *testing.T) {
	r := workbookWith(t, [][]any{
		{"Fecha", "Suc", "Vendedor", "Cliente", "Tipo Comprobante", "Cantidad comprobante", "Tipo de venta", "Final con Impuestos", "Sin Impuestos", "IVA", "Total sin descuento", "Descuento/Recargo Financiero"},
		{"2024-03-05", "MITRE", "PEREZ", "ACME", "FC A", "1", "Blanco", "1.210,00", "1.000,00", "210,00", "1.210,00", "0"},
		{"2024-03-20", "MITRE", "PEREZ", "ACME", "NC A", "-1", "Blanco", "-121,00", "-100,00", "-21,00", "0", "0"},
	})
	sales, err := ParseSales(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sales))
	}
	if sales[0].Kind != models.VoucherInvoice {
		t.Errorf("first record kind = %s, want Invoice", sales[0].Kind)
	}
	if got := sales[0].Total.StringFixed(2); got != "1210.00" {
		t.Errorf("total = %s, want 1210.00 (Argentine decimal format)", got)
	}
	// Voucher quantity -1 tags the credit note at ingestion.
	if sales[1].Kind != models.VoucherCreditNote {
		t.Errorf("second record kind = %s, want CreditNote", sales[1].Kind)
	}
	if sales[0].Year != 2024 || sales[0].Month != 3 {
		t.Errorf("period = %d-%d, want 2024-3", sales[0].Year, sales[0].Month)
	}
}

func TestParseSalesMissingColumn(t *testing.T) {
	r := workbookWith(t, [][]any{
		{"Fecha", "Suc"},
		{"2024-03-05", "MITRE"},
	})
	if _, err := ParseSales(r); err == nil {
		t.Fatal("expected error for missing required columns")
	}
}

func TestParseExpensesNormalizesCategories(t *testing.T) {
	r := workbookWith(t, [][]any{
		{"Fecha", "Categoría", "Subcategoría", "Detalle", "Monto_ars"},
		{"2024-03-05", "  tributos municipales ", "tasas", "CISI", "100"},
		{"", "SKIPPED", "", "", "1"},
	})
	expenses, err := ParseExpenses(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected blank-date row skipped, got %d records", len(expenses))
	}
	if expenses[0].Category != "TRIBUTOS MUNICIPALES" {
		t.Errorf("category = %q, want TRIBUTOS MUNICIPALES", expenses[0].Category)
	}
}

func TestParsePayrollOptionalDates(t *testing.T) {
	r := workbookWith(t, [][]any{
		{"Fecha", "Empleado", "CUIL", "Tipo", "Monto", "Area", "Actividad", "Categoria", "Fecha Ingreso", "Fecha de Nacimiento", "Fecha Baja", "Dias de Vacaciones"},
		{"2024-03-31", "PEREZ JUAN", "20-1-1", "SUELDO", "1000", "ADMIN", "VENTAS", "VENDEDOR", "2020-03-01", "1990-05-10", "", "14"},
		{"2024-03-31", "GOMEZ ANA", "20-2-2", "SUELDO", "1200", "ADMIN", "VENTAS", "VENDEDOR", "2019-06-01", "", "2024-02-15", "14"},
	})
	payroll, err := ParsePayroll(r)
	if err != nil {
		t.Fatal(err)
	}
	if payroll[0].TerminationDate != nil {
		t.Error("active employee should have nil termination date")
	}
	if payroll[1].TerminationDate == nil {
		t.Error("terminated employee lost the termination date")
	}
	if payroll[1].ActiveAt(payroll[1].Date) {
		t.Error("terminated employee should not be active after termination")
	}
}

func TestParseGoals(t *testing.T) {
	r := workbookWith(t, [][]any{
		{"Sucursal", "Año", "Mes", "Objetivo"},
		{"MITRE", "2024", "3", "1.500.000,00"},
	})
	goals, err := ParseGoals(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if got := goals[0].GoalAmount.StringFixed(2); got != "1500000.00" {
		t.Errorf("goal = %s, want 1500000.00", got)
	}

	bad := workbookWith(t, [][]any{
		{"Sucursal", "Año", "Mes", "Objetivo"},
		{"MITRE", "2024", "13", "100"},
	})
	if _, err := ParseGoals(bad); err == nil {
		t.Fatal("expected error for month 13")
	}
}
