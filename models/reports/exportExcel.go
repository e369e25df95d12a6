package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExpensesWorkbook renders the expense report's detail tables as an xlsx
// workbook: one sheet per aggregation level plus a summary sheet.
func WriteExpensesWorkbook(w io.Writer, report *ExpensesReport) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Resumen"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	f.SetCellValue(summary, "A1", "Concepto")
	f.SetCellValue(summary, "B1", "Monto")
	rows := [][2]any{
		{"Gastos Totales", report.Kpis.TotalExpenses.InexactFloat64()},
		{"Gastos Operativos", report.Kpis.OpexTotal.InexactFloat64()},
		{"Tributos", report.Kpis.TaxTotal.InexactFloat64()},
		{"Promedio por Categoría", report.Kpis.AvgExpensePerCategory.InexactFloat64()},
	}
	for i, row := range rows {
		f.SetCellValue(summary, "A"+fmt.Sprint(i+2), row[0])
		f.SetCellValue(summary, "B"+fmt.Sprint(i+2), row[1])
	}

	sheets := []struct {
		name string
		data []AggregatedExpense
	}{
		{"Por Categoría", report.ByCategoryDetail},
		{"Por Subcategoría", report.BySubcategoryDetail},
		{"Por Detalle", report.ByDetailDetail},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}
		f.SetCellValue(sheet.name, "A1", "Nombre")
		f.SetCellValue(sheet.name, "B1", "Total")
		f.SetCellValue(sheet.name, "C1", "Registros")
		for i, item := range sheet.data {
			f.SetCellValue(sheet.name, "A"+fmt.Sprint(i+2), item.Name)
			f.SetCellValue(sheet.name, "B"+fmt.Sprint(i+2), item.Total.InexactFloat64())
			f.SetCellValue(sheet.name, "C"+fmt.Sprint(i+2), item.Count)
		}
	}

	return f.Write(w)
}
