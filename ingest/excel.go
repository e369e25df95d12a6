// Package ingest decodes the company's spreadsheet exports into typed
// records. Each dataset kind has a fixed header contract taken from the
// source system's export format; extra columns are ignored, missing required
// columns fail the whole file.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/models"
	"github.com/nubepizarroclimatizacion-dev/dashboard-pizarro-v2/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

type sheet struct {
	rows   [][]string
	header map[string]int
}

func openSheet(r io.Reader) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[utils.NormalizeKey(h)] = i
	}
	return &sheet{rows: rows[1:], header: header}, nil
}

func (s *sheet) require(columns ...string) error {
	for _, col := range columns {
		if _, ok := s.header[utils.NormalizeKey(col)]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}
	return nil
}

func (s *sheet) cell(row []string, column string) string {
	idx, ok := s.header[utils.NormalizeKey(column)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	// Excel stores dates as day serials; an unformatted cell surfaces one.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseOptionalDate(value string) *time.Time {
	t, err := parseDate(value)
	if err != nil {
		return nil
	}
	return &t
}

func parseAmount(value string) decimal.Decimal {
	d, err := utils.ParseDecimal(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

// ParseSales decodes a sales export. Voucher classification happens here,
// once, so every consumer downstream can rely on the tagged kind.
func ParseSales(r io.Reader) ([]models.Sale, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Fecha", "Suc", "Tipo Comprobante", "Final con Impuestos"); err != nil {
		return nil, err
	}

	out := make([]models.Sale, 0, len(s.rows))
	for i, row := range s.rows {
		dateCell := s.cell(row, "Fecha")
		if dateCell == "" {
			continue
		}
		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		voucherType := strings.TrimSpace(s.cell(row, "Tipo Comprobante"))
		voucherQty := parseInt(s.cell(row, "Cantidad comprobante"))
		out = append(out, models.Sale{
			PointOfSale:         parseInt(s.cell(row, "Num Punto Venta")),
			Branch:              s.cell(row, "Suc"),
			Salesperson:         s.cell(row, "Vendedor"),
			Client:              s.cell(row, "Cliente"),
			VoucherType:         voucherType,
			VoucherQty:          voucherQty,
			Kind:                models.ClassifyVoucher(voucherType, voucherQty),
			Channel:             models.ParseChannel(s.cell(row, "Tipo de venta")),
			Date:                date,
			Year:                date.Year(),
			Month:               int(date.Month()),
			Total:               parseAmount(s.cell(row, "Final con Impuestos")),
			Net:                 parseAmount(s.cell(row, "Sin Impuestos")),
			Vat:                 parseAmount(s.cell(row, "IVA")),
			GrossBeforeDiscount: parseAmount(s.cell(row, "Total sin descuento")),
			FinancialAdjustment: parseAmount(s.cell(row, "Descuento/Recargo Financiero")),
		})
	}
	return out, nil
}

func ParsePurchases(r io.Reader) ([]models.Purchase, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Fecha", "Proveedor", "Con Impuestos"); err != nil {
		return nil, err
	}

	out := make([]models.Purchase, 0, len(s.rows))
	for i, row := range s.rows {
		dateCell := s.cell(row, "Fecha")
		if dateCell == "" {
			continue
		}
		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, models.Purchase{
			Date:       date,
			Year:       date.Year(),
			Month:      int(date.Month()),
			Provider:   s.cell(row, "Proveedor"),
			Modality:   models.ParseChannel(s.cell(row, "Modalidad")),
			Net:        parseAmount(s.cell(row, "Sin Impuestos")),
			OtherTaxes: parseAmount(s.cell(row, "Otros Tributos")),
			Vat:        parseAmount(s.cell(row, "IVA")),
			Total:      parseAmount(s.cell(row, "Con Impuestos")),
		})
	}
	return out, nil
}

// ParseExpenses upper-cases category and subcategory at the boundary so the
// aggregators can group by exact match.
func ParseExpenses(r io.Reader) ([]models.Expense, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Fecha", "Categoría", "Monto_ars"); err != nil {
		return nil, err
	}

	out := make([]models.Expense, 0, len(s.rows))
	for i, row := range s.rows {
		dateCell := s.cell(row, "Fecha")
		if dateCell == "" {
			continue
		}
		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, models.Expense{
			Date:        date,
			Year:        date.Year(),
			Month:       int(date.Month()),
			Category:    utils.NormalizeKey(s.cell(row, "Categoría")),
			Subcategory: utils.NormalizeKey(s.cell(row, "Subcategoría")),
			Detail:      s.cell(row, "Detalle"),
			Amount:      parseAmount(s.cell(row, "Monto_ars")),
		})
	}
	return out, nil
}

func ParsePayroll(r io.Reader) ([]models.PayrollEntry, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Fecha", "CUIL", "Monto", "Fecha Ingreso"); err != nil {
		return nil, err
	}

	out := make([]models.PayrollEntry, 0, len(s.rows))
	for i, row := range s.rows {
		dateCell := s.cell(row, "Fecha")
		if dateCell == "" {
			continue
		}
		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		hireDate, err := parseDate(s.cell(row, "Fecha Ingreso"))
		if err != nil {
			return nil, fmt.Errorf("row %d: hire date: %w", i+2, err)
		}
		var birthDate time.Time
		if b := parseOptionalDate(s.cell(row, "Fecha de Nacimiento")); b != nil {
			birthDate = *b
		}
		out = append(out, models.PayrollEntry{
			Employee:        s.cell(row, "Empleado"),
			FileNumber:      s.cell(row, "Leg"),
			CUIL:            s.cell(row, "CUIL"),
			Date:            date,
			Year:            date.Year(),
			Month:           int(date.Month()),
			Type:            s.cell(row, "Tipo"),
			Amount:          parseAmount(s.cell(row, "Monto")),
			Area:            s.cell(row, "Area"),
			Activity:        s.cell(row, "Actividad"),
			Category:        s.cell(row, "Categoria"),
			HealthPlan:      s.cell(row, "Obra Social"),
			HireDate:        hireDate,
			BirthDate:       birthDate,
			TerminationDate: parseOptionalDate(s.cell(row, "Fecha Baja")),
			VacationDays:    parseInt(s.cell(row, "Dias de Vacaciones")),
		})
	}
	return out, nil
}

func ParseStock(r io.Reader) ([]models.StockSnapshot, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Fecha", "Suc", "Rubro productos", "Valorizado en $ a dolar oficial"); err != nil {
		return nil, err
	}

	out := make([]models.StockSnapshot, 0, len(s.rows))
	for i, row := range s.rows {
		dateCell := s.cell(row, "Fecha")
		if dateCell == "" {
			continue
		}
		date, err := parseDate(dateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, models.StockSnapshot{
			Date:           date,
			Year:           date.Year(),
			Month:          int(date.Month()),
			Rubro:          s.cell(row, "Rubro productos"),
			Branch:         s.cell(row, "Suc"),
			Cost:           parseAmount(s.cell(row, "Costo sin imp en $")),
			SystemRate:     parseAmount(s.cell(row, "Cotizacion Dolar Sistema")),
			OfficialRate:   parseAmount(s.cell(row, "Cotizacion Dolar Oficial")),
			ValueUSDSystem: parseAmount(s.cell(row, "Valorizado en USD SISTEMA")),
			ValueUSD:       parseAmount(s.cell(row, "Valorizado en USD OFICIAL")),
			ValueARS:       parseAmount(s.cell(row, "Valorizado en $ a dolar oficial")),
		})
	}
	return out, nil
}

// ParseGoals decodes the monthly sales-goal sheet (branch, year, month, goal
// amount). Actual amounts are not read: they are recomputed from the sales
// dataset on demand.
func ParseGoals(r io.Reader) ([]models.SalesGoal, error) {
	s, err := openSheet(r)
	if err != nil {
		return nil, err
	}
	if err := s.require("Sucursal", "Año", "Mes", "Objetivo"); err != nil {
		return nil, err
	}

	out := make([]models.SalesGoal, 0, len(s.rows))
	for i, row := range s.rows {
		branch := s.cell(row, "Sucursal")
		if branch == "" {
			continue
		}
		year := parseInt(s.cell(row, "Año"))
		month := parseInt(s.cell(row, "Mes"))
		if year == 0 || month < 1 || month > 12 {
			return nil, fmt.Errorf("row %d: invalid period %d-%d", i+2, year, month)
		}
		out = append(out, models.SalesGoal{
			Branch:     branch,
			Year:       year,
			Month:      month,
			GoalAmount: parseAmount(s.cell(row, "Objetivo")),
		})
	}
	return out, nil
}
