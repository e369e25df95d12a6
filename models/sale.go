package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one voucher row from the sales spreadsheet. Amounts are stored as
// reported by the source system; credit notes carry positive magnitudes and
// their sign is applied by the aggregators.
type Sale struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	PointOfSale         int             `json:"point_of_sale"`
	Branch              string          `gorm:"size:100;index" json:"branch"`
	Salesperson         string          `gorm:"size:150;index" json:"salesperson"`
	Client              string          `gorm:"size:255" json:"client"`
	VoucherType         string          `gorm:"size:20" json:"voucher_type"`
	VoucherQty          int             `json:"voucher_qty"`
	Kind                VoucherKind     `gorm:"size:20;index" json:"kind"`
	Channel             Channel         `gorm:"size:10" json:"channel"`
	Date                time.Time       `gorm:"index;not null" json:"date"`
	Year                int             `gorm:"index" json:"year"`
	Month               int             `gorm:"index" json:"month"`
	Total               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Net                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net"`
	Vat                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat"`
	GrossBeforeDiscount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"gross_before_discount"`
	// FinancialAdjustment is the financial discount (negative) or surcharge
	// (positive) applied on top of GrossBeforeDiscount.
	FinancialAdjustment decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"financial_adjustment"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (s Sale) IsCreditNote() bool { return s.Kind == VoucherCreditNote }
func (s Sale) IsDebitNote() bool  { return s.Kind == VoucherDebitNote }
func (s Sale) IsInvoice() bool    { return s.Kind == VoucherInvoice }

// SignedTotal is the voucher's contribution to net sales: the absolute gross
// total, negated for credit notes.
func (s Sale) SignedTotal() decimal.Decimal {
	if s.IsCreditNote() {
		return s.Total.Abs().Neg()
	}
	return s.Total.Abs()
}

// SignedNet is the ex-tax amount with the credit-note sign applied.
func (s Sale) SignedNet() decimal.Decimal {
	if s.IsCreditNote() {
		return s.Net.Abs().Neg()
	}
	return s.Net.Abs()
}

// SignedVat is the VAT amount with the credit-note sign applied.
func (s Sale) SignedVat() decimal.Decimal {
	if s.IsCreditNote() {
		return s.Vat.Abs().Neg()
	}
	return s.Vat.Abs()
}
