package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one supplier invoice row. Total is assumed consistent with
// Net + OtherTaxes + Vat from the source; nothing re-checks it here.
type Purchase struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Date       time.Time       `gorm:"index;not null" json:"date"`
	Year       int             `gorm:"index" json:"year"`
	Month      int             `gorm:"index" json:"month"`
	Provider   string          `gorm:"size:255;index" json:"provider"`
	Modality   Channel         `gorm:"size:10" json:"modality"`
	Net        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net"`
	OtherTaxes decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"other_taxes"`
	Vat        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"vat"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
