package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one expense ledger row. Category and Subcategory arrive already
// upper-cased from ingestion; the aggregators do not re-normalize them.
type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Year        int             `gorm:"index" json:"year"`
	Month       int             `gorm:"index" json:"month"`
	Category    string          `gorm:"size:150;index" json:"category"`
	Subcategory string          `gorm:"size:150" json:"subcategory"`
	Detail      string          `gorm:"size:255" json:"detail"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
