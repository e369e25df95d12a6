package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot is a point-in-time valuation of one product category in one
// branch for one month. It is a balance, not a transaction: summing snapshots
// across months double-counts.
type StockSnapshot struct {
	ID     int             `gorm:"primary_key" json:"id"`
	Date   time.Time       `gorm:"index;not null" json:"date"`
	Year   int             `gorm:"index" json:"year"`
	Month  int             `gorm:"index" json:"month"`
	Rubro  string          `gorm:"size:150;index" json:"rubro"`
	Branch string          `gorm:"size:100;index" json:"branch"`
	Cost   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	// Exchange-rate quotations captured with the snapshot.
	OfficialRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"official_rate"`
	SystemRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"system_rate"`
	// Valuations: local currency at the official rate, USD at the official
	// rate, USD at the secondary ("sistema") rate.
	ValueARS       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value_ars"`
	ValueUSD       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value_usd"`
	ValueUSDSystem decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"value_usd_system"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// SalesGoal is a monthly sales target per branch uploaded by management. The
// actual amount is recomputed from the stored sales set, never trusted from
// the upload.
type SalesGoal struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Branch       string          `gorm:"size:100;index" json:"branch"`
	Year         int             `gorm:"index" json:"year"`
	Month        int             `gorm:"index" json:"month"`
	GoalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"goal_amount"`
	ActualAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"actual_amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
