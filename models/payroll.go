package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollEntry is one pay-component row of the HR export. An employee appears
// once per component per period, so headcount questions must first collapse
// rows into a roster (see reports.BuildHRReport).
type PayrollEntry struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Employee   string          `gorm:"size:255" json:"employee"`
	FileNumber string          `gorm:"size:20" json:"file_number"`
	CUIL       string          `gorm:"size:20;index" json:"cuil"`
	Date       time.Time       `gorm:"index;not null" json:"date"`
	Year       int             `gorm:"index" json:"year"`
	Month      int             `gorm:"index" json:"month"`
	Type       string          `gorm:"size:100" json:"type"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Area       string          `gorm:"size:100;index" json:"area"`
	Activity   string          `gorm:"size:100" json:"activity"`
	Category   string          `gorm:"size:100" json:"category"`
	HealthPlan string          `gorm:"size:150" json:"health_plan"`
	HireDate   time.Time       `json:"hire_date"`
	BirthDate  time.Time       `json:"birth_date"`
	// TerminationDate is nil while the employee is still active. nil is the
	// meaningful "still employed" state, never an error.
	TerminationDate *time.Time `json:"termination_date"`
	VacationDays    int        `json:"vacation_days"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// ActiveAt reports whether the employee was on the payroll at the given
// reference date: hired on or before it and not yet terminated.
func (p PayrollEntry) ActiveAt(ref time.Time) bool {
	if p.HireDate.After(ref) {
		return false
	}
	return p.TerminationDate == nil || p.TerminationDate.After(ref)
}
