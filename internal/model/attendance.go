package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attendance record type enum constants
const (
	AttendanceTypeOvertime = "OVERTIME" // mesai
	AttendanceTypeAbsence  = "ABSENCE"  // devamsızlık
)

// AttendanceRecord is one overtime or absence entry for a user. Points are
// computed from the HRSettings rates at entry time and stored, so later rate
// changes do not rewrite history. Absence points are stored negative.
type AttendanceRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	RecordType string          `gorm:"type:varchar(10);not null;index" json:"record_type"` // OVERTIME / ABSENCE
	Date       time.Time       `gorm:"type:date;not null;index" json:"date"`
	Amount     decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"amount"` // hours for overtime, days for absence
	Points     decimal.Decimal `gorm:"type:numeric(10,4);not null" json:"points"`
	Note       string          `gorm:"type:text" json:"note"`

	EnteredBy *uuid.UUID `gorm:"type:uuid" json:"entered_by"`
	Enterer   *User      `gorm:"foreignKey:EnteredBy" json:"enterer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
