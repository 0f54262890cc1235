package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QualityReview is a quality-control evaluation of a machine's output, written
// by a reviewer holding score rights.
type QualityReview struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MachineID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"machine_id"`
	Machine    *Machine        `gorm:"foreignKey:MachineID" json:"machine,omitempty"`
	ReviewerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	Reviewer   *User           `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Score      decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"score"` // 0-100
	Notes      string          `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
