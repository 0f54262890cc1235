package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Checklist submission status enum constants
const (
	SubmissionStatusSubmitted = "SUBMITTED"
	SubmissionStatusScored    = "SCORED"
	SubmissionStatusApproved  = "APPROVED"
	SubmissionStatusRejected  = "REJECTED"
)

// ChecklistTemplate defines the checklist a given role works through.
type ChecklistTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	TargetRoleID uuid.UUID `gorm:"type:uuid;not null;index" json:"target_role_id"` // role that performs it
	Active       bool      `gorm:"default:true" json:"active"`

	Items []ChecklistItem `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChecklistItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TemplateID uuid.UUID       `gorm:"type:uuid;not null;index" json:"template_id"`
	Text       string          `gorm:"type:text;not null" json:"text"`
	MaxScore   decimal.Decimal `gorm:"type:numeric(6,2);not null;default:10" json:"max_score"`
	SortOrder  int             `gorm:"not null;default:0" json:"sort_order"`
}

// ChecklistSubmission is one completed pass of a template by a user. AuthorRoleID
// snapshots the role the author held at submit time; cross-role visibility and
// scoring rights are resolved against it, not against the author's current roles.
type ChecklistSubmission struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TemplateID   uuid.UUID `gorm:"type:uuid;not null;index" json:"template_id"`
	Template     *ChecklistTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author       *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorRoleID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_role_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'SUBMITTED';index" json:"status"`

	TotalScore *decimal.Decimal `gorm:"type:numeric(8,2)" json:"total_score"`
	ScoredBy   *uuid.UUID       `gorm:"type:uuid" json:"scored_by"`
	Scorer     *User            `gorm:"foreignKey:ScoredBy" json:"scorer,omitempty"`
	ScoredAt   *time.Time       `json:"scored_at"`
	ApprovedBy *uuid.UUID       `gorm:"type:uuid" json:"approved_by"`
	Approver   *User            `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt *time.Time       `json:"approved_at"`
	ReviewNote string           `gorm:"type:text" json:"review_note"`

	Answers []SubmissionAnswer `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubmissionAnswer struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubmissionID uuid.UUID        `gorm:"type:uuid;not null;index" json:"submission_id"`
	ItemID       uuid.UUID        `gorm:"type:uuid;not null" json:"item_id"`
	Done         bool             `gorm:"default:false" json:"done"`
	Note         string           `gorm:"type:text" json:"note"`
	Score        *decimal.Decimal `gorm:"type:numeric(6,2)" json:"score"` // filled when scored
}
