package model

import (
	"time"

	"github.com/google/uuid"
)

// Task status enum constants
const (
	TaskStatusCreated        = "CREATED"
	TaskStatusInProgress     = "IN_PROGRESS"
	TaskStatusCompleted      = "COMPLETED"
	TaskStatusControlPending = "CONTROL_PENDING"
	TaskStatusApproved       = "APPROVED"
	TaskStatusRejected       = "REJECTED"
	TaskStatusReturned       = "RETURNED"
)

// Task is a unit of floor work assigned to a user, optionally bound to a machine.
// Control flow: CREATED → IN_PROGRESS → COMPLETED → CONTROL_PENDING →
// APPROVED | REJECTED | RETURNED, and RETURNED → IN_PROGRESS for rework.
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null;default:'CREATED';index" json:"status"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to"`
	Assignee   *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	Creator    *User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	MachineID *uuid.UUID `gorm:"type:uuid;index" json:"machine_id"`
	Machine   *Machine   `gorm:"foreignKey:MachineID" json:"machine,omitempty"`

	StartedAt    *time.Time `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	ControlledBy *uuid.UUID `gorm:"type:uuid" json:"controlled_by"`
	Controller   *User      `gorm:"foreignKey:ControlledBy" json:"controller,omitempty"`
	ControlledAt *time.Time `json:"controlled_at"`
	ControlNote  string     `gorm:"type:text" json:"control_note"` // rejection/return reason

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
