package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"

	ActionCreateRole       = "CREATE_ROLE"
	ActionUpdateRole       = "UPDATE_ROLE"
	ActionDeleteRole       = "DELETE_ROLE"
	ActionUpdateRoleGrants = "UPDATE_ROLE_GRANTS"

	ActionUpdateHRSettings = "UPDATE_HR_SETTINGS"

	// Task control flow actions
	ActionCreateTask      = "CREATE_TASK"
	ActionStartTask       = "START_TASK"
	ActionCompleteTask    = "COMPLETE_TASK"
	ActionSendTaskControl = "SEND_TASK_CONTROL"
	ActionApproveTask     = "APPROVE_TASK"
	ActionRejectTask      = "REJECT_TASK"
	ActionReturnTask      = "RETURN_TASK"

	ActionSubmitChecklist  = "SUBMIT_CHECKLIST"
	ActionScoreChecklist   = "SCORE_CHECKLIST"
	ActionApproveChecklist = "APPROVE_CHECKLIST"
	ActionRejectChecklist  = "REJECT_CHECKLIST"

	ActionRecordOvertime = "RECORD_OVERTIME"
	ActionRecordAbsence  = "RECORD_ABSENCE"

	ActionStockIn  = "STOCK_IN"
	ActionStockOut = "STOCK_OUT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
