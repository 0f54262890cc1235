package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccessStatusActive  = "aktif"
	AccessStatusPassive = "pasif"
)

// HRSettings is the per-deployment HR configuration: scoring rates plus per-role
// capability grants and module access overrides. Exactly one row exists; the
// uniqueIndex on Scope enforces it at the storage layer instead of by convention.
type HRSettings struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Scope string    `gorm:"type:varchar(20);not null;default:'global';uniqueIndex" json:"-"`

	// Points credited per overtime hour / debited per absence day.
	OvertimePointsPerHour decimal.Decimal `gorm:"type:numeric(10,4);not null;default:1" json:"overtime_points_per_hour"`
	AbsencePointsPerDay   decimal.Decimal `gorm:"type:numeric(10,4);not null;default:1" json:"absence_points_per_day"`

	RoleCapabilities []RoleCapability `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE" json:"role_capabilities"`
	AccessOverrides  []AccessOverride `gorm:"foreignKey:SettingsID;constraint:OnDelete:CASCADE" json:"access_overrides"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleCapability is one role's HR capability record ("rolYetkileri" entry).
// The allowed-role lists are jsonb arrays of role id strings.
type RoleCapability struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SettingsID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`

	CanCreateUser  bool `gorm:"default:false" json:"can_create_user"`
	CanDeleteUser  bool `gorm:"default:false" json:"can_delete_user"`
	CanScore       bool `gorm:"default:false" json:"can_score"`
	CanImportExcel bool `gorm:"default:false" json:"can_import_excel"`
	CanViewReports bool `gorm:"default:false" json:"can_view_reports"`

	AllowedRolesToCreate string `gorm:"type:jsonb;not null;default:'[]'" json:"allowed_roles_to_create"`
	AllowedRolesToDelete string `gorm:"type:jsonb;not null;default:'[]'" json:"allowed_roles_to_delete"`
}

// AccessOverride grants or revokes HR module reachability for a single role or
// user ("modulErisimYetkileri" entry), independent of RoleCapabilities.
type AccessOverride struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SettingsID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	RoleID       *uuid.UUID `gorm:"type:uuid;index" json:"role_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	AccessStatus string     `gorm:"type:varchar(10);not null;default:'aktif'" json:"access_status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AllowedCreateIDs decodes the jsonb list. Malformed data yields an empty list.
func (c RoleCapability) AllowedCreateIDs() []uuid.UUID {
	return decodeIDList(c.AllowedRolesToCreate)
}

// AllowedDeleteIDs decodes the jsonb list. Malformed data yields an empty list.
func (c RoleCapability) AllowedDeleteIDs() []uuid.UUID {
	return decodeIDList(c.AllowedRolesToDelete)
}

// EncodeIDList serializes role ids for the jsonb allowed-role columns.
func EncodeIDList(ids []uuid.UUID) string {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	b, _ := json.Marshal(raw)
	return string(b)
}

func decodeIDList(s string) []uuid.UUID {
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if id, err := uuid.Parse(r); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
