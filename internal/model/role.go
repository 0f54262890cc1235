package model

import (
	"time"

	"github.com/google/uuid"
)

// Well-known role names the resolver special-cases. These are data, not an enum:
// roles are looked up by name everywhere, so renaming them in the database changes
// behavior.
const (
	RoleNameAdmin      = "Admin"
	RoleNameSupervisor = "VARDİYA AMİRİ"
)

// Role is a named permission bundle assignable to users. It carries two parallel
// module grant lists (an older id-keyed one and a newer name-keyed one) plus
// cross-role checklist grants. The two module lists are populated by different
// endpoints and are intentionally NOT reconciled; the reachability gate checks both.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsSystem    bool      `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles

	ModuleGrants    []ModuleGrant      `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"module_grants"`
	NamedGrants     []NamedModuleGrant `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"named_grants"`
	ChecklistGrants []ChecklistGrant   `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"checklist_grants"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModuleGrant is the legacy id-keyed module grant ("moduller").
type ModuleGrant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	ModuleID  uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	CanAccess bool      `gorm:"default:false" json:"can_access"`
	CanEdit   bool      `gorm:"default:false" json:"can_edit"`
}

// NamedModuleGrant is the newer name-keyed module grant ("modulePermissions").
// Renaming a module silently orphans matching entries here — there is no cascade.
type NamedModuleGrant struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	ModuleName string    `gorm:"type:varchar(100);not null" json:"module_name"`
	CanView    bool      `gorm:"default:false" json:"can_view"`
	CanEdit    bool      `gorm:"default:false" json:"can_edit"`
}

// ChecklistGrant gives the owning role visibility/scoring/approval rights over
// checklist submissions authored by users holding TargetRoleID. TargetRoleID has
// no FK constraint on purpose: hard-deleting a role leaves dangling grants, which
// the divergence report surfaces instead of cascading.
type ChecklistGrant struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	TargetRoleID uuid.UUID `gorm:"type:uuid;not null;index" json:"target_role_id"`
	CanView      bool      `gorm:"default:false" json:"can_view"`
	CanScore     bool      `gorm:"default:false" json:"can_score"`
	CanApprove   bool      `gorm:"default:false" json:"can_approve"`
}
