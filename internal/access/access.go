// Package access implements permission resolution over role and HR settings
// documents: HR capability resolution, cross-role checklist grants, and the
// module reachability gate. Everything here is pure — callers fetch the inputs.
package access

import (
	"errors"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

// ErrForbidden is the single denial error for HR access. The message is fixed
// and surfaced to the caller as-is.
var ErrForbidden = errors.New("access denied: no HR permission defined for your roles")

// Mode selects how a multi-role user's capability records combine.
type Mode int

const (
	// ModeFirstMatch reproduces the original behavior: the per-user override
	// path reads the user's first stored role unconditionally, while the
	// fallback scan takes the first role whose record has score or report
	// rights. The two paths can pick different roles for the same user.
	ModeFirstMatch Mode = iota
	// ModeUnion ORs booleans and unions allowed-role lists across every role
	// that has a capability record. Opt-in via HR_ACCESS_MODE=union.
	ModeUnion
)

// ParseMode maps the HR_ACCESS_MODE setting to a Mode. Unknown values fall
// back to first-match.
func ParseMode(s string) Mode {
	if s == "union" {
		return ModeUnion
	}
	return ModeFirstMatch
}

// Capabilities is the resolved HR capability record attached to a request and
// consumed by the HR route handlers.
type Capabilities struct {
	CanCreateUser        bool        `json:"can_create_user"`
	CanDeleteUser        bool        `json:"can_delete_user"`
	CanScore             bool        `json:"can_score"`
	CanImportExcel       bool        `json:"can_import_excel"`
	CanViewReports       bool        `json:"can_view_reports"`
	AllowedRolesToCreate []uuid.UUID `json:"allowed_roles_to_create"`
	AllowedRolesToDelete []uuid.UUID `json:"allowed_roles_to_delete"`
}

// ResolveOptions carries the request markers that influence resolution.
type ResolveOptions struct {
	// ForManualEntry is the user-list bypass marker: the buddy-selection flow
	// may list users without any HR grant, receiving a zero-capability record.
	ForManualEntry bool
	Mode           Mode
}

// ResolveHR decides whether the HR module is reachable for the user and which
// capability record applies. roles must be the user's roles in stored order.
// allRoleIDs is the full current role list, used only for the Admin override.
// settings may be nil (absent document): everything is denied except Admin.
func ResolveHR(userID uuid.UUID, roles []model.Role, settings *model.HRSettings, allRoleIDs []uuid.UUID, opts ResolveOptions) (Capabilities, error) {
	// 1. Manual-entry bypass: listing is allowed, every capability stays false.
	if opts.ForManualEntry {
		return Capabilities{}, nil
	}

	// 2. Admin override, independent of settings content or presence.
	for _, r := range roles {
		if r.Name == model.RoleNameAdmin {
			return Capabilities{
				CanCreateUser:        true,
				CanDeleteUser:        true,
				CanScore:             true,
				CanImportExcel:       true,
				CanViewReports:       true,
				AllowedRolesToCreate: allRoleIDs,
				AllowedRolesToDelete: allRoleIDs,
			}, nil
		}
	}

	if settings == nil {
		return Capabilities{}, ErrForbidden
	}

	if opts.Mode == ModeUnion {
		return resolveUnion(roles, settings)
	}

	// 3. Per-user override: an active entry for this user routes resolution
	// through the user's FIRST stored role, whatever it is.
	if hasActiveUserOverride(userID, settings) && len(roles) > 0 {
		if cap := capabilityFor(roles[0].ID, settings); cap != nil {
			return fromRecord(*cap), nil
		}
	}

	// 4. Fallback scan: first role in order whose record carries score or
	// report rights wins. Not a union.
	for _, r := range roles {
		cap := capabilityFor(r.ID, settings)
		if cap != nil && (cap.CanScore || cap.CanViewReports) {
			return fromRecord(*cap), nil
		}
	}

	return Capabilities{}, ErrForbidden
}

func resolveUnion(roles []model.Role, settings *model.HRSettings) (Capabilities, error) {
	var out Capabilities
	found := false
	for _, r := range roles {
		cap := capabilityFor(r.ID, settings)
		if cap == nil {
			continue
		}
		found = true
		out.CanCreateUser = out.CanCreateUser || cap.CanCreateUser
		out.CanDeleteUser = out.CanDeleteUser || cap.CanDeleteUser
		out.CanScore = out.CanScore || cap.CanScore
		out.CanImportExcel = out.CanImportExcel || cap.CanImportExcel
		out.CanViewReports = out.CanViewReports || cap.CanViewReports
		out.AllowedRolesToCreate = unionIDs(out.AllowedRolesToCreate, cap.AllowedCreateIDs())
		out.AllowedRolesToDelete = unionIDs(out.AllowedRolesToDelete, cap.AllowedDeleteIDs())
	}
	if !found {
		return Capabilities{}, ErrForbidden
	}
	return out, nil
}

func hasActiveUserOverride(userID uuid.UUID, settings *model.HRSettings) bool {
	for _, o := range settings.AccessOverrides {
		if o.UserID != nil && *o.UserID == userID && o.AccessStatus == model.AccessStatusActive {
			return true
		}
	}
	return false
}

func capabilityFor(roleID uuid.UUID, settings *model.HRSettings) *model.RoleCapability {
	for i := range settings.RoleCapabilities {
		if settings.RoleCapabilities[i].RoleID == roleID {
			return &settings.RoleCapabilities[i]
		}
	}
	return nil
}

func fromRecord(c model.RoleCapability) Capabilities {
	return Capabilities{
		CanCreateUser:        c.CanCreateUser,
		CanDeleteUser:        c.CanDeleteUser,
		CanScore:             c.CanScore,
		CanImportExcel:       c.CanImportExcel,
		CanViewReports:       c.CanViewReports,
		AllowedRolesToCreate: c.AllowedCreateIDs(),
		AllowedRolesToDelete: c.AllowedDeleteIDs(),
	}
}

func unionIDs(a, b []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(a)+len(b))
	out := make([]uuid.UUID, 0, len(a)+len(b))
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
