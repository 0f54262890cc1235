package access

import (
	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

// ChecklistDecision is the resolved cross-role grant for viewing a checklist
// submission authored under a given role.
type ChecklistDecision struct {
	CanView    bool `json:"can_view"`
	CanScore   bool `json:"can_score"`
	CanApprove bool `json:"can_approve"`
}

// ResolveChecklist decides what the viewer may do with submissions authored by
// users holding authorRoleID. Precedence, same at every call site:
//  1. a role named "Admin" grants everything;
//  2. the shift supervisor role grants view+score over every role;
//  3. otherwise the viewer's roles are scanned in stored order and the first
//     grant targeting authorRoleID applies.
// No grant means no access — there is no default view right. CanScore and
// CanApprove are independent bits; neither implies the other.
func ResolveChecklist(viewerRoles []model.Role, authorRoleID uuid.UUID) ChecklistDecision {
	var d ChecklistDecision
	for _, r := range viewerRoles {
		if r.Name == model.RoleNameAdmin {
			return ChecklistDecision{CanView: true, CanScore: true, CanApprove: true}
		}
		if r.Name == model.RoleNameSupervisor {
			d.CanView = true
			d.CanScore = true
		}
	}

	for _, r := range viewerRoles {
		for _, g := range r.ChecklistGrants {
			if g.TargetRoleID == authorRoleID {
				d.CanView = d.CanView || g.CanView
				d.CanScore = d.CanScore || g.CanScore
				d.CanApprove = d.CanApprove || g.CanApprove
				return d
			}
		}
	}

	return d
}
