package access

import (
	"testing"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

func TestResolveChecklist_GrantAppliesOnlyToTargetRole(t *testing.T) {
	paketlemeciID := uuid.New()
	ustaID := uuid.New()

	ortaci := model.Role{
		ID:   uuid.New(),
		Name: "Ortacı",
		ChecklistGrants: []model.ChecklistGrant{
			{TargetRoleID: paketlemeciID, CanView: true, CanScore: true, CanApprove: false},
		},
	}

	d := ResolveChecklist([]model.Role{ortaci}, paketlemeciID)
	if !d.CanView || !d.CanScore || d.CanApprove {
		t.Fatalf("expected view+score without approve, got %+v", d)
	}

	// No grant targeting Usta means full denial, not a default view right.
	d = ResolveChecklist([]model.Role{ortaci}, ustaID)
	if d.CanView || d.CanScore || d.CanApprove {
		t.Fatalf("expected full denial for untargeted role, got %+v", d)
	}
}

func TestResolveChecklist_EmptyGrantsDeny(t *testing.T) {
	d := ResolveChecklist([]model.Role{{ID: uuid.New(), Name: "Paketlemeci"}}, uuid.New())
	if d.CanView || d.CanScore || d.CanApprove {
		t.Fatalf("role with no grants must deny, got %+v", d)
	}
}

func TestResolveChecklist_AdminSeesEverything(t *testing.T) {
	d := ResolveChecklist([]model.Role{{ID: uuid.New(), Name: model.RoleNameAdmin}}, uuid.New())
	if !d.CanView || !d.CanScore || !d.CanApprove {
		t.Fatalf("admin must hold all three bits, got %+v", d)
	}
}

func TestResolveChecklist_SupervisorViewsAndScores(t *testing.T) {
	sup := model.Role{ID: uuid.New(), Name: model.RoleNameSupervisor}
	d := ResolveChecklist([]model.Role{sup}, uuid.New())
	if !d.CanView || !d.CanScore {
		t.Fatalf("supervisor must view and score any role, got %+v", d)
	}
	if d.CanApprove {
		t.Fatalf("supervisor must not approve without an explicit grant, got %+v", d)
	}

	// An explicit grant can add approve on top of the supervisor base.
	target := uuid.New()
	sup.ChecklistGrants = []model.ChecklistGrant{{TargetRoleID: target, CanApprove: true}}
	d = ResolveChecklist([]model.Role{sup}, target)
	if !d.CanView || !d.CanScore || !d.CanApprove {
		t.Fatalf("explicit grant should extend supervisor base, got %+v", d)
	}
}

func TestResolveChecklist_FirstMatchAcrossRoles(t *testing.T) {
	target := uuid.New()
	r1 := model.Role{ID: uuid.New(), Name: "Ortacı",
		ChecklistGrants: []model.ChecklistGrant{{TargetRoleID: target, CanView: true}}}
	r2 := model.Role{ID: uuid.New(), Name: "Usta",
		ChecklistGrants: []model.ChecklistGrant{{TargetRoleID: target, CanView: true, CanScore: true, CanApprove: true}}}

	// The first role's grant wins; R2's more permissive entry is never reached.
	d := ResolveChecklist([]model.Role{r1, r2}, target)
	if !d.CanView || d.CanScore || d.CanApprove {
		t.Fatalf("first matching grant must win, got %+v", d)
	}
}
