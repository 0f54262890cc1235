package access

import (
	"testing"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
)

func TestModuleReachable_EitherListGrants(t *testing.T) {
	mod := model.AppModule{ID: uuid.New(), Name: "checklist", Active: true}

	// Reachable only via the name-keyed list.
	nameOnly := model.Role{
		NamedGrants: []model.NamedModuleGrant{{ModuleName: "checklist", CanView: true}},
	}
	if d := ModuleReachable(nameOnly, mod); !d.CanView {
		t.Fatalf("name-keyed grant alone must reach the module, got %+v", d)
	}

	// Reachable only via the id-keyed list.
	idOnly := model.Role{
		ModuleGrants: []model.ModuleGrant{{ModuleID: mod.ID, CanAccess: true, CanEdit: true}},
	}
	d := ModuleReachable(idOnly, mod)
	if !d.CanView || !d.CanEdit {
		t.Fatalf("id-keyed grant alone must reach the module, got %+v", d)
	}

	// More permissive of the two wins per field.
	both := model.Role{
		ModuleGrants: []model.ModuleGrant{{ModuleID: mod.ID, CanAccess: true, CanEdit: false}},
		NamedGrants:  []model.NamedModuleGrant{{ModuleName: "checklist", CanView: false, CanEdit: true}},
	}
	d = ModuleReachable(both, mod)
	if !d.CanView || !d.CanEdit {
		t.Fatalf("gate must take the more permissive answer, got %+v", d)
	}
}

func TestModuleReachable_InactiveModuleDenies(t *testing.T) {
	mod := model.AppModule{ID: uuid.New(), Name: "hr", Active: false}
	r := model.Role{ModuleGrants: []model.ModuleGrant{{ModuleID: mod.ID, CanAccess: true}}}
	if d := ModuleReachable(r, mod); d.CanView || d.CanEdit {
		t.Fatalf("inactive module must be unreachable, got %+v", d)
	}
}

func TestModuleReachable_NoGrantDenies(t *testing.T) {
	mod := model.AppModule{ID: uuid.New(), Name: "tasks", Active: true}
	if d := ModuleReachable(model.Role{}, mod); d.CanView || d.CanEdit {
		t.Fatalf("no grant in either list must deny, got %+v", d)
	}
}

func TestModuleReachableForUser_UnionAcrossRoles(t *testing.T) {
	mod := model.AppModule{ID: uuid.New(), Name: "inventory", Active: true}
	viewer := model.Role{NamedGrants: []model.NamedModuleGrant{{ModuleName: "inventory", CanView: true}}}
	editor := model.Role{ModuleGrants: []model.ModuleGrant{{ModuleID: mod.ID, CanAccess: true, CanEdit: true}}}

	d := ModuleReachableForUser([]model.Role{viewer, editor}, mod)
	if !d.CanView || !d.CanEdit {
		t.Fatalf("user gate must union role decisions, got %+v", d)
	}
}

func TestGrantDivergences(t *testing.T) {
	agreed := model.AppModule{ID: uuid.New(), Name: "tasks", Active: true}
	diverged := model.AppModule{ID: uuid.New(), Name: "hr", Active: true}
	ungranted := model.AppModule{ID: uuid.New(), Name: "quality", Active: true}

	r := model.Role{
		ModuleGrants: []model.ModuleGrant{
			{ModuleID: agreed.ID, CanAccess: true},
			{ModuleID: diverged.ID, CanAccess: true, CanEdit: true},
		},
		NamedGrants: []model.NamedModuleGrant{
			{ModuleName: "tasks", CanView: true},
			{ModuleName: "hr", CanView: true, CanEdit: false},
		},
	}

	out := GrantDivergences(r, []model.AppModule{agreed, diverged, ungranted})
	if len(out) != 1 {
		t.Fatalf("expected exactly one divergence, got %+v", out)
	}
	if out[0].ModuleName != "hr" {
		t.Fatalf("expected divergence on hr, got %+v", out[0])
	}
	if !out[0].IDKeyed.CanEdit || out[0].NameKeyed.CanEdit {
		t.Fatalf("divergence should show which list granted edit, got %+v", out[0])
	}
}
