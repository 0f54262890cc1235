package access

import (
	"fabrikaops/internal/model"
)

// ModuleDecision is the resolved reachability of a module for a role set.
type ModuleDecision struct {
	CanView bool `json:"can_view"`
	CanEdit bool `json:"can_edit"`
}

// GrantDivergence reports a module where a role's two grant lists disagree.
// These are data defects to review manually, never reconciled automatically.
type GrantDivergence struct {
	ModuleID   string         `json:"module_id"`
	ModuleName string         `json:"module_name"`
	IDKeyed    ModuleDecision `json:"id_keyed"`
	NameKeyed  ModuleDecision `json:"name_keyed"`
}

// ModuleReachable decides whether a role can see/edit a module. The role's two
// grant lists (id-keyed and name-keyed) were populated by different code paths
// and are not kept in sync, so the gate checks BOTH and takes the more
// permissive answer. An inactive module is unreachable regardless of grants.
func ModuleReachable(role model.Role, mod model.AppModule) ModuleDecision {
	if !mod.Active {
		return ModuleDecision{}
	}

	var d ModuleDecision
	for _, g := range role.ModuleGrants {
		if g.ModuleID == mod.ID {
			d.CanView = d.CanView || g.CanAccess
			d.CanEdit = d.CanEdit || g.CanEdit
		}
	}
	for _, g := range role.NamedGrants {
		if g.ModuleName == mod.Name {
			d.CanView = d.CanView || g.CanView
			d.CanEdit = d.CanEdit || g.CanEdit
		}
	}
	return d
}

// ModuleReachableForUser is the union of ModuleReachable over the user's roles.
func ModuleReachableForUser(roles []model.Role, mod model.AppModule) ModuleDecision {
	var d ModuleDecision
	for _, r := range roles {
		rd := ModuleReachable(r, mod)
		d.CanView = d.CanView || rd.CanView
		d.CanEdit = d.CanEdit || rd.CanEdit
	}
	return d
}

// GrantDivergences lists every module where the role's id-keyed and name-keyed
// grants disagree on view or edit.
func GrantDivergences(role model.Role, modules []model.AppModule) []GrantDivergence {
	var out []GrantDivergence
	for _, m := range modules {
		var idKeyed, nameKeyed ModuleDecision
		for _, g := range role.ModuleGrants {
			if g.ModuleID == m.ID {
				idKeyed.CanView = idKeyed.CanView || g.CanAccess
				idKeyed.CanEdit = idKeyed.CanEdit || g.CanEdit
			}
		}
		for _, g := range role.NamedGrants {
			if g.ModuleName == m.Name {
				nameKeyed.CanView = nameKeyed.CanView || g.CanView
				nameKeyed.CanEdit = nameKeyed.CanEdit || g.CanEdit
			}
		}
		if idKeyed != nameKeyed {
			out = append(out, GrantDivergence{
				ModuleID:   m.ID.String(),
				ModuleName: m.Name,
				IDKeyed:    idKeyed,
				NameKeyed:  nameKeyed,
			})
		}
	}
	return out
}
