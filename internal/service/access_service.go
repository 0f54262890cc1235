package service

import (
	"context"
	"fmt"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

// ModuleAccessResponse is one reachable module entry for the frontend menu.
type ModuleAccessResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Route   string `json:"route"`
	CanView bool   `json:"can_view"`
	CanEdit bool   `json:"can_edit"`
}

// AccessService resolves permissions for authenticated users by assembling the
// inputs (roles, settings, module list) and delegating to the access package.
type AccessService interface {
	ResolveForUser(ctx context.Context, user *model.User, forManualEntry bool) (access.Capabilities, error)
	ChecklistDecision(ctx context.Context, viewer *model.User, authorRoleID uuid.UUID) (access.ChecklistDecision, error)
	VisibleModules(ctx context.Context, user *model.User) ([]ModuleAccessResponse, error)
}

type accessService struct {
	roleRepo     repository.RoleRepository
	settingsRepo repository.SettingsRepository
	moduleRepo   repository.ModuleRepository
	mode         access.Mode
}

func NewAccessService(roleRepo repository.RoleRepository, settingsRepo repository.SettingsRepository, moduleRepo repository.ModuleRepository, mode access.Mode) AccessService {
	return &accessService{
		roleRepo:     roleRepo,
		settingsRepo: settingsRepo,
		moduleRepo:   moduleRepo,
		mode:         mode,
	}
}

func (s *accessService) ResolveForUser(ctx context.Context, user *model.User, forManualEntry bool) (access.Capabilities, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		// An unreadable settings document behaves like an absent one: deny
		// everything except the Admin override.
		settings = nil
	}

	// The Admin override hands out the full current role list, fetched fresh.
	allRoleIDs, err := s.roleRepo.ListIDs(ctx)
	if err != nil {
		return access.Capabilities{}, fmt.Errorf("failed to list roles: %w", err)
	}

	return access.ResolveHR(user.ID, user.Roles, settings, allRoleIDs, access.ResolveOptions{
		ForManualEntry: forManualEntry,
		Mode:           s.mode,
	})
}

func (s *accessService) ChecklistDecision(ctx context.Context, viewer *model.User, authorRoleID uuid.UUID) (access.ChecklistDecision, error) {
	return access.ResolveChecklist(viewer.Roles, authorRoleID), nil
}

// VisibleModules returns the active modules the user can reach, with the
// per-module decision taken across both grant lists of every role.
func (s *accessService) VisibleModules(ctx context.Context, user *model.User) ([]ModuleAccessResponse, error) {
	mods, err := s.moduleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	isAdmin := false
	for _, r := range user.Roles {
		if r.Name == model.RoleNameAdmin {
			isAdmin = true
			break
		}
	}

	out := make([]ModuleAccessResponse, 0, len(mods))
	for _, m := range mods {
		d := access.ModuleReachableForUser(user.Roles, m)
		if isAdmin {
			d = access.ModuleDecision{CanView: true, CanEdit: true}
		}
		if !d.CanView {
			continue
		}
		out = append(out, ModuleAccessResponse{
			ID:      m.ID.String(),
			Name:    m.Name,
			Icon:    m.Icon,
			Route:   m.Route,
			CanView: d.CanView,
			CanEdit: d.CanEdit,
		})
	}
	return out, nil
}
