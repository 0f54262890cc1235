package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

var ErrSystemRole = errors.New("system roles cannot be deleted")

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ModuleGrantInput struct {
	ModuleID  string `json:"module_id" binding:"required"`
	CanAccess bool   `json:"can_access"`
	CanEdit   bool   `json:"can_edit"`
}

type NamedGrantInput struct {
	ModuleName string `json:"module_name" binding:"required"`
	CanView    bool   `json:"can_view"`
	CanEdit    bool   `json:"can_edit"`
}

type ChecklistGrantInput struct {
	TargetRoleID string `json:"target_role_id" binding:"required"`
	CanView      bool   `json:"can_view"`
	CanScore     bool   `json:"can_score"`
	CanApprove   bool   `json:"can_approve"`
}

type UpdateGrantsRequest struct {
	ModuleGrants    []ModuleGrantInput    `json:"module_grants"`
	NamedGrants     []NamedGrantInput     `json:"named_grants"`
	ChecklistGrants []ChecklistGrantInput `json:"checklist_grants"`
}

// RoleService manages roles and their three grant lists. It never rewrites a
// list the caller did not send: a nil list in UpdateGrants leaves that list
// untouched, an empty list clears it.
type RoleService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest, actorID *uuid.UUID) (*model.Role, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actorID *uuid.UUID) (*model.Role, error)
	DeleteRole(ctx context.Context, id string, actorID *uuid.UUID) error
	GetRole(ctx context.Context, id string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	UpdateGrants(ctx context.Context, id string, req UpdateGrantsRequest, actorID *uuid.UUID) (*model.Role, error)
	GrantReport(ctx context.Context, id string) ([]access.GrantDivergence, error)
}

type roleService struct {
	roleRepo       repository.RoleRepository
	moduleRepo     repository.ModuleRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	invalidateAuth func()
}

// NewRoleService wires the role CRUD. invalidateAuth is called after every
// grant mutation so cached per-user capability decisions are dropped.
func NewRoleService(roleRepo repository.RoleRepository, moduleRepo repository.ModuleRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, invalidateAuth func()) RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		moduleRepo:     moduleRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		invalidateAuth: invalidateAuth,
	}
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest, actorID *uuid.UUID) (*model.Role, error) {
	if existing, err := s.roleRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("role '%s' already exists", req.Name)
	}

	role := &model.Role{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Create(txCtx, role); err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionCreateRole,
			EntityID:   role.ID.String(),
			EntityName: role.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actorID *uuid.UUID) (*model.Role, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	if req.Name != nil && *req.Name != role.Name {
		if role.IsSystem {
			return nil, fmt.Errorf("system role '%s' cannot be renamed", role.Name)
		}
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Update(txCtx, role); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionUpdateRole,
			EntityID:   role.ID.String(),
			EntityName: role.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) DeleteRole(ctx context.Context, id string, actorID *uuid.UUID) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("role not found: %w", err)
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	// Checklist grants held by OTHER roles over this one are left in place;
	// the divergence report surfaces them as dangling.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.roleRepo.Delete(txCtx, roleID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionDeleteRole,
			EntityID:   roleID.String(),
			EntityName: role.Name,
		})
	})
	if err != nil {
		return err
	}

	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}
	return s.roleRepo.FindByID(ctx, roleID)
}

func (s *roleService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.ListAll(ctx)
}

func (s *roleService) UpdateGrants(ctx context.Context, id string, req UpdateGrantsRequest, actorID *uuid.UUID) (*model.Role, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.ModuleGrants != nil {
			grants := make([]model.ModuleGrant, 0, len(req.ModuleGrants))
			for _, in := range req.ModuleGrants {
				moduleID, parseErr := uuid.Parse(in.ModuleID)
				if parseErr != nil {
					return fmt.Errorf("invalid module id '%s': %w", in.ModuleID, parseErr)
				}
				grants = append(grants, model.ModuleGrant{
					RoleID:    roleID,
					ModuleID:  moduleID,
					CanAccess: in.CanAccess,
					CanEdit:   in.CanEdit,
				})
			}
			if err := s.roleRepo.ReplaceModuleGrants(txCtx, roleID, grants); err != nil {
				return fmt.Errorf("failed to save module grants: %w", err)
			}
		}

		if req.NamedGrants != nil {
			grants := make([]model.NamedModuleGrant, 0, len(req.NamedGrants))
			for _, in := range req.NamedGrants {
				grants = append(grants, model.NamedModuleGrant{
					RoleID:     roleID,
					ModuleName: in.ModuleName,
					CanView:    in.CanView,
					CanEdit:    in.CanEdit,
				})
			}
			if err := s.roleRepo.ReplaceNamedGrants(txCtx, roleID, grants); err != nil {
				return fmt.Errorf("failed to save named grants: %w", err)
			}
		}

		if req.ChecklistGrants != nil {
			grants := make([]model.ChecklistGrant, 0, len(req.ChecklistGrants))
			for _, in := range req.ChecklistGrants {
				targetID, parseErr := uuid.Parse(in.TargetRoleID)
				if parseErr != nil {
					return fmt.Errorf("invalid target role id '%s': %w", in.TargetRoleID, parseErr)
				}
				grants = append(grants, model.ChecklistGrant{
					RoleID:       roleID,
					TargetRoleID: targetID,
					CanView:      in.CanView,
					CanScore:     in.CanScore,
					CanApprove:   in.CanApprove,
				})
			}
			if err := s.roleRepo.ReplaceChecklistGrants(txCtx, roleID, grants); err != nil {
				return fmt.Errorf("failed to save checklist grants: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]int{
			"module_grants":    len(req.ModuleGrants),
			"named_grants":     len(req.NamedGrants),
			"checklist_grants": len(req.ChecklistGrants),
		})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionUpdateRoleGrants,
			EntityID: roleID.String(),
			Details:  string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return s.roleRepo.FindByID(ctx, roleID)
}

// GrantReport lists the modules where the role's id-keyed and name-keyed grant
// lists disagree, so an admin can spot drift between the two editors.
func (s *roleService) GrantReport(ctx context.Context, id string) ([]access.GrantDivergence, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role not found: %w", err)
	}
	modules, err := s.moduleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return access.GrantDivergences(*role, modules), nil
}
