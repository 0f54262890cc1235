package service

import (
	"context"
	"encoding/json"
	"fmt"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpdateRatesRequest struct {
	OvertimePointsPerHour *string `json:"overtime_points_per_hour"`
	AbsencePointsPerDay   *string `json:"absence_points_per_day"`
}

type RoleCapabilityInput struct {
	RoleID               string   `json:"role_id" binding:"required"`
	CanCreateUser        bool     `json:"can_create_user"`
	CanDeleteUser        bool     `json:"can_delete_user"`
	CanScore             bool     `json:"can_score"`
	CanImportExcel       bool     `json:"can_import_excel"`
	CanViewReports       bool     `json:"can_view_reports"`
	AllowedRolesToCreate []string `json:"allowed_roles_to_create"`
	AllowedRolesToDelete []string `json:"allowed_roles_to_delete"`
}

type AccessOverrideInput struct {
	RoleID       *string `json:"role_id"`
	UserID       *string `json:"user_id"`
	AccessStatus string  `json:"access_status" binding:"required,oneof=aktif pasif"`
}

// SettingsService owns the singleton HR configuration row: scoring rates, the
// per-role capability list and the access override list. Capability and
// override writes replace the whole list, matching how the settings screen
// saves.
type SettingsService interface {
	GetSettings(ctx context.Context) (*model.HRSettings, error)
	UpdateRates(ctx context.Context, req UpdateRatesRequest, actorID *uuid.UUID) (*model.HRSettings, error)
	ReplaceCapabilities(ctx context.Context, inputs []RoleCapabilityInput, actorID *uuid.UUID) (*model.HRSettings, error)
	ReplaceOverrides(ctx context.Context, inputs []AccessOverrideInput, actorID *uuid.UUID) (*model.HRSettings, error)
}

type settingsService struct {
	settingsRepo   repository.SettingsRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	invalidateAuth func()
}

func NewSettingsService(settingsRepo repository.SettingsRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, invalidateAuth func()) SettingsService {
	return &settingsService{
		settingsRepo:   settingsRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		invalidateAuth: invalidateAuth,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.HRSettings, error) {
	return s.settingsRepo.GetOrCreate(ctx)
}

func (s *settingsService) UpdateRates(ctx context.Context, req UpdateRatesRequest, actorID *uuid.UUID) (*model.HRSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if req.OvertimePointsPerHour != nil {
		rate, parseErr := decimal.NewFromString(*req.OvertimePointsPerHour)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid overtime rate '%s': %w", *req.OvertimePointsPerHour, parseErr)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("overtime rate cannot be negative")
		}
		settings.OvertimePointsPerHour = rate
	}
	if req.AbsencePointsPerDay != nil {
		rate, parseErr := decimal.NewFromString(*req.AbsencePointsPerDay)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid absence rate '%s': %w", *req.AbsencePointsPerDay, parseErr)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("absence rate cannot be negative")
		}
		settings.AbsencePointsPerDay = rate
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.settingsRepo.Update(txCtx, settings); err != nil {
			return fmt.Errorf("failed to save rates: %w", err)
		}
		return s.auditSettings(txCtx, actorID, map[string]interface{}{
			"overtime_rate": settings.OvertimePointsPerHour.String(),
			"absence_rate":  settings.AbsencePointsPerDay.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.settingsRepo.GetOrCreate(ctx)
}

func (s *settingsService) ReplaceCapabilities(ctx context.Context, inputs []RoleCapabilityInput, actorID *uuid.UUID) (*model.HRSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	caps := make([]model.RoleCapability, 0, len(inputs))
	for _, in := range inputs {
		roleID, parseErr := uuid.Parse(in.RoleID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid role id '%s': %w", in.RoleID, parseErr)
		}
		createIDs, parseErr := parseRoleIDs(in.AllowedRolesToCreate)
		if parseErr != nil {
			return nil, parseErr
		}
		deleteIDs, parseErr := parseRoleIDs(in.AllowedRolesToDelete)
		if parseErr != nil {
			return nil, parseErr
		}
		caps = append(caps, model.RoleCapability{
			SettingsID:           settings.ID,
			RoleID:               roleID,
			CanCreateUser:        in.CanCreateUser,
			CanDeleteUser:        in.CanDeleteUser,
			CanScore:             in.CanScore,
			CanImportExcel:       in.CanImportExcel,
			CanViewReports:       in.CanViewReports,
			AllowedRolesToCreate: model.EncodeIDList(createIDs),
			AllowedRolesToDelete: model.EncodeIDList(deleteIDs),
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.settingsRepo.ReplaceRoleCapabilities(txCtx, settings.ID, caps); err != nil {
			return fmt.Errorf("failed to save capabilities: %w", err)
		}
		return s.auditSettings(txCtx, actorID, map[string]interface{}{"capabilities": len(caps)})
	})
	if err != nil {
		return nil, err
	}

	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return s.settingsRepo.GetOrCreate(ctx)
}

func (s *settingsService) ReplaceOverrides(ctx context.Context, inputs []AccessOverrideInput, actorID *uuid.UUID) (*model.HRSettings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	overrides := make([]model.AccessOverride, 0, len(inputs))
	for _, in := range inputs {
		if in.RoleID == nil && in.UserID == nil {
			return nil, fmt.Errorf("override needs a role_id or a user_id")
		}
		ov := model.AccessOverride{
			SettingsID:   settings.ID,
			AccessStatus: in.AccessStatus,
		}
		if in.RoleID != nil {
			roleID, parseErr := uuid.Parse(*in.RoleID)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid role id '%s': %w", *in.RoleID, parseErr)
			}
			ov.RoleID = &roleID
		}
		if in.UserID != nil {
			userID, parseErr := uuid.Parse(*in.UserID)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid user id '%s': %w", *in.UserID, parseErr)
			}
			ov.UserID = &userID
		}
		overrides = append(overrides, ov)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.settingsRepo.ReplaceAccessOverrides(txCtx, settings.ID, overrides); err != nil {
			return fmt.Errorf("failed to save overrides: %w", err)
		}
		return s.auditSettings(txCtx, actorID, map[string]interface{}{"overrides": len(overrides)})
	})
	if err != nil {
		return nil, err
	}

	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return s.settingsRepo.GetOrCreate(ctx)
}

func (s *settingsService) auditSettings(ctx context.Context, actorID *uuid.UUID, payload map[string]interface{}) error {
	details, _ := json.Marshal(payload)
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:  actorID,
		Action:  model.ActionUpdateHRSettings,
		Details: string(details),
	})
}
