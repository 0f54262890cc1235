package service

import (
	"context"
	"fmt"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

type CreateModuleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Route       string `json:"route"`
}

type UpdateModuleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Route       *string `json:"route"`
	Active      *bool   `json:"active"`
}

type ModuleService interface {
	CreateModule(ctx context.Context, req CreateModuleRequest) (*model.AppModule, error)
	UpdateModule(ctx context.Context, id string, req UpdateModuleRequest) (*model.AppModule, error)
	DeleteModule(ctx context.Context, id string) error
	ListModules(ctx context.Context) ([]model.AppModule, error)
}

type moduleService struct {
	moduleRepo     repository.ModuleRepository
	invalidateAuth func()
}

func NewModuleService(moduleRepo repository.ModuleRepository, invalidateAuth func()) ModuleService {
	return &moduleService{moduleRepo: moduleRepo, invalidateAuth: invalidateAuth}
}

func (s *moduleService) CreateModule(ctx context.Context, req CreateModuleRequest) (*model.AppModule, error) {
	if existing, err := s.moduleRepo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("module '%s' already exists", req.Name)
	}

	mod := &model.AppModule{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Route:       req.Route,
		Active:      true,
	}
	if err := s.moduleRepo.Create(ctx, mod); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return mod, nil
}

func (s *moduleService) UpdateModule(ctx context.Context, id string, req UpdateModuleRequest) (*model.AppModule, error) {
	modID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid module id: %w", err)
	}

	mod, err := s.moduleRepo.FindByID(ctx, modID)
	if err != nil {
		return nil, fmt.Errorf("module not found: %w", err)
	}

	// Renaming does not rewrite name-keyed grants pointing at the old name.
	if req.Name != nil {
		mod.Name = *req.Name
	}
	if req.Description != nil {
		mod.Description = *req.Description
	}
	if req.Icon != nil {
		mod.Icon = *req.Icon
	}
	if req.Route != nil {
		mod.Route = *req.Route
	}
	if req.Active != nil {
		mod.Active = *req.Active
	}

	if err := s.moduleRepo.Update(ctx, mod); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return mod, nil
}

func (s *moduleService) DeleteModule(ctx context.Context, id string) error {
	modID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid module id: %w", err)
	}
	if err := s.moduleRepo.Delete(ctx, modID); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	if s.invalidateAuth != nil {
		s.invalidateAuth()
	}
	return nil
}

func (s *moduleService) ListModules(ctx context.Context) ([]model.AppModule, error) {
	return s.moduleRepo.ListAll(ctx)
}
