package service

import (
	"context"
	"fmt"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateMachineRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

type UpdateMachineRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// OrgService manages departments and machines.
type OrgService interface {
	CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	ListDepartments(ctx context.Context) ([]model.Department, error)

	CreateMachine(ctx context.Context, req CreateMachineRequest) (*model.Machine, error)
	UpdateMachine(ctx context.Context, id string, req UpdateMachineRequest) (*model.Machine, error)
	DeleteMachine(ctx context.Context, id string) error
	ListMachines(ctx context.Context) ([]model.Machine, error)
}

type orgService struct {
	orgRepo repository.OrgRepository
}

func NewOrgService(orgRepo repository.OrgRepository) OrgService {
	return &orgService{orgRepo: orgRepo}
}

func (s *orgService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*model.Department, error) {
	dept := &model.Department{Name: req.Name}
	if err := s.orgRepo.CreateDepartment(ctx, dept); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return dept, nil
}

func (s *orgService) DeleteDepartment(ctx context.Context, id string) error {
	deptID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid department id: %w", err)
	}
	return s.orgRepo.DeleteDepartment(ctx, deptID)
}

func (s *orgService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	return s.orgRepo.ListDepartments(ctx)
}

func (s *orgService) CreateMachine(ctx context.Context, req CreateMachineRequest) (*model.Machine, error) {
	machine := &model.Machine{Name: req.Name, Code: req.Code, Active: true}
	if err := s.orgRepo.CreateMachine(ctx, machine); err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}
	return machine, nil
}

func (s *orgService) UpdateMachine(ctx context.Context, id string, req UpdateMachineRequest) (*model.Machine, error) {
	machineID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid machine id: %w", err)
	}

	machine, err := s.orgRepo.FindMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("machine not found: %w", err)
	}

	if req.Name != nil {
		machine.Name = *req.Name
	}
	if req.Active != nil {
		machine.Active = *req.Active
	}

	if err := s.orgRepo.UpdateMachine(ctx, machine); err != nil {
		return nil, fmt.Errorf("failed to update machine: %w", err)
	}
	return machine, nil
}

func (s *orgService) DeleteMachine(ctx context.Context, id string) error {
	machineID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid machine id: %w", err)
	}
	return s.orgRepo.DeleteMachine(ctx, machineID)
}

func (s *orgService) ListMachines(ctx context.Context) ([]model.Machine, error) {
	return s.orgRepo.ListMachines(ctx)
}
