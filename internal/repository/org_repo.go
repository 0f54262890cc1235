package repository

import (
	"context"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrgRepository interface {
	CreateDepartment(ctx context.Context, dept *model.Department) error
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
	ListDepartments(ctx context.Context) ([]model.Department, error)

	CreateMachine(ctx context.Context, machine *model.Machine) error
	UpdateMachine(ctx context.Context, machine *model.Machine) error
	DeleteMachine(ctx context.Context, id uuid.UUID) error
	FindMachine(ctx context.Context, id uuid.UUID) (*model.Machine, error)
	ListMachines(ctx context.Context) ([]model.Machine, error)
}

type orgRepository struct {
	db *gorm.DB
}

func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

func (r *orgRepository) CreateDepartment(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Create(dept).Error
}

func (r *orgRepository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Department{}).Error
}

func (r *orgRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	if err := GetDB(ctx, r.db).Order("name asc").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *orgRepository) CreateMachine(ctx context.Context, machine *model.Machine) error {
	return GetDB(ctx, r.db).Create(machine).Error
}

func (r *orgRepository) UpdateMachine(ctx context.Context, machine *model.Machine) error {
	return GetDB(ctx, r.db).Save(machine).Error
}

func (r *orgRepository) DeleteMachine(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Machine{}).Error
}

func (r *orgRepository) FindMachine(ctx context.Context, id uuid.UUID) (*model.Machine, error) {
	var machine model.Machine
	if err := GetDB(ctx, r.db).First(&machine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *orgRepository) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := GetDB(ctx, r.db).Order("code asc").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}
