package repository

import (
	"context"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModuleRepository interface {
	Create(ctx context.Context, mod *model.AppModule) error
	Update(ctx context.Context, mod *model.AppModule) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AppModule, error)
	FindByName(ctx context.Context, name string) (*model.AppModule, error)
	ListAll(ctx context.Context) ([]model.AppModule, error)
	ListActive(ctx context.Context) ([]model.AppModule, error)
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) Create(ctx context.Context, mod *model.AppModule) error {
	return GetDB(ctx, r.db).Create(mod).Error
}

func (r *moduleRepository) Update(ctx context.Context, mod *model.AppModule) error {
	return GetDB(ctx, r.db).Save(mod).Error
}

func (r *moduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AppModule{}).Error
}

func (r *moduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AppModule, error) {
	var mod model.AppModule
	if err := GetDB(ctx, r.db).First(&mod, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *moduleRepository) FindByName(ctx context.Context, name string) (*model.AppModule, error) {
	var mod model.AppModule
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&mod).Error; err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *moduleRepository) ListAll(ctx context.Context) ([]model.AppModule, error) {
	var mods []model.AppModule
	if err := GetDB(ctx, r.db).Order("name asc").Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}

func (r *moduleRepository) ListActive(ctx context.Context) ([]model.AppModule, error) {
	var mods []model.AppModule
	if err := GetDB(ctx, r.db).Where("active = ?", true).Order("name asc").Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}
