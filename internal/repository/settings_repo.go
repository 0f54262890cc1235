package repository

import (
	"context"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	// GetOrCreate returns the singleton settings row, creating it on first
	// access. The uniqueIndex on scope makes concurrent creation safe.
	GetOrCreate(ctx context.Context) (*model.HRSettings, error)
	Update(ctx context.Context, s *model.HRSettings) error
	ReplaceRoleCapabilities(ctx context.Context, settingsID uuid.UUID, caps []model.RoleCapability) error
	ReplaceAccessOverrides(ctx context.Context, settingsID uuid.UUID, overrides []model.AccessOverride) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetOrCreate(ctx context.Context) (*model.HRSettings, error) {
	db := GetDB(ctx, r.db)

	var s model.HRSettings
	err := db.Where(model.HRSettings{Scope: "global"}).FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	if err := db.Preload("RoleCapabilities").Preload("AccessOverrides").First(&s, "id = ?", s.ID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *model.HRSettings) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *settingsRepository) ReplaceRoleCapabilities(ctx context.Context, settingsID uuid.UUID, caps []model.RoleCapability) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("settings_id = ?", settingsID).Delete(&model.RoleCapability{}).Error; err != nil {
			return err
		}
		for i := range caps {
			caps[i].SettingsID = settingsID
			if caps[i].AllowedRolesToCreate == "" {
				caps[i].AllowedRolesToCreate = "[]"
			}
			if caps[i].AllowedRolesToDelete == "" {
				caps[i].AllowedRolesToDelete = "[]"
			}
			if err := tx.Create(&caps[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *settingsRepository) ReplaceAccessOverrides(ctx context.Context, settingsID uuid.UUID, overrides []model.AccessOverride) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("settings_id = ?", settingsID).Delete(&model.AccessOverride{}).Error; err != nil {
			return err
		}
		for i := range overrides {
			overrides[i].SettingsID = settingsID
			if err := tx.Create(&overrides[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
