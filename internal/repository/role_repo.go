package repository

import (
	"context"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	ReplaceModuleGrants(ctx context.Context, roleID uuid.UUID, grants []model.ModuleGrant) error
	ReplaceNamedGrants(ctx context.Context, roleID uuid.UUID, grants []model.NamedModuleGrant) error
	ReplaceChecklistGrants(ctx context.Context, roleID uuid.UUID, grants []model.ChecklistGrant) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

// Delete hard-deletes the role. The role's own grant rows cascade; other
// roles' checklist grants targeting it are left dangling on purpose.
func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Role{}).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	err := GetDB(ctx, r.db).
		Preload("ModuleGrants").
		Preload("NamedGrants").
		Preload("ChecklistGrants").
		First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := GetDB(ctx, r.db).
		Preload("ModuleGrants").
		Preload("NamedGrants").
		Preload("ChecklistGrants").
		Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).
		Preload("ModuleGrants").
		Preload("NamedGrants").
		Preload("ChecklistGrants").
		Order("name asc").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&model.Role{}).Order("name asc").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// The grant arrays are replaced wholesale inside one transaction: concurrent
// editors of the same role are last-write-wins, as in the system this ports.

func (r *roleRepository) ReplaceModuleGrants(ctx context.Context, roleID uuid.UUID, grants []model.ModuleGrant) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.ModuleGrant{}).Error; err != nil {
			return err
		}
		for i := range grants {
			grants[i].RoleID = roleID
			if err := tx.Create(&grants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *roleRepository) ReplaceNamedGrants(ctx context.Context, roleID uuid.UUID, grants []model.NamedModuleGrant) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.NamedModuleGrant{}).Error; err != nil {
			return err
		}
		for i := range grants {
			grants[i].RoleID = roleID
			if err := tx.Create(&grants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *roleRepository) ReplaceChecklistGrants(ctx context.Context, roleID uuid.UUID, grants []model.ChecklistGrant) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.ChecklistGrant{}).Error; err != nil {
			return err
		}
		for i := range grants {
			grants[i].RoleID = roleID
			if err := tx.Create(&grants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
