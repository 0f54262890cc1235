package repository

import (
	"context"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionFilter struct {
	TemplateID   *uuid.UUID
	AuthorRoleID *uuid.UUID
	Status       string
	Offset       int
	Limit        int
}

type ChecklistRepository interface {
	CreateTemplate(ctx context.Context, t *model.ChecklistTemplate) error
	UpdateTemplate(ctx context.Context, t *model.ChecklistTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	FindTemplate(ctx context.Context, id uuid.UUID) (*model.ChecklistTemplate, error)
	ListTemplates(ctx context.Context) ([]model.ChecklistTemplate, error)
	ListTemplatesForRole(ctx context.Context, roleID uuid.UUID) ([]model.ChecklistTemplate, error)

	CreateSubmission(ctx context.Context, s *model.ChecklistSubmission) error
	UpdateSubmission(ctx context.Context, s *model.ChecklistSubmission) error
	FindSubmission(ctx context.Context, id uuid.UUID) (*model.ChecklistSubmission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.ChecklistSubmission, int64, error)
}

type checklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) CreateTemplate(ctx context.Context, t *model.ChecklistTemplate) error {
	return GetDB(ctx, r.db).Create(t).Error
}

func (r *checklistRepository) UpdateTemplate(ctx context.Context, t *model.ChecklistTemplate) error {
	return GetDB(ctx, r.db).Session(&gorm.Session{FullSaveAssociations: true}).Save(t).Error
}

func (r *checklistRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ChecklistTemplate{}).Error
}

func (r *checklistRepository) FindTemplate(ctx context.Context, id uuid.UUID) (*model.ChecklistTemplate, error) {
	var t model.ChecklistTemplate
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *checklistRepository) ListTemplates(ctx context.Context) ([]model.ChecklistTemplate, error) {
	var ts []model.ChecklistTemplate
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Order("name asc").Find(&ts).Error
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *checklistRepository) ListTemplatesForRole(ctx context.Context, roleID uuid.UUID) ([]model.ChecklistTemplate, error) {
	var ts []model.ChecklistTemplate
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Where("target_role_id = ? AND active = ?", roleID, true).
		Order("name asc").Find(&ts).Error
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *checklistRepository) CreateSubmission(ctx context.Context, s *model.ChecklistSubmission) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *checklistRepository) UpdateSubmission(ctx context.Context, s *model.ChecklistSubmission) error {
	return GetDB(ctx, r.db).Session(&gorm.Session{FullSaveAssociations: true}).Save(s).Error
}

func (r *checklistRepository) FindSubmission(ctx context.Context, id uuid.UUID) (*model.ChecklistSubmission, error) {
	var s model.ChecklistSubmission
	err := GetDB(ctx, r.db).
		Preload("Template.Items").
		Preload("Author").
		Preload("Scorer").
		Preload("Approver").
		Preload("Answers").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *checklistRepository) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.ChecklistSubmission, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.ChecklistSubmission{})
	if filter.TemplateID != nil {
		query = query.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.AuthorRoleID != nil {
		query = query.Where("author_role_id = ?", *filter.AuthorRoleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []model.ChecklistSubmission
	if err := query.
		Preload("Template").
		Preload("Author").
		Order("created_at desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}
