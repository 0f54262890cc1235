package repository

import (
	"context"
	"time"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QualityFilter struct {
	MachineID  *uuid.UUID
	ReviewerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

type QualityRepository interface {
	Create(ctx context.Context, review *model.QualityReview) error
	Update(ctx context.Context, review *model.QualityReview) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.QualityReview, error)
	List(ctx context.Context, filter QualityFilter) ([]model.QualityReview, int64, error)
	AverageScoreForMachine(ctx context.Context, machineID uuid.UUID, from, to time.Time) (float64, int64, error)
}

type qualityRepository struct {
	db *gorm.DB
}

func NewQualityRepository(db *gorm.DB) QualityRepository {
	return &qualityRepository{db: db}
}

func (r *qualityRepository) Create(ctx context.Context, review *model.QualityReview) error {
	return GetDB(ctx, r.db).Create(review).Error
}

func (r *qualityRepository) Update(ctx context.Context, review *model.QualityReview) error {
	return GetDB(ctx, r.db).Save(review).Error
}

func (r *qualityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.QualityReview{}).Error
}

func (r *qualityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.QualityReview, error) {
	var review model.QualityReview
	err := GetDB(ctx, r.db).
		Preload("Machine").
		Preload("Reviewer").
		First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *qualityRepository) List(ctx context.Context, filter QualityFilter) ([]model.QualityReview, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.QualityReview{})
	if filter.MachineID != nil {
		query = query.Where("machine_id = ?", *filter.MachineID)
	}
	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.QualityReview
	if err := query.
		Preload("Machine").
		Preload("Reviewer").
		Order("created_at desc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *qualityRepository) AverageScoreForMachine(ctx context.Context, machineID uuid.UUID, from, to time.Time) (float64, int64, error) {
	var result struct {
		Avg   *float64
		Count int64
	}
	err := GetDB(ctx, r.db).
		Model(&model.QualityReview{}).
		Select("AVG(score) as avg, COUNT(*) as count").
		Where("machine_id = ? AND created_at >= ? AND created_at <= ?", machineID, from, to).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	if result.Avg == nil {
		return 0, 0, nil
	}
	return *result.Avg, result.Count, nil
}
