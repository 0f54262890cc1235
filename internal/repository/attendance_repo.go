package repository

import (
	"context"
	"time"

	"fabrikaops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AttendanceRecord, error)
	ListForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error)
	List(ctx context.Context, from, to time.Time, offset, limit int) ([]model.AttendanceRecord, int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return GetDB(ctx, r.db).Create(rec).Error
}

func (r *attendanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AttendanceRecord{}).Error
}

func (r *attendanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	if err := GetDB(ctx, r.db).Preload("User").First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) ListForUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.AttendanceRecord, error) {
	var recs []model.AttendanceRecord
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date asc").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *attendanceRepository) List(ctx context.Context, from, to time.Time, offset, limit int) ([]model.AttendanceRecord, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.AttendanceRecord{}).Where("date >= ? AND date <= ?", from, to)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []model.AttendanceRecord
	if err := query.Preload("User").Order("date desc").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
