package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type AttendanceEntryRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Date   string `json:"date" binding:"required"` // YYYY-MM-DD
	Amount string `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

type AttendanceRecordResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	RecordType string `json:"record_type"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	Points     string `json:"points"`
	Note       string `json:"note,omitempty"`
}

type AttendanceReport struct {
	UserID        string                     `json:"user_id"`
	From          string                     `json:"from"`
	To            string                     `json:"to"`
	OvertimeHours string                     `json:"overtime_hours"`
	AbsenceDays   string                     `json:"absence_days"`
	TotalPoints   string                     `json:"total_points"`
	Records       []AttendanceRecordResponse `json:"records"`
}

// OvertimePoints converts worked overtime hours into score points at the
// configured rate.
func OvertimePoints(hours, pointsPerHour decimal.Decimal) decimal.Decimal {
	return hours.Mul(pointsPerHour)
}

// AbsencePoints converts absent days into a negative point delta. The rate is
// configured as a positive magnitude; the sign is applied here.
func AbsencePoints(days, pointsPerDay decimal.Decimal) decimal.Decimal {
	return days.Mul(pointsPerDay).Neg()
}

// AttendanceService records mesai (overtime) and devamsızlık (absence) entries
// and builds per-user score reports. Points are priced at entry time from the
// current HR rates.
type AttendanceService interface {
	RecordOvertime(ctx context.Context, req AttendanceEntryRequest, actorID *uuid.UUID) (*AttendanceRecordResponse, error)
	RecordAbsence(ctx context.Context, req AttendanceEntryRequest, actorID *uuid.UUID) (*AttendanceRecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context, from, to string, page, limit int) ([]AttendanceRecordResponse, int64, error)
	UserReport(ctx context.Context, userID, from, to string) (*AttendanceReport, error)
}

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	settingsRepo   repository.SettingsRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewAttendanceService(attendanceRepo repository.AttendanceRepository, settingsRepo repository.SettingsRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		settingsRepo:   settingsRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

func (s *attendanceService) RecordOvertime(ctx context.Context, req AttendanceEntryRequest, actorID *uuid.UUID) (*AttendanceRecordResponse, error) {
	return s.record(ctx, req, actorID, model.AttendanceTypeOvertime)
}

func (s *attendanceService) RecordAbsence(ctx context.Context, req AttendanceEntryRequest, actorID *uuid.UUID) (*AttendanceRecordResponse, error) {
	return s.record(ctx, req, actorID, model.AttendanceTypeAbsence)
}

func (s *attendanceService) record(ctx context.Context, req AttendanceEntryRequest, actorID *uuid.UUID, recordType string) (*AttendanceRecordResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date '%s', expected YYYY-MM-DD: %w", req.Date, err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s': %w", req.Amount, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	settings, err := s.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load HR rates: %w", err)
	}

	var points decimal.Decimal
	var action string
	switch recordType {
	case model.AttendanceTypeOvertime:
		points = OvertimePoints(amount, settings.OvertimePointsPerHour)
		action = model.ActionRecordOvertime
	default:
		points = AbsencePoints(amount, settings.AbsencePointsPerDay)
		action = model.ActionRecordAbsence
	}

	rec := &model.AttendanceRecord{
		UserID:     userID,
		RecordType: recordType,
		Date:       date,
		Amount:     amount,
		Points:     points,
		Note:       req.Note,
		EnteredBy:  actorID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.attendanceRepo.Create(txCtx, rec); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"user_id": userID.String(),
			"date":    req.Date,
			"amount":  amount.String(),
			"points":  points.String(),
		})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:   actorID,
			Action:   action,
			EntityID: rec.ID.String(),
			Details:  string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return toAttendanceResponse(rec), nil
}

func (s *attendanceService) DeleteRecord(ctx context.Context, id string) error {
	recID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid record id: %w", err)
	}
	return s.attendanceRepo.Delete(ctx, recID)
}

func (s *attendanceService) ListRecords(ctx context.Context, from, to string, page, limit int) ([]AttendanceRecordResponse, int64, error) {
	fromT, toT, err := parseDateRange(from, to)
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	recs, total, err := s.attendanceRepo.List(ctx, fromT, toT, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch records: %w", err)
	}

	res := make([]AttendanceRecordResponse, 0, len(recs))
	for i := range recs {
		res = append(res, *toAttendanceResponse(&recs[i]))
	}
	return res, total, nil
}

func (s *attendanceService) UserReport(ctx context.Context, userID, from, to string) (*AttendanceReport, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	fromT, toT, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}

	recs, err := s.attendanceRepo.ListForUser(ctx, uid, fromT, toT)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	report := &AttendanceReport{
		UserID: uid.String(),
		From:   fromT.Format("2006-01-02"),
		To:     toT.Format("2006-01-02"),
	}
	overtime, absence, total := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range recs {
		rec := &recs[i]
		switch rec.RecordType {
		case model.AttendanceTypeOvertime:
			overtime = overtime.Add(rec.Amount)
		case model.AttendanceTypeAbsence:
			absence = absence.Add(rec.Amount)
		}
		total = total.Add(rec.Points)
		report.Records = append(report.Records, *toAttendanceResponse(rec))
	}
	report.OvertimeHours = overtime.StringFixed(2)
	report.AbsenceDays = absence.StringFixed(2)
	report.TotalPoints = total.StringFixed(2)
	return report, nil
}

// parseDateRange defaults to the current month when both bounds are empty.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	now := time.Now()
	fromT := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	toT := fromT.AddDate(0, 1, -1)

	var err error
	if from != "" {
		fromT, err = time.Parse("2006-01-02", from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date '%s': %w", from, err)
		}
	}
	if to != "" {
		toT, err = time.Parse("2006-01-02", to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date '%s': %w", to, err)
		}
	}
	if toT.Before(fromT) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date is before from date")
	}
	return fromT, toT, nil
}

func toAttendanceResponse(rec *model.AttendanceRecord) *AttendanceRecordResponse {
	resp := &AttendanceRecordResponse{
		ID:         rec.ID.String(),
		UserID:     rec.UserID.String(),
		RecordType: rec.RecordType,
		Date:       rec.Date.Format("2006-01-02"),
		Amount:     rec.Amount.StringFixed(2),
		Points:     rec.Points.StringFixed(2),
		Note:       rec.Note,
	}
	if rec.User != nil {
		resp.Username = rec.User.Username
	}
	return resp
}
