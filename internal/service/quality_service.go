package service

import (
	"context"
	"fmt"
	"time"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateQualityReviewRequest struct {
	MachineID string `json:"machine_id" binding:"required"`
	Score     string `json:"score" binding:"required"`
	Notes     string `json:"notes"`
}

type QualityReviewResponse struct {
	ID           string `json:"id"`
	MachineID    string `json:"machine_id"`
	MachineName  string `json:"machine_name,omitempty"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Score        string `json:"score"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type MachineQualitySummary struct {
	MachineID    string  `json:"machine_id"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	AverageScore float64 `json:"average_score"`
	ReviewCount  int64   `json:"review_count"`
}

type QualityService interface {
	CreateReview(ctx context.Context, reviewer *model.User, req CreateQualityReviewRequest) (*QualityReviewResponse, error)
	DeleteReview(ctx context.Context, id string) error
	ListReviews(ctx context.Context, machineID string, page, limit int) ([]QualityReviewResponse, int64, error)
	MachineSummary(ctx context.Context, machineID, from, to string) (*MachineQualitySummary, error)
}

type qualityService struct {
	qualityRepo repository.QualityRepository
	orgRepo     repository.OrgRepository
}

func NewQualityService(qualityRepo repository.QualityRepository, orgRepo repository.OrgRepository) QualityService {
	return &qualityService{qualityRepo: qualityRepo, orgRepo: orgRepo}
}

func (s *qualityService) CreateReview(ctx context.Context, reviewer *model.User, req CreateQualityReviewRequest) (*QualityReviewResponse, error) {
	machineID, err := uuid.Parse(req.MachineID)
	if err != nil {
		return nil, fmt.Errorf("invalid machine id: %w", err)
	}

	machine, err := s.orgRepo.FindMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("machine not found: %w", err)
	}
	if !machine.Active {
		return nil, fmt.Errorf("machine '%s' is not active", machine.Name)
	}

	score, err := decimal.NewFromString(req.Score)
	if err != nil {
		return nil, fmt.Errorf("invalid score '%s': %w", req.Score, err)
	}
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("score must be between 0 and 100")
	}

	review := &model.QualityReview{
		MachineID:  machineID,
		ReviewerID: reviewer.ID,
		Score:      score,
		Notes:      req.Notes,
	}
	if err := s.qualityRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	review.Machine = machine
	review.Reviewer = reviewer
	return toQualityResponse(review), nil
}

func (s *qualityService) DeleteReview(ctx context.Context, id string) error {
	reviewID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid review id: %w", err)
	}
	return s.qualityRepo.Delete(ctx, reviewID)
}

func (s *qualityService) ListReviews(ctx context.Context, machineID string, page, limit int) ([]QualityReviewResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	filter := repository.QualityFilter{Offset: (page - 1) * limit, Limit: limit}
	if machineID != "" {
		id, err := uuid.Parse(machineID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid machine id: %w", err)
		}
		filter.MachineID = &id
	}

	reviews, total, err := s.qualityRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	res := make([]QualityReviewResponse, 0, len(reviews))
	for i := range reviews {
		res = append(res, *toQualityResponse(&reviews[i]))
	}
	return res, total, nil
}

func (s *qualityService) MachineSummary(ctx context.Context, machineID, from, to string) (*MachineQualitySummary, error) {
	id, err := uuid.Parse(machineID)
	if err != nil {
		return nil, fmt.Errorf("invalid machine id: %w", err)
	}
	fromT, toT, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	// Include the whole last day.
	toT = toT.Add(24*time.Hour - time.Nanosecond)

	avg, count, err := s.qualityRepo.AverageScoreForMachine(ctx, id, fromT, toT)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	return &MachineQualitySummary{
		MachineID:    id.String(),
		From:         fromT.Format("2006-01-02"),
		To:           toT.Format("2006-01-02"),
		AverageScore: avg,
		ReviewCount:  count,
	}, nil
}

func toQualityResponse(review *model.QualityReview) *QualityReviewResponse {
	resp := &QualityReviewResponse{
		ID:        review.ID.String(),
		MachineID: review.MachineID.String(),
		Score:     review.Score.StringFixed(2),
		Notes:     review.Notes,
		CreatedAt: review.CreatedAt.Format(time.RFC3339),
	}
	if review.Machine != nil {
		resp.MachineName = review.Machine.Name
	}
	if review.Reviewer != nil {
		resp.ReviewerName = review.Reviewer.Username
	}
	return resp
}
