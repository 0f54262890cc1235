package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrChecklistForbidden is returned when the viewer's roles carry no grant for
// the submission's author role.
var ErrChecklistForbidden = errors.New("access denied: no checklist permission over this role")

// --- DTOs ---

type ChecklistItemRequest struct {
	Text      string `json:"text" binding:"required"`
	MaxScore  string `json:"max_score"`
	SortOrder int    `json:"sort_order"`
}

type CreateTemplateRequest struct {
	Name         string                 `json:"name" binding:"required"`
	TargetRoleID string                 `json:"target_role_id" binding:"required"`
	Items        []ChecklistItemRequest `json:"items" binding:"required,min=1"`
}

type SubmitChecklistRequest struct {
	TemplateID string                   `json:"template_id" binding:"required"`
	Answers    []SubmissionAnswerInput  `json:"answers" binding:"required"`
}

type SubmissionAnswerInput struct {
	ItemID string `json:"item_id" binding:"required"`
	Done   bool   `json:"done"`
	Note   string `json:"note"`
}

type ScoreChecklistRequest struct {
	Scores []ItemScoreInput `json:"scores" binding:"required,min=1"`
	Note   string           `json:"note"`
}

type ItemScoreInput struct {
	ItemID string `json:"item_id" binding:"required"`
	Score  string `json:"score" binding:"required"` // decimal string
}

type SubmissionResponse struct {
	ID           string  `json:"id"`
	TemplateName string  `json:"template_name"`
	AuthorName   string  `json:"author_name"`
	AuthorRoleID string  `json:"author_role_id"`
	Status       string  `json:"status"`
	TotalScore   *string `json:"total_score"`
	ReviewNote   string  `json:"review_note,omitempty"`
	CanScore     bool    `json:"can_score"`
	CanApprove   bool    `json:"can_approve"`
	CreatedAt    string  `json:"created_at"`
}

// ChecklistService manages templates and drives the submission review flow.
// Every read or mutation of a submission is gated by the viewer's cross-role
// checklist grant over the submission's author role.
type ChecklistService interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest, actorID *uuid.UUID) (*model.ChecklistTemplate, error)
	ListTemplates(ctx context.Context) ([]model.ChecklistTemplate, error)
	ListTemplatesForUser(ctx context.Context, user *model.User) ([]model.ChecklistTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	Submit(ctx context.Context, author *model.User, req SubmitChecklistRequest) (*SubmissionResponse, error)
	GetSubmission(ctx context.Context, viewer *model.User, id string) (*SubmissionResponse, error)
	ListSubmissions(ctx context.Context, viewer *model.User, status string, page, limit int) ([]SubmissionResponse, int64, error)
	Score(ctx context.Context, viewer *model.User, id string, req ScoreChecklistRequest) (*SubmissionResponse, error)
	Approve(ctx context.Context, viewer *model.User, id string) (*SubmissionResponse, error)
	Reject(ctx context.Context, viewer *model.User, id string, note string) (*SubmissionResponse, error)
}

type checklistService struct {
	checklistRepo repository.ChecklistRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	notifier      interface{ BroadcastEvent(event string, payload interface{}) }
}

func NewChecklistService(checklistRepo repository.ChecklistRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, notifier interface{ BroadcastEvent(event string, payload interface{}) }) ChecklistService {
	return &checklistService{checklistRepo: checklistRepo, auditRepo: auditRepo, txManager: txManager, notifier: notifier}
}

func (s *checklistService) CreateTemplate(ctx context.Context, req CreateTemplateRequest, actorID *uuid.UUID) (*model.ChecklistTemplate, error) {
	targetRoleID, err := uuid.Parse(req.TargetRoleID)
	if err != nil {
		return nil, fmt.Errorf("invalid target role id: %w", err)
	}

	tmpl := &model.ChecklistTemplate{
		Name:         req.Name,
		TargetRoleID: targetRoleID,
		Active:       true,
	}
	for _, item := range req.Items {
		maxScore := decimal.NewFromInt(10)
		if item.MaxScore != "" {
			parsed, parseErr := decimal.NewFromString(item.MaxScore)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid max score '%s': %w", item.MaxScore, parseErr)
			}
			maxScore = parsed
		}
		tmpl.Items = append(tmpl.Items, model.ChecklistItem{
			Text:      item.Text,
			MaxScore:  maxScore,
			SortOrder: item.SortOrder,
		})
	}

	if err := s.checklistRepo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

func (s *checklistService) ListTemplates(ctx context.Context) ([]model.ChecklistTemplate, error) {
	return s.checklistRepo.ListTemplates(ctx)
}

// ListTemplatesForUser returns the active templates targeting any of the
// user's roles — the checklists the user is expected to fill in.
func (s *checklistService) ListTemplatesForUser(ctx context.Context, user *model.User) ([]model.ChecklistTemplate, error) {
	var out []model.ChecklistTemplate
	seen := make(map[uuid.UUID]bool)
	for _, r := range user.Roles {
		ts, err := s.checklistRepo.ListTemplatesForRole(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
		for _, t := range ts {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (s *checklistService) DeleteTemplate(ctx context.Context, id string) error {
	tmplID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}
	return s.checklistRepo.DeleteTemplate(ctx, tmplID)
}

// Submit creates a submission snapshotting the author's matching role. The
// author must hold the template's target role.
func (s *checklistService) Submit(ctx context.Context, author *model.User, req SubmitChecklistRequest) (*SubmissionResponse, error) {
	tmplID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("invalid template id: %w", err)
	}

	tmpl, err := s.checklistRepo.FindTemplate(ctx, tmplID)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	holds := false
	for _, r := range author.Roles {
		if r.ID == tmpl.TargetRoleID {
			holds = true
			break
		}
	}
	if !holds {
		return nil, fmt.Errorf("checklist '%s' is not assigned to your role", tmpl.Name)
	}

	sub := &model.ChecklistSubmission{
		TemplateID:   tmpl.ID,
		AuthorID:     author.ID,
		AuthorRoleID: tmpl.TargetRoleID,
		Status:       model.SubmissionStatusSubmitted,
	}
	for _, a := range req.Answers {
		itemID, parseErr := uuid.Parse(a.ItemID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid item id '%s': %w", a.ItemID, parseErr)
		}
		sub.Answers = append(sub.Answers, model.SubmissionAnswer{
			ItemID: itemID,
			Done:   a.Done,
			Note:   a.Note,
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checklistRepo.CreateSubmission(txCtx, sub); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{"template": tmpl.Name})
		authorID := author.ID
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     &authorID,
			Action:     model.ActionSubmitChecklist,
			EntityID:   sub.ID.String(),
			EntityName: tmpl.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BroadcastEvent("checklist.submitted", map[string]interface{}{
			"submission_id": sub.ID.String(),
			"template":      tmpl.Name,
		})
	}

	return s.GetSubmission(ctx, author, sub.ID.String())
}

func (s *checklistService) GetSubmission(ctx context.Context, viewer *model.User, id string) (*SubmissionResponse, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	sub, err := s.checklistRepo.FindSubmission(ctx, subID)
	if err != nil {
		return nil, fmt.Errorf("submission not found: %w", err)
	}

	d := s.decisionFor(viewer, sub)
	if !d.CanView {
		return nil, ErrChecklistForbidden
	}
	return toSubmissionResponse(sub, d), nil
}

func (s *checklistService) ListSubmissions(ctx context.Context, viewer *model.User, status string, page, limit int) ([]SubmissionResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	subs, total, err := s.checklistRepo.ListSubmissions(ctx, repository.SubmissionFilter{
		Status: status,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	// Visibility is per-submission: entries the viewer has no grant over are
	// dropped from the page rather than failing the whole request.
	res := make([]SubmissionResponse, 0, len(subs))
	for i := range subs {
		d := s.decisionFor(viewer, &subs[i])
		if !d.CanView {
			continue
		}
		res = append(res, *toSubmissionResponse(&subs[i], d))
	}
	return res, total, nil
}

func (s *checklistService) Score(ctx context.Context, viewer *model.User, id string, req ScoreChecklistRequest) (*SubmissionResponse, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sub, findErr := s.checklistRepo.FindSubmission(txCtx, subID)
		if findErr != nil {
			return fmt.Errorf("submission not found: %w", findErr)
		}

		d := s.decisionFor(viewer, sub)
		if !d.CanScore {
			return ErrChecklistForbidden
		}
		if sub.Status != model.SubmissionStatusSubmitted {
			return fmt.Errorf("submission is already %s", sub.Status)
		}

		maxByItem := make(map[uuid.UUID]decimal.Decimal)
		if sub.Template != nil {
			for _, item := range sub.Template.Items {
				maxByItem[item.ID] = item.MaxScore
			}
		}

		total := decimal.Zero
		scoreByItem := make(map[uuid.UUID]decimal.Decimal, len(req.Scores))
		for _, in := range req.Scores {
			itemID, parseErr := uuid.Parse(in.ItemID)
			if parseErr != nil {
				return fmt.Errorf("invalid item id '%s': %w", in.ItemID, parseErr)
			}
			score, parseErr := decimal.NewFromString(in.Score)
			if parseErr != nil {
				return fmt.Errorf("invalid score '%s': %w", in.Score, parseErr)
			}
			if max, ok := maxByItem[itemID]; ok && score.GreaterThan(max) {
				return fmt.Errorf("score %s exceeds max %s", score, max)
			}
			if score.IsNegative() {
				return fmt.Errorf("score cannot be negative")
			}
			scoreByItem[itemID] = score
			total = total.Add(score)
		}

		for i := range sub.Answers {
			if score, ok := scoreByItem[sub.Answers[i].ItemID]; ok {
				sc := score
				sub.Answers[i].Score = &sc
			}
		}

		now := time.Now()
		viewerID := viewer.ID
		sub.Status = model.SubmissionStatusScored
		sub.TotalScore = &total
		sub.ScoredBy = &viewerID
		sub.ScoredAt = &now
		if req.Note != "" {
			sub.ReviewNote = req.Note
		}

		if err := s.checklistRepo.UpdateSubmission(txCtx, sub); err != nil {
			return fmt.Errorf("failed to save scores: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"total": total.StringFixed(2)})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:   &viewerID,
			Action:   model.ActionScoreChecklist,
			EntityID: sub.ID.String(),
			Details:  string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSubmission(ctx, viewer, id)
}

func (s *checklistService) Approve(ctx context.Context, viewer *model.User, id string) (*SubmissionResponse, error) {
	return s.review(ctx, viewer, id, model.SubmissionStatusApproved, model.ActionApproveChecklist, "")
}

func (s *checklistService) Reject(ctx context.Context, viewer *model.User, id string, note string) (*SubmissionResponse, error) {
	return s.review(ctx, viewer, id, model.SubmissionStatusRejected, model.ActionRejectChecklist, note)
}

func (s *checklistService) review(ctx context.Context, viewer *model.User, id, to, action, note string) (*SubmissionResponse, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sub, findErr := s.checklistRepo.FindSubmission(txCtx, subID)
		if findErr != nil {
			return fmt.Errorf("submission not found: %w", findErr)
		}

		d := s.decisionFor(viewer, sub)
		if !d.CanApprove {
			return ErrChecklistForbidden
		}
		if sub.Status != model.SubmissionStatusScored {
			return fmt.Errorf("submission is %s, only scored submissions can be reviewed", sub.Status)
		}

		now := time.Now()
		viewerID := viewer.ID
		sub.Status = to
		sub.ApprovedBy = &viewerID
		sub.ApprovedAt = &now
		if note != "" {
			sub.ReviewNote = note
		}

		if err := s.checklistRepo.UpdateSubmission(txCtx, sub); err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"status": to, "note": note})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:   &viewerID,
			Action:   action,
			EntityID: sub.ID.String(),
			Details:  string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetSubmission(ctx, viewer, id)
}

// decisionFor applies the cross-role grant, with the author always allowed to
// see (not score or approve) their own submission.
func (s *checklistService) decisionFor(viewer *model.User, sub *model.ChecklistSubmission) access.ChecklistDecision {
	d := access.ResolveChecklist(viewer.Roles, sub.AuthorRoleID)
	if viewer.ID == sub.AuthorID {
		d.CanView = true
	}
	return d
}

func toSubmissionResponse(sub *model.ChecklistSubmission, d access.ChecklistDecision) *SubmissionResponse {
	resp := &SubmissionResponse{
		ID:           sub.ID.String(),
		AuthorRoleID: sub.AuthorRoleID.String(),
		Status:       sub.Status,
		ReviewNote:   sub.ReviewNote,
		CanScore:     d.CanScore,
		CanApprove:   d.CanApprove,
		CreatedAt:    sub.CreatedAt.Format(time.RFC3339),
	}
	if sub.Template != nil {
		resp.TemplateName = sub.Template.Name
	}
	if sub.Author != nil {
		resp.AuthorName = sub.Author.Username
	}
	if sub.TotalScore != nil {
		total := sub.TotalScore.StringFixed(2)
		resp.TotalScore = &total
	}
	return resp
}
