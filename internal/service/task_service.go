package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

// taskTransitions is the full control-flow graph. Anything not listed is
// rejected with an "already/cannot" error.
var taskTransitions = map[string][]string{
	model.TaskStatusCreated:        {model.TaskStatusInProgress},
	model.TaskStatusInProgress:     {model.TaskStatusCompleted},
	model.TaskStatusCompleted:      {model.TaskStatusControlPending},
	model.TaskStatusControlPending: {model.TaskStatusApproved, model.TaskStatusRejected, model.TaskStatusReturned},
	model.TaskStatusReturned:       {model.TaskStatusInProgress},
}

// CanTransitionTask reports whether a task may move from one status to another.
func CanTransitionTask(from, to string) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// --- DTOs ---

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	MachineID   string `json:"machine_id"`
}

type TaskControlRequest struct {
	Note string `json:"note"`
}

type TaskListFilter struct {
	Status     string
	AssignedTo string
	MachineID  string
	Page       int
	Limit      int
}

type TaskResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	AssigneeName string  `json:"assignee_name,omitempty"`
	MachineName  string  `json:"machine_name,omitempty"`
	ControlNote  string  `json:"control_note,omitempty"`
	StartedAt    *string `json:"started_at"`
	CompletedAt  *string `json:"completed_at"`
	ControlledAt *string `json:"controlled_at"`
	CreatedAt    string  `json:"created_at"`
}

// TaskService drives the task control flow: create → start → complete →
// control-pending → approve/reject/return.
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest, actorID *uuid.UUID) (*TaskResponse, error)
	GetTask(ctx context.Context, id string) (*TaskResponse, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskResponse, int64, error)
	StartTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error)
	CompleteTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error)
	SendToControl(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error)
	ApproveTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error)
	RejectTask(ctx context.Context, id string, note string, actorID *uuid.UUID) (*TaskResponse, error)
	ReturnTask(ctx context.Context, id string, note string, actorID *uuid.UUID) (*TaskResponse, error)
}

type taskService struct {
	taskRepo  repository.TaskRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  interface{ BroadcastEvent(event string, payload interface{}) } // optional websocket hub
}

func NewTaskService(taskRepo repository.TaskRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager, notifier interface{ BroadcastEvent(event string, payload interface{}) }) TaskService {
	return &taskService{taskRepo: taskRepo, auditRepo: auditRepo, txManager: txManager, notifier: notifier}
}

func toTaskResponse(t *model.Task) *TaskResponse {
	resp := &TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		ControlNote: t.ControlNote,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.Username
	}
	if t.Machine != nil {
		resp.MachineName = t.Machine.Name
	}
	if t.StartedAt != nil {
		s := t.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &s
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	if t.ControlledAt != nil {
		s := t.ControlledAt.Format(time.RFC3339)
		resp.ControlledAt = &s
	}
	return resp
}

func (s *taskService) CreateTask(ctx context.Context, req CreateTaskRequest, actorID *uuid.UUID) (*TaskResponse, error) {
	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatusCreated,
		CreatedBy:   actorID,
	}
	if req.AssignedTo != "" {
		id, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		task.AssignedTo = &id
	}
	if req.MachineID != "" {
		id, err := uuid.Parse(req.MachineID)
		if err != nil {
			return nil, fmt.Errorf("invalid machine id: %w", err)
		}
		task.MachineID = &id
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.taskRepo.Create(txCtx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{"title": req.Title})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionCreateTask,
			EntityID:   task.ID.String(),
			EntityName: req.Title,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(task)
	return s.GetTask(ctx, task.ID.String())
}

func (s *taskService) GetTask(ctx context.Context, id string) (*TaskResponse, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	return toTaskResponse(task), nil
}

func (s *taskService) ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.TaskFilter{
		Status: filter.Status,
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	}
	if filter.AssignedTo != "" {
		id, err := uuid.Parse(filter.AssignedTo)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid assignee id: %w", err)
		}
		repoFilter.AssignedTo = &id
	}
	if filter.MachineID != "" {
		id, err := uuid.Parse(filter.MachineID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid machine id: %w", err)
		}
		repoFilter.MachineID = &id
	}

	tasks, total, err := s.taskRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	res := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		res = append(res, *toTaskResponse(&tasks[i]))
	}
	return res, total, nil
}

func (s *taskService) StartTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusInProgress, model.ActionStartTask, "", actorID, func(t *model.Task) {
		now := time.Now()
		t.StartedAt = &now
	})
}

func (s *taskService) CompleteTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusCompleted, model.ActionCompleteTask, "", actorID, func(t *model.Task) {
		now := time.Now()
		t.CompletedAt = &now
	})
}

func (s *taskService) SendToControl(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusControlPending, model.ActionSendTaskControl, "", actorID, nil)
}

func (s *taskService) ApproveTask(ctx context.Context, id string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusApproved, model.ActionApproveTask, "", actorID, controlStamp(actorID))
}

func (s *taskService) RejectTask(ctx context.Context, id string, note string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusRejected, model.ActionRejectTask, note, actorID, controlStamp(actorID))
}

func (s *taskService) ReturnTask(ctx context.Context, id string, note string, actorID *uuid.UUID) (*TaskResponse, error) {
	return s.transition(ctx, id, model.TaskStatusReturned, model.ActionReturnTask, note, actorID, controlStamp(actorID))
}

func controlStamp(actorID *uuid.UUID) func(*model.Task) {
	return func(t *model.Task) {
		now := time.Now()
		t.ControlledBy = actorID
		t.ControlledAt = &now
	}
}

func (s *taskService) transition(ctx context.Context, id, to, action, note string, actorID *uuid.UUID, mutate func(*model.Task)) (*TaskResponse, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}

	var task *model.Task
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		task, err = s.taskRepo.FindByID(txCtx, taskID)
		if err != nil {
			return fmt.Errorf("task not found: %w", err)
		}

		if !CanTransitionTask(task.Status, to) {
			return fmt.Errorf("task is %s, cannot move to %s", task.Status, to)
		}

		task.Status = to
		if note != "" {
			task.ControlNote = note
		}
		if mutate != nil {
			mutate(task)
		}

		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"status": to, "note": note})
		return s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     actorID,
			Action:     action,
			EntityID:   task.ID.String(),
			EntityName: task.Title,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(task)
	return s.GetTask(ctx, id)
}

func (s *taskService) broadcast(task *model.Task) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastEvent("task.updated", map[string]interface{}{
		"task_id": task.ID.String(),
		"title":   task.Title,
		"status":  task.Status,
	})
}
