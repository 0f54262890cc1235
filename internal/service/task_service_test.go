package service

import (
	"context"
	"strings"
	"testing"

	"fabrikaops/internal/model"
	"fabrikaops/internal/repository"

	"github.com/google/uuid"
)

func TestCanTransitionTask(t *testing.T) {
	allowed := []struct{ from, to string }{
		{model.TaskStatusCreated, model.TaskStatusInProgress},
		{model.TaskStatusInProgress, model.TaskStatusCompleted},
		{model.TaskStatusCompleted, model.TaskStatusControlPending},
		{model.TaskStatusControlPending, model.TaskStatusApproved},
		{model.TaskStatusControlPending, model.TaskStatusRejected},
		{model.TaskStatusControlPending, model.TaskStatusReturned},
		{model.TaskStatusReturned, model.TaskStatusInProgress},
	}
	for _, tr := range allowed {
		if !CanTransitionTask(tr.from, tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to string }{
		{model.TaskStatusCreated, model.TaskStatusCompleted},
		{model.TaskStatusCreated, model.TaskStatusApproved},
		{model.TaskStatusInProgress, model.TaskStatusApproved},
		{model.TaskStatusApproved, model.TaskStatusInProgress},
		{model.TaskStatusRejected, model.TaskStatusInProgress},
		{model.TaskStatusCompleted, model.TaskStatusApproved},
		{model.TaskStatusApproved, model.TaskStatusApproved},
	}
	for _, tr := range denied {
		if CanTransitionTask(tr.from, tr.to) {
			t.Errorf("%s -> %s should be denied", tr.from, tr.to)
		}
	}
}

// --- mocks, akella-style hand-written stubs ---

type taskRepoMock struct {
	tasks map[uuid.UUID]*model.Task
}

func newTaskRepoMock() *taskRepoMock {
	return &taskRepoMock{tasks: make(map[uuid.UUID]*model.Task)}
}

func (m *taskRepoMock) Create(_ context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *taskRepoMock) Update(_ context.Context, task *model.Task) error {
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *taskRepoMock) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositoryErrNotFound
}

func (m *taskRepoMock) List(_ context.Context, _ repository.TaskFilter) ([]model.Task, int64, error) {
	out := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

type auditRepoMock struct {
	entries []model.AuditLog
}

func (m *auditRepoMock) Create(_ context.Context, entry *model.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *auditRepoMock) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type notifierMock struct {
	events []string
}

func (m *notifierMock) BroadcastEvent(event string, _ interface{}) {
	m.events = append(m.events, event)
}

var repositoryErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

func TestTaskService_FullControlFlow(t *testing.T) {
	taskRepo := newTaskRepoMock()
	audit := &auditRepoMock{}
	notifier := &notifierMock{}
	svc := NewTaskService(taskRepo, audit, txManagerMock{}, notifier)

	actor := uuid.New()
	created, err := svc.CreateTask(context.Background(), CreateTaskRequest{Title: "Kalıp değişimi"}, &actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.TaskStatusCreated {
		t.Fatalf("new task should be CREATED, got %s", created.Status)
	}

	steps := []struct {
		op   func(string) (*TaskResponse, error)
		want string
	}{
		{func(id string) (*TaskResponse, error) { return svc.StartTask(context.Background(), id, &actor) }, model.TaskStatusInProgress},
		{func(id string) (*TaskResponse, error) { return svc.CompleteTask(context.Background(), id, &actor) }, model.TaskStatusCompleted},
		{func(id string) (*TaskResponse, error) { return svc.SendToControl(context.Background(), id, &actor) }, model.TaskStatusControlPending},
		{func(id string) (*TaskResponse, error) { return svc.ApproveTask(context.Background(), id, &actor) }, model.TaskStatusApproved},
	}
	for _, step := range steps {
		resp, err := step.op(created.ID)
		if err != nil {
			t.Fatalf("transition to %s: %v", step.want, err)
		}
		if resp.Status != step.want {
			t.Fatalf("expected %s, got %s", step.want, resp.Status)
		}
	}

	// One audit row per operation, one broadcast per operation.
	if len(audit.entries) != 5 {
		t.Fatalf("expected 5 audit entries, got %d", len(audit.entries))
	}
	if len(notifier.events) != 5 {
		t.Fatalf("expected 5 broadcasts, got %d", len(notifier.events))
	}
}

func TestTaskService_IllegalTransitionRejected(t *testing.T) {
	taskRepo := newTaskRepoMock()
	svc := NewTaskService(taskRepo, &auditRepoMock{}, txManagerMock{}, nil)

	actor := uuid.New()
	created, err := svc.CreateTask(context.Background(), CreateTaskRequest{Title: "Temizlik"}, &actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// CREATED -> APPROVED is not in the graph.
	if _, err := svc.ApproveTask(context.Background(), created.ID, &actor); err == nil {
		t.Fatal("approving an unstarted task must fail")
	} else if !strings.Contains(err.Error(), "cannot move") {
		t.Fatalf("unexpected error: %v", err)
	}

	// State must be untouched after the failed transition.
	got, err := svc.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.TaskStatusCreated {
		t.Fatalf("failed transition must not change status, got %s", got.Status)
	}
}

func TestTaskService_ReturnAllowsRework(t *testing.T) {
	taskRepo := newTaskRepoMock()
	svc := NewTaskService(taskRepo, &auditRepoMock{}, txManagerMock{}, nil)

	actor := uuid.New()
	created, _ := svc.CreateTask(context.Background(), CreateTaskRequest{Title: "Bakım"}, &actor)
	_, _ = svc.StartTask(context.Background(), created.ID, &actor)
	_, _ = svc.CompleteTask(context.Background(), created.ID, &actor)
	_, _ = svc.SendToControl(context.Background(), created.ID, &actor)

	returned, err := svc.ReturnTask(context.Background(), created.ID, "eksik madde", &actor)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.Status != model.TaskStatusReturned || returned.ControlNote != "eksik madde" {
		t.Fatalf("expected RETURNED with note, got %+v", returned)
	}

	restarted, err := svc.StartTask(context.Background(), created.ID, &actor)
	if err != nil {
		t.Fatalf("restart after return: %v", err)
	}
	if restarted.Status != model.TaskStatusInProgress {
		t.Fatalf("returned task must restart, got %s", restarted.Status)
	}
}
