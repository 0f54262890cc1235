package handler

import (
	"context"
	"net/http"

	"fabrikaops/internal/middleware"
	"fabrikaops/internal/service"
	"fabrikaops/pkg/pagination"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks", middleware.RequireAuth())
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.POST("", h.CreateTask)
		tasks.POST("/:id/start", h.StartTask)
		tasks.POST("/:id/complete", h.CompleteTask)
		tasks.POST("/:id/send-control", h.SendToControl)
		tasks.POST("/:id/approve", h.ApproveTask)
		tasks.POST("/:id/reject", h.RejectTask)
		tasks.POST("/:id/return", h.ReturnTask)
	}
}

// CreateTask handles POST /tasks
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// ListTasks handles GET /tasks with status/assignee/machine filters
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Status filter"
// @Param        assigned_to  query     string  false  "Assignee user id"
// @Param        machine_id   query     string  false  "Machine id"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=[]service.TaskResponse}
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p := pagination.Parse(c)

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), service.TaskListFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		MachineID:  c.Query("machine_id"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, tasks, p.Page, p.Limit, total))
}

// GetTask handles GET /tasks/:id
// @Summary      Get task by id
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// StartTask handles POST /tasks/:id/start
// @Summary      Start a task
// @Description  Moves a created or returned task into progress
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      400  {object}  response.Response
// @Router       /tasks/{id}/start [post]
func (h *TaskHandler) StartTask(c *gin.Context) {
	h.transition(c, h.taskService.StartTask)
}

// CompleteTask handles POST /tasks/:id/complete
// @Summary      Complete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      400  {object}  response.Response
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transition(c, h.taskService.CompleteTask)
}

// SendToControl handles POST /tasks/:id/send-control
// @Summary      Send a completed task to quality control
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      400  {object}  response.Response
// @Router       /tasks/{id}/send-control [post]
func (h *TaskHandler) SendToControl(c *gin.Context) {
	h.transition(c, h.taskService.SendToControl)
}

// ApproveTask handles POST /tasks/:id/approve
// @Summary      Approve a control-pending task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=service.TaskResponse}
// @Failure      400  {object}  response.Response
// @Router       /tasks/{id}/approve [post]
func (h *TaskHandler) ApproveTask(c *gin.Context) {
	h.transition(c, h.taskService.ApproveTask)
}

// RejectTask handles POST /tasks/:id/reject
// @Summary      Reject a control-pending task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Task ID"
// @Param        payload  body      service.TaskControlRequest  false  "Control note"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks/{id}/reject [post]
func (h *TaskHandler) RejectTask(c *gin.Context) {
	h.controlTransition(c, h.taskService.RejectTask)
}

// ReturnTask handles POST /tasks/:id/return
// @Summary      Return a control-pending task for rework
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Task ID"
// @Param        payload  body      service.TaskControlRequest  false  "Control note"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks/{id}/return [post]
func (h *TaskHandler) ReturnTask(c *gin.Context) {
	h.controlTransition(c, h.taskService.ReturnTask)
}

func (h *TaskHandler) transition(c *gin.Context, fn func(ctx context.Context, id string, actorID *uuid.UUID) (*service.TaskResponse, error)) {
	task, err := fn(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

func (h *TaskHandler) controlTransition(c *gin.Context, fn func(ctx context.Context, id, note string, actorID *uuid.UUID) (*service.TaskResponse, error)) {
	var req service.TaskControlRequest
	_ = c.ShouldBindJSON(&req)

	task, err := fn(c.Request.Context(), c.Param("id"), req.Note, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}
