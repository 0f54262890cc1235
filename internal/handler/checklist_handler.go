package handler

import (
	"errors"
	"net/http"

	"fabrikaops/internal/middleware"
	"fabrikaops/internal/model"
	"fabrikaops/internal/service"
	"fabrikaops/pkg/pagination"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChecklistHandler struct {
	checklistService service.ChecklistService
}

func NewChecklistHandler(checklistService service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService}
}

func (h *ChecklistHandler) RegisterRoutes(router *gin.RouterGroup) {
	checklists := router.Group("/checklists", middleware.RequireAuth())
	{
		checklists.GET("/templates", h.ListTemplates)
		checklists.GET("/templates/mine", h.ListMyTemplates)

		admin := checklists.Group("", middleware.RequireRole(model.RoleNameAdmin))
		{
			admin.POST("/templates", h.CreateTemplate)
			admin.DELETE("/templates/:id", h.DeleteTemplate)
		}

		checklists.POST("/submissions", h.Submit)
		checklists.GET("/submissions", h.ListSubmissions)
		checklists.GET("/submissions/:id", h.GetSubmission)
		checklists.POST("/submissions/:id/score", h.Score)
		checklists.POST("/submissions/:id/approve", h.Approve)
		checklists.POST("/submissions/:id/reject", h.Reject)
	}
}

func (h *ChecklistHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tmpl, err := h.checklistService.CreateTemplate(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tmpl))
}

func (h *ChecklistHandler) ListTemplates(c *gin.Context) {
	tmpls, err := h.checklistService.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tmpls))
}

// ListMyTemplates returns the checklists the user's roles are expected to fill.
func (h *ChecklistHandler) ListMyTemplates(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	tmpls, err := h.checklistService.ListTemplatesForUser(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tmpls))
}

func (h *ChecklistHandler) DeleteTemplate(c *gin.Context) {
	if err := h.checklistService.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Template deleted"}))
}

func (h *ChecklistHandler) Submit(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req service.SubmitChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sub, err := h.checklistService.Submit(c.Request.Context(), user, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sub))
}

func (h *ChecklistHandler) ListSubmissions(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	p := pagination.Parse(c)

	subs, total, err := h.checklistService.ListSubmissions(c.Request.Context(), user, c.Query("status"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, subs, p.Page, p.Limit, total))
}

func (h *ChecklistHandler) GetSubmission(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	sub, err := h.checklistService.GetSubmission(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		writeChecklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

func (h *ChecklistHandler) Score(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req service.ScoreChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sub, err := h.checklistService.Score(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		writeChecklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

func (h *ChecklistHandler) Approve(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	sub, err := h.checklistService.Approve(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		writeChecklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

func (h *ChecklistHandler) Reject(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&req)

	sub, err := h.checklistService.Reject(c.Request.Context(), user, c.Param("id"), req.Note)
	if err != nil {
		writeChecklistError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

func writeChecklistError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrChecklistForbidden) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
		return
	}
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
}
