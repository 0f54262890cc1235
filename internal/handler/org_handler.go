package handler

import (
	"net/http"

	"fabrikaops/internal/middleware"
	"fabrikaops/internal/model"
	"fabrikaops/internal/service"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrgHandler struct {
	orgService service.OrgService
}

func NewOrgHandler(orgService service.OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

func (h *OrgHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/departments", middleware.RequireAuth())
	{
		departments.GET("", h.ListDepartments)
		departments.POST("", middleware.RequireRole(model.RoleNameAdmin), h.CreateDepartment)
		departments.DELETE("/:id", middleware.RequireRole(model.RoleNameAdmin), h.DeleteDepartment)
	}

	machines := router.Group("/machines", middleware.RequireAuth())
	{
		machines.GET("", h.ListMachines)
		machines.POST("", middleware.RequireRole(model.RoleNameAdmin), h.CreateMachine)
		machines.PUT("/:id", middleware.RequireRole(model.RoleNameAdmin), h.UpdateMachine)
		machines.DELETE("/:id", middleware.RequireRole(model.RoleNameAdmin), h.DeleteMachine)
	}
}

func (h *OrgHandler) ListDepartments(c *gin.Context) {
	depts, err := h.orgService.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, depts))
}

func (h *OrgHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dept, err := h.orgService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dept))
}

func (h *OrgHandler) DeleteDepartment(c *gin.Context) {
	if err := h.orgService.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Department deleted"}))
}

func (h *OrgHandler) ListMachines(c *gin.Context) {
	machines, err := h.orgService.ListMachines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, machines))
}

func (h *OrgHandler) CreateMachine(c *gin.Context) {
	var req service.CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	machine, err := h.orgService.CreateMachine(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, machine))
}

func (h *OrgHandler) UpdateMachine(c *gin.Context) {
	var req service.UpdateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	machine, err := h.orgService.UpdateMachine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, machine))
}

func (h *OrgHandler) DeleteMachine(c *gin.Context) {
	if err := h.orgService.DeleteMachine(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Machine deleted"}))
}
