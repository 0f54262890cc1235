package handler

import (
	"net/http"

	"fabrikaops/internal/middleware"
	"fabrikaops/internal/model"
	"fabrikaops/internal/service"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ModuleHandler struct {
	moduleService service.ModuleService
}

func NewModuleHandler(moduleService service.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

func (h *ModuleHandler) RegisterRoutes(router *gin.RouterGroup) {
	modules := router.Group("/modules", middleware.RequireAuth())
	{
		modules.GET("", h.ListModules)

		admin := modules.Group("", middleware.RequireRole(model.RoleNameAdmin))
		{
			admin.POST("", h.CreateModule)
			admin.PUT("/:id", h.UpdateModule)
			admin.DELETE("/:id", h.DeleteModule)
		}
	}
}

func (h *ModuleHandler) ListModules(c *gin.Context) {
	mods, err := h.moduleService.ListModules(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mods))
}

func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var req service.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	mod, err := h.moduleService.CreateModule(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, mod))
}

func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	var req service.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	mod, err := h.moduleService.UpdateModule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, mod))
}

func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	if err := h.moduleService.DeleteModule(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Module deleted"}))
}
