package handler

import (
	"net/http"

	"fabrikaops/internal/middleware"
	"fabrikaops/internal/service"
	"fabrikaops/pkg/pagination"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
)

type QualityHandler struct {
	qualityService service.QualityService
}

func NewQualityHandler(qualityService service.QualityService) *QualityHandler {
	return &QualityHandler{qualityService: qualityService}
}

func (h *QualityHandler) RegisterRoutes(router *gin.RouterGroup) {
	quality := router.Group("/quality", middleware.RequireAuth())
	{
		quality.GET("/reviews", h.ListReviews)
		quality.GET("/machines/:id/summary", h.MachineSummary)

		// Writing reviews needs the HR score capability.
		gated := quality.Group("", middleware.HRAccess())
		{
			gated.POST("/reviews", h.CreateReview)
			gated.DELETE("/reviews/:id", h.DeleteReview)
		}
	}
}

func (h *QualityHandler) CreateReview(c *gin.Context) {
	if !middleware.Capabilities(c).CanScore {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: score capability required"))
		return
	}

	user, _ := middleware.CurrentUser(c)

	var req service.CreateQualityReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	review, err := h.qualityService.CreateReview(c.Request.Context(), user, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, review))
}

func (h *QualityHandler) DeleteReview(c *gin.Context) {
	if !middleware.Capabilities(c).CanScore {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: score capability required"))
		return
	}

	if err := h.qualityService.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Review deleted"}))
}

func (h *QualityHandler) ListReviews(c *gin.Context) {
	p := pagination.Parse(c)

	reviews, total, err := h.qualityService.ListReviews(c.Request.Context(), c.Query("machine_id"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, reviews, p.Page, p.Limit, total))
}

func (h *QualityHandler) MachineSummary(c *gin.Context) {
	summary, err := h.qualityService.MachineSummary(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
