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

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	attendance := router.Group("/attendance", middleware.RequireAuth(), middleware.HRAccess())
	{
		attendance.POST("/overtime", h.RecordOvertime)
		attendance.POST("/absence", h.RecordAbsence)
		attendance.DELETE("/:id", h.DeleteRecord)
		attendance.GET("", h.ListRecords)
		attendance.GET("/users/:id/report", h.UserReport)
	}
}

// RecordOvertime handles POST /attendance/overtime
// @Summary      Record overtime
// @Description  Records an overtime entry; points are priced at the current rate and stored on the record. Requires the score capability.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AttendanceEntryRequest  true  "Overtime entry"
// @Success      201      {object}  response.Response{data=service.AttendanceRecordResponse}
// @Failure      403      {object}  response.Response
// @Router       /attendance/overtime [post]
func (h *AttendanceHandler) RecordOvertime(c *gin.Context) {
	h.record(c, h.attendanceService.RecordOvertime)
}

// RecordAbsence handles POST /attendance/absence
// @Summary      Record absence
// @Description  Records an absence entry; the stored point delta is negative. Requires the score capability.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AttendanceEntryRequest  true  "Absence entry"
// @Success      201      {object}  response.Response{data=service.AttendanceRecordResponse}
// @Failure      403      {object}  response.Response
// @Router       /attendance/absence [post]
func (h *AttendanceHandler) RecordAbsence(c *gin.Context) {
	h.record(c, h.attendanceService.RecordAbsence)
}

func (h *AttendanceHandler) record(c *gin.Context, fn func(ctx context.Context, req service.AttendanceEntryRequest, actorID *uuid.UUID) (*service.AttendanceRecordResponse, error)) {
	if !middleware.Capabilities(c).CanScore {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: score capability required"))
		return
	}

	var req service.AttendanceEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rec, err := fn(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rec))
}

func (h *AttendanceHandler) DeleteRecord(c *gin.Context) {
	if !middleware.Capabilities(c).CanScore {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: score capability required"))
		return
	}

	if err := h.attendanceService.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Record deleted"}))
}

func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	if !middleware.Capabilities(c).CanViewReports {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: report capability required"))
		return
	}

	p := pagination.Parse(c)
	recs, total, err := h.attendanceService.ListRecords(c.Request.Context(), c.Query("from"), c.Query("to"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, recs, p.Page, p.Limit, total))
}

// UserReport handles GET /attendance/users/:id/report
// @Summary      Per-user attendance report
// @Description  Sums overtime hours, absence days and point deltas for a user over a date range (defaults to the current month)
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "User ID"
// @Param        from  query     string  false  "Range start (YYYY-MM-DD)"
// @Param        to    query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.AttendanceReport}
// @Failure      403   {object}  response.Response
// @Router       /attendance/users/{id}/report [get]
func (h *AttendanceHandler) UserReport(c *gin.Context) {
	if !middleware.Capabilities(c).CanViewReports {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: report capability required"))
		return
	}

	report, err := h.attendanceService.UserReport(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
