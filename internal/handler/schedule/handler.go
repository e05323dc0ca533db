package schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/internal/handler"
	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/service/schedule"
)

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	schedules := r.Group("/doctors/:id/schedule")
	{
		schedules.PUT("", h.UpsertEntry)
		schedules.GET("", h.ListForDoctor)
		schedules.DELETE("/:weekday", h.DeleteEntry)
	}
}

func (h *Handler) UpsertEntry(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	var req model.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	entry, err := h.service.UpsertEntry(c.Request.Context(), doctorID, &req)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
			return
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entry})
}

func (h *Handler) ListForDoctor(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	entries, err := h.service.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": entries})
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid weekday"})
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), doctorID, time.Weekday(weekday)); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
