package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduler-api/internal/handler"
	"github.com/clinicore/scheduler-api/internal/service/availability"
	"github.com/clinicore/scheduler-api/pkg/metrics"
)

type Handler struct {
	service *availability.Service
	metrics *metrics.Metrics
}

func NewHandler(service *availability.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors/:id/availability", h.ListAvailableSlots)
}

// ListAvailableSlots returns the open slots for a doctor on a date. The
// date is interpreted in the server's location; clients pass YYYY-MM-DD.
func (h *Handler) ListAvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid doctor ID"})
		return
	}

	date, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid date format, expected YYYY-MM-DD"})
		return
	}

	start := time.Now()
	slots, err := h.service.ListAvailableSlots(c.Request.Context(), doctorID, date)
	if h.metrics != nil {
		h.metrics.AvailabilityQueryDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slots})
}
