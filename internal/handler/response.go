package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/scheduler-api/internal/model"
	"github.com/clinicore/scheduler-api/internal/repository"
)

// RespondError maps service errors onto transport status codes. Booking
// conflicts come back as 409 with the reason so clients can show a precise
// message and refresh their slot list.
func RespondError(c *gin.Context, err error) {
	var conflict *model.Conflict
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"status":  "error",
			"message": conflict.Error(),
			"reason":  conflict.Reason,
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
	}
}
