package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"glowbook/services/scheduling"
	"glowbook/utils"
)

// respondError maps engine errors onto HTTP statuses. Conflicts carry the
// engine's reasons so the client can show them; the stale variant is
// marked so a client may recompute availability and retry on its own.
func respondError(c *gin.Context, err error) {
	var validation scheduling.ValidationError
	var conflict scheduling.ScheduleConflictError
	var stale scheduling.StaleAvailabilityError
	var transition scheduling.InvalidTransitionError

	switch {
	case errors.As(err, &validation):
		utils.JSONError(c, http.StatusBadRequest, "validation failed", validation.Error())
	case errors.Is(err, scheduling.ErrInvalidTimeRange):
		utils.JSONError(c, http.StatusBadRequest, "invalid time range", err.Error())
	case errors.Is(err, scheduling.ErrPastTime):
		utils.JSONError(c, http.StatusBadRequest, "requested time is in the past", err.Error())
	case errors.Is(err, scheduling.ErrScheduleNotFound):
		utils.JSONError(c, http.StatusNotFound, "schedule not found", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		utils.JSONError(c, http.StatusNotFound, "appointment not found", err.Error())
	case errors.As(err, &stale):
		c.Header("X-Stale-Availability", "true")
		utils.JSONConflict(c, http.StatusConflict, "availability is stale", stale.Reasons)
	case errors.As(err, &conflict):
		utils.JSONConflict(c, http.StatusConflict, "schedule conflict", conflict.Reasons)
	case errors.As(err, &transition):
		utils.JSONError(c, http.StatusConflict, "invalid transition", transition.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
