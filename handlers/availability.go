package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glowbook/config"
	"glowbook/services/scheduling"
)

// AvailabilityHandler exposes slot computation and conflict prechecks.
type AvailabilityHandler struct {
	Calculator scheduling.AvailabilityCalculator
	Conflicts  scheduling.ConflictDetector
}

func NewAvailabilityHandler(calc scheduling.AvailabilityCalculator, cd scheduling.ConflictDetector) *AvailabilityHandler {
	return &AvailabilityHandler{Calculator: calc, Conflicts: cd}
}

// GetSlots returns the bookable start times for a provider, date and
// service duration.
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	date := c.Query("date")
	duration, err := strconv.Atoi(c.Query("duration"))
	if date == "" || err != nil || duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and a positive duration (minutes) are required"})
		return
	}
	granularity := config.AppConfig.SlotGranularityMin
	if g := c.Query("granularity"); g != "" {
		granularity, err = strconv.Atoi(g)
		if err != nil || granularity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be a positive integer"})
			return
		}
	}

	slots, err := h.Calculator.SlotsFor(c.Request.Context(), c.Param("providerID"), date, duration, granularity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// CheckConflict is the client-convenience precheck; the booking commit
// re-validates on its own regardless of this answer.
func (h *AvailabilityHandler) CheckConflict(c *gin.Context) {
	date := c.Query("date")
	start, startErr := strconv.Atoi(c.Query("start"))
	end, endErr := strconv.Atoi(c.Query("end"))
	if date == "" || startErr != nil || endErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, start and end (minutes from midnight) are required"})
		return
	}

	verdict, err := h.Conflicts.Check(c.Request.Context(), c.Param("providerID"), date, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}
