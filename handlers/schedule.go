package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glowbook/models"
	"glowbook/services/scheduling"
)

// ScheduleHandler exposes schedule management and occupancy views.
type ScheduleHandler struct {
	Service   scheduling.ScheduleService
	Occupancy scheduling.OccupancyIndex
}

func NewScheduleHandler(svc scheduling.ScheduleService, occ scheduling.OccupancyIndex) *ScheduleHandler {
	return &ScheduleHandler{Service: svc, Occupancy: occ}
}

// GetSchedule returns the provider's schedule, creating the default one on
// first access.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.Service.Get(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateWorkHours replaces all seven weekday windows at once.
func (h *ScheduleHandler) UpdateWorkHours(c *gin.Context) {
	var input struct {
		WorkHours [7]models.WorkWindow `json:"work_hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	schedule, err := h.Service.UpdateWorkHours(c.Request.Context(), c.Param("providerID"), input.WorkHours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateBuffer replaces the provider-wide buffer policy.
func (h *ScheduleHandler) UpdateBuffer(c *gin.Context) {
	var input models.BufferPolicy
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	schedule, err := h.Service.UpdateBuffer(c.Request.Context(), c.Param("providerID"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// AddBreak creates a recurring weekly break template.
func (h *ScheduleHandler) AddBreak(c *gin.Context) {
	var input models.Break
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	schedule, err := h.Service.AddBreak(c.Request.Context(), c.Param("providerID"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// UpdateBreak replaces an existing break template by id.
func (h *ScheduleHandler) UpdateBreak(c *gin.Context) {
	var input models.Break
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.ID = c.Param("breakID")
	schedule, err := h.Service.UpdateBreak(c.Request.Context(), c.Param("providerID"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// DeleteBreak removes a break template.
func (h *ScheduleHandler) DeleteBreak(c *gin.Context) {
	schedule, err := h.Service.DeleteBreak(c.Request.Context(), c.Param("providerID"), c.Param("breakID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// GetOccupancy returns the blocked intervals for a date range, e.g. a
// calendar month view.
func (h *ScheduleHandler) GetOccupancy(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}
	blocked, err := h.Occupancy.BlockedForRange(c.Request.Context(), c.Param("providerID"), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupancy": blocked})
}
