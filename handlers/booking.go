package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"glowbook/config"
	"glowbook/models"
	"glowbook/services/scheduling"
)

// BookingHandler drives the three-phase booking flow: start a session with
// computed availability, then confirm one slot out of it. The session is a
// convenience snapshot only; the commit always re-validates.
type BookingHandler struct {
	Lifecycle  scheduling.BookingLifecycle
	Calculator scheduling.AvailabilityCalculator
	Cache      *redis.Client
}

func NewBookingHandler(lc scheduling.BookingLifecycle, calc scheduling.AvailabilityCalculator, cache *redis.Client) *BookingHandler {
	return &BookingHandler{Lifecycle: lc, Calculator: calc, Cache: cache}
}

type bookingSession struct {
	ProviderID string             `json:"provider_id"`
	ClientID   string             `json:"client_id"`
	Date       string             `json:"date"`
	Duration   models.Duration    `json:"duration"`
	Payment    models.PaymentType `json:"payment"`
	Slots      []models.TimeOfDay `json:"slots"`
}

// StartSession computes availability for the request and caches it under a
// session id with a short TTL.
func (h *BookingHandler) StartSession(c *gin.Context) {
	var input struct {
		ProviderID string             `json:"provider_id" binding:"required"`
		ClientID   string             `json:"client_id" binding:"required"`
		Date       string             `json:"date" binding:"required"`
		Duration   models.Duration    `json:"duration" binding:"required"`
		Payment    models.PaymentType `json:"payment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slots, err := h.Calculator.SlotsFor(c.Request.Context(), input.ProviderID, input.Date,
		input.Duration.TotalMinutes(), config.AppConfig.SlotGranularityMin)
	if err != nil {
		respondError(c, err)
		return
	}

	session := bookingSession{
		ProviderID: input.ProviderID,
		ClientID:   input.ClientID,
		Date:       input.Date,
		Duration:   input.Duration,
		Payment:    input.Payment,
		Slots:      slots,
	}
	sessionID := uuid.New().String()
	data, err := json.Marshal(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to marshal booking session", "details": err.Error()})
		return
	}
	ttl := time.Duration(config.AppConfig.BookingSessionTTLMin) * time.Minute
	if err := h.Cache.Set(c.Request.Context(), sessionKey(sessionID), data, ttl).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cache booking session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "date": input.Date, "slots": slots})
}

// ConfirmSession resolves a cached session plus a chosen start time into a
// pending appointment via the authoritative propose path.
func (h *BookingHandler) ConfirmSession(c *gin.Context) {
	var input struct {
		SessionID string           `json:"session_id" binding:"required"`
		Start     models.TimeOfDay `json:"start"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	data, err := h.Cache.Get(c.Request.Context(), sessionKey(input.SessionID)).Result()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found or expired"})
		return
	}
	var session bookingSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse booking session", "details": err.Error()})
		return
	}

	appt, err := h.Lifecycle.Propose(c.Request.Context(), scheduling.ProposeRequest{
		ProviderID: session.ProviderID,
		ClientID:   session.ClientID,
		Date:       session.Date,
		Start:      input.Start,
		Duration:   session.Duration,
		Payment:    paymentOrDefault(session.Payment),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// One session, one booking.
	h.Cache.Del(c.Request.Context(), sessionKey(input.SessionID))
	c.JSON(http.StatusCreated, appt)
}

// Propose creates a pending appointment directly, without a session.
func (h *BookingHandler) Propose(c *gin.Context) {
	var req scheduling.ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	appt, err := h.Lifecycle.Propose(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// ProposeCustomEvent creates a provider-owned calendar event.
func (h *BookingHandler) ProposeCustomEvent(c *gin.Context) {
	var req scheduling.ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req.ProviderID = c.Param("providerID")
	appt, err := h.Lifecycle.ProposeCustomEvent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.Lifecycle.Confirm)
}

func (h *BookingHandler) Fail(c *gin.Context) {
	h.transition(c, h.Lifecycle.Fail)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.Lifecycle.Cancel)
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, id string) (*models.Appointment, error)) {
	appt, err := op(c.Request.Context(), c.Param("appointmentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func paymentOrDefault(p models.PaymentType) models.PaymentType {
	if p == "" {
		return models.PaymentNotRequired
	}
	return p
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}
