package routes

import (
	"github.com/gin-gonic/gin"

	"glowbook/handlers"
)

// RegisterBookingRoutes registers all endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	booking := r.Group("/api/booking")
	{
		booking.POST("/session", bh.StartSession)    // Phase 1: compute availability
		booking.POST("/confirm", bh.ConfirmSession)  // Phase 2: commit one slot
		booking.POST("/propose", bh.Propose)         // direct proposal, no session
		booking.POST("/events/:providerID", bh.ProposeCustomEvent)
		booking.PUT("/:appointmentID/confirm", bh.Confirm)
		booking.PUT("/:appointmentID/fail", bh.Fail)
		booking.PUT("/:appointmentID/cancel", bh.Cancel)
	}
}
