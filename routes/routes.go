package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"glowbook/handlers"
	"glowbook/utils"
)

// RegisterScheduleRoutes registers schedule management endpoints.
func RegisterScheduleRoutes(r *gin.Engine, sh *handlers.ScheduleHandler) {
	api := r.Group("/api/schedule")
	{
		api.GET("/:providerID", sh.GetSchedule)
		api.PUT("/:providerID/work-hours", sh.UpdateWorkHours)
		api.PUT("/:providerID/buffer", sh.UpdateBuffer)
		api.POST("/:providerID/breaks", sh.AddBreak)
		api.PUT("/:providerID/breaks/:breakID", sh.UpdateBreak)
		api.DELETE("/:providerID/breaks/:breakID", sh.DeleteBreak)
		api.GET("/:providerID/occupancy", sh.GetOccupancy)
	}
}

// RegisterAvailabilityRoutes registers slot computation and the conflict
// precheck.
func RegisterAvailabilityRoutes(r *gin.Engine, ah *handlers.AvailabilityHandler) {
	api := r.Group("/api/availability")
	{
		api.GET("/:providerID/slots", ah.GetSlots)
		api.GET("/:providerID/check", ah.CheckConflict)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// periodic dependency monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, sh *handlers.ScheduleHandler, ah *handlers.AvailabilityHandler, bh *handlers.BookingHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterScheduleRoutes(r, sh)
	RegisterAvailabilityRoutes(r, ah)
	RegisterBookingRoutes(r, bh)
	RegisterHealthRoute(r)
}
