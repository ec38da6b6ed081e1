// File: glowbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"glowbook/config"
	"glowbook/database"
	appointmentRepo "glowbook/database/repository/appointment"
	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/handlers"
	"glowbook/middleware"
	"glowbook/routes"
	"glowbook/services/scheduling"
	"glowbook/services/tasks"
	"glowbook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	schedules := scheduleRepo.NewMongoScheduleRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()

	// the scheduling engine: occupancy feeds both the availability
	// calculator and the conflict detector; the lifecycle re-checks
	// through the detector at commit time.
	occupancy := &scheduling.DefaultOccupancyIndex{
		Schedules:    schedules,
		Appointments: appointments,
	}
	conflicts := &scheduling.DefaultConflictDetector{Occupancy: occupancy}
	calculator := &scheduling.DefaultAvailabilityCalculator{
		Schedules: schedules,
		Occupancy: occupancy,
	}
	reminders := tasks.NewReminderQueue()
	tasks.InitReminderWorker(tasks.LogSender{})
	lifecycle := &scheduling.DefaultBookingLifecycle{
		Schedules:    schedules,
		Appointments: appointments,
		Conflicts:    conflicts,
		Reminders:    reminders,
	}
	scheduleService := &scheduling.DefaultScheduleService{
		Schedules:    schedules,
		Appointments: appointments,
	}

	// handlers.
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, occupancy)
	availabilityHandler := handlers.NewAvailabilityHandler(calculator, conflicts)
	bookingHandler := handlers.NewBookingHandler(lifecycle, calculator, utils.GetCacheClient())

	routes.RegisterRoutes(router, scheduleHandler, availabilityHandler, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	database.Disconnect(ctx)

	logger.Sugar().Info("main: server stopped gracefully")
}
