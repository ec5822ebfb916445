package main

import (
	"context"
	"time"

	"bookingdesk/internal/bookings/handler"
	"bookingdesk/internal/bookings/repository"
	"bookingdesk/internal/bookings/service"
	"bookingdesk/internal/bookings/timer"
	"bookingdesk/internal/bookings/validator"
	"bookingdesk/pkg/app"
	"bookingdesk/pkg/config"
	"bookingdesk/pkg/events"
)

const (
	ServiceName     = "bookings"
	recoveryTimeout = 2 * time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	timers := timer.NewManager(timer.RealClock{}, cfg.Log)
	publisher, err := events.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	bookingService := initServices(cfg, timers, publisher)
	recoverInProgress(cfg, bookingService)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(timers.Stop)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, timers *timer.Manager, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		timers,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// recoverInProgress re-arms or completes bookings left in progress by a
// previous process before any request is served.
func recoverInProgress(cfg *config.Config, bookingService service.BookingService) {
	ctx, cancel := context.WithTimeout(context.Background(), recoveryTimeout)
	defer cancel()

	if _, err := bookingService.Recover(ctx); err != nil {
		cfg.Log.Fatal("Failed to recover in-progress bookings", "error", err)
	}
}
