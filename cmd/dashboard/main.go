package main

import (
	"bookingdesk/internal/bookings/repository"
	"bookingdesk/internal/bookings/timer"
	"bookingdesk/internal/dashboard/handler"
	"bookingdesk/internal/dashboard/resolver"
	"bookingdesk/internal/dashboard/service"
	"bookingdesk/pkg/app"
	"bookingdesk/pkg/client"
	"bookingdesk/pkg/config"
)

const ServiceName = "dashboard"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Dashboard service")
	if cfg.DashboardStoreID == "" {
		cfg.Log.Warn("DASHBOARD_STORE_ID is not set, requests without store_id return an empty summary")
	}

	dashboardService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewDashboardHandler(dashboardService, cfg.DashboardStoreID, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.DashboardService {
	sources, err := resolver.LoadSources(cfg.MetricSourcesFile)
	if err != nil {
		cfg.Log.Fatal("Failed to load metric sources", "error", err, "file", cfg.MetricSourcesFile)
	}
	cfg.Log.Info("Metric sources loaded", "metrics", len(sources))

	metricResolver := resolver.New(client.NewHttpClient(""), cfg.MetricSourceTimeout, cfg.Log)
	dashboardService := service.NewDashboardService(
		repository.NewMongoBookingRepository(cfg),
		metricResolver,
		sources,
		service.NewAggregator(cfg.MetricsConcurrency, cfg.Log),
		timer.RealClock{},
		cfg,
	)

	cfg.Log.Info("Dashboard service initialized", "database", cfg.MongoDatabaseName)
	return dashboardService
}
