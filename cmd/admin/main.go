package main

import (
	analyticshandler "seatsnag/internal/analytics/handler"
	analyticsrepo "seatsnag/internal/analytics/repository"
	analyticsservice "seatsnag/internal/analytics/service"
	"seatsnag/internal/auth"
	bookingsrepo "seatsnag/internal/bookings/repository"
	companieshandler "seatsnag/internal/companies/handler"
	companiesrepo "seatsnag/internal/companies/repository"
	companiesservice "seatsnag/internal/companies/service"
	companiesvalidator "seatsnag/internal/companies/validator"
	locationshandler "seatsnag/internal/locations/handler"
	locationsrepo "seatsnag/internal/locations/repository"
	locationsservice "seatsnag/internal/locations/service"
	locationsvalidator "seatsnag/internal/locations/validator"
	"seatsnag/internal/mailqueue"
	"seatsnag/internal/metrics"
	"seatsnag/pkg/app"
	"seatsnag/pkg/config"
	"seatsnag/pkg/middleware"
)

const ServiceName = "admin"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET must be set")
	}
	cfg.SetMongo()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(ServiceName)
	}

	cfg.Log.Info("Starting Admin service")
	serverApp := app.NewApplication(cfg, ServiceName, m)

	mail, closeMail, err := mailqueue.Setup(cfg, m)
	if err != nil {
		cfg.Log.Fatal("Failed to set up mail queue", "error", err)
	}
	serverApp.OnShutdown(closeMail)

	locations := locationsservice.NewLocationService(
		locationsrepo.NewMongoLocationRepository(cfg),
		bookingsrepo.NewMongoBookingRepository(cfg),
		locationsvalidator.NewLocationValidator(cfg),
		cfg,
	)
	companies := companiesservice.NewCompanyService(
		companiesrepo.NewMongoCompanyRepository(cfg),
		companiesvalidator.NewCompanyValidator(cfg.Log),
		mail,
		cfg,
	)
	analytics := analyticsservice.NewAnalyticsService(
		locations,
		analyticsrepo.NewMongoBookingReader(cfg),
		cfg,
	)

	a := auth.New(auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimitRequests, cfg.LoginRateLimitWindow, nil, cfg.Log)
	serverApp.OnShutdown(limiter.Stop)

	cfg.Log.Info("Admin services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		locationshandler.NewLocationHandler(locations, a, cfg.Log),
		companieshandler.NewCompanyHandler(companies, a, limiter.Limit, cfg.Log),
		analyticshandler.NewAnalyticsHandler(analytics, a, cfg.Log),
	)
	serverApp.Run()
}
