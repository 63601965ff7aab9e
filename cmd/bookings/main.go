package main

import (
	"seatsnag/internal/auth"
	"seatsnag/internal/bookings/handler"
	"seatsnag/internal/bookings/repository"
	"seatsnag/internal/bookings/service"
	"seatsnag/internal/bookings/session"
	"seatsnag/internal/bookings/validator"
	companiesrepo "seatsnag/internal/companies/repository"
	companiesservice "seatsnag/internal/companies/service"
	companiesvalidator "seatsnag/internal/companies/validator"
	locationsrepo "seatsnag/internal/locations/repository"
	locationsservice "seatsnag/internal/locations/service"
	locationsvalidator "seatsnag/internal/locations/validator"
	"seatsnag/internal/mailqueue"
	"seatsnag/internal/metrics"
	"seatsnag/pkg/app"
	"seatsnag/pkg/config"
	"seatsnag/pkg/middleware"
)

const ServiceName = "bookings"

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

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg, ServiceName, m)

	mail, closeMail, err := mailqueue.Setup(cfg, m)
	if err != nil {
		cfg.Log.Fatal("Failed to set up mail queue", "error", err)
	}
	serverApp.OnShutdown(closeMail)

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	locations := locationsservice.NewLocationService(
		locationsrepo.NewMongoLocationRepository(cfg),
		bookingRepo,
		locationsvalidator.NewLocationValidator(cfg),
		cfg,
	)
	companies := companiesservice.NewCompanyService(
		companiesrepo.NewMongoCompanyRepository(cfg),
		companiesvalidator.NewCompanyValidator(cfg.Log),
		mail,
		cfg,
	)

	registry := session.NewRegistry(cfg.SessionIdleTTL)
	serverApp.OnShutdown(registry.Stop)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := service.NewBookingService(
		bookingRepo,
		repository.NewMongoUserRepository(cfg),
		repository.NewMongoEventRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		companies,
		registry,
		bookingValidator,
		m,
		cfg,
	)

	a := auth.New(auth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimitRequests, cfg.LoginRateLimitWindow, nil, cfg.Log)
	serverApp.OnShutdown(limiter.Stop)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		handler.NewLoginHandler(bookingService, locations, companies, bookingValidator, a, limiter.Limit, cfg.Log),
		handler.NewBookingHandler(bookingService, bookingValidator, a, cfg.Log),
	)
	serverApp.Run()
}
