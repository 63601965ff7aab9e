package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "seatsnag"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultLoginRateLimitRequests = 10
	DefaultLoginRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTIssuer  = "seatsnag"
	DefaultSessionTTL = 12 * time.Hour

	DefaultBookingWindowDays = 30
	DefaultPollInterval      = 30 * time.Second
	DefaultSessionIdleTTL    = 2 * time.Hour
	DefaultStrictCapacity    = false
	DefaultLockTTL           = 10 * time.Second

	DefaultTrialLengthDays       = 14
	DefaultExpiringThresholdDays = 3
	DefaultGraceDays             = 7
	DefaultMaxTrialExtensionDays = 90

	DefaultMinCapacity = 1
	DefaultMaxCapacity = 500
	DefaultMaxInClause = 10

	DefaultMailBackend = MailBackendMongo
	DefaultMailTopic   = "seatsnag.mail"
	DefaultAppBaseURL  = "http://localhost:3000"

	DefaultCompanyCacheTTL = 1 * time.Minute

	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

const (
	MailBackendMongo = "mongo"
	MailBackendKafka = "kafka"
)
