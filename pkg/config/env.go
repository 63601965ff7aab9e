package config

const (
	EnvConfigFile = "CONFIG_FILE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvLoginRateLimitRequests = "LOGIN_RATE_LIMIT_REQUESTS"
	EnvLoginRateLimitWindow   = "LOGIN_RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret  = "JWT_SECRET"
	EnvJWTIssuer  = "JWT_ISSUER"
	EnvSessionTTL = "SESSION_TTL"

	EnvBookingWindowDays = "BOOKING_WINDOW_DAYS"
	EnvPollInterval      = "POLL_INTERVAL"
	EnvSessionIdleTTL    = "SESSION_IDLE_TTL"
	EnvStrictCapacity    = "STRICT_CAPACITY"
	EnvLockTTL           = "BOOKING_LOCK_TTL"

	EnvTrialLengthDays       = "TRIAL_LENGTH_DAYS"
	EnvExpiringThresholdDays = "TRIAL_EXPIRING_THRESHOLD_DAYS"
	EnvGraceDays             = "TRIAL_GRACE_DAYS"
	EnvMaxTrialExtensionDays = "TRIAL_MAX_EXTENSION_DAYS"

	EnvMinCapacity = "MIN_LOCATION_CAPACITY"
	EnvMaxCapacity = "MAX_LOCATION_CAPACITY"
	EnvMaxInClause = "MAX_IN_CLAUSE"

	EnvMailBackend = "MAIL_BACKEND"
	EnvMailTopic   = "MAIL_TOPIC"
	EnvAppBaseURL  = "APP_BASE_URL"

	EnvSuperAdminEmails = "SUPER_ADMIN_EMAILS"
	EnvCompanyCacheTTL  = "COMPANY_CACHE_TTL"

	EnvMetricsEnabled = "METRICS_ENABLED"
	EnvMetricsPath    = "METRICS_PATH"
)
