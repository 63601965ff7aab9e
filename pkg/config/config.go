package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"seatsnag/pkg/client"
	"seatsnag/pkg/logger"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string        `toml:"mongo_uri"`
	MongoDatabaseName string        `toml:"mongo_database_name"`
	MongoConnTimeout  time.Duration `toml:"mongo_conn_timeout"`

	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`

	LoginRateLimitRequests int           `toml:"login_rate_limit_requests"`
	LoginRateLimitWindow   time.Duration `toml:"login_rate_limit_window"`

	RequestTimeout time.Duration `toml:"request_timeout"`
	IdempotencyTTL time.Duration `toml:"idempotency_ttl"`
	MaxRequestSize int           `toml:"max_request_size"`

	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	JWTSecret  string        `toml:"jwt_secret"`
	JWTIssuer  string        `toml:"jwt_issuer"`
	SessionTTL time.Duration `toml:"session_ttl"`

	BookingWindowDays int           `toml:"booking_window_days"`
	PollInterval      time.Duration `toml:"poll_interval"`
	SessionIdleTTL    time.Duration `toml:"session_idle_ttl"`
	StrictCapacity    bool          `toml:"strict_capacity"`
	LockTTL           time.Duration `toml:"booking_lock_ttl"`

	TrialLengthDays       int `toml:"trial_length_days"`
	ExpiringThresholdDays int `toml:"trial_expiring_threshold_days"`
	GraceDays             int `toml:"trial_grace_days"`
	MaxTrialExtensionDays int `toml:"trial_max_extension_days"`

	MinCapacity int `toml:"min_location_capacity"`
	MaxCapacity int `toml:"max_location_capacity"`
	MaxInClause int `toml:"max_in_clause"`

	MailBackend string `toml:"mail_backend"`
	MailTopic   string `toml:"mail_topic"`
	AppBaseURL  string `toml:"app_base_url"`

	SuperAdminEmails []string      `toml:"super_admin_emails"`
	CompanyCacheTTL  time.Duration `toml:"company_cache_ttl"`

	MetricsEnabled bool   `toml:"metrics_enabled"`
	MetricsPath    string `toml:"metrics_path"`

	Log    *logger.Logger `toml:"-"`
	Client *client.Client `toml:"-"`
}

// Load builds the configuration for serviceName and exits the process when
// it is invalid. Precedence is environment, then CONFIG_FILE, then defaults.
func Load(serviceName string) *Config {
	// A missing .env is the normal production case.
	_ = godotenv.Load()

	cfg, err := Build()
	if cfg == nil {
		cfg = Defaults()
	}
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Build assembles and validates a Config without side effects beyond
// reading the environment and the optional TOML file.
func Build() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.overlayEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,

		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,

		LoginRateLimitRequests: DefaultLoginRateLimitRequests,
		LoginRateLimitWindow:   DefaultLoginRateLimitWindow,

		RequestTimeout: DefaultRequestTimeout,
		IdempotencyTTL: DefaultIdempotencyTTL,
		MaxRequestSize: DefaultMaxRequestSize,

		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,

		JWTIssuer:  DefaultJWTIssuer,
		SessionTTL: DefaultSessionTTL,

		BookingWindowDays: DefaultBookingWindowDays,
		PollInterval:      DefaultPollInterval,
		SessionIdleTTL:    DefaultSessionIdleTTL,
		StrictCapacity:    DefaultStrictCapacity,
		LockTTL:           DefaultLockTTL,

		TrialLengthDays:       DefaultTrialLengthDays,
		ExpiringThresholdDays: DefaultExpiringThresholdDays,
		GraceDays:             DefaultGraceDays,
		MaxTrialExtensionDays: DefaultMaxTrialExtensionDays,

		MinCapacity: DefaultMinCapacity,
		MaxCapacity: DefaultMaxCapacity,
		MaxInClause: DefaultMaxInClause,

		MailBackend: DefaultMailBackend,
		MailTopic:   DefaultMailTopic,
		AppBaseURL:  DefaultAppBaseURL,

		CompanyCacheTTL: DefaultCompanyCacheTTL,

		MetricsEnabled: DefaultMetricsEnabled,
		MetricsPath:    DefaultMetricsPath,
	}
}

func (cfg *Config) overlayFile(path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) overlayEnv() {
	cfg.MongoURI = getEnvStr(EnvMongoURI, cfg.MongoURI)
	cfg.MongoDatabaseName = getEnvStr(EnvMongoDatabaseName, cfg.MongoDatabaseName)
	cfg.MongoConnTimeout = getEnvDuration(EnvMongoConnTimeout, cfg.MongoConnTimeout)

	cfg.Port = getEnvStr(EnvPort, cfg.Port)
	cfg.LogLevel = getEnvStr(EnvLogLevel, cfg.LogLevel)

	cfg.LoginRateLimitRequests = getEnvNum(EnvLoginRateLimitRequests, cfg.LoginRateLimitRequests)
	cfg.LoginRateLimitWindow = getEnvDuration(EnvLoginRateLimitWindow, cfg.LoginRateLimitWindow)

	cfg.RequestTimeout = getEnvDuration(EnvRequestTimeout, cfg.RequestTimeout)
	cfg.IdempotencyTTL = getEnvDuration(EnvIdempotencyTTL, cfg.IdempotencyTTL)
	cfg.MaxRequestSize = getEnvNum(EnvMaxRequestSize, cfg.MaxRequestSize)

	cfg.ReadTimeout = getEnvDuration(EnvReadTimeout, cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration(EnvWriteTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvDuration(EnvIdleTimeout, cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.JWTSecret = getEnvStr(EnvJWTSecret, cfg.JWTSecret)
	cfg.JWTIssuer = getEnvStr(EnvJWTIssuer, cfg.JWTIssuer)
	cfg.SessionTTL = getEnvDuration(EnvSessionTTL, cfg.SessionTTL)

	cfg.BookingWindowDays = getEnvNum(EnvBookingWindowDays, cfg.BookingWindowDays)
	cfg.PollInterval = getEnvDuration(EnvPollInterval, cfg.PollInterval)
	cfg.SessionIdleTTL = getEnvDuration(EnvSessionIdleTTL, cfg.SessionIdleTTL)
	cfg.StrictCapacity = getEnvBool(EnvStrictCapacity, cfg.StrictCapacity)
	cfg.LockTTL = getEnvDuration(EnvLockTTL, cfg.LockTTL)

	cfg.TrialLengthDays = getEnvNum(EnvTrialLengthDays, cfg.TrialLengthDays)
	cfg.ExpiringThresholdDays = getEnvNum(EnvExpiringThresholdDays, cfg.ExpiringThresholdDays)
	cfg.GraceDays = getEnvNum(EnvGraceDays, cfg.GraceDays)
	cfg.MaxTrialExtensionDays = getEnvNum(EnvMaxTrialExtensionDays, cfg.MaxTrialExtensionDays)

	cfg.MinCapacity = getEnvNum(EnvMinCapacity, cfg.MinCapacity)
	cfg.MaxCapacity = getEnvNum(EnvMaxCapacity, cfg.MaxCapacity)
	cfg.MaxInClause = getEnvNum(EnvMaxInClause, cfg.MaxInClause)

	cfg.MailBackend = getEnvStr(EnvMailBackend, cfg.MailBackend)
	cfg.MailTopic = getEnvStr(EnvMailTopic, cfg.MailTopic)
	cfg.AppBaseURL = getEnvStr(EnvAppBaseURL, cfg.AppBaseURL)

	cfg.SuperAdminEmails = getEnvList(EnvSuperAdminEmails, cfg.SuperAdminEmails)
	cfg.CompanyCacheTTL = getEnvDuration(EnvCompanyCacheTTL, cfg.CompanyCacheTTL)

	cfg.MetricsEnabled = getEnvBool(EnvMetricsEnabled, cfg.MetricsEnabled)
	cfg.MetricsPath = getEnvStr(EnvMetricsPath, cfg.MetricsPath)
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"LoginRateLimitWindow", cfg.LoginRateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"SessionTTL", cfg.SessionTTL},
		{"PollInterval", cfg.PollInterval},
		{"SessionIdleTTL", cfg.SessionIdleTTL},
		{"LockTTL", cfg.LockTTL},
		{"CompanyCacheTTL", cfg.CompanyCacheTTL},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	positiveInts := []struct {
		name  string
		value int
	}{
		{"LoginRateLimitRequests", cfg.LoginRateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"BookingWindowDays", cfg.BookingWindowDays},
		{"TrialLengthDays", cfg.TrialLengthDays},
		{"MaxTrialExtensionDays", cfg.MaxTrialExtensionDays},
		{"MinCapacity", cfg.MinCapacity},
		{"MaxInClause", cfg.MaxInClause},
	}
	for _, n := range positiveInts {
		if n.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", n.name, n.value))
		}
	}

	if cfg.ExpiringThresholdDays < 0 {
		errors = append(errors, fmt.Sprintf("ExpiringThresholdDays cannot be negative, got: %d", cfg.ExpiringThresholdDays))
	}
	if cfg.GraceDays < 0 {
		errors = append(errors, fmt.Sprintf("GraceDays cannot be negative, got: %d", cfg.GraceDays))
	}
	if cfg.MaxCapacity < cfg.MinCapacity {
		errors = append(errors, fmt.Sprintf("MaxCapacity (%d) must be >= MinCapacity (%d)", cfg.MaxCapacity, cfg.MinCapacity))
	}

	if cfg.MailBackend != MailBackendMongo && cfg.MailBackend != MailBackendKafka {
		errors = append(errors, fmt.Sprintf("MailBackend must be %q or %q, got: %s", MailBackendMongo, MailBackendKafka, cfg.MailBackend))
	}
	if cfg.MailBackend == MailBackendKafka && cfg.MailTopic == "" {
		errors = append(errors, "MailTopic cannot be empty when MailBackend is kafka")
	}
	if cfg.MetricsEnabled && !strings.HasPrefix(cfg.MetricsPath, "/") {
		errors = append(errors, fmt.Sprintf("MetricsPath must start with '/', got: %s", cfg.MetricsPath))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"login_rate_limit_requests", cfg.LoginRateLimitRequests,
		"login_rate_limit_window", cfg.LoginRateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"session_ttl", cfg.SessionTTL,
		"booking_window_days", cfg.BookingWindowDays,
		"poll_interval", cfg.PollInterval,
		"session_idle_ttl", cfg.SessionIdleTTL,
		"strict_capacity", cfg.StrictCapacity,
		"trial_length_days", cfg.TrialLengthDays,
		"trial_expiring_threshold_days", cfg.ExpiringThresholdDays,
		"trial_grace_days", cfg.GraceDays,
		"min_capacity", cfg.MinCapacity,
		"max_capacity", cfg.MaxCapacity,
		"max_in_clause", cfg.MaxInClause,
		"mail_backend", cfg.MailBackend,
		"app_base_url", cfg.AppBaseURL,
		"super_admin_count", len(cfg.SuperAdminEmails),
		"company_cache_ttl", cfg.CompanyCacheTTL,
		"metrics_enabled", cfg.MetricsEnabled,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

// IsSuperAdmin reports whether email belongs to the platform operators.
func (cfg *Config) IsSuperAdmin(email string) bool {
	for _, e := range cfg.SuperAdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
