package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestBuild_EnvOverridesDefaults(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvPollInterval, "5s")
	t.Setenv(EnvStrictCapacity, "true")
	t.Setenv(EnvSuperAdminEmails, "ops@seatsnag.io, root@seatsnag.io ,")

	cfg, err := Build()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.True(t, cfg.StrictCapacity)
	assert.Equal(t, []string{"ops@seatsnag.io", "root@seatsnag.io"}, cfg.SuperAdminEmails)
	assert.Equal(t, DefaultBookingWindowDays, cfg.BookingWindowDays)
}

func TestBuild_FileOverlayThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatsnag.toml")
	content := `
port = "7070"
booking_window_days = 21
poll_interval = "45s"
mail_backend = "kafka"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvPort, "6060")

	cfg, err := Build()
	require.NoError(t, err)

	assert.Equal(t, "6060", cfg.Port, "env wins over file")
	assert.Equal(t, 21, cfg.BookingWindowDays)
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
	assert.Equal(t, MailBackendKafka, cfg.MailBackend)
	assert.Equal(t, DefaultGraceDays, cfg.GraceDays, "untouched keys keep defaults")
}

func TestBuild_MissingFile(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Port = "0"
	cfg.MongoURI = "postgres://nope"
	cfg.MinCapacity = 10
	cfg.MaxCapacity = 5
	cfg.MailBackend = "smtp"

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "1. Port")
	assert.Contains(t, msg, "MongoURI")
	assert.Contains(t, msg, "MaxCapacity (5)")
	assert.Contains(t, msg, "MailBackend")
	assert.GreaterOrEqual(t, strings.Count(msg, "\n"), 5)
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017/seatsnag")
	assert.Equal(t, "mongodb://***:***@db:27017/seatsnag", got)
}

func TestIsSuperAdmin(t *testing.T) {
	cfg := Defaults()
	cfg.SuperAdminEmails = []string{"Ops@SeatSnag.io"}

	assert.True(t, cfg.IsSuperAdmin("ops@seatsnag.io"))
	assert.False(t, cfg.IsSuperAdmin("someone@seatsnag.io"))
}
