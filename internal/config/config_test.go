// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://leadflow@localhost/leadflow")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	requiredEnv(t)

	c, err := load("", "")
	require.NoError(t, err)

	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, int64(2<<20), c.Server.MaxUploadBytes)
	require.Equal(t, 168*time.Hour, c.Session.TTL)
	require.Equal(t, "token", c.Session.CookieName)
	require.Equal(t, 10*time.Minute, c.OTP.TTL)
	require.Equal(t, 5, c.OTPRateLimit.Requests)
	require.True(t, c.Database.AutoMigrate)
	require.False(t, c.Mail.Enabled)
	require.False(t, c.IsProduction())
	require.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	requiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := strings.Join([]string{
		"server:",
		"  port: 9090",
		"otp:",
		"  ttl: 5m",
		"log:",
		"  level: debug",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ORIGIN", "https://crm.example.com")

	c, err := load(path, "")
	require.NoError(t, err)

	require.Equal(t, 7070, c.Server.Port)
	require.Equal(t, 5*time.Minute, c.OTP.TTL)
	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, []string{"https://crm.example.com"}, c.CORS.AllowedOrigins)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	requiredEnv(t)

	_, err := load(filepath.Join(t.TempDir(), "absent.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
}

func TestLoadReadsDotenv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://leadflow@localhost/leadflow")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	// godotenv never overrides a variable that is already set, so clear it
	// through t.Setenv first to get it restored afterwards.
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_SECRET="+testSecret+"\n"), 0o600))

	c, err := load("", path)
	require.NoError(t, err)
	require.Equal(t, testSecret, c.Session.Secret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing database", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing redis", func(c *Config) { c.Redis.URL = "" }, "REDIS_URL"},
		{"short secret", func(c *Config) { c.Session.Secret = "short" }, "SESSION_SECRET"},
		{"zero otp ttl", func(c *Config) { c.OTP.TTL = 0 }, "otp.ttl"},
		{
			"wildcard with credentials",
			func(c *Config) { c.CORS.AllowedOrigins = []string{"*"} },
			"wildcard",
		},
		{
			"mail without host",
			func(c *Config) { c.Mail.Enabled = true; c.Mail.Host = "" },
			"SMTP_HOST",
		},
		{
			"insecure otel in production",
			func(c *Config) {
				c.App.Environment = "production"
				c.Otel.Enabled = true
				c.Otel.Insecure = true
			},
			"OTEL_INSECURE",
		},
		{"sample rate above one", func(c *Config) { c.Otel.SampleRate = 1.5 }, "sample_rate"},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			require.ErrorContains(t, validate(c), tt.want)
		})
	}

	require.NoError(t, validate(validConfig()))
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			MaxUploadBytes: 1024,
		},
		Database: DatabaseConfig{URL: "postgres://x"},
		Redis:    RedisConfig{URL: "redis://x"},
		Session:  SessionConfig{Secret: testSecret, TTL: time.Hour},
		OTP:      OTPConfig{TTL: time.Minute},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowCredentials: true,
		},
	}
}
