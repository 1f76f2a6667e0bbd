package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"STOCKER_APP_NAME",
	"STOCKER_APP_ENV",
	"STOCKER_APP_PORT",
	"STOCKER_DATABASE_DRIVER",
	"STOCKER_DATABASE_HOST",
	"STOCKER_DATABASE_PORT",
	"STOCKER_DATABASE_USER",
	"STOCKER_DATABASE_PASSWORD",
	"STOCKER_DATABASE_DBNAME",
	"STOCKER_DATABASE_MAX_OPEN_CONNS",
	"STOCKER_DATABASE_MAX_IDLE_CONNS",
	"STOCKER_JWT_SECRET",
	"STOCKER_NOTIFICATION_OPERATOR_EMAIL",
	"STOCKER_CACHE_DASHBOARD_TTL",
	"STOCKER_STORAGE_ENABLED",
	"STOCKER_TELEMETRY_SAMPLING_RATIO",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		// t.Setenv restores the original value when the test ends
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stocker", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "stocker", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30*time.Second, cfg.Cache.DashboardTTL)
		assert.Equal(t, 10*time.Second, cfg.Notification.Timeout)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with STOCKER prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_APP_PORT", "9000")
		t.Setenv("STOCKER_DATABASE_DRIVER", "mysql")
		t.Setenv("STOCKER_DATABASE_USER", "stock")
		t.Setenv("STOCKER_DATABASE_PASSWORD", "secret")
		t.Setenv("STOCKER_CACHE_DASHBOARD_TTL", "2m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, 2*time.Minute, cfg.Cache.DashboardTTL)
		assert.Equal(t, "stock:secret@tcp(localhost:3306)/stocker?charset=utf8mb4&parseTime=true&loc=UTC", cfg.Database.DSN())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STOCKER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("storage needs a bucket", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_Production(t *testing.T) {
	t.Run("requires a long jwt secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_APP_ENV", "production")
		t.Setenv("STOCKER_JWT_SECRET", "short")
		t.Setenv("STOCKER_NOTIFICATION_OPERATOR_EMAIL", "ops@shop.test")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("requires an operator email", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_APP_ENV", "production")
		t.Setenv("STOCKER_JWT_SECRET", "0123456789abcdef0123456789abcdef")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "operator_email")
	})

	t.Run("valid production config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOCKER_APP_ENV", "production")
		t.Setenv("STOCKER_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("STOCKER_NOTIFICATION_OPERATOR_EMAIL", "ops@shop.test")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, User: "u", Password: "p@ss", Host: "db", Port: 5432, DBName: "stock", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/stock?sslmode=require", pg.DSN())

	lite := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
	assert.Equal(t, ":memory:", lite.DSN())
}
