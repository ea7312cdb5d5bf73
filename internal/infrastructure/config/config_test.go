package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"ORDER_ENGINE_APP_NAME":                os.Getenv("ORDER_ENGINE_APP_NAME"),
		"ORDER_ENGINE_APP_ENV":                 os.Getenv("ORDER_ENGINE_APP_ENV"),
		"ORDER_ENGINE_DATABASE_DRIVER":         os.Getenv("ORDER_ENGINE_DATABASE_DRIVER"),
		"ORDER_ENGINE_DATABASE_HOST":           os.Getenv("ORDER_ENGINE_DATABASE_HOST"),
		"ORDER_ENGINE_DATABASE_PORT":           os.Getenv("ORDER_ENGINE_DATABASE_PORT"),
		"ORDER_ENGINE_DATABASE_USER":           os.Getenv("ORDER_ENGINE_DATABASE_USER"),
		"ORDER_ENGINE_DATABASE_PASSWORD":       os.Getenv("ORDER_ENGINE_DATABASE_PASSWORD"),
		"ORDER_ENGINE_DATABASE_DBNAME":         os.Getenv("ORDER_ENGINE_DATABASE_DBNAME"),
		"ORDER_ENGINE_DATABASE_SSLMODE":        os.Getenv("ORDER_ENGINE_DATABASE_SSLMODE"),
		"ORDER_ENGINE_DATABASE_MAX_OPEN_CONNS": os.Getenv("ORDER_ENGINE_DATABASE_MAX_OPEN_CONNS"),
		"ORDER_ENGINE_DATABASE_MAX_IDLE_CONNS": os.Getenv("ORDER_ENGINE_DATABASE_MAX_IDLE_CONNS"),
		"ORDER_ENGINE_LOCK_BACKEND":            os.Getenv("ORDER_ENGINE_LOCK_BACKEND"),
		"ORDER_ENGINE_LOCK_TTL":                os.Getenv("ORDER_ENGINE_LOCK_TTL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "order-engine", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "orders", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Lock.Backend)
		assert.Equal(t, "order:version:lock:", cfg.Lock.KeyPrefix)
		assert.Equal(t, 10*time.Second, cfg.Lock.TTL)
		assert.Equal(t, 50*time.Millisecond, cfg.Lock.RetryInterval)
	})

	t.Run("loads values from environment variables with prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_APP_NAME", "test-app")
		os.Setenv("ORDER_ENGINE_APP_ENV", "testing")
		os.Setenv("ORDER_ENGINE_DATABASE_HOST", "testdb.local")
		os.Setenv("ORDER_ENGINE_DATABASE_PORT", "5433")
		os.Setenv("ORDER_ENGINE_DATABASE_USER", "testuser")
		os.Setenv("ORDER_ENGINE_DATABASE_PASSWORD", "testpass")
		os.Setenv("ORDER_ENGINE_DATABASE_DBNAME", "testdb")
		os.Setenv("ORDER_ENGINE_DATABASE_SSLMODE", "require")
		os.Setenv("ORDER_ENGINE_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("ORDER_ENGINE_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("ORDER_ENGINE_LOCK_BACKEND", "redis")
		os.Setenv("ORDER_ENGINE_LOCK_TTL", "30s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "redis", cfg.Lock.Backend)
		assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("ORDER_ENGINE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_DATABASE_DRIVER", "oracle")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_LOCK_BACKEND", "zookeeper")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock.backend")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"ORDER_ENGINE_APP_ENV":           os.Getenv("ORDER_ENGINE_APP_ENV"),
		"ORDER_ENGINE_DATABASE_DRIVER":   os.Getenv("ORDER_ENGINE_DATABASE_DRIVER"),
		"ORDER_ENGINE_DATABASE_PASSWORD": os.Getenv("ORDER_ENGINE_DATABASE_PASSWORD"),
		"ORDER_ENGINE_DATABASE_SSLMODE":  os.Getenv("ORDER_ENGINE_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_APP_ENV", "production")
		os.Setenv("ORDER_ENGINE_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_APP_ENV", "production")
		os.Setenv("ORDER_ENGINE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ORDER_ENGINE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_APP_ENV", "production")
		os.Setenv("ORDER_ENGINE_DATABASE_DRIVER", "sqlite")
		os.Setenv("ORDER_ENGINE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ORDER_ENGINE_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite is not supported in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDER_ENGINE_APP_ENV", "production")
		os.Setenv("ORDER_ENGINE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ORDER_ENGINE_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
