package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 30, cfg.Leave.DefaultAllocation)
	assert.Equal(t, 24*time.Hour, cfg.Leave.ProvisionInterval)
	assert.True(t, cfg.Leave.ProvisionOnStartup)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.App.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("LEAVE_DEFAULT_ALLOCATION", "22")
	t.Setenv("LEAVE_PROVISION_INTERVAL", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 22, cfg.Leave.DefaultAllocation)
	assert.Zero(t, cfg.Leave.ProvisionInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSAllowedOrigins)
	assert.Equal(t, "postgres://postgres:pw@db:5432/cmlabs-leave?sslmode=disable", cfg.DatabaseURL())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:  DatabaseConfig{Password: "pw"},
			JWT:       JWTConfig{Secret: "secret"},
			App:       AppConfig{StorageDriver: StorageDriverPostgres},
			Leave:     LeaveConfig{DefaultAllocation: 30, ProvisionInterval: time.Hour},
			RateLimit: RateLimitConfig{RPS: 1, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"memory needs no password", func(c *Config) {
			c.App.StorageDriver = StorageDriverMemory
			c.Database.Password = ""
		}, false},
		{"postgres needs password", func(c *Config) { c.Database.Password = "" }, true},
		{"unknown driver", func(c *Config) { c.App.StorageDriver = "sqlite" }, true},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"negative allocation", func(c *Config) { c.Leave.DefaultAllocation = -1 }, true},
		{"negative interval", func(c *Config) { c.Leave.ProvisionInterval = -time.Second }, true},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
