package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "identity-service", cfg.Auth.JWTIssuer)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginRateWindow)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.HTTP.EnforceAdminRBAC)
	assert.Equal(t, "identity", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"ENV":                  "production",
		"BCRYPT_COST":          "12",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"ENFORCE_ADMIN_RBAC":   "true",
		"LOGIN_RATE_WINDOW":    "1m",
		"AUDIT_WORKERS":        "2",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.HTTP.EnforceAdminRBAC)
	assert.Equal(t, time.Minute, cfg.Auth.LoginRateWindow)
	assert.Equal(t, 2, cfg.Audit.Workers)
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"cost too low":     {"JWT_SECRET": "s", "BCRYPT_COST": "3"},
		"zero rate limit":  {"JWT_SECRET": "s", "LOGIN_RATE_LIMIT": "0"},
		"malformed window": {"JWT_SECRET": "s", "LOGIN_RATE_WINDOW": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
