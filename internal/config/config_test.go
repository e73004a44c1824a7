package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Port:             "8460",
		Env:              "test",
		JWTSecret:        "dev-secret-change-in-production",
		DBPassword:       "moim",
		AIRequestTimeout: 15 * time.Second,
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validTestConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Port = ""
	assert.EqualError(t, cfg.Validate(), "PORT is required")
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWTSecret = ""
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET is required")
}

func TestValidate_NonPositiveAITimeout(t *testing.T) {
	cfg := validTestConfig()
	cfg.AIRequestTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.DBPassword = "something-strong"
	cfg.DBSSLMode = "require"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Env = "prod"
	cfg.JWTSecret = "short"
	cfg.DBPassword = "something-strong"
	assert.Error(t, cfg.Validate())
}
