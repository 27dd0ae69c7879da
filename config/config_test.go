package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 4*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "plans", cfg.ESPlansIndex)
	assert.False(t, cfg.MailSendEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")
	t.Setenv("BCRYPT_COST", "x")

	cfg := Load()
	assert.Equal(t, 4*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.MailSendEnabled)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Env: "production", JWTSecret: "0123456789abcdef0123456789abcdef", JWTTTL: time.Hour, BcryptCost: 10}
	}

	t.Run("valid production config", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("empty secret", func(t *testing.T) {
		c := base()
		c.JWTSecret = "  "
		assert.ErrorContains(t, c.Validate(), "JWT_SECRET must be set")
	})

	t.Run("short secret outside development", func(t *testing.T) {
		c := base()
		c.JWTSecret = "short"
		assert.ErrorContains(t, c.Validate(), "at least 32 bytes")
	})

	t.Run("short secret allowed in development", func(t *testing.T) {
		c := base()
		c.Env = "development"
		c.JWTSecret = "short"
		assert.NoError(t, c.Validate())
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		c := base()
		c.JWTTTL = 0
		assert.ErrorContains(t, c.Validate(), "JWT_TTL")
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		c := base()
		c.BcryptCost = 99
		assert.ErrorContains(t, c.Validate(), "BCRYPT_COST")
	})
}

func TestSplitCSV(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins())
	assert.Empty(t, (&Config{}).ESAddrs())
}
