package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/foodhub")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 60*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL())
	assert.Equal(t, 5*time.Minute, cfg.ResetTokenTTL())
	assert.Equal(t, 10*time.Minute, cfg.OTPRequestWindow())
	assert.False(t, cfg.UnifyLoginErrors)
	assert.False(t, cfg.ExposeResetLink)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/foodhub")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_SESSION_TTL_MINUTES", "0")
	t.Setenv("AUTH_UNIFY_LOGIN_ERRORS", "true")
	t.Setenv("AUTH_EXPOSE_RESET_LINK", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.SessionTTL())
	assert.True(t, cfg.UnifyLoginErrors)
	assert.True(t, cfg.ExposeResetLink)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_RequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/foodhub")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
