package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONTENT_BASE_URL", "https://cms.example.test/api")
	t.Setenv("MAIL_RELAY_URL", "https://relay.example.test/send")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 350.0, cfg.Pricing.Base)
	assert.Equal(t, 50.0, cfg.Pricing.BladeEngraving)
	assert.Equal(t, 30.0, cfg.Pricing.HandleEngraving)
	assert.Equal(t, 20.0, cfg.Pricing.OtherDetails)
	assert.Equal(t, int64(5), cfg.Quote.RateLimit)
	assert.Equal(t, time.Hour, cfg.Quote.RateWindow)
	assert.Equal(t, int64(20), cfg.Quote.IPRateLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.Equal(t, 5*time.Minute, cfg.SessionSweep)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, "/images/placeholder.jpg", cfg.Content.PlaceholderImage)
}

func TestLoadRequiresContentURL(t *testing.T) {
	t.Setenv("CONTENT_BASE_URL", "")
	t.Setenv("MAIL_RELAY_URL", "https://relay.example.test/send")
	t.Setenv("STORAGE_BACKEND", "memory")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateBackends(t *testing.T) {
	t.Run("redis needs an address", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "")

		_, err := Load()
		assert.ErrorContains(t, err, "REDIS_ADDR")
	})

	t.Run("postgres needs connection settings", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "postgres")

		_, err := Load()
		assert.ErrorContains(t, err, "DB_HOST")
	})

	t.Run("postgres settings are read with prefix", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_USER", "atelier")
		t.Setenv("DB_NAME", "shop")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "host=db port=5432 user=atelier password= dbname=shop sslmode=disable", cfg.Database.DSN())
	})

	t.Run("unknown backend", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORAGE_BACKEND", "floppy")

		_, err := Load()
		assert.ErrorContains(t, err, "floppy")
	})
}

func TestValidateRejectsNegativePricing(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("PRICE_BLADE_ENGRAVING", "-5")

	_, err := Load()
	assert.ErrorContains(t, err, "negative")
}
