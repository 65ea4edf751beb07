package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	c, err := fromEnv(Default(), envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, ":5000", c.Addr())
	assert.Equal(t, BackendMongo, c.StoreBackend)
	assert.Equal(t, "ds-choco-bliss", c.MongoDatabase)
	assert.Equal(t, 168*time.Hour, c.TokenTTL)
	assert.Equal(t, 10*time.Second, c.ProviderTimeout)
	assert.Equal(t, "INR", c.Currency)
	assert.True(t, c.IsDev())
	assert.NotEmpty(t, c.JWTSecret, "dev gets a fallback secret")
}

func TestOverrides(t *testing.T) {
	t.Parallel()

	c, err := fromEnv(Default(), envOf(map[string]string{
		"APP_ENV":                  "production",
		"PORT":                     "8080",
		"STORE_BACKEND":            "Memory",
		"JWT_SECRET":               "prod-secret",
		"JWT_TTL":                  "24h",
		"RAZORPAY_KEY_ID":          "rzp_live",
		"PAYMENT_PROVIDER_TIMEOUT": "3s",
		"DEFAULT_CURRENCY":         "usd",
		"IMAGES_DIR":               "/srv/images",
	}))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, BackendMemory, c.StoreBackend)
	assert.Equal(t, "prod-secret", c.JWTSecret)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, "rzp_live", c.RazorpayKeyID)
	assert.Equal(t, 3*time.Second, c.ProviderTimeout)
	assert.Equal(t, "USD", c.Currency)
	assert.Equal(t, "/srv/images", c.ImagesDir)
	assert.False(t, c.IsDev())
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad_port", env: map[string]string{"PORT": "http"}},
		{name: "port_range", env: map[string]string{"PORT": "70000"}},
		{name: "backend", env: map[string]string{"STORE_BACKEND": "redis"}},
		{name: "prod_without_secret", env: map[string]string{"APP_ENV": "production"}},
		{name: "timeout", env: map[string]string{"PAYMENT_PROVIDER_TIMEOUT": "0s"}},
		{name: "bad_ttl", env: map[string]string{"JWT_TTL": "week"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := fromEnv(Default(), envOf(tt.env))
			assert.Error(t, err)
		})
	}
}
