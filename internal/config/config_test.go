package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryRead_Defaults(t *testing.T) {
	cfg, err := TryRead()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/orders", cfg.API.Paths().Orders)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.OTel.Enabled)
}

func TestTryRead_Overrides(t *testing.T) {
	t.Setenv("KOI_API_BASE_URL", "https://api.koi.example")
	t.Setenv("KOI_API_ORDERS_PATH", "/api/Order")
	t.Setenv("KOI_API_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg, err := TryRead()
	require.NoError(t, err)

	assert.Equal(t, "https://api.koi.example", cfg.API.BaseURL)
	assert.Equal(t, "/api/Order", cfg.API.Paths().Orders)
	assert.Equal(t, "/content", cfg.API.Paths().Content)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.OTel.Tracer().Enabled)
	assert.Equal(t, 0.25, cfg.OTel.Tracer().SampleRatio)
}

func TestTryRead_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("KOI_API_TIMEOUT", "0s")
	_, err := TryRead()
	assert.Error(t, err)
}

func TestTryReadMockAPI(t *testing.T) {
	t.Setenv("MOCK_API_PAYMENT_THRESHOLD", "500")
	cfg, err := TryReadMockAPI()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, 500.0, cfg.PaymentThreshold)
	assert.True(t, cfg.Seed)
}

func TestTryRead_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KOI_API_ORDERS_PATH=/from-file\nREDIS_NAMESPACE=from-file\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("REDIS_NAMESPACE", "from-env")
	// godotenv writes straight into the process environment.
	t.Cleanup(func() { _ = os.Unsetenv("KOI_API_ORDERS_PATH") })

	cfg, err := TryRead()
	require.NoError(t, err)
	assert.Equal(t, "/from-file", cfg.API.OrdersPath)
	assert.Equal(t, "from-env", cfg.Redis.Namespace)
}
