package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadActivityPatterns(t *testing.T) {
	t.Run("empty path means built-in table", func(t *testing.T) {
		patterns, err := LoadActivityPatterns("")
		require.NoError(t, err)
		assert.Nil(t, patterns)
	})

	t.Run("reads buy and sell labels", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "activities.yaml")
		content := "buy:\n  - BUY\n  - REINVEST.*\nsell:\n  - SELL\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		patterns, err := LoadActivityPatterns(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"BUY", "REINVEST.*"}, patterns.Buy)
		assert.Equal(t, []string{"SELL"}, patterns.Sell)
	})

	t.Run("rejects a table without buy labels", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "activities.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sell:\n  - SELL\n"), 0o600))

		_, err := LoadActivityPatterns(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadActivityPatterns(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadConfig_FallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "-4")
	t.Setenv("HOLDINGS_CACHE_TTL", "soon")
	t.Setenv("DISPATCH_RATE_PER_SECOND", "abc")
	t.Setenv("EMAIL_SERVICE_PROVIDER", "mock")

	LoadConfig()

	require.NotNil(t, Cfg)
	assert.Equal(t, 1000, Cfg.ImportBatchSize)
	assert.Equal(t, 15*time.Minute, Cfg.HoldingsCacheTTL)
	assert.Equal(t, 5.0, Cfg.DispatchRatePerSecond)
	assert.Equal(t, "mock", Cfg.EmailServiceProvider)
}
