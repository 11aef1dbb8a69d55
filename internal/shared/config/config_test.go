package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "betting-service")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultMarket(), cfg.Market)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "bet_placed", cfg.TopicBetPlaced)
	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "odds-recalc-worker")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MIN_BET_AMOUNT", "5")
	t.Setenv("HOUSE_EDGE", "0.08")
	t.Setenv("RECALC_INTERVAL", "30s")
	t.Setenv("ADMIN_IDS", "10, 20,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 5.0, cfg.Market.MinBet)
	assert.Equal(t, 0.08, cfg.Market.HouseEdge)
	assert.Equal(t, 30*time.Second, cfg.Market.RecalcInterval)
	assert.Empty(t, cfg.HTTPPort)
	assert.True(t, cfg.IsAdmin(20))
	assert.False(t, cfg.IsAdmin(30))
}

func TestLoad_RejectsSwappedBetLimits(t *testing.T) {
	t.Setenv("MIN_BET_AMOUNT", "500")
	t.Setenv("MAX_BET_AMOUNT", "100")

	_, err := Load()
	assert.ErrorContains(t, err, "min bet")

	t.Setenv("MAX_BET_AMOUNT", "500")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Market.MinBet, cfg.Market.MaxBet)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_driver: sqlite
database_url: /tmp/bets.db
admin_ids: [1, 2]
market:
  max_bet_amount: 500
  default_odds: 0.5
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "/tmp/override.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/override.db", cfg.DatabaseURL)
	assert.Equal(t, 500.0, cfg.Market.MaxBet)
	// odd padrão inválida volta ao default
	assert.Equal(t, 2.0, cfg.Market.DefaultOdds)
	assert.Equal(t, []int64{1, 2}, cfg.AdminIDs)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"MIN_BET_AMOUNT":  "ten",
		"RECALC_INTERVAL": "5 minutes",
		"ADMIN_IDS":       "1,x",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
