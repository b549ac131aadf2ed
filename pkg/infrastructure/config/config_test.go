package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, time.Second, cfg.Sync.Debounce)

	eps, err := cfg.SyncEpsilon()
	require.NoError(t, err)
	assert.True(t, eps.Equal(decimal.RequireFromString("0.0001")))

	policy, err := cfg.StatusPolicy()
	require.NoError(t, err)
	assert.True(t, policy.IsConsuming(entities.JobDelivered))
	assert.False(t, policy.IsConsuming(entities.JobInProgress))
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
quote:
  labor_rate: "65.50"
  markup_percent: "15"
sync:
  debounce: 250ms
status:
  consuming: [delivered]
`)
	t.Setenv("JOBSHOP_QUOTE_MACHINE_RATE", "90")

	cfg, err := Load(path)
	require.NoError(t, err)

	quote, err := cfg.QuoteDefaults()
	require.NoError(t, err)
	assert.True(t, quote.LaborRate.Equal(decimal.RequireFromString("65.5")))
	assert.True(t, quote.MachineRate.Equal(decimal.NewFromInt(90)))
	assert.True(t, quote.MarkupPercent.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Debounce)

	policy, err := cfg.StatusPolicy()
	require.NoError(t, err)
	assert.False(t, policy.IsConsuming(entities.JobFinished))
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"postgres without dsn": "store:\n  driver: postgres\n",
		"unknown driver":       "store:\n  driver: mongo\n",
		"negative rate":        "quote:\n  labor_rate: \"-1\"\n",
		"unknown status":       "status:\n  consuming: [shipped]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
