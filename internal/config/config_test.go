package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "checkout", cfg.CommissionPolicy)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(file, []byte("PORT=9000\nREMOTE_DSN=host=db\nCOMMISSION_POLICY=confirmed\n"), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := NewLoader(file).Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "host=db", cfg.RemoteDSN)
	assert.Equal(t, "confirmed", cfg.CommissionPolicy)
}

func TestMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.env")).Load()
	assert.Error(t, err)
}
