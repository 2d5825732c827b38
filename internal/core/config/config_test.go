package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "never-written.yml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Retention)
	assert.False(t, cfg.StopOnError)
	assert.Equal(t, "python3", cfg.Interpreter)
	assert.Equal(t, 60*time.Second, cfg.CommandTimeout)
	assert.True(t, cfg.Agent.Enabled)
}

func TestLoadYamlOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
retention: 5
stop_on_error: true
interpreter: python3.12
agent:
  model: llama3-8b-8192
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retention)
	assert.True(t, cfg.StopOnError)
	assert.Equal(t, "python3.12", cfg.Interpreter)
	assert.Equal(t, "llama3-8b-8192", cfg.Agent.Model)
	// Untouched keys keep their defaults.
	assert.Equal(t, 2000, cfg.Agent.MaxTokens)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("retention: 5\n"), 0o644))

	t.Setenv("TUSK_RETENTION", "7")
	t.Setenv("TUSK_MODEL", "mixtral-8x7b")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Retention)
	assert.Equal(t, "mixtral-8x7b", cfg.Agent.Model)
}

func TestLoadInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("retention: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("zero retention rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Retention = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty interpreter rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Interpreter = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("enabled agent needs a model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.Model = ""
		assert.Error(t, cfg.Validate())

		cfg.Agent.Enabled = false
		assert.NoError(t, cfg.Validate())
	})
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data/tusk"

	assert.Equal(t, "/data/tusk/backups", cfg.BackupDir())
	assert.Equal(t, "/data/tusk/execution_history.json", cfg.LedgerPath())
}
