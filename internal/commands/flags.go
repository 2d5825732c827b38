package commands

import (
	"os"
	"path/filepath"

	"github.com/tusk-sh/tusk/internal/core/config"
)

// Flags holds the global flag values shared by all commands. The root
// command's Before hook populates Config and App.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	DryRun     bool
	Yes        bool

	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tusk", "config.yaml")
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	return config.DefaultDataDir()
}
