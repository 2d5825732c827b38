// Package config handles configuration loading and validation for tusk.
// All settings are resolved once at startup into an explicit Config
// value; nothing reads the environment ad hoc afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// DataDir is the base directory for backups, the ledger, and logs.
	// Set by the caller, not from the config file.
	DataDir string `yaml:"-" env:"-"`

	// Retention caps the execution ledger at the most recent N entries.
	Retention int `yaml:"retention" env:"TUSK_RETENTION"`

	// StopOnError halts a plan at the first failing action. The
	// default is to continue through the remaining actions so partial
	// progress stays visible.
	StopOnError bool `yaml:"stop_on_error" env:"TUSK_STOP_ON_ERROR"`

	// Interpreter executes interpreted-code actions.
	Interpreter string `yaml:"interpreter" env:"TUSK_INTERPRETER"`

	// CommandTimeout bounds each shell action.
	CommandTimeout time.Duration `yaml:"command_timeout" env:"TUSK_COMMAND_TIMEOUT"`

	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig configures the plan generator model client.
type AgentConfig struct {
	// Enabled gates remote model calls; when false the agent only
	// handles direct commands and offline fallbacks.
	Enabled bool `yaml:"enabled" env:"TUSK_AGENT_ENABLED"`
	// BaseURL selects the OpenAI-compatible endpoint. Groq and Ollama
	// both speak this protocol.
	BaseURL string `yaml:"base_url" env:"TUSK_BASE_URL"`
	Model   string `yaml:"model" env:"TUSK_MODEL"`
	APIKey  string `yaml:"-" env:"TUSK_API_KEY"`

	MaxTokens   int     `yaml:"max_tokens" env:"TUSK_MAX_TOKENS"`
	Temperature float64 `yaml:"temperature" env:"TUSK_TEMPERATURE"`
}

// BackupDir returns the backup store directory under DataDir.
func (c Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// LedgerPath returns the execution ledger file under DataDir.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "execution_history.json")
}

// DefaultDataDir returns ~/.tusk, falling back to the current
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tusk"
	}
	return filepath.Join(home, ".tusk")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:        DefaultDataDir(),
		Retention:      20,
		StopOnError:    false,
		Interpreter:    "python3",
		CommandTimeout: 60 * time.Second,
		Agent: AgentConfig{
			Enabled:     true,
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama3-70b-8192",
			MaxTokens:   2000,
			Temperature: 0.7,
		},
	}
}

// Load reads configuration from the yaml file at path, layered over
// defaults, then applies environment overrides. A missing file is not
// an error; the defaults stand.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults stand
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %d", c.Retention)
	}
	if c.Interpreter == "" {
		return fmt.Errorf("interpreter must not be empty")
	}
	if c.Agent.Enabled && c.Agent.Model == "" {
		return fmt.Errorf("agent.model must be set when the agent is enabled")
	}
	return nil
}
