package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the config file location.
const EnvPath = "FDL_CONFIG"

// Config holds user settings for fdl.
type Config struct {
	RespectGitignore  bool     `toml:"respect_gitignore"`
	Exclude           []string `toml:"exclude"`
	DeselectLockFiles bool     `toml:"deselect_lock_files"`
	SortBy            string   `toml:"sort_by"`         // "name" or "size"
	TokenEstimator    string   `toml:"token_estimator"` // "simple" or "tiktoken"
	HistoryDB         string   `toml:"history_db"`      // "" disables history
	SaveDir           string   `toml:"save_dir"`
	LogLevel          string   `toml:"log_level"`
	LogFile           string   `toml:"log_file"`
	FinalNewline      bool     `toml:"final_newline"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		RespectGitignore:  true,
		DeselectLockFiles: true,
		SortBy:            "name",
		TokenEstimator:    "simple",
		HistoryDB:         defaultHistoryDB(),
		SaveDir:           ".",
		LogLevel:          "info",
	}
}

func defaultHistoryDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "fdl", "history.db")
}

// DefaultPath returns $FDL_CONFIG, or ~/.config/fdl/config.toml.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fdl", "config.toml")
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r. Keys absent from r keep their defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HistoryDB = expandHome(cfg.HistoryDB)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.SaveDir = expandHome(cfg.SaveDir)
	return cfg, nil
}

// Write encodes a Config to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads the config at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.SortBy) {
	case "", "name", "size":
	default:
		return fmt.Errorf("invalid sort_by %q: want name or size", c.SortBy)
	}
	switch strings.ToLower(c.TokenEstimator) {
	case "", "simple", "tiktoken":
	default:
		return fmt.Errorf("invalid token_estimator %q: want simple or tiktoken", c.TokenEstimator)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
