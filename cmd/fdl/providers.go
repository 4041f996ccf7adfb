package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	"github.com/google/wire"
	"github.com/hayeah/fdl/ignore"
	"github.com/hayeah/fdl/internal/catalog"
	"github.com/hayeah/fdl/internal/config"
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/logging"
	"github.com/hayeah/fdl/internal/metrics"
)

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Console is the process's standard streams.
type Console struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ProviderSet builds an App from parsed arguments.
var ProviderSet = wire.NewSet(
	ProvideConfigPath,
	ProvideConfig,
	ProvideLogger,
	ProvideCounter,
	ProvideHistory,
	ProvideWalker,
	ProvideClipboard,
	ProvideConsole,
	wire.Struct(new(App), "*"),
)

// ConfigPath is the location of the config file.
type ConfigPath string

func ProvideConfigPath(args Args) ConfigPath {
	if args.Config != "" {
		return ConfigPath(args.Config)
	}
	return ConfigPath(config.DefaultPath())
}

// ProvideConfig loads the config file and applies flag overrides.
func ProvideConfig(path ConfigPath, args Args) (*config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return nil, err
	}
	if args.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// ProvideLogger installs the default logger. The interactive picker never
// logs to the terminal.
func ProvideLogger(cfg *config.Config, args Args) (*slog.Logger, func(), error) {
	logger, closer, err := logging.Setup(logging.Options{
		Level:    cfg.LogLevel,
		File:     cfg.LogFile,
		Terminal: !args.interactive(),
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { closer.Close() }, nil
}

func ProvideCounter(cfg *config.Config) (metrics.Counter, error) {
	return metrics.NewCounter(cfg.TokenEstimator)
}

// ProvideHistory opens the history store. History is best effort: when it is
// disabled or cannot be opened the store is nil.
func ProvideHistory(cfg *config.Config, logger *slog.Logger) (*history.Store, func()) {
	if cfg.HistoryDB == "" {
		return nil, func() {}
	}
	store, err := history.Open(cfg.HistoryDB, logger)
	if err != nil {
		logger.Warn("history disabled", "path", cfg.HistoryDB, "error", err)
		return nil, func() {}
	}
	return store, func() { store.Close() }
}

func ProvideWalker(cfg *config.Config) catalog.Walker {
	return catalog.OSWalker{Options: ignore.Options{
		Gitignore: cfg.RespectGitignore,
		Exclude:   cfg.Exclude,
	}}
}

func ProvideClipboard() Clipboard { return systemClipboard{} }

func ProvideConsole() Console {
	return Console{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}
