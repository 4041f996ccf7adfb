package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hayeah/fdl/internal/catalog"
	"github.com/hayeah/fdl/internal/config"
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/metrics"
	"github.com/hayeah/fdl/internal/selection"
)

// App holds the services shared by every subcommand.
type App struct {
	ConfigPath ConfigPath
	Config     *config.Config
	Logger     *slog.Logger
	Counter    metrics.Counter
	History    *history.Store // nil when history is disabled
	Walker     catalog.Walker
	Clipboard  Clipboard
	Console    Console
}

// BuildTree scans dir into a selection tree configured from the app settings.
// sortBy overrides the configured sort key when non-empty.
func (a *App) BuildTree(dir, sortBy string) (*selection.Tree, error) {
	if dir == "" {
		dir = "."
	}
	if sortBy == "" {
		sortBy = a.Config.SortBy
	}
	sortKey, err := selection.ParseSortKey(sortBy)
	if err != nil {
		return nil, err
	}

	opts := selection.Options{SortKey: sortKey}
	if a.Config.DeselectLockFiles {
		opts.Preselect = func(path string) bool { return !selection.IsLockFile(path) }
	}

	a.Logger.Debug("scanning", "dir", dir)
	tree, err := selection.Build(dir, a.Walker, selection.IsTextFile, opts)
	if err != nil {
		return nil, err
	}
	total := tree.Totals()
	a.Logger.Debug("scanned", "dir", dir, "files", total.FileCount, "bytes", total.TotalBytes)
	return tree, nil
}

// record appends a transfer to the history store, if there is one. Failures
// are logged and otherwise ignored.
func (a *App) record(t history.Transfer) {
	if a.History == nil {
		return
	}
	if abs, err := filepath.Abs(t.Root); err == nil {
		t.Root = abs
	}
	if _, err := a.History.Record(t); err != nil {
		a.Logger.Warn("failed to record history", "error", err)
	}
}

// Init writes the default config file.
func (a *App) Init(cmd InitCmd) error {
	path := string(a.ConfigPath)
	if cmd.Force {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := config.Init(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(a.Console.Stdout, "Wrote %s\n", path)
	return nil
}

// InitCmd writes a config file with the default settings.
type InitCmd struct {
	Force bool `arg:"-f,--force" help:"overwrite an existing config file"`
}
