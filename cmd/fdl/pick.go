package main

import (
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/tui"
)

// PickCmd opens the interactive selector.
type PickCmd struct {
	Dir  string `arg:"positional" help:"directory to pack (default .)"`
	Sort string `arg:"--sort" help:"initial sort order: name or size"`
}

// Pick runs the interactive selector over cmd.Dir.
func (a *App) Pick(cmd PickCmd) error {
	tree, err := a.BuildTree(cmd.Dir, cmd.Sort)
	if err != nil {
		return err
	}

	return tui.Run(tree, tui.Options{
		Counter:   a.Counter,
		Clipboard: a.Clipboard.WriteAll,
		SaveDir:   a.Config.SaveDir,
		OnTransfer: func(t tui.Transfer) {
			a.Logger.Info("exported", "kind", t.Kind, "destination", t.Destination, "files", len(t.Report.Files), "bytes", t.Bytes)
			a.record(history.Transfer{
				Kind:        t.Kind,
				Root:        tree.RootDir(),
				Destination: t.Destination,
				Files:       len(t.Report.Files),
				Bytes:       int64(t.Bytes),
				Skipped:     len(t.Report.Skipped),
			})
		},
	})
}
