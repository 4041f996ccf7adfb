package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/unpack"
)

// PasteCmd writes the files of an FDL document into a directory.
type PasteCmd struct {
	Dir          string `arg:"positional,required" help:"target directory, created if missing"`
	Input        string `arg:"-i,--input" help:"source: clipboard (default), - for stdin, or a file path"`
	DryRun       bool   `arg:"-n,--dry-run" help:"list what would be written without writing"`
	FinalNewline bool   `arg:"--final-newline" help:"end every non-empty file with a newline"`
}

// Paste decodes the document and materializes it under cmd.Dir. Existing
// files are overwritten.
func (a *App) Paste(cmd PasteCmd) error {
	records, src, err := a.readInput(cmd.Input)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no files found in %s", src)
	}

	report, err := unpack.Unpack(cmd.Dir, records, unpack.Options{
		FinalNewline: cmd.FinalNewline || a.Config.FinalNewline,
		DryRun:       cmd.DryRun,
	})
	if err != nil {
		return err
	}

	out := a.Console.Stderr
	overwritten := make(map[string]bool, len(report.Overwritten))
	for _, p := range report.Overwritten {
		overwritten[p] = true
	}
	verb := "Wrote"
	if cmd.DryRun {
		verb = "Would write"
	}
	for _, p := range report.Written {
		if overwritten[p] {
			fmt.Fprintf(out, "%s %s (overwritten)\n", verb, p)
		} else {
			fmt.Fprintf(out, "%s %s\n", verb, p)
		}
	}

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, fmt.Sprintf("%s (%v)", s.Path, s.Err))
	}
	listPaths(out, "Skipped", skipped)

	if cmd.DryRun {
		fmt.Fprintf(out, "Dry run: %d files (%s) into %s\n", len(report.Written), humanize.Bytes(uint64(report.Bytes)), cmd.Dir)
		return nil
	}
	fmt.Fprintf(out, "Pasted %d files (%s) into %s\n", len(report.Written), humanize.Bytes(uint64(report.Bytes)), cmd.Dir)

	a.record(history.Transfer{
		Kind:        history.KindPaste,
		Root:        cmd.Dir,
		Destination: src,
		Files:       len(report.Written),
		Bytes:       report.Bytes,
		Skipped:     len(report.Skipped),
	})
	return nil
}
