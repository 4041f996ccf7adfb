package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/hayeah/fdl/fdl"
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/metrics"
	"github.com/hayeah/fdl/internal/metrics/chart"
	"github.com/hayeah/fdl/internal/selection"
)

// CopyCmd exports files without the UI.
type CopyCmd struct {
	Dir        string `arg:"positional" help:"directory to pack (default .)"`
	Select     string `arg:"-s,--select" help:"selection patterns, one per line (see README for syntax)"`
	SelectFile string `arg:"-f,--select-file" help:"read selection patterns from a file"`
	Output     string `arg:"-o,--output" help:"destination: clipboard (default), - for stdout, or a file path"`
	Sort       string `arg:"--sort" help:"file order: name or size"`
	Chart      bool   `arg:"--chart" help:"print a token breakdown by directory"`
}

// Copy packs the text files under cmd.Dir, narrowed by the selection patterns,
// and writes the document to the requested destination.
func (a *App) Copy(cmd CopyCmd) error {
	tree, err := a.BuildTree(cmd.Dir, cmd.Sort)
	if err != nil {
		return err
	}

	patterns := cmd.Select
	if cmd.SelectFile != "" {
		data, err := os.ReadFile(cmd.SelectFile)
		if err != nil {
			return fmt.Errorf("failed to read select file: %w", err)
		}
		patterns += "\n" + string(data)
	}
	if patterns != "" {
		matchers, err := selection.ParseMatchersFromString(patterns)
		if err != nil {
			return err
		}
		if _, err := tree.SelectMatching(matchers); err != nil {
			return err
		}
	}

	collector := metrics.NewCollector(a.Counter, runtime.NumCPU())
	text, report, err := tree.Encode(func(rec fdl.Record) {
		collector.Add(rec.Path, rec.Content)
	})
	collector.Wait()
	if err != nil {
		return err
	}

	dest, err := a.writeOutput(cmd.Output, text)
	if err != nil {
		return err
	}

	a.record(history.Transfer{
		Kind:        history.KindCopy,
		Root:        tree.RootDir(),
		Destination: dest,
		Files:       len(report.Files),
		Bytes:       int64(len(text)),
		Skipped:     len(report.Skipped),
	})

	out := a.Console.Stderr
	if cmd.Chart && len(report.Files) > 0 {
		if err := chart.Print(collector.Files(), chart.DefaultOptions(termWidth, out)); err != nil {
			return err
		}
	}
	a.printCopySummary(report, collector.Total(), len(text), dest)
	return nil
}

func (a *App) printCopySummary(report *selection.ExportReport, total metrics.Item, size int, dest string) {
	out := a.Console.Stderr

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, fmt.Sprintf("%s (%v)", s.Path, s.Err))
	}
	listPaths(out, "Skipped", skipped)
	listPaths(out, "Contains marker lines, will not round-trip", report.Collisions)

	where := "to clipboard"
	switch dest {
	case destClipboard:
	case destStdout:
		where = "to stdout"
	default:
		where = "to " + dest
	}
	fmt.Fprintf(out, "Copied %d files (%s, ~%s tokens, %s lines) %s\n",
		len(report.Files),
		humanize.Bytes(uint64(size)),
		humanize.Comma(int64(total.Tokens)),
		humanize.Comma(int64(total.Lines)),
		where)
}
