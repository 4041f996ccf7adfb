package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// HistoryCmd lists recorded transfers.
type HistoryCmd struct {
	Limit int `arg:"-n,--limit" default:"20" help:"number of entries to show"`
}

// ListHistory prints the most recent transfers, newest first.
func (a *App) ListHistory(cmd HistoryCmd) error {
	if a.History == nil {
		return errors.New("history is disabled (set history_db in the config file)")
	}

	transfers, err := a.History.Recent(cmd.Limit)
	if err != nil {
		return err
	}
	if len(transfers) == 0 {
		fmt.Fprintln(a.Console.Stdout, "No transfers recorded")
		return nil
	}

	w := tabwriter.NewWriter(a.Console.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tKIND\tFILES\tSIZE\tROOT\tDESTINATION")
	for _, t := range transfers {
		files := fmt.Sprint(t.Files)
		if t.Skipped > 0 {
			files = fmt.Sprintf("%d (+%d skipped)", t.Files, t.Skipped)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			humanize.Time(t.CreatedAt),
			t.Kind,
			files,
			humanize.Bytes(uint64(t.Bytes)),
			t.Root,
			t.Destination,
		)
	}
	return w.Flush()
}
