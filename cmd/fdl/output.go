package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hayeah/fdl/fdl"
	"golang.org/x/term"
)

// destination names, as recorded in history
const (
	destClipboard = "clipboard"
	destStdout    = "-"
)

// writeOutput delivers text to the clipboard (dest ""), stdout ("-") or a file.
// It returns the destination name that was used.
func (a *App) writeOutput(dest, text string) (string, error) {
	switch dest {
	case "", destClipboard:
		if err := a.Clipboard.WriteAll(text); err != nil {
			return destClipboard, fmt.Errorf("failed to write clipboard: %w", err)
		}
		return destClipboard, nil
	case destStdout:
		_, err := io.WriteString(a.Console.Stdout, text)
		return destStdout, err
	default:
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return dest, err
			}
		}
		return dest, os.WriteFile(dest, []byte(text), 0644)
	}
}

// readInput loads an FDL document from the clipboard (src ""), stdin ("-") or
// a file.
func (a *App) readInput(src string) ([]fdl.Record, string, error) {
	switch src {
	case "", destClipboard:
		text, err := a.Clipboard.ReadAll()
		if err != nil {
			return nil, destClipboard, fmt.Errorf("failed to read clipboard: %w", err)
		}
		records, err := fdl.Decode(text)
		return records, destClipboard, err
	case destStdout:
		records, err := fdl.DecodeReader(a.Console.Stdin)
		return records, destStdout, err
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, src, err
		}
		defer f.Close()
		records, err := fdl.DecodeReader(f)
		return records, src, err
	}
}

// termWidth returns the width of the terminal, or 80 as a fallback.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// listPaths writes one indented line per path.
func listPaths(w io.Writer, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(p))
	}
}
