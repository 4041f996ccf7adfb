// Package chart renders per-file token counts as a bar chart grouped by
// directory. Directories below a share of the total are folded into a single
// "dir/**" row. Terminal width and output are injected.
package chart

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hayeah/fdl/internal/metrics"
)

// Options controls layout.
type Options struct {
	BarWidth     int        // 0 sizes the bar from the terminal, capped at 30
	FillRune     rune       // defaults to '█'
	ThresholdPct float64    // children under this share of the total are folded
	TermWidth    func() int // columns available
	Writer       io.Writer
}

// DefaultOptions folds anything under 1% of the total.
func DefaultOptions(termWidth func() int, w io.Writer) Options {
	return Options{
		FillRune:     '█',
		ThresholdPct: 1,
		TermWidth:    termWidth,
		Writer:       w,
	}
}

// Row is one line of the chart.
type Row struct {
	Label  string
	Tokens int
	Files  int
}

// Print writes the chart for files, keyed by slash-separated path.
func Print(files map[string]metrics.Item, opt Options) error {
	root := newTree(files)
	rows := flatten(root, opt.ThresholdPct)
	for _, line := range layout(rows, root.tokens, root.files, opt) {
		if _, err := fmt.Fprintln(opt.Writer, line); err != nil {
			return err
		}
	}
	return nil
}

type node struct {
	name     string
	file     bool
	tokens   int // rolled up for directories
	files    int
	children map[string]*node
}

// newTree builds the directory tree and rolls token and file counts up to
// the root.
func newTree(files map[string]metrics.Item) *node {
	root := &node{name: ".", children: map[string]*node{}}
	for p, item := range files {
		cur := root
		for _, part := range strings.Split(p, "/") {
			child, ok := cur.children[part]
			if !ok {
				child = &node{name: part, children: map[string]*node{}}
				cur.children[part] = child
			}
			cur = child
		}
		cur.file = true
		cur.tokens = item.Tokens
		cur.files = 1
	}
	root.rollUp()
	return root
}

func (n *node) rollUp() {
	if n.file {
		return
	}
	n.tokens, n.files = 0, 0
	for _, c := range n.children {
		c.rollUp()
		n.tokens += c.tokens
		n.files += c.files
	}
}

func (n *node) sorted() []*node {
	out := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// flatten turns the tree into chart rows in path order. Within a directory,
// children below thresholdPct of the total are summed into one "dir/**" row.
func flatten(root *node, thresholdPct float64) []Row {
	cutoff := float64(root.tokens) * thresholdPct / 100

	var rows []Row
	var visit func(n *node, label string)
	visit = func(n *node, label string) {
		if n.file {
			rows = append(rows, Row{Label: label, Tokens: n.tokens, Files: 1})
			return
		}

		folded := Row{Label: path.Join(label, "**")}
		for _, c := range n.sorted() {
			if float64(c.tokens) < cutoff {
				folded.Tokens += c.tokens
				folded.Files += c.files
				continue
			}
			visit(c, path.Join(label, c.name))
		}
		if folded.Files > 0 {
			rows = append(rows, folded)
		}
	}
	visit(root, "")
	return rows
}

// layout formats rows smallest first, so the largest sits just above the
// total line.
func layout(rows []Row, total, fileCount int, opt Options) []string {
	if len(rows) == 0 || total == 0 {
		return []string{"No tokens recorded"}
	}

	rows = append([]Row(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Tokens < rows[j].Tokens })

	tokenStr := make([]string, len(rows))
	tokensW := len(humanize.Comma(int64(total)))
	for i, r := range rows {
		tokenStr[i] = humanize.Comma(int64(r.Tokens))
	}

	width := 80
	if opt.TermWidth != nil {
		width = opt.TermWidth()
	}
	barW := opt.BarWidth
	if barW <= 0 {
		barW = min(30, width*35/100)
	}
	const pctW, gaps = 6, 6
	labelW := max(8, width-barW-pctW-tokensW-gaps)

	fill := opt.FillRune
	if fill == 0 {
		fill = '█'
	}
	largest := rows[len(rows)-1].Tokens

	lines := make([]string, 0, len(rows)+2)
	for i, r := range rows {
		n := (r.Tokens*barW + largest/2) / largest
		if n == 0 && r.Tokens > 0 {
			n = 1
		}
		bar := strings.Repeat(string(fill), n) + strings.Repeat(" ", barW-n)
		lines = append(lines, fmt.Sprintf("%s  %5.1f%%  %*s  %s",
			bar, share(r.Tokens, total), tokensW, tokenStr[i], clipLeft(r.Label, labelW)))
	}
	lines = append(lines, fmt.Sprintf("%s  %5.1f%%  %*s  %s",
		strings.Repeat("─", barW), 100.0, tokensW, humanize.Comma(int64(total)), "TOTAL"))
	lines = append(lines, "", fmt.Sprintf("Summary: %d files, %s tokens", fileCount, humanize.Comma(int64(total))))
	return lines
}

// clipLeft keeps the tail of s, which for paths is the informative end.
func clipLeft(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	return "…" + string(r[len(r)-w+1:])
}

func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
