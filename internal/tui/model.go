// Package tui is the interactive selection screen: a collapsible file tree
// with tri-state checkboxes, a file preview, and export to clipboard or file.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/hayeah/fdl/fzf"
	"github.com/hayeah/fdl/internal/history"
	"github.com/hayeah/fdl/internal/metrics"
	"github.com/hayeah/fdl/internal/selection"
)

// ClipboardDestination is the destination recorded for clipboard copies.
const ClipboardDestination = "clipboard"

type mode int

const (
	modeBrowse mode = iota
	modePreview
	modeSearch
	modeConfirmQuit
)

// Transfer describes a finished copy or save.
type Transfer struct {
	Kind        history.Kind
	Destination string
	Bytes       int
	Tokens      int
	Report      *selection.ExportReport
}

// Options wires the model to the outside world.
type Options struct {
	Counter   metrics.Counter
	Clipboard func(text string) error
	// WriteFile saves an export. Defaults to os.WriteFile with mode 0644.
	WriteFile func(path, text string) error
	// ReadFile loads a file for preview. Defaults to selection.ReadTextFile.
	ReadFile func(path string) (string, error)
	SaveDir  string
	Now      func() time.Time
	// OnTransfer is called after every successful copy or save.
	OnTransfer func(Transfer)
}

// transferMsg reports the outcome of a copy or save command.
type transferMsg struct {
	Transfer
	err error
}

// Model is the bubbletea model. The tree it is given is owned by the model
// for the lifetime of the program.
type Model struct {
	tree *selection.Tree
	opts Options
	keys keyMap
	help help.Model

	mode     mode
	expanded map[string]bool
	rows     []*selection.Node
	cursor   int
	top      int
	width    int
	height   int

	preview     viewport.Model
	previewNode *selection.Node
	previewLen  int

	search  textinput.Model
	matches []string
	match   int

	status    string
	statusErr bool
	quitting  bool
}

// New returns a model over tree with the root expanded.
func New(tree *selection.Tree, opts Options) Model {
	if opts.Counter == nil {
		opts.Counter = &metrics.SimpleCounter{}
	}
	if opts.WriteFile == nil {
		opts.WriteFile = func(path, text string) error {
			return os.WriteFile(path, []byte(text), 0644)
		}
	}
	if opts.ReadFile == nil {
		opts.ReadFile = selection.ReadTextFile
	}
	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search paths"
	ti.CharLimit = 0

	m := Model{
		tree:     tree,
		opts:     opts,
		keys:     newKeyMap(),
		help:     help.New(),
		expanded: map[string]bool{tree.Root().Path(): true},
		preview:  viewport.New(0, 0),
		search:   ti,
		width:    80,
		height:   24,
	}
	m.refreshRows()
	return m
}

// Run starts the program on the terminal. The screen is drawn on stderr so
// stdout stays free for piping.
func Run(tree *selection.Tree, opts Options) error {
	p := tea.NewProgram(New(tree, opts), tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizePreview()
		m.scrollToCursor()
		return m, nil

	case transferMsg:
		m.finishTransfer(msg)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modePreview:
			return m.updatePreview(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = "", false
	node := m.current()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.rows))

	case key.Matches(msg, m.keys.Collapse):
		switch {
		case node.IsDir() && m.expanded[node.Path()] && node.Parent() != nil:
			delete(m.expanded, node.Path())
			m.refreshRows()
		case node.Parent() != nil:
			m.moveTo(node.Parent().Path())
		}
	case key.Matches(msg, m.keys.Expand):
		if node.IsDir() && !m.expanded[node.Path()] {
			m.expanded[node.Path()] = true
			m.refreshRows()
		}

	case key.Matches(msg, m.keys.Toggle):
		m.tree.Toggle(node, selection.Flip)
	case key.Matches(msg, m.keys.SelectTree):
		m.tree.Toggle(node, selection.SelectSubtree)
	case key.Matches(msg, m.keys.ClearTree):
		m.tree.Toggle(node, selection.DeselectSubtree)
	case key.Matches(msg, m.keys.SelectAll):
		m.tree.SelectAll()
	case key.Matches(msg, m.keys.ClearAll):
		m.tree.DeselectAll()

	case key.Matches(msg, m.keys.Sort):
		next := selection.SortBySize
		if m.tree.SortKey() == selection.SortBySize {
			next = selection.SortByName
		}
		path := node.Path()
		m.tree.SetSortKey(next)
		m.refreshRows()
		m.moveTo(path)
		m.setStatus(fmt.Sprintf("Sorted by %s", sortLabel(next)))

	case key.Matches(msg, m.keys.Preview):
		m.openPreview(node)

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue("")
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.NextMatch):
		m.nextMatch()

	case key.Matches(msg, m.keys.Copy):
		return m, m.export(history.KindCopy, ClipboardDestination)
	case key.Matches(msg, m.keys.Save):
		return m, m.export(history.KindSave, filepath.Join(m.opts.SaveDir, SaveFileName(m.opts.Now())))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.scrollToCursor()

	case key.Matches(msg, m.keys.Quit):
		m.mode = modeConfirmQuit
	}
	return m, nil
}

func (m Model) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "y" || msg.String() == "Y" {
		m.quitting = true
		return m, tea.Quit
	}
	m.mode = modeBrowse
	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p", "q", "esc":
		m.mode = modeBrowse
		m.previewNode = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.search.Blur()
		m.runSearch(m.search.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// runSearch matches pattern against every path in the tree and jumps to the
// first hit.
func (m *Model) runSearch(pattern string) {
	m.matches, m.match = nil, -1
	if strings.TrimSpace(pattern) == "" {
		return
	}

	matcher, err := fzf.NewMatcher(pattern)
	if err != nil {
		m.setError(err.Error())
		return
	}

	var paths []string
	m.tree.Walk(func(n *selection.Node) bool {
		if n.Parent() != nil {
			paths = append(paths, n.Path())
		}
		return true
	})
	matches, err := matcher.Match(paths)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if len(matches) == 0 {
		m.setStatus(fmt.Sprintf("No match for %q", pattern))
		return
	}

	m.matches = matches
	m.nextMatch()
}

func (m *Model) nextMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.match = (m.match + 1) % len(m.matches)
	path := m.matches[m.match]
	m.reveal(path)
	m.setStatus(fmt.Sprintf("Match %d/%d: %s", m.match+1, len(m.matches), path))
}

// reveal expands every ancestor of path and puts the cursor on it.
func (m *Model) reveal(path string) {
	node := m.tree.Lookup(path)
	if node == nil {
		return
	}
	for p := node.Parent(); p != nil; p = p.Parent() {
		m.expanded[p.Path()] = true
	}
	m.refreshRows()
	m.moveTo(path)
}

func (m *Model) openPreview(node *selection.Node) {
	if node.IsDir() {
		return
	}
	if !node.IsText() {
		m.setStatus("Binary file, no preview")
		return
	}

	content, err := m.opts.ReadFile(filepath.Join(m.tree.RootDir(), filepath.FromSlash(node.Path())))
	if err != nil {
		m.setError(fmt.Sprintf("Cannot preview %s: %v", node.Path(), err))
		return
	}

	content = strings.ReplaceAll(content, "\t", "    ")
	m.previewNode = node
	m.previewLen = strings.Count(content, "\n") + 1
	m.resizePreview()
	m.preview.SetContent(content)
	m.preview.GotoTop()
	m.mode = modePreview
}

// export encodes the selection now and hands the text to a command that
// delivers it, so the tree is only ever touched from Update.
func (m *Model) export(kind history.Kind, dest string) tea.Cmd {
	text, report, err := m.tree.Encode()
	if err != nil {
		m.setError(fmt.Sprintf("Export failed: %v", err))
		return nil
	}

	counter := m.opts.Counter
	deliver := m.opts.WriteFile
	clipboard := m.opts.Clipboard

	return func() tea.Msg {
		var err error
		if kind == history.KindCopy {
			if clipboard == nil {
				err = fmt.Errorf("clipboard unavailable")
			} else {
				err = clipboard(text)
			}
		} else {
			err = deliver(dest, text)
		}

		_, tokens, _ := counter.Count(text)
		return transferMsg{
			Transfer: Transfer{
				Kind:        kind,
				Destination: dest,
				Bytes:       len(text),
				Tokens:      tokens,
				Report:      report,
			},
			err: err,
		}
	}
}

func (m *Model) finishTransfer(msg transferMsg) {
	if msg.err != nil {
		m.setError(fmt.Sprintf("%s failed: %v", msg.Kind, msg.err))
		return
	}

	var sb strings.Builder
	if msg.Kind == history.KindCopy {
		fmt.Fprintf(&sb, "Copied %s to clipboard", humanize.Bytes(uint64(msg.Bytes)))
	} else {
		fmt.Fprintf(&sb, "Saved %s to %s", humanize.Bytes(uint64(msg.Bytes)), msg.Destination)
	}
	fmt.Fprintf(&sb, " (%d files, ~%s tokens)", len(msg.Report.Files), humanize.Comma(int64(msg.Tokens)))
	if n := len(msg.Report.Skipped); n > 0 {
		fmt.Fprintf(&sb, ", skipped %d unreadable", n)
	}
	m.setStatus(sb.String())

	if m.opts.OnTransfer != nil {
		m.opts.OnTransfer(msg.Transfer)
	}
}

func (m *Model) setStatus(s string) { m.status, m.statusErr = s, false }
func (m *Model) setError(s string)  { m.status, m.statusErr = s, true }

// refreshRows rebuilds the visible rows from the expansion state.
func (m *Model) refreshRows() {
	m.rows = nil
	m.tree.Walk(func(n *selection.Node) bool {
		m.rows = append(m.rows, n)
		return n.IsDir() && m.expanded[n.Path()]
	})
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.scrollToCursor()
}

func (m *Model) current() *selection.Node {
	return m.rows[m.cursor]
}

func (m *Model) moveCursor(delta int) {
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
	m.scrollToCursor()
}

func (m *Model) moveTo(path string) {
	for i, n := range m.rows {
		if n.Path() == path {
			m.cursor = i
			break
		}
	}
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	h := m.listHeight()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+h {
		m.top = m.cursor - h + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// listHeight is the number of tree rows that fit between header and footer.
func (m *Model) listHeight() int {
	footer := 1
	if m.help.ShowAll {
		footer = len(m.keys.FullHelp()[0]) + 1
	}
	return max(1, m.height-1-footer)
}

func (m *Model) resizePreview() {
	m.preview.Width = max(20, m.width-10)
	m.preview.Height = max(5, m.height-8)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool { return m.quitting }

// Cursor returns the node under the cursor.
func (m Model) Cursor() *selection.Node { return m.rows[m.cursor] }

// Status returns the last status line message.
func (m Model) Status() string { return m.status }

// SaveFileName is the name of the file written by the save action.
func SaveFileName(now time.Time) string {
	return fmt.Sprintf("fdl_output_%s.txt", now.Format("20060102_150405"))
}

func sortLabel(k selection.SortKey) string {
	if k == selection.SortBySize {
		return "Size"
	}
	return "Name"
}
