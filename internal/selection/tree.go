package selection

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hayeah/fdl/internal/catalog"
)

// State is the selection state of a node. Files are only ever Selected or
// Unselected; PartiallySelected is derived for directories.
type State int

const (
	Unselected State = iota
	Selected
	PartiallySelected
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case PartiallySelected:
		return "partial"
	default:
		return "unselected"
	}
}

// ToggleMode selects how Toggle changes a node.
type ToggleMode int

const (
	// Flip inverts a file. On a directory it selects every text file below
	// unless all of them are already selected, in which case it clears them.
	Flip ToggleMode = iota
	SelectSubtree
	DeselectSubtree
)

// SortKey orders the children of every directory. Directories are always
// listed before files; ties are broken by name, case-sensitive ascending.
type SortKey int

const (
	SortByName SortKey = iota
	SortBySize         // largest first
)

func (k SortKey) String() string {
	if k == SortBySize {
		return "size"
	}
	return "name"
}

// ParseSortKey parses "name" or "size".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortByName, nil
	case "size":
		return SortBySize, nil
	default:
		return SortByName, fmt.Errorf("unknown sort key: %s", s)
	}
}

// Stats aggregates a set of files.
type Stats struct {
	TotalBytes int64
	FileCount  int
}

// TextPredicate reports whether the file at the given filesystem path holds text.
type TextPredicate func(path string) bool

// Options tunes Build.
type Options struct {
	// ReadFile loads a file's text during export. Defaults to ReadTextFile.
	ReadFile func(path string) (string, error)

	// Preselect decides the initial state of each text file by relative path.
	// Nil selects every text file.
	Preselect func(relPath string) bool
	SortKey   SortKey
}

// Node is a file or directory in a Tree.
type Node struct {
	entry    *catalog.Node
	parent   *Node
	children []*Node
	text     bool
	selected bool

	// rollup over the text files below a directory
	selectable    int
	selectedCount int
	selectedBytes int64
}

func (n *Node) Path() string { return n.entry.Path }
func (n *Node) Name() string { return n.entry.Name }
func (n *Node) Kind() catalog.Kind { return n.entry.Kind }
func (n *Node) IsDir() bool { return n.entry.IsDir() }
func (n *Node) Size() int64 { return n.entry.Size }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Depth() int { return n.entry.Depth() }
func (n *Node) IsText() bool { return n.text }

// Selectable reports whether toggling n can change anything: a text file, or
// a directory with at least one text file below it.
func (n *Node) Selectable() bool {
	if n.IsDir() {
		return n.selectable > 0
	}
	return n.text
}

// State returns the node's selection state. For directories it is derived
// from the text files below.
func (n *Node) State() State {
	if !n.IsDir() {
		if n.selected {
			return Selected
		}
		return Unselected
	}
	switch {
	case n.selectedCount == 0:
		return Unselected
	case n.selectedCount == n.selectable:
		return Selected
	default:
		return PartiallySelected
	}
}

// SelectedStats returns the selected files at or below n.
func (n *Node) SelectedStats() Stats {
	if !n.IsDir() {
		if n.selected {
			return Stats{TotalBytes: n.Size(), FileCount: 1}
		}
		return Stats{}
	}
	return Stats{TotalBytes: n.selectedBytes, FileCount: n.selectedCount}
}

// Tree is the selection model over a scanned directory. It is not safe for
// concurrent use.
type Tree struct {
	rootDir  string
	root     *Node
	nodes    map[string]*Node
	sortKey  SortKey
	readFile func(path string) (string, error)
	totals   Stats
}

// Build scans rootPath with walker and wraps the result with selection state.
// It fails with *catalog.ScanError if rootPath is missing or not a directory.
func Build(rootPath string, walker catalog.Walker, isText TextPredicate, opts Options) (*Tree, error) {
	c, err := catalog.Build(rootPath, walker)
	if err != nil {
		return nil, err
	}
	return FromCatalog(c, isText, opts), nil
}

// FromCatalog wraps an existing catalog.
func FromCatalog(c *catalog.Catalog, isText TextPredicate, opts Options) *Tree {
	t := &Tree{
		rootDir:  c.RootDir,
		nodes:    make(map[string]*Node, c.Len()),
		sortKey:  opts.SortKey,
		readFile: opts.ReadFile,
	}
	if t.readFile == nil {
		t.readFile = ReadTextFile
	}

	preselect := opts.Preselect
	if preselect == nil {
		preselect = func(string) bool { return true }
	}

	var wrap func(e *catalog.Node, parent *Node) *Node
	wrap = func(e *catalog.Node, parent *Node) *Node {
		n := &Node{entry: e, parent: parent}
		t.nodes[e.Path] = n

		if !e.IsDir() {
			n.text = isText == nil || isText(t.osPath(e.Path))
			n.selected = n.text && preselect(e.Path)
			if n.text {
				t.totals.FileCount++
				t.totals.TotalBytes += e.Size
			}
			return n
		}

		n.children = make([]*Node, 0, len(e.Children))
		for _, child := range e.Children {
			cn := wrap(child, n)
			n.children = append(n.children, cn)
			if cn.IsDir() {
				n.selectable += cn.selectable
			} else if cn.text {
				n.selectable++
			}
			st := cn.SelectedStats()
			n.selectedCount += st.FileCount
			n.selectedBytes += st.TotalBytes
		}
		return n
	}
	t.root = wrap(c.Root, nil)
	t.sortChildren(t.root)
	return t
}

// Root returns the root directory node.
func (t *Tree) Root() *Node { return t.root }

// RootDir returns the filesystem path the tree was built from.
func (t *Tree) RootDir() string { return t.rootDir }

// Lookup returns the node at relative path p, or nil.
func (t *Tree) Lookup(p string) *Node { return t.nodes[p] }

// Stats returns the currently selected files.
func (t *Tree) Stats() Stats { return t.root.SelectedStats() }

// Totals returns all selectable (text) files.
func (t *Tree) Totals() Stats { return t.totals }

// Toggle changes the selection of n and everything below it.
func (t *Tree) Toggle(n *Node, mode ToggleMode) {
	switch mode {
	case Flip:
		if n.IsDir() {
			t.setSubtree(n, n.State() != Selected)
		} else {
			t.setFile(n, !n.selected)
		}
	case SelectSubtree:
		t.setSubtree(n, true)
	case DeselectSubtree:
		t.setSubtree(n, false)
	}
}

// SelectAll selects every text file.
func (t *Tree) SelectAll() { t.setSubtree(t.root, true) }

// DeselectAll clears the selection.
func (t *Tree) DeselectAll() { t.setSubtree(t.root, false) }

// SortKey returns the active sort key.
func (t *Tree) SortKey() SortKey { return t.sortKey }

// SetSortKey re-sorts every directory by key.
func (t *Tree) SetSortKey(key SortKey) {
	t.sortKey = key
	t.sortChildren(t.root)
}

// Walk visits nodes depth-first in display order, root first. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(t.root)
}

// TextFilePaths returns the relative paths of all text files in display order.
func (t *Tree) TextFilePaths() []string {
	var paths []string
	t.Walk(func(n *Node) bool {
		if !n.IsDir() && n.text {
			paths = append(paths, n.Path())
		}
		return true
	})
	return paths
}

func (t *Tree) setSubtree(n *Node, selected bool) {
	if !n.IsDir() {
		t.setFile(n, selected)
		return
	}
	for _, child := range n.children {
		t.setSubtree(child, selected)
	}
}

// setFile updates one file and the rollup counters of its ancestors.
func (t *Tree) setFile(n *Node, selected bool) {
	if !n.text || n.selected == selected {
		return
	}
	n.selected = selected

	delta, bytes := 1, n.Size()
	if !selected {
		delta, bytes = -1, -bytes
	}
	for p := n.parent; p != nil; p = p.parent {
		p.selectedCount += delta
		p.selectedBytes += bytes
	}
}

func (t *Tree) sortChildren(n *Node) {
	if !n.IsDir() {
		return
	}
	sort.SliceStable(n.children, func(i, j int) bool {
		return t.less(n.children[i], n.children[j])
	})
	for _, child := range n.children {
		t.sortChildren(child)
	}
}

func (t *Tree) less(a, b *Node) bool {
	if a.IsDir() != b.IsDir() {
		return a.IsDir()
	}
	if t.sortKey == SortBySize && a.Size() != b.Size() {
		return a.Size() > b.Size()
	}
	return a.Name() < b.Name()
}

func (t *Tree) osPath(relPath string) string {
	return filepath.Join(t.rootDir, filepath.FromSlash(relPath))
}
