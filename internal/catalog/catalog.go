// Package catalog holds an in-memory snapshot of a directory tree: paths,
// kinds, sizes, and parent/child links. It is built once from a Walker and
// never touches the filesystem afterwards.
package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Kind distinguishes files from directories.
type Kind int

const (
	File Kind = iota
	Directory
)

func (k Kind) String() string {
	if k == Directory {
		return "dir"
	}
	return "file"
}

// RootPath is the relative path of the scan root.
const RootPath = "."

// Entry is what a Walker reports for each filesystem entry below the root.
type Entry struct {
	Path string // slash-separated, relative to the root, never "."
	Kind Kind
	Size int64 // byte length for files; ignored for directories
}

// Walker enumerates the entries below root. Implementations must report a
// directory before any of its descendants.
type Walker interface {
	Walk(root string, fn func(Entry) error) error
}

// WalkerFunc adapts a function to the Walker interface.
type WalkerFunc func(root string, fn func(Entry) error) error

// Walk calls f(root, fn).
func (f WalkerFunc) Walk(root string, fn func(Entry) error) error { return f(root, fn) }

// ScanError reports that the root could not be scanned.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Node is one file or directory in the catalog.
type Node struct {
	Path     string // slash-separated relative path, RootPath for the root
	Name     string
	Kind     Kind
	Size     int64 // for directories, the sum of all descendant file sizes
	Parent   *Node
	Children []*Node
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == Directory }

// Depth returns the number of ancestors between n and the root.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Catalog is the scanned tree.
type Catalog struct {
	RootDir string // filesystem path the catalog was built from
	Root    *Node
	nodes   map[string]*Node
}

// Build scans root with walker. It fails with *ScanError when root does not
// exist, is not a directory, or the walk itself fails.
func Build(root string, walker Walker) (*Catalog, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	name := filepath.Base(root)
	if abs, err := filepath.Abs(root); err == nil {
		name = filepath.Base(abs)
	}

	rootNode := &Node{Path: RootPath, Name: name, Kind: Directory}
	c := &Catalog{
		RootDir: root,
		Root:    rootNode,
		nodes:   map[string]*Node{RootPath: rootNode},
	}

	err = walker.Walk(root, func(e Entry) error {
		return c.add(e)
	})
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	c.Root.Size = sumSizes(c.Root)
	sortByName(c.Root)
	return c, nil
}

func (c *Catalog) add(e Entry) error {
	p := strings.Trim(e.Path, "/")
	if p == "" || p == RootPath {
		return nil
	}
	if _, dup := c.nodes[p]; dup {
		return nil
	}

	parent, ok := c.nodes[parentPath(p)]
	if !ok {
		return fmt.Errorf("entry %s reported before its parent directory", p)
	}
	if !parent.IsDir() {
		return fmt.Errorf("entry %s is below file %s", p, parent.Path)
	}

	n := &Node{
		Path:   p,
		Name:   path.Base(p),
		Kind:   e.Kind,
		Parent: parent,
	}
	if e.Kind == File {
		n.Size = e.Size
	}
	parent.Children = append(parent.Children, n)
	c.nodes[p] = n
	return nil
}

// Lookup returns the node at the relative path p, or nil.
func (c *Catalog) Lookup(p string) *Node {
	return c.nodes[p]
}

// Len returns the number of nodes, including the root.
func (c *Catalog) Len() int { return len(c.nodes) }

// Walk visits every node depth-first in child order, root first.
func (c *Catalog) Walk(fn func(n *Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		fn(n)
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(c.Root)
}

func sumSizes(n *Node) int64 {
	if !n.IsDir() {
		return n.Size
	}
	var total int64
	for _, child := range n.Children {
		total += sumSizes(child)
	}
	n.Size = total
	return total
}

func sortByName(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
	for _, child := range n.Children {
		sortByName(child)
	}
}

func parentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return RootPath
	}
	return dir
}
