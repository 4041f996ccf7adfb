// Package fdl implements the FDL text format: a sequence of file records, each
// introduced by a marker line of the form
//
//	$$FILE <relative/path>
//
// followed by the raw file content. All line endings are normalized to "\n".
//
// # Limitation
//
// The format has no escaping. A content line that itself begins with the
// marker token is read back as the start of a new record. Use Collisions to
// detect such records before encoding.
package fdl

import (
	"errors"
	"fmt"
	"strings"
)

// Marker is the literal token that starts a record line, including the single
// space that separates it from the path.
const Marker = "$$FILE "

// ErrInvalidPath is returned when a record path is empty or contains a line break.
var ErrInvalidPath = errors.New("invalid record path")

// Record is a single file in an FDL document.
type Record struct {
	Path    string // slash-separated path relative to the packed root
	Content string // file text, newline-normalized
}

// MalformedDocumentError reports input that cannot be decoded as FDL.
type MalformedDocumentError struct {
	Line   int // 1-based line of the offending input, 0 if not line specific
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed FDL document: line %d: %s", e.Line, e.Reason)
	}
	return "malformed FDL document: " + e.Reason
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ValidatePath checks that p can be written on a marker line.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsAny(p, "\r\n") {
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidPath, p)
	}
	return nil
}

// Collision describes a content line that would be misread as a marker.
type Collision struct {
	Path string // record whose content collides
	Line int    // 1-based line within the content
}

// Collisions returns every content line in records that starts with Marker.
func Collisions(records []Record) []Collision {
	var out []Collision
	for _, rec := range records {
		for i, line := range strings.Split(NormalizeNewlines(rec.Content), "\n") {
			if strings.HasPrefix(line, Marker) {
				out = append(out, Collision{Path: rec.Path, Line: i + 1})
			}
		}
	}
	return out
}

// HasCollision reports whether content contains a line starting with Marker.
func HasCollision(content string) bool {
	content = NormalizeNewlines(content)
	return strings.HasPrefix(content, Marker) || strings.Contains(content, "\n"+Marker)
}
