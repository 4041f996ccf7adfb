// Package fzf filters slash-separated paths with fzf's extended search syntax.
//
// A pattern is a list of space-separated terms, all of which must match.
// Matching is case-insensitive substring search, narrowed per term:
//
//	^head    path starts with head
//	tail$    path ends with tail
//	'word    word starts at a word boundary
//	'word'   word is bounded on both sides
//	!term    path must not match term
package fzf

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Matcher filters paths by a parsed pattern. The zero value matches everything.
type Matcher struct {
	terms []term
}

type term struct {
	raw     string
	text    string // lower-cased
	inverse bool
	head    bool // ^
	tail    bool // $
	prefix  bool // 'text
	word    bool // 'text'
}

// NewMatcher parses pattern. An empty pattern matches every path.
func NewMatcher(pattern string) (Matcher, error) {
	fields := strings.Fields(pattern)
	terms := make([]term, 0, len(fields))
	for _, f := range fields {
		t, err := parseTerm(f)
		if err != nil {
			return Matcher{}, err
		}
		terms = append(terms, t)
	}
	return Matcher{terms: terms}, nil
}

func parseTerm(s string) (term, error) {
	t := term{raw: s}

	if strings.HasPrefix(s, "!") {
		t.inverse = true
		s = s[1:]
		if s == "" {
			return t, fmt.Errorf("empty negation in %q", t.raw)
		}
	}

	if strings.HasPrefix(s, "'") {
		s = s[1:]
		if s == "" {
			return t, fmt.Errorf("empty term after leading quote in %q", t.raw)
		}
		if len(s) > 1 && strings.HasSuffix(s, "'") {
			t.word = true
			s = s[:len(s)-1]
		} else {
			t.prefix = true
		}
	}

	if strings.HasPrefix(s, "^") {
		t.head = true
		s = s[1:]
	}
	if strings.HasSuffix(s, "$") {
		t.tail = true
		s = s[:len(s)-1]
	}
	if s == "" {
		return t, fmt.Errorf("empty term after stripping modifiers in %q", t.raw)
	}

	t.text = strings.ToLower(filepath.ToSlash(s))
	return t, nil
}

// Empty reports whether the matcher has no terms.
func (m Matcher) Empty() bool { return len(m.terms) == 0 }

// MatchPath reports whether path satisfies every term.
func (m Matcher) MatchPath(path string) bool {
	normal := strings.ToLower(filepath.ToSlash(path))
	for _, t := range m.terms {
		if t.match(normal) == t.inverse {
			return false
		}
	}
	return true
}

// Match returns the matching paths in input order.
func (m Matcher) Match(paths []string) ([]string, error) {
	if m.Empty() {
		return paths, nil
	}
	var out []string
	for _, p := range paths {
		if m.MatchPath(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// match tests the term, ignoring inversion, against a normalized path.
func (t term) match(path string) bool {
	region := path
	if t.head {
		if !strings.HasPrefix(path, t.text) {
			return false
		}
		region = path[:len(t.text)]
	}
	if t.tail {
		if !strings.HasSuffix(path, t.text) {
			return false
		}
		region = path[len(path)-len(t.text):]
	}

	switch {
	case t.word:
		return indexBounded(region, t.text, true)
	case t.prefix:
		return indexBounded(region, t.text, false)
	default:
		return strings.Contains(region, t.text)
	}
}

// indexBounded reports whether needle occurs in s starting at a word
// boundary, and when both is set, also ending at one.
func indexBounded(s, needle string, both bool) bool {
	if needle == "" {
		return false
	}
	for start := 0; start+len(needle) <= len(s); {
		rel := strings.Index(s[start:], needle)
		if rel < 0 {
			return false
		}
		idx := start + rel
		if leftBoundary(s, idx) && (!both || rightBoundary(s, idx+len(needle))) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[idx:])
		start = idx + size
	}
	return false
}

func leftBoundary(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !isWordRune(r)
}

func rightBoundary(s string, end int) bool {
	if end == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
