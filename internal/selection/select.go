// Pattern syntax for selecting files by path.
//
// A pattern is one of:
//
//   - terms (default): space-separated terms that must all appear in the
//     path, with fzf-style modifiers ("^cmd", ".go$", "'word").
//     A leading "./" anchors the first term at the start of the path.
//   - "~foo": fuzzy match, characters in order but not adjacent.
//   - "/re": regular expression.
//   - "=path": exact path.
//   - globs: any pattern containing "*" or "?" is matched with doublestar.
//   - "!p": everything p does not match.
//   - "a | b": paths matching both a and b.
//   - "a ; b": paths matching a or b. Binds loosest.
//
// Patterns starting with "../" are rejected.
package selection

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hayeah/fdl/fzf"
	"github.com/sahilm/fuzzy"
)

// Matcher filters a list of paths.
type Matcher interface {
	Match(paths []string) ([]string, error)
}

// pathFunc matches each path on its own.
type pathFunc func(path string) bool

func (f pathFunc) Match(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

var matchAll = pathFunc(func(string) bool { return true })

// fuzzyMatch scores the whole candidate list at once.
type fuzzyMatch string

func (q fuzzyMatch) Match(paths []string) ([]string, error) {
	if q == "" {
		return paths, nil
	}
	hits := mapset.NewThreadUnsafeSet[int]()
	for _, m := range fuzzy.Find(string(q), paths) {
		hits.Add(m.Index)
	}
	out := make([]string, 0, hits.Cardinality())
	for i, p := range paths {
		if hits.Contains(i) {
			out = append(out, p)
		}
	}
	return out, nil
}

type not struct{ inner Matcher }

func (m not) Match(paths []string) ([]string, error) {
	excluded, err := m.inner.Match(paths)
	if err != nil {
		return nil, err
	}
	return keep(paths, mapset.NewThreadUnsafeSet(excluded...), false), nil
}

// allOf narrows the candidates through each matcher in turn.
type allOf []Matcher

func (ms allOf) Match(paths []string) ([]string, error) {
	var err error
	for _, m := range ms {
		if paths, err = m.Match(paths); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

type anyOf []Matcher

func (ms anyOf) Match(paths []string) ([]string, error) {
	return MatchAny(ms, paths)
}

// keep returns the paths whose membership in set equals want, in input order.
func keep(paths []string, set mapset.Set[string], want bool) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if set.Contains(p) == want {
			out = append(out, p)
		}
	}
	return out
}

// ParseMatcher parses a single pattern.
func ParseMatcher(pattern string) (Matcher, error) {
	if !strings.Contains(pattern, ";") {
		return parseAll(pattern)
	}

	var alts anyOf
	for _, part := range strings.Split(pattern, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := parseAll(part)
		if err != nil {
			return nil, fmt.Errorf("alternative %q: %w", part, err)
		}
		alts = append(alts, m)
	}

	switch len(alts) {
	case 0:
		return nil, errors.New("no alternatives in pattern")
	case 1:
		return alts[0], nil
	}
	return alts, nil
}

// parseAll handles a pattern with no ";". An exact path claims the whole
// pattern, so "=a|b" names the file "a|b".
func parseAll(pattern string) (Matcher, error) {
	pattern = strings.TrimSpace(pattern)
	if strings.HasPrefix(pattern, "../") {
		return nil, errors.New("patterns may not start with ../")
	}

	if rest, ok := strings.CutPrefix(pattern, "="); ok {
		exact := strings.TrimPrefix(rest, "./")
		if exact == "" {
			return nil, errors.New("empty exact path")
		}
		return pathFunc(func(p string) bool { return p == exact }), nil
	}

	if strings.Contains(pattern, "|") {
		parts := strings.Split(pattern, "|")
		all := make(allOf, 0, len(parts))
		for _, part := range parts {
			m, err := parseAll(part)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", strings.TrimSpace(part), err)
			}
			all = append(all, m)
		}
		return all, nil
	}

	return parseAtom(pattern)
}

func parseAtom(pattern string) (Matcher, error) {
	switch {
	case strings.HasPrefix(pattern, "!"):
		if strings.TrimSpace(pattern[1:]) == "" {
			return nil, errors.New("nothing to negate after !")
		}
		inner, err := parseAll(pattern[1:])
		if err != nil {
			return nil, err
		}
		return not{inner}, nil

	case strings.HasPrefix(pattern, "/"):
		expr := pattern[1:]
		if expr == "" {
			return matchAll, nil
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("regex: %w", err)
		}
		return pathFunc(re.MatchString), nil

	case strings.HasPrefix(pattern, "~"):
		return fuzzyMatch(strings.TrimSpace(pattern[1:])), nil
	}

	rest, anchored := strings.CutPrefix(pattern, "./")
	if strings.ContainsAny(rest, "*?") {
		if !doublestar.ValidatePattern(rest) {
			return nil, fmt.Errorf("bad glob %q", rest)
		}
		return pathFunc(func(p string) bool { return doublestar.MatchUnvalidated(rest, p) }), nil
	}

	if anchored && rest != "" {
		rest = "^" + rest
	}
	terms, err := fzf.NewMatcher(rest)
	if err != nil {
		return nil, err
	}
	return pathFunc(terms.MatchPath), nil
}

// ParseMatchersFromString parses one pattern per line, skipping blank lines
// and lines starting with #.
//
//	cmd .go
//	internal .go | !_test
//
//	# exact path match
//	=path/to/a.txt
func ParseMatchersFromString(input string) ([]Matcher, error) {
	var matchers []Matcher
	lineNo := 0
	for line := range strings.Lines(input) {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := ParseMatcher(line)
		if err != nil {
			return nil, fmt.Errorf("line %d %q: %w", lineNo, line, err)
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

// MatchAny returns the paths matched by at least one matcher, in input order.
func MatchAny(matchers []Matcher, paths []string) ([]string, error) {
	matched := mapset.NewThreadUnsafeSet[string]()
	for _, m := range matchers {
		got, err := m.Match(paths)
		if err != nil {
			return nil, err
		}
		matched.Append(got...)
	}
	return keep(paths, matched, true), nil
}

// SelectMatching replaces the selection with the text files matched by any
// of matchers and returns how many were selected.
func (t *Tree) SelectMatching(matchers []Matcher) (int, error) {
	matched, err := MatchAny(matchers, t.TextFilePaths())
	if err != nil {
		return 0, err
	}

	t.DeselectAll()
	for _, p := range matched {
		t.setFile(t.nodes[p], true)
	}
	return len(matched), nil
}
