package fdl

import (
	"fmt"
	"io"
	"strings"
)

// Decode parses an FDL document into its records, in document order.
//
// CRLF and lone CR line endings in text are normalized before splitting. The
// empty string decodes to no records. Any other input without a marker line is
// rejected with *MalformedDocumentError, as is non-blank text before the
// first marker.
func Decode(text string) ([]Record, error) {
	if text == "" {
		return []Record{}, nil
	}

	lines := strings.Split(NormalizeNewlines(text), "\n")

	var (
		records []Record
		current *Record
		body    []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		records = append(records, *current)
		current = nil
		body = body[:0]
	}

	for i, line := range lines {
		if strings.HasPrefix(line, Marker) {
			path := line[len(Marker):]
			if path == "" {
				return nil, &MalformedDocumentError{Line: i + 1, Reason: "marker line has an empty path"}
			}
			flush()
			current = &Record{Path: path}
			continue
		}

		if current == nil {
			if strings.TrimSpace(line) != "" {
				if len(records) == 0 && !containsMarker(lines[i:]) {
					return nil, &MalformedDocumentError{Reason: fmt.Sprintf("no %q marker line found", strings.TrimSpace(Marker))}
				}
				return nil, &MalformedDocumentError{Line: i + 1, Reason: "text before the first marker line"}
			}
			continue
		}
		body = append(body, line)
	}

	if current == nil {
		// Only blank preamble lines and no marker.
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("no %q marker line found", strings.TrimSpace(Marker))}
	}

	// The final record loses the document terminator.
	flush()
	last := &records[len(records)-1]
	last.Content = strings.TrimSuffix(last.Content, "\n")

	return records, nil
}

// DecodeReader reads all of r and decodes it.
func DecodeReader(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read FDL input: %w", err)
	}
	return Decode(string(data))
}

func containsMarker(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, Marker) {
			return true
		}
	}
	return false
}
