package fdl

import (
	"fmt"
	"io"
	"strings"
)

// Writer streams records to an io.Writer in FDL form.
//
// A non-empty content is followed by a "\n" separator only once another
// record is written, or on Close when the content itself ends with a newline.
// This keeps the output of a single "hi" record as "$$FILE a.txt\nhi" while
// letting the decoder recover every trailing newline exactly.
type Writer struct {
	w       io.Writer
	pending bool // a separator is owed before the next marker
	lastNL  bool // last content ended with "\n"
	n       int64
	records int
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRecord appends one record.
func (fw *Writer) WriteRecord(rec Record) error {
	if err := ValidatePath(rec.Path); err != nil {
		return err
	}

	if fw.pending {
		if err := fw.write("\n"); err != nil {
			return err
		}
		fw.pending = false
	}

	if err := fw.write(Marker + rec.Path + "\n"); err != nil {
		return err
	}

	content := NormalizeNewlines(rec.Content)
	if content != "" {
		if err := fw.write(content); err != nil {
			return err
		}
		fw.pending = true
		fw.lastNL = strings.HasSuffix(content, "\n")
	}

	fw.records++
	return nil
}

// Close terminates the document. It does not close the underlying writer.
func (fw *Writer) Close() error {
	if fw.pending && fw.lastNL {
		if err := fw.write("\n"); err != nil {
			return err
		}
	}
	fw.pending = false
	return nil
}

// Written returns the number of bytes written so far.
func (fw *Writer) Written() int64 { return fw.n }

// Records returns the number of records written so far.
func (fw *Writer) Records() int { return fw.records }

func (fw *Writer) write(s string) error {
	n, err := io.WriteString(fw.w, s)
	fw.n += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write FDL output: %w", err)
	}
	return nil
}

// Encode renders records as one FDL document. Encoding the same records always
// yields the same bytes.
func Encode(records []Record) (string, error) {
	var sb strings.Builder
	fw := NewWriter(&sb)
	for _, rec := range records {
		if err := fw.WriteRecord(rec); err != nil {
			return "", err
		}
	}
	if err := fw.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
