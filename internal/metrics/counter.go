package metrics

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for token estimates.
const DefaultEncoding = "cl100k_base"

// Counter provides methods for counting bytes, tokens, and lines in text
type Counter interface {
	// Count returns the number of bytes, tokens, and lines in the given text
	Count(text string) (bytes, tokens, lines int)
}

// NewCounter returns the estimator named by a config value: "simple" or
// "tiktoken". An empty name means simple.
func NewCounter(name string) (Counter, error) {
	switch strings.ToLower(name) {
	case "", "simple":
		return &SimpleCounter{}, nil
	case "tiktoken":
		return NewTiktokenCounter(DefaultEncoding)
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", name)
	}
}

// SimpleCounter estimates tokens as bytes/4
type SimpleCounter struct{}

func (c *SimpleCounter) Count(text string) (int, int, int) {
	return len(text), estimateTokenCountSimple(text), countLines(text)
}

// TiktokenCounter counts tokens with a tiktoken encoding
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported tiktoken encoding %s: %w", encoding, err)
	}
	return &TiktokenCounter{encoding: tke}, nil
}

func (c *TiktokenCounter) Count(text string) (int, int, int) {
	tokens := len(c.encoding.Encode(text, nil, nil))
	return len(text), tokens, countLines(text)
}

// estimateTokenCountSimple: ~4 bytes per token for English text
func estimateTokenCountSimple(text string) int {
	return len(text) / 4
}

// countLines counts "\n"-terminated lines plus a final unterminated one.
// The empty string has no lines.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
