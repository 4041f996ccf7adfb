package selection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// textSampleSize is how much of a file IsTextFile inspects.
const textSampleSize = 1024

// isBinaryFile reports whether more than a tenth of the first 100 runes are
// neither printable nor whitespace.
func isBinaryFile(content []byte) bool {
	const sampleSize = 100
	var nonPrintable int
	var totalRunes int

	for i := 0; i < len(content) && totalRunes < sampleSize; {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError {
			nonPrintable++
		} else if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
		i += size
		totalRunes++
	}

	if totalRunes == 0 {
		return false
	}
	return float64(nonPrintable)/float64(totalRunes) > 0.1
}

// IsTextFile reports whether the file at path looks like UTF-8 text, judged
// from its first bytes. Empty files are text. Unreadable files are not.
func IsTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, textSampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return isTextSample(buf[:n], n == textSampleSize)
}

// isTextSample judges a prefix of a file. When truncated, a multi-byte rune
// cut off at the end of the sample is tolerated.
func isTextSample(sample []byte, truncated bool) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	if truncated {
		sample = trimPartialRune(sample)
	}
	if !utf8.Valid(sample) {
		return false
	}
	return !isBinaryFile(sample)
}

func trimPartialRune(b []byte) []byte {
	// a rune is at most 4 bytes, so only the last 3 can be an incomplete start
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}

// ReadTextFile reads a whole file and fails if it is not valid UTF-8.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8")
	}
	return string(data), nil
}

// lockFiles holds lower-cased base names of package manager lock files.
var lockFiles = mapset.NewThreadUnsafeSet(
	"package-lock.json", "npm-shrinkwrap.json", "yarn.lock", "pnpm-lock.yaml", "bun.lockb",
	"go.sum",
	"pipfile.lock", "poetry.lock", "pdm.lock", "requirements.lock",
	"gemfile.lock",
	"cargo.lock",
	"composer.lock",
	"packages.lock.json",
	"package.resolved",
	"pubspec.lock",
)

// IsLockFile reports whether path names a package manager lock file. The
// comparison ignores case.
func IsLockFile(path string) bool {
	return lockFiles.Contains(strings.ToLower(filepath.Base(filepath.FromSlash(path))))
}
