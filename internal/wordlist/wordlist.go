// Package wordlist reads and writes word lists stored as JSON arrays of
// strings.
package wordlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// IOError reports a file that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError reports input that is not a JSON array of strings.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errNotArray = errors.New("expected a JSON array of strings")

// Load reads the word list at path. Order is preserved.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	words, err := Parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return words, nil
}

// Parse decodes a JSON array of strings. A JSON null is rejected, both as
// the document and as an element.
func Parse(data []byte) ([]string, error) {
	var items []*string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errNotArray
	}

	words := make([]string, len(items))
	for i, w := range items {
		if w == nil {
			return nil, fmt.Errorf("element %d is null: %w", i, errNotArray)
		}
		words[i] = *w
	}
	return words, nil
}

// Encode renders words as a JSON array indented by two spaces. HTML
// characters are left unescaped so words round-trip byte for byte.
func Encode(words []string) ([]byte, error) {
	if words == nil {
		words = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(words); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes words to path, replacing any existing file. The data goes to a
// temporary file in the same directory first, so a failed write leaves the
// previous file untouched.
func Save(path string, words []string) error {
	data, err := Encode(words)
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "create directory for", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".wordlist-*.json")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, outputMode(path)); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// outputMode keeps the permissions of an existing target.
func outputMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0644
}
