// Package snapshot persists the feature catalog document to disk.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/featsnap/internal/catalog"
	"github.com/brogergvhs/featsnap/internal/util"
	"github.com/bytedance/sonic"
)

// DefaultPath is where the snapshot is written unless overridden.
const DefaultPath = "_data/features.json"

var ErrIOFailure = errors.New("snapshot write failed")

var docAPI = sonic.Config{
	SortMapKeys:    true,
	ValidateString: true,
}.Froze()

// Encode renders doc with two-space indentation. Object keys inside opaque
// year/model records are sorted so repeated runs are byte-identical.
func Encode(doc *catalog.Document) ([]byte, error) {
	data, err := docAPI.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Write encodes doc and replaces path with it. The document is written to a
// temporary file in the same directory and renamed into place, so readers
// never observe a half-written snapshot. Missing parent directories are
// created.
func Write(path string, doc *catalog.Document) (int, error) {
	data, err := Encode(doc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("%w: create %s: %w", ErrIOFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, util.TempPattern(filepath.Base(path)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	fail := func(err error) (int, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("%w: %s: %w", ErrIOFailure, path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fail(err)
	}

	return len(data), nil
}
