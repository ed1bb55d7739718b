package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
)

var (
	ErrInvalidEntry = errors.New("invalid catalog entry")
	ErrDuplicateID  = errors.New("duplicate catalog id")
)

var (
	reLeadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

	entryAPI = sonic.Config{ValidateString: true}.Froze()
)

// ParseID converts a mapping key to an id the way parseInt does: leading
// whitespace and a sign are accepted, trailing garbage is ignored.
func ParseID(key string) (int, error) {
	m := reLeadingInt.FindStringSubmatch(key)
	if m == nil {
		return 0, fmt.Errorf("%w: key %q is not numeric", ErrInvalidEntry, key)
	}

	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %v", ErrInvalidEntry, key, err)
	}

	return id, nil
}

// DecodeEntries builds one RawEntry per mapping key. Keys are visited in
// sorted order, so the entries and the first reported error are the same on
// every run.
func DecodeEntries(mapping map[string]any) ([]RawEntry, error) {
	entries := make([]RawEntry, 0, len(mapping))
	seen := make(map[int]string, len(mapping))

	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := mapping[key]
		id, err := ParseID(key)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: keys %q and %q both map to %d", ErrDuplicateID, prev, key, id)
		}
		seen[id] = key

		if _, ok := value.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: %d is %T, want an object", ErrInvalidEntry, id, value)
		}

		raw, err := entryAPI.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrInvalidEntry, id, err)
		}

		var e RawEntry
		if err := entryAPI.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: %d: %v", ErrInvalidEntry, id, err)
		}
		e.ID = id

		entries = append(entries, e)
	}

	return entries, nil
}
