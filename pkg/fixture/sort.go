package fixture

import (
	"io/fs"
	"slices"
	"strings"
	"unicode/utf8"
)

// entry is one directory read result: either a directory entry or a read error.
type entry struct {
	dirEntry fs.DirEntry
	err      error
	// rel is the slash separated path relative to the fixture root.
	rel string
}

func (e entry) name() string {
	if e.dirEntry == nil {
		return ""
	}
	return e.dirEntry.Name()
}

// sortEntries orders entries so that generated test order does not depend on
// the platform's enumeration order: read errors first, then names by byte
// comparison, then names that are not valid UTF-8.
func sortEntries(entries []entry) []entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, compareEntries)
	return sorted
}

func compareEntries(left, right entry) int {
	switch {
	case left.err != nil && right.err != nil:
		return 0
	case left.err != nil:
		return -1
	case right.err != nil:
		return 1
	}

	l, r := left.name(), right.name()
	lok, rok := utf8.ValidString(l), utf8.ValidString(r)
	switch {
	case lok && rok:
		return strings.Compare(l, r)
	case !lok && !rok:
		return 0
	case lok:
		return -1
	default:
		return 1
	}
}
