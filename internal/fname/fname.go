// Package fname implements the interned FName table used throughout the
// asset codec: every name referenced by a Kismet expression, property, or
// export is a (table index, number) pair into a single deduplicated
// string table.
package fname

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Name is an interned (TableIndex, Number) pair. Number mirrors UE4's
// FName instance suffix (0 means no suffix; a value of N displays as
// "_N-1" when N>0 at presentation time — that formatting is a concern of
// callers, not of this package).
type Name struct {
	TableIndex int32
	Number     int32
}

// Table is an append-only, deduplicating string table. Names are
// deduplicated by the lowercased content of their text, matching UE4's
// case-insensitive FName comparison while the original casing of the
// first insert is preserved for display.
type Table struct {
	entries []string
	index   map[uint64][]int32
}

// New returns an empty Table.
func New() *Table {
	return &Table{index: make(map[uint64][]int32)}
}

// NewFromEntries builds a Table from an already-ordered list of strings,
// as read directly off a name-map directory on disk. The order of
// entries is preserved so TableIndex values round-trip.
func NewFromEntries(entries []string) *Table {
	t := &Table{entries: append([]string(nil), entries...), index: make(map[uint64][]int32)}
	for i, e := range entries {
		h := hashLower(e)
		t.index[h] = append(t.index[h], int32(i))
	}
	return t
}

func hashLower(s string) uint64 {
	return xxhash.Sum64String(strings.ToLower(s))
}

// Entries returns the table's backing slice in on-disk order. Callers
// must not mutate the returned slice.
func (t *Table) Entries() []string { return t.entries }

// Len returns the number of unique interned strings.
func (t *Table) Len() int { return len(t.entries) }

// String returns the text stored at idx, or "" if idx is out of range.
func (t *Table) String(idx int32) string {
	if idx < 0 || int(idx) >= len(t.entries) {
		return ""
	}
	return t.entries[idx]
}

// Intern finds or inserts s, returning its TableIndex. Lookup is
// case-insensitive; the first-seen casing of a given lowercase form is
// retained in the table.
func (t *Table) Intern(s string) int32 {
	h := hashLower(s)
	for _, idx := range t.index[h] {
		if strings.EqualFold(t.entries[idx], s) {
			return idx
		}
	}
	idx := int32(len(t.entries))
	t.entries = append(t.entries, s)
	t.index[h] = append(t.index[h], idx)
	return idx
}

// Find returns the TableIndex for s without inserting, and whether it
// was found.
func (t *Table) Find(s string) (int32, bool) {
	h := hashLower(s)
	for _, idx := range t.index[h] {
		if strings.EqualFold(t.entries[idx], s) {
			return idx, true
		}
	}
	return 0, false
}

// Make interns text and returns a Name with the given instance number.
func (t *Table) Make(text string, number int32) Name {
	return Name{TableIndex: t.Intern(text), Number: number}
}

// Text resolves n back to the string stored at its TableIndex. Number is
// not rendered: no "_N-1" suffix is appended, whatever its value.
func (t *Table) Text(n Name) string {
	s := t.String(n.TableIndex)
	if n.Number > 0 {
		return s
	}
	return s
}
