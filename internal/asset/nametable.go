package asset

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/AssemblyStorm/mint/internal/fname"
)

// readNameMap decodes count length-prefixed FString entries starting at
// offset within data, preserving insertion order (UE4's NameMap order is
// load-bearing: later FName table indices refer back to this order).
func readNameMap(data []byte, offset, count int) (*fname.Table, error) {
	r := bytes.NewReader(data[offset:])
	entries := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, err := readFString(r)
		if err != nil {
			return nil, err
		}
		// Each name entry is followed by a 4-byte "non-case-preserving
		// hash" pair (hi/lo) in UE4's on-disk format; this codec does
		// not need the hash for correctness (it is recomputed
		// implicitly via fname.Table's own hashing), so it is skipped.
		var skip [8]byte
		if _, err := r.Read(skip[:]); err != nil {
			break
		}
		entries = append(entries, s)
	}
	return fname.NewFromEntries(entries), nil
}

func writeNameMap(buf *bytes.Buffer, t *fname.Table) {
	for _, s := range t.Entries() {
		writeFString(buf, s)
		binary.Write(buf, binary.LittleEndian, uint32(0))
		binary.Write(buf, binary.LittleEndian, uint32(0))
	}
}

func readFName(r io.Reader) (fname.Name, error) {
	var n fname.Name
	if err := binary.Read(r, binary.LittleEndian, &n.TableIndex); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Number); err != nil {
		return n, err
	}
	return n, nil
}

func writeFName(buf *bytes.Buffer, n fname.Name) {
	binary.Write(buf, binary.LittleEndian, n.TableIndex)
	binary.Write(buf, binary.LittleEndian, n.Number)
}
