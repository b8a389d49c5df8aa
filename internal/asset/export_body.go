package asset

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/AssemblyStorm/mint/internal/fname"
)

// noneName is the sentinel property-list terminator name, "None".
const noneName = "None"

// readExportBodies slices uexpBytes per export's SerialOffset/SerialSize
// (offsets are absolute, covering both the .uasset header and the
// .uexp body; the .uexp file itself starts at TotalHeaderSize). When
// opts.SkipData is set only RawBody is populated.
func readExportBodies(a *Asset, uexpBytes []byte, opts ReadOptions) error {
	base := int64(a.Summary.TotalHeaderSize)
	for i := range a.Exports {
		e := &a.Exports[i]
		start := e.SerialOffset - base
		end := start + e.SerialSize
		if start < 0 || end > int64(len(uexpBytes)) || start > end {
			return io.ErrUnexpectedEOF
		}
		raw := uexpBytes[start:end]
		e.RawBody = append([]byte(nil), raw...)

		if opts.SkipData {
			continue
		}

		props, err := decodeLoadedProperties(raw, a.Names)
		if err != nil {
			// Not every export body is a simple tagged-property list
			// (e.g. UFunction bodies carry Kismet bytecode after their
			// property list). Falling back to raw-only is acceptable:
			// callers needing structural access to those bodies go
			// through internal/kismet directly on RawBody.
			continue
		}
		e.Body = props
	}

	tailStart := int64(0)
	if len(a.Exports) > 0 {
		last := a.Exports[len(a.Exports)-1]
		tailStart = last.SerialOffset - base + last.SerialSize
	}
	if tailStart >= 0 && tailStart <= int64(len(uexpBytes)) {
		a.UexpTail = append([]byte(nil), uexpBytes[tailStart:]...)
	}
	return nil
}

// decodeLoadedProperties parses a simple None-terminated tagged property
// list. Returns an error if the bytes don't resolve to a clean
// property-tag sequence (e.g. bytecode-bearing UFunction bodies).
func decodeLoadedProperties(raw []byte, names *fname.Table) ([]LoadedProperty, error) {
	r := bytes.NewReader(raw)
	var props []LoadedProperty
	for {
		tagName, err := readFName(r)
		if err != nil {
			return nil, err
		}
		if names.String(tagName.TableIndex) == noneName {
			break
		}
		typeName, err := readFName(r)
		if err != nil {
			return nil, err
		}
		var size, arrayIdx int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &arrayIdx); err != nil {
			return nil, err
		}
		value := make([]byte, size)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, err
		}
		props = append(props, LoadedProperty{
			Tag:   PropertyTag{Name: tagName, TypeName: typeName, Size: size, ArrayIdx: arrayIdx},
			Value: value,
		})
		if r.Len() == 0 {
			break
		}
	}
	return props, nil
}

func encodeLoadedProperties(props []LoadedProperty, names *fname.Table) []byte {
	buf := new(bytes.Buffer)
	for _, p := range props {
		writeFName(buf, p.Tag.Name)
		writeFName(buf, p.Tag.TypeName)
		binary.Write(buf, binary.LittleEndian, int32(len(p.Value)))
		binary.Write(buf, binary.LittleEndian, p.Tag.ArrayIdx)
		buf.Write(p.Value)
	}
	writeFName(buf, names.Make(noneName, 0))
	return buf.Bytes()
}
