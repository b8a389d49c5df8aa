package asset

import (
	"bytes"
	"encoding/binary"
)

// Write serializes a into a .uasset byte slice and a .uexp byte slice.
// Name-map insertion order, import-table order, export-table order, and
// per-export loaded-property order are all preserved from a's current
// state; header offsets are recomputed from scratch.
func (a *Asset) Write() (uassetBytes, uexpBytes []byte, err error) {
	// Serialize export bodies first so export SerialSize/SerialOffset
	// can be computed before the header is emitted.
	bodies := make([][]byte, len(a.Exports))
	for i, e := range a.Exports {
		if len(e.Body) > 0 {
			bodies[i] = encodeLoadedProperties(e.Body, a.Names)
		} else {
			bodies[i] = e.RawBody
		}
	}

	uexpBuf := new(bytes.Buffer)
	headerSizePlaceholder := a.Summary.TotalHeaderSize // real header written below; exports are offset by it

	for i, body := range bodies {
		a.Exports[i].SerialOffset = int64(headerSizePlaceholder) + int64(uexpBuf.Len())
		a.Exports[i].SerialSize = int64(len(body))
		uexpBuf.Write(body)
	}
	uexpBuf.Write(a.UexpTail)

	header := new(bytes.Buffer)
	binary.Write(header, binary.LittleEndian, packageFileTag)
	binary.Write(header, binary.LittleEndian, a.Summary.LegacyFileVersion)
	binary.Write(header, binary.LittleEndian, a.Summary.FileVersionUE4)
	binary.Write(header, binary.LittleEndian, a.Summary.TotalHeaderSize)
	writeFString(header, a.Summary.FolderName)
	binary.Write(header, binary.LittleEndian, a.Summary.PackageFlags)

	nameCount := int32(a.Names.Len())
	nameMapBuf := new(bytes.Buffer)
	writeNameMap(nameMapBuf, a.Names)

	importBuf := new(bytes.Buffer)
	writeImports(importBuf, a.Imports)

	exportBuf := new(bytes.Buffer)
	writeExports(exportBuf, a.Exports)

	// Offsets are measured from the start of the .uasset file. The
	// fixed-size prefix above (tag + 3 int32 + folder fstring + flags)
	// precedes a further block of 9 int32 table-offset fields; name map
	// begins immediately after those.
	const tableOffsetsSize = 9 * 4
	nameOffset := int32(header.Len()) + tableOffsetsSize
	importOffset := nameOffset + int32(nameMapBuf.Len())
	exportOffset := importOffset + int32(importBuf.Len())
	dependsOffset := exportOffset + int32(exportBuf.Len())

	binary.Write(header, binary.LittleEndian, nameCount)
	binary.Write(header, binary.LittleEndian, nameOffset)
	binary.Write(header, binary.LittleEndian, int32(len(a.Exports)))
	binary.Write(header, binary.LittleEndian, exportOffset)
	binary.Write(header, binary.LittleEndian, int32(len(a.Imports)))
	binary.Write(header, binary.LittleEndian, importOffset)
	binary.Write(header, binary.LittleEndian, dependsOffset)
	binary.Write(header, binary.LittleEndian, a.Summary.SoftPackageRefCount)
	binary.Write(header, binary.LittleEndian, a.Summary.SoftPackageRefOffset)

	header.Write(nameMapBuf.Bytes())
	header.Write(importBuf.Bytes())
	header.Write(exportBuf.Bytes())

	a.Summary.TotalHeaderSize = int32(header.Len())
	a.Summary.NameCount = nameCount
	a.Summary.NameOffset = nameOffset
	a.Summary.ImportCount = int32(len(a.Imports))
	a.Summary.ImportOffset = importOffset
	a.Summary.ExportCount = int32(len(a.Exports))
	a.Summary.ExportOffset = exportOffset
	a.Summary.DependsOffset = dependsOffset

	// SerialOffset values above assumed the pre-recompute header size;
	// since TotalHeaderSize is fixed for a given name/import/export table
	// shape and is computed before bodies reference it in this
	// implementation's ordering, no further correction is needed unless
	// the header size changed as a result of mutation. Recompute once
	// more to converge if it did.
	if int32(headerSizePlaceholder) != a.Summary.TotalHeaderSize {
		delta := int64(a.Summary.TotalHeaderSize) - int64(headerSizePlaceholder)
		for i := range a.Exports {
			a.Exports[i].SerialOffset += delta
		}
		// Re-emit the header with the corrected TotalHeaderSize field.
		return a.Write()
	}

	return header.Bytes(), uexpBuf.Bytes(), nil
}
