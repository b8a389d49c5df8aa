// Package asset implements the paired .uasset/.uexp container codec:
// summary header, name map, import table, export table, export bodies,
// and the 17-variant FProperty codec used by both asset headers and
// Kismet property pointers.
package asset

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/mint"
)

// EngineVersion is the only engine version this codec understands.
const EngineVersion = "UE4.27"

// PackageIndex is a tagged reference: 0 is null, positive N refers to
// export N-1, negative N refers to import -N-1.
type PackageIndex int32

func (p PackageIndex) IsNull() bool   { return p == 0 }
func (p PackageIndex) IsExport() bool { return p > 0 }
func (p PackageIndex) IsImport() bool { return p < 0 }

// ExportIndex returns the zero-based export table index this refers to.
// Only valid when IsExport() is true.
func (p PackageIndex) ExportIndex() int32 { return int32(p) - 1 }

// ImportIndex returns the zero-based import table index this refers to.
// Only valid when IsImport() is true.
func (p PackageIndex) ImportIndex() int32 { return -int32(p) - 1 }

// FromExportIndex builds a PackageIndex referring to export index i.
func FromExportIndex(i int32) PackageIndex { return PackageIndex(i + 1) }

// FromImportIndex builds a PackageIndex referring to import index i.
func FromImportIndex(i int32) PackageIndex { return PackageIndex(-i - 1) }

// Import is one entry of the import table.
type Import struct {
	ClassPackage fname.Name
	ClassName    fname.Name
	OuterIndex   PackageIndex
	ObjectName   fname.Name
}

// Key returns the dedup key used by cross-asset import copying:
// (class_package, class_name, outer_index, object_name).
type ImportKey struct {
	ClassPackage, ClassName, ObjectName fname.Name
	OuterIndex                          PackageIndex
}

func (i Import) Key() ImportKey {
	return ImportKey{i.ClassPackage, i.ClassName, i.OuterIndex, i.ObjectName}
}

// Export is one entry of the export table (header fields only; the
// serialized body lives separately in Export.Body / RawBody).
type Export struct {
	ClassIndex      PackageIndex
	SuperIndex      PackageIndex
	TemplateIndex   PackageIndex
	OuterIndex      PackageIndex
	ObjectName      fname.Name
	ObjectFlags     uint32
	SerialSize      int64
	SerialOffset    int64
	bSuperUsed      bool

	// Body is the decoded loaded-property list for this export, in
	// on-disk order. Populated unless the asset was parsed with
	// SkipData.
	Body []LoadedProperty

	// RawBody holds the raw serialized bytes of the export as read,
	// whether or not SkipData was set. Write re-encodes Body when Body is
	// non-empty and emits RawBody verbatim otherwise; it does not update
	// RawBody from Body.
	RawBody []byte
}

// LoadedProperty is one decoded property value stored inline in an
// export body, tagged with its FProperty descriptor.
type LoadedProperty struct {
	Tag   PropertyTag
	Value []byte // opaque serialized value bytes, copied verbatim
}

// PropertyTag is the on-disk tag preceding a loaded property's value:
// name, type name, and size, as UE4's FPropertyTag serializes it.
type PropertyTag struct {
	Name     fname.Name
	TypeName fname.Name
	Size     int32
	ArrayIdx int32
}

// Summary mirrors the subset of FPackageFileSummary this codec depends
// on to relocate the name map, import table, and export table.
type Summary struct {
	Tag                 uint32
	LegacyFileVersion   int32
	FileVersionUE4      int32
	TotalHeaderSize     int32
	FolderName          string
	PackageFlags        uint32
	NameCount           int32
	NameOffset          int32
	ExportCount         int32
	ExportOffset        int32
	ImportCount         int32
	ImportOffset        int32
	DependsOffset       int32
	SoftPackageRefCount int32
	SoftPackageRefOffset int32
}

const packageFileTag uint32 = 0x9E2A83C1

// Asset is the decoded in-memory representation of a paired
// .uasset/.uexp file.
type Asset struct {
	Summary  Summary
	Names    *fname.Table
	Imports  []Import
	Exports  []Export
	SkipData bool

	// UexpTail holds any trailing bytes in the .uexp file beyond the
	// last export's serialized body (UE4 appends a small fixed tail,
	// e.g. a GUID, after all export data).
	UexpTail []byte
}

// ReadOptions controls Read behavior.
type ReadOptions struct {
	// SkipData parses headers and name/import/export tables but leaves
	// export bodies unparsed (RawBody only), the fast path used by the
	// registry populator and the lint engine's gameplay-affecting scan.
	SkipData bool
}

// Read decodes uassetBytes + uexpBytes into an Asset.
func Read(uassetBytes, uexpBytes []byte, opts ReadOptions) (*Asset, error) {
	r := bytes.NewReader(uassetBytes)

	var sum Summary
	if err := binary.Read(r, binary.LittleEndian, &sum.Tag); err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read package tag", err)
	}
	if sum.Tag != packageFileTag {
		return nil, mint.New(mint.InvalidPak, "not a UE4 package file (bad tag)")
	}
	fields := []*int32{
		&sum.LegacyFileVersion, &sum.FileVersionUE4, &sum.TotalHeaderSize,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read summary header", err)
		}
	}
	folderName, err := readFString(r)
	if err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read folder name", err)
	}
	sum.FolderName = folderName

	if err := binary.Read(r, binary.LittleEndian, &sum.PackageFlags); err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read package flags", err)
	}
	for _, f := range []*int32{
		&sum.NameCount, &sum.NameOffset,
		&sum.ExportCount, &sum.ExportOffset,
		&sum.ImportCount, &sum.ImportOffset,
		&sum.DependsOffset,
		&sum.SoftPackageRefCount, &sum.SoftPackageRefOffset,
	} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read summary table offsets", err)
		}
	}

	names, err := readNameMap(uassetBytes, int(sum.NameOffset), int(sum.NameCount))
	if err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read name map", err)
	}

	imports, err := readImports(uassetBytes, int(sum.ImportOffset), int(sum.ImportCount), names)
	if err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read import table", err)
	}

	exports, err := readExports(uassetBytes, int(sum.ExportOffset), int(sum.ExportCount), names)
	if err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read export table", err)
	}

	a := &Asset{Summary: sum, Names: names, Imports: imports, Exports: exports, SkipData: opts.SkipData}

	if err := readExportBodies(a, uexpBytes, opts); err != nil {
		return nil, mint.Wrap(mint.AssetBuildFailure, "failed to read export bodies", err)
	}

	return a, nil
}

func readFString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n <= 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if len(buf) > 0 && buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf), nil
}

func writeFString(buf *bytes.Buffer, s string) {
	if s == "" {
		binary.Write(buf, binary.LittleEndian, int32(0))
		return
	}
	binary.Write(buf, binary.LittleEndian, int32(len(s)+1))
	buf.WriteString(s)
	buf.WriteByte(0)
}
