// Package registry implements the AssetRegistry.bin codec: a header, an
// independent name table, an array of asset entries, and a
// depends-graph section.
package registry

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/mint"
)

// SupportedVersion is the only AssetRegistry.bin version this codec
// round-trips; an unknown version is rejected with an error.
const SupportedVersion int32 = 10

// TagValue is one (FName, string) entry of an asset entry's tag/value
// dictionary.
type TagValue struct {
	Tag   fname.Name
	Value string
}

// Entry is one asset registry record.
type Entry struct {
	ObjectPath  fname.Name
	PackageName fname.Name
	AssetClass  fname.Name
	PackagePath fname.Name
	Tags        []TagValue
}

// Registry is the decoded form of AssetRegistry.bin.
type Registry struct {
	Version int32
	Names   *fname.Table
	Entries []Entry

	// Depends holds one empty-or-populated adjacency list per entry, in
	// Entries order; Populate appends an empty adjacency for each new
	// entry.
	Depends [][]int32
}

// Read parses AssetRegistry.bin bytes. An unrecognized version is
// fatal.
func Read(data []byte) (*Registry, error) {
	r := bytes.NewReader(data)
	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read registry version", err)
	}
	if version != SupportedVersion {
		return nil, mint.New(mint.AssetRegistryFailure, "unknown asset registry format version, refusing to rebuild")
	}

	var nameCount int32
	if err := binary.Read(r, binary.LittleEndian, &nameCount); err != nil {
		return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read name count", err)
	}
	names := make([]string, nameCount)
	for i := range names {
		s, err := readString(r)
		if err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read name table entry", err)
		}
		names[i] = s
	}
	nameTable := fname.NewFromEntries(names)

	var entryCount int32
	if err := binary.Read(r, binary.LittleEndian, &entryCount); err != nil {
		return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read entry count", err)
	}
	entries := make([]Entry, entryCount)
	for i := range entries {
		e := &entries[i]
		var err error
		if e.ObjectPath, err = readFName(r); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read entry object path", err)
		}
		if e.PackageName, err = readFName(r); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read entry package name", err)
		}
		if e.AssetClass, err = readFName(r); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read entry asset class", err)
		}
		if e.PackagePath, err = readFName(r); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read entry package path", err)
		}
		var tagCount int32
		if err := binary.Read(r, binary.LittleEndian, &tagCount); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read tag count", err)
		}
		e.Tags = make([]TagValue, tagCount)
		for j := range e.Tags {
			tagName, err := readFName(r)
			if err != nil {
				return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read tag name", err)
			}
			val, err := readString(r)
			if err != nil {
				return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read tag value", err)
			}
			e.Tags[j] = TagValue{tagName, val}
		}
	}

	var dependsCount int32
	if err := binary.Read(r, binary.LittleEndian, &dependsCount); err != nil {
		return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read depends-graph count", err)
	}
	depends := make([][]int32, dependsCount)
	for i := range depends {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read depends-graph adjacency count", err)
		}
		depends[i] = make([]int32, n)
		for j := range depends[i] {
			if err := binary.Read(r, binary.LittleEndian, &depends[i][j]); err != nil {
				return nil, mint.Wrap(mint.AssetRegistryFailure, "failed to read depends-graph adjacency entry", err)
			}
		}
	}

	return &Registry{Version: version, Names: nameTable, Entries: entries, Depends: depends}, nil
}

// Write re-serializes the registry, preserving the version it was read
// with.
func (reg *Registry) Write() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, reg.Version)

	entries := reg.Names.Entries()
	binary.Write(buf, binary.LittleEndian, int32(len(entries)))
	for _, s := range entries {
		writeString(buf, s)
	}

	binary.Write(buf, binary.LittleEndian, int32(len(reg.Entries)))
	for _, e := range reg.Entries {
		writeFName(buf, e.ObjectPath)
		writeFName(buf, e.PackageName)
		writeFName(buf, e.AssetClass)
		writeFName(buf, e.PackagePath)
		binary.Write(buf, binary.LittleEndian, int32(len(e.Tags)))
		for _, t := range e.Tags {
			writeFName(buf, t.Tag)
			writeString(buf, t.Value)
		}
	}

	binary.Write(buf, binary.LittleEndian, int32(len(reg.Depends)))
	for _, adj := range reg.Depends {
		binary.Write(buf, binary.LittleEndian, int32(len(adj)))
		for _, d := range adj {
			binary.Write(buf, binary.LittleEndian, d)
		}
	}
	return buf.Bytes()
}

// classMetadataWhitelist names the class-level tags Populate writes on
// each new entry. Each tag is written with an empty value; the values
// are not read from the asset's class metadata.
var classMetadataWhitelist = []string{"ParentClass", "ImplementedInterfaces", "NativeParentClass"}

// Populate derives one new registry entry per export in a that is a
// class default object or Blueprint-generated class, appending them
// (and a matching empty depends-graph adjacency each) to reg. Object-
// level registry tags from the source asset are not copied; each entry
// carries the classMetadataWhitelist tag names with empty values.
func (reg *Registry) Populate(normalizedPathWithoutExtension string, a *asset.Asset) {
	for _, e := range a.Exports {
		name := a.Names.Text(e.ObjectName)
		if !isClassDefaultObject(name) && !strings.HasSuffix(name, "_C") {
			continue
		}
		assetName := strings.TrimSuffix(strings.TrimPrefix(name, "Default__"), "_C")
		objectPath := normalizedPathWithoutExtension + "." + assetName + "_C"

		var classText string
		if e.ClassIndex.IsImport() {
			classText = a.Names.Text(a.Imports[e.ClassIndex.ImportIndex()].ObjectName)
		}

		entry := Entry{
			ObjectPath:  reg.Names.Make(objectPath, 0),
			PackageName: reg.Names.Make(normalizedPathWithoutExtension, 0),
			AssetClass:  reg.Names.Make(classText, 0),
			PackagePath: reg.Names.Make(normalizedPathWithoutExtension, 0),
		}
		for _, tagName := range classMetadataWhitelist {
			entry.Tags = append(entry.Tags, TagValue{Tag: reg.Names.Make(tagName, 0), Value: ""})
		}
		reg.Entries = append(reg.Entries, entry)
		reg.Depends = append(reg.Depends, nil)
	}
}

func isClassDefaultObject(name string) bool {
	return strings.HasPrefix(name, "Default__")
}

func readString(r *bytes.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, int32(len(s)))
	buf.WriteString(s)
}

func readFName(r *bytes.Reader) (fname.Name, error) {
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
