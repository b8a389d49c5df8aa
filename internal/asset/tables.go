package asset

import (
	"bytes"
	"encoding/binary"

	"github.com/AssemblyStorm/mint/internal/fname"
)

func readImports(data []byte, offset, count int, names *fname.Table) ([]Import, error) {
	r := bytes.NewReader(data[offset:])
	out := make([]Import, count)
	for i := range out {
		var err error
		if out[i].ClassPackage, err = readFName(r); err != nil {
			return nil, err
		}
		if out[i].ClassName, err = readFName(r); err != nil {
			return nil, err
		}
		var outer int32
		if err := binary.Read(r, binary.LittleEndian, &outer); err != nil {
			return nil, err
		}
		out[i].OuterIndex = PackageIndex(outer)
		if out[i].ObjectName, err = readFName(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeImports(buf *bytes.Buffer, imports []Import) {
	for _, imp := range imports {
		writeFName(buf, imp.ClassPackage)
		writeFName(buf, imp.ClassName)
		binary.Write(buf, binary.LittleEndian, int32(imp.OuterIndex))
		writeFName(buf, imp.ObjectName)
	}
}

func readExports(data []byte, offset, count int, names *fname.Table) ([]Export, error) {
	r := bytes.NewReader(data[offset:])
	out := make([]Export, count)
	for i := range out {
		e := &out[i]
		var class, super, template, outer int32
		if err := binary.Read(r, binary.LittleEndian, &class); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &super); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &template); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &outer); err != nil {
			return nil, err
		}
		e.ClassIndex = PackageIndex(class)
		e.SuperIndex = PackageIndex(super)
		e.TemplateIndex = PackageIndex(template)
		e.OuterIndex = PackageIndex(outer)
		var err error
		if e.ObjectName, err = readFName(r); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.ObjectFlags); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.SerialSize); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.SerialOffset); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeExports(buf *bytes.Buffer, exports []Export) {
	for _, e := range exports {
		binary.Write(buf, binary.LittleEndian, int32(e.ClassIndex))
		binary.Write(buf, binary.LittleEndian, int32(e.SuperIndex))
		binary.Write(buf, binary.LittleEndian, int32(e.TemplateIndex))
		binary.Write(buf, binary.LittleEndian, int32(e.OuterIndex))
		writeFName(buf, e.ObjectName)
		binary.Write(buf, binary.LittleEndian, e.ObjectFlags)
		binary.Write(buf, binary.LittleEndian, e.SerialSize)
		binary.Write(buf, binary.LittleEndian, e.SerialOffset)
	}
}
