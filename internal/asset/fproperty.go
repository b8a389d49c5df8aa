package asset

import (
	"bytes"
	"encoding/binary"

	"github.com/AssemblyStorm/mint/internal/fname"
)

// PropertyKind enumerates the 17 FProperty tagged variants.
type PropertyKind int

const (
	PropGeneric PropertyKind = iota
	PropEnum
	PropArray
	PropSet
	PropObject
	PropSoftObject
	PropClass
	PropSoftClass
	PropDelegate
	PropMulticastDelegate
	PropMulticastInlineDelegate
	PropInterface
	PropMap
	PropBool
	PropByte
	PropStruct
	PropNumeric
)

// GenericProperty is the common base every FProperty variant carries:
// name, flags, array dimension, element size, property flags, rep
// index, rep-notify FName, and blueprint-replication condition.
type GenericProperty struct {
	Name                        fname.Name
	Flags                       uint32
	ArrayDimension              int32
	ElementSize                 int32
	PropertyFlags               uint64
	RepIndex                    uint16
	RepNotifyFunc               fname.Name
	BlueprintReplicationCondition byte
}

// FProperty is a tagged union over the 17 variants, each of which
// embeds GenericProperty plus variant-specific fields kept as opaque
// bytes (this codec treats variant bodies as cargo: it threads them
// through cross-asset copies and round-trips them without needing to
// interpret the variant-specific payload's field semantics).
type FProperty struct {
	Kind    PropertyKind
	Generic GenericProperty

	// Inner holds nested FProperty values for Array/Set/Map (Map has
	// two: key then value).
	Inner []FProperty

	// ObjectClass/StructType/EnumType carry the PackageIndex/FName a
	// handful of variants reference directly (Object/SoftObject/Class/
	// SoftClass/Interface -> ObjectClass; Delegate/MulticastDelegate/
	// MulticastInlineDelegate -> ObjectClass, holding the signature
	// function; Struct -> StructType; Enum -> EnumType; Byte can carry an
	// EnumType too).
	ObjectClass PackageIndex
	StructType  PackageIndex
	EnumType    PackageIndex

	// Extra holds any remaining variant-specific bytes not otherwise
	// modeled above (e.g. Bool's bitmask byte triplet).
	Extra []byte
}

func readGenericProperty(r *bytes.Reader) (GenericProperty, error) {
	var g GenericProperty
	var err error
	if g.Name, err = readFName(r); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.Flags); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.ArrayDimension); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.ElementSize); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.PropertyFlags); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.RepIndex); err != nil {
		return g, err
	}
	if g.RepNotifyFunc, err = readFName(r); err != nil {
		return g, err
	}
	if err := binary.Read(r, binary.LittleEndian, &g.BlueprintReplicationCondition); err != nil {
		return g, err
	}
	return g, nil
}

func writeGenericProperty(buf *bytes.Buffer, g GenericProperty) {
	writeFName(buf, g.Name)
	binary.Write(buf, binary.LittleEndian, g.Flags)
	binary.Write(buf, binary.LittleEndian, g.ArrayDimension)
	binary.Write(buf, binary.LittleEndian, g.ElementSize)
	binary.Write(buf, binary.LittleEndian, g.PropertyFlags)
	binary.Write(buf, binary.LittleEndian, g.RepIndex)
	writeFName(buf, g.RepNotifyFunc)
	buf.WriteByte(g.BlueprintReplicationCondition)
}

// ReadFProperty decodes one tagged FProperty from r.
func ReadFProperty(r *bytes.Reader) (FProperty, error) {
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return FProperty{}, err
	}
	p := FProperty{Kind: PropertyKind(kind)}
	var err error
	if p.Generic, err = readGenericProperty(r); err != nil {
		return p, err
	}

	switch p.Kind {
	case PropObject, PropSoftObject, PropClass, PropSoftClass, PropInterface:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return p, err
		}
		p.ObjectClass = PackageIndex(idx)
	case PropStruct:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return p, err
		}
		p.StructType = PackageIndex(idx)
	case PropEnum:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return p, err
		}
		p.EnumType = PackageIndex(idx)
		inner, err := ReadFProperty(r)
		if err != nil {
			return p, err
		}
		p.Inner = []FProperty{inner}
	case PropByte:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return p, err
		}
		p.EnumType = PackageIndex(idx)
	case PropArray, PropSet:
		inner, err := ReadFProperty(r)
		if err != nil {
			return p, err
		}
		p.Inner = []FProperty{inner}
	case PropMap:
		key, err := ReadFProperty(r)
		if err != nil {
			return p, err
		}
		val, err := ReadFProperty(r)
		if err != nil {
			return p, err
		}
		p.Inner = []FProperty{key, val}
	case PropDelegate, PropMulticastDelegate, PropMulticastInlineDelegate:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return p, err
		}
		p.ObjectClass = PackageIndex(idx)
	case PropBool:
		extra := make([]byte, 3)
		if _, err := r.Read(extra); err != nil {
			return p, err
		}
		p.Extra = extra
	case PropNumeric, PropGeneric:
		// No variant-specific payload beyond the generic base.
	}
	return p, nil
}

// WriteFProperty encodes p into buf in the same tagged layout ReadFProperty
// expects.
func WriteFProperty(buf *bytes.Buffer, p FProperty) {
	binary.Write(buf, binary.LittleEndian, uint8(p.Kind))
	writeGenericProperty(buf, p.Generic)

	switch p.Kind {
	case PropObject, PropSoftObject, PropClass, PropSoftClass, PropInterface:
		binary.Write(buf, binary.LittleEndian, int32(p.ObjectClass))
	case PropStruct:
		binary.Write(buf, binary.LittleEndian, int32(p.StructType))
	case PropEnum:
		binary.Write(buf, binary.LittleEndian, int32(p.EnumType))
		if len(p.Inner) == 1 {
			WriteFProperty(buf, p.Inner[0])
		}
	case PropByte:
		binary.Write(buf, binary.LittleEndian, int32(p.EnumType))
	case PropArray, PropSet:
		if len(p.Inner) == 1 {
			WriteFProperty(buf, p.Inner[0])
		}
	case PropMap:
		if len(p.Inner) == 2 {
			WriteFProperty(buf, p.Inner[0])
			WriteFProperty(buf, p.Inner[1])
		}
	case PropDelegate, PropMulticastDelegate, PropMulticastInlineDelegate:
		binary.Write(buf, binary.LittleEndian, int32(p.ObjectClass))
	case PropBool:
		if len(p.Extra) == 3 {
			buf.Write(p.Extra)
		} else {
			buf.Write(make([]byte, 3))
		}
	case PropNumeric, PropGeneric:
	}
}
