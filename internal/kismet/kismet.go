// Package kismet decodes and encodes the Kismet bytecode dialect stored
// in UFunction::script: a tagged, variable-length instruction stream
// compiled from Blueprint graphs. Each instruction is a one-byte opcode
// token followed by opcode-specific operands.
package kismet

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf16"

	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/mint"
)

// Opcode is a single Kismet instruction token, matching UE4.27's
// EExprToken byte values.
type Opcode uint8

const (
	OpLocalVariable           Opcode = 0x00
	OpInstanceVariable        Opcode = 0x01
	OpDefaultVariable         Opcode = 0x02
	OpReturn                  Opcode = 0x04
	OpJump                    Opcode = 0x06
	OpJumpIfNot               Opcode = 0x07
	OpNothing                 Opcode = 0x0B
	OpLet                     Opcode = 0x0F
	OpClassContext            Opcode = 0x12
	OpLetBool                 Opcode = 0x14
	OpEndFunctionParms        Opcode = 0x16
	OpSelf                    Opcode = 0x17
	OpContext                 Opcode = 0x19
	OpVirtualFunction         Opcode = 0x1B
	OpFinalFunction           Opcode = 0x1C
	OpIntConst                Opcode = 0x1D
	OpFloatConst              Opcode = 0x1E
	OpStringConst             Opcode = 0x1F
	OpObjectConst             Opcode = 0x20
	OpNameConst               Opcode = 0x21
	OpByteConst               Opcode = 0x24
	OpTrue                    Opcode = 0x27
	OpFalse                   Opcode = 0x28
	OpTextConst               Opcode = 0x29
	OpStructConst             Opcode = 0x2F
	OpEndStructConst          Opcode = 0x30
	OpSetArray                Opcode = 0x31
	OpEndArray                Opcode = 0x32
	OpPropertyConst           Opcode = 0x33
	OpUnicodeStringConst      Opcode = 0x34
	OpStructMemberContext     Opcode = 0x39
	OpLocalVirtualFunction    Opcode = 0x3C
	OpLocalFinalFunction      Opcode = 0x3D
	OpPushExecutionFlow       Opcode = 0x41
	OpPopExecutionFlow        Opcode = 0x42
	OpComputedJump            Opcode = 0x43
	OpEndOfScript             Opcode = 0x48
	OpSkipOffsetConst         Opcode = 0x4C
	OpLetObj                  Opcode = 0x50
	OpSoftObjectConst         Opcode = 0x58
	OpCallMath                Opcode = 0x59
	OpSwitchValue             Opcode = 0x5A
)

// TextConstVariant enumerates the sub-forms of EX_TextConst's payload.
type TextConstVariant uint8

const (
	TextEmpty TextConstVariant = iota
	TextLocalizedText
	TextInvariantText
	TextLiteralString
	TextStringTableEntry
)

// Expression is the common interface every decoded instruction
// satisfies. Concrete opcode structs are kept as plain value types so
// callers (the splicer) can rewrite fields in place.
type Expression interface {
	Opcode() Opcode
}

// PropertyPointer is Kismet's resolvable reference to an FProperty,
// either a direct owner + field-path chain (UE4.25+ "new" style, the
// only form this codec emits) used by LocalVariable/InstanceVariable/
// DefaultVariable/PropertyConst and the optional r-value pointer on
// Context.
type PropertyPointer struct {
	Path          []fname.Name
	ResolvedOwner asset.PackageIndex
}

func readPropertyPointer(r *bytes.Reader) (PropertyPointer, error) {
	var p PropertyPointer
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return p, err
	}
	p.Path = make([]fname.Name, count)
	for i := range p.Path {
		n, err := readFName(r)
		if err != nil {
			return p, err
		}
		p.Path[i] = n
	}
	var owner int32
	if err := binary.Read(r, binary.LittleEndian, &owner); err != nil {
		return p, err
	}
	p.ResolvedOwner = asset.PackageIndex(owner)
	return p, nil
}

func writePropertyPointer(buf *bytes.Buffer, p PropertyPointer) {
	binary.Write(buf, binary.LittleEndian, int32(len(p.Path)))
	for _, n := range p.Path {
		writeFName(buf, n)
	}
	binary.Write(buf, binary.LittleEndian, int32(p.ResolvedOwner))
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

// --- opcode structs ---

type LocalVariable struct{ Variable PropertyPointer }

func (LocalVariable) Opcode() Opcode { return OpLocalVariable }

type InstanceVariable struct{ Variable PropertyPointer }

func (InstanceVariable) Opcode() Opcode { return OpInstanceVariable }

type DefaultVariable struct{ Variable PropertyPointer }

func (DefaultVariable) Opcode() Opcode { return OpDefaultVariable }

type Return struct{ ReturnExpression Expression }

func (Return) Opcode() Opcode { return OpReturn }

// Jump's CodeOffset is an absolute byte position within the owning
// function's script while attached to a TrackedStatement pre-extract or
// post-inject; the splicer rewrites it to be keyed off original/new
// offsets in between.
type Jump struct{ CodeOffset uint32 }

func (Jump) Opcode() Opcode { return OpJump }

type JumpIfNot struct {
	CodeOffset         uint32
	BooleanExpression  Expression
}

func (JumpIfNot) Opcode() Opcode { return OpJumpIfNot }

type Nothing struct{}

func (Nothing) Opcode() Opcode { return OpNothing }

type Let struct {
	Variable           Expression
	AssignmentExpression Expression
}

func (Let) Opcode() Opcode { return OpLet }

type LetBool struct {
	VariableExpression   Expression
	AssignmentExpression Expression
}

func (LetBool) Opcode() Opcode { return OpLetBool }

type LetObj struct {
	VariableExpression   Expression
	AssignmentExpression Expression
}

func (LetObj) Opcode() Opcode { return OpLetObj }

type EndFunctionParms struct{}

func (EndFunctionParms) Opcode() Opcode { return OpEndFunctionParms }

type Self struct{}

func (Self) Opcode() Opcode { return OpSelf }

// Context covers both EX_Context and EX_ClassContext, which share an
// identical operand layout; IsClassContext distinguishes them for
// re-encoding.
type Context struct {
	IsClassContext    bool
	ObjectExpression  Expression
	Offset            uint32
	RValuePointer      PropertyPointer
	ContextExpression Expression
}

func (c Context) Opcode() Opcode {
	if c.IsClassContext {
		return OpClassContext
	}
	return OpContext
}

type StructMemberContext struct {
	Property          PropertyPointer
	StructExpression  Expression
}

func (StructMemberContext) Opcode() Opcode { return OpStructMemberContext }

// CallMath is a final (non-virtual, non-local) math-library call,
// targeting StackNode directly. Parameters is terminated on the wire by
// EndFunctionParms, which is not itself stored in Parameters.
type CallMath struct {
	StackNode  asset.PackageIndex
	Parameters []Expression
}

func (CallMath) Opcode() Opcode { return OpCallMath }

type LocalVirtualFunction struct {
	FunctionName fname.Name
	Parameters   []Expression
}

func (LocalVirtualFunction) Opcode() Opcode { return OpLocalVirtualFunction }

type LocalFinalFunction struct {
	StackNode  asset.PackageIndex
	Parameters []Expression
}

func (LocalFinalFunction) Opcode() Opcode { return OpLocalFinalFunction }

type VirtualFunction struct {
	FunctionName fname.Name
	Parameters   []Expression
}

func (VirtualFunction) Opcode() Opcode { return OpVirtualFunction }

type FinalFunction struct {
	StackNode  asset.PackageIndex
	Parameters []Expression
}

func (FinalFunction) Opcode() Opcode { return OpFinalFunction }

type IntConst struct{ Value int32 }

func (IntConst) Opcode() Opcode { return OpIntConst }

type FloatConst struct{ Value float32 }

func (FloatConst) Opcode() Opcode { return OpFloatConst }

type StringConst struct{ Value string }

func (StringConst) Opcode() Opcode { return OpStringConst }

type UnicodeStringConst struct{ Value string }

func (UnicodeStringConst) Opcode() Opcode { return OpUnicodeStringConst }

type NameConst struct{ Value fname.Name }

func (NameConst) Opcode() Opcode { return OpNameConst }

type ObjectConst struct{ Value asset.PackageIndex }

func (ObjectConst) Opcode() Opcode { return OpObjectConst }

type PropertyConst struct{ Value PropertyPointer }

func (PropertyConst) Opcode() Opcode { return OpPropertyConst }

type SoftObjectConst struct{ Value Expression }

func (SoftObjectConst) Opcode() Opcode { return OpSoftObjectConst }

type StructConst struct {
	Struct     asset.PackageIndex
	StructSize int32
	Value      []Expression
}

func (StructConst) Opcode() Opcode { return OpStructConst }

type EndStructConst struct{}

func (EndStructConst) Opcode() Opcode { return OpEndStructConst }

type SetArray struct {
	// AssigningProperty is non-nil only when the array target is itself
	// an expression (e.g. ExContext); nil when ArrayInnerProp identifies
	// the property directly.
	AssigningProperty Expression
	ArrayInnerProp    asset.PackageIndex
	Elements          []Expression
}

func (SetArray) Opcode() Opcode { return OpSetArray }

type EndArray struct{}

func (EndArray) Opcode() Opcode { return OpEndArray }

type ByteConst struct{ Value uint8 }

func (ByteConst) Opcode() Opcode { return OpByteConst }

type True struct{}

func (True) Opcode() Opcode { return OpTrue }

type False struct{}

func (False) Opcode() Opcode { return OpFalse }

type EndOfScript struct{}

func (EndOfScript) Opcode() Opcode { return OpEndOfScript }

// SkipOffsetConst is the one place a raw absolute function-local offset
// appears embedded inside a constant rather than an instruction field:
// the first operand of a LatentActionInfo StructConst, which the
// splicer rewrites to point into the ubergraph (see internal/splice).
type SkipOffsetConst struct{ Value uint32 }

func (SkipOffsetConst) Opcode() Opcode { return OpSkipOffsetConst }

// PushExecutionFlow's PushingAddress is an absolute offset the splicer
// rewrites the same way as Jump.CodeOffset.
type PushExecutionFlow struct{ PushingAddress uint32 }

func (PushExecutionFlow) Opcode() Opcode { return OpPushExecutionFlow }

type PopExecutionFlow struct{}

func (PopExecutionFlow) Opcode() Opcode { return OpPopExecutionFlow }

type ComputedJump struct{ CodeOffsetExpression Expression }

func (ComputedJump) Opcode() Opcode { return OpComputedJump }

// SwitchCase is one case of a SwitchValue; NextOffset is the absolute
// byte offset of the following case (or, for the last case, the
// default term), rewritten by the splicer alongside EndGotoOffset.
type SwitchCase struct {
	CaseIndexValueTerm Expression
	NextOffset         uint32
	CaseTerm           Expression
}

// SwitchValue's two offset fields (EndGotoOffset and each case's
// NextOffset) are the ones the splicer's extract phase shifts to be
// relative to the instruction's own start.
type SwitchValue struct {
	EndGotoOffset uint32
	Condition     Expression
	Cases         []SwitchCase
	DefaultTerm   Expression
}

func (SwitchValue) Opcode() Opcode { return OpSwitchValue }

type TextConst struct {
	Variant TextConstVariant
	// LocalizedText/InvariantText/LiteralString carry a single nested
	// string expression (SourceString); StringTableEntry carries a
	// table id plus key, both string expressions.
	SourceString Expression
	TableID      Expression
	Key          Expression
}

func (TextConst) Opcode() Opcode { return OpTextConst }

// Decode reads exactly one instruction from r.
func Decode(r *bytes.Reader) (Expression, error) {
	var tag uint8
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	op := Opcode(tag)
	switch op {
	case OpLocalVariable, OpInstanceVariable, OpDefaultVariable:
		p, err := readPropertyPointer(r)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpLocalVariable:
			return LocalVariable{p}, nil
		case OpInstanceVariable:
			return InstanceVariable{p}, nil
		default:
			return DefaultVariable{p}, nil
		}
	case OpReturn:
		e, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return Return{e}, nil
	case OpJump:
		var off uint32
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, err
		}
		return Jump{off}, nil
	case OpJumpIfNot:
		var off uint32
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, err
		}
		cond, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return JumpIfNot{off, cond}, nil
	case OpNothing:
		return Nothing{}, nil
	case OpLet:
		v, err := Decode(r)
		if err != nil {
			return nil, err
		}
		a, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return Let{v, a}, nil
	case OpLetBool:
		v, err := Decode(r)
		if err != nil {
			return nil, err
		}
		a, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return LetBool{v, a}, nil
	case OpLetObj:
		v, err := Decode(r)
		if err != nil {
			return nil, err
		}
		a, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return LetObj{v, a}, nil
	case OpEndFunctionParms:
		return EndFunctionParms{}, nil
	case OpSelf:
		return Self{}, nil
	case OpContext, OpClassContext:
		obj, err := Decode(r)
		if err != nil {
			return nil, err
		}
		var off uint32
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, err
		}
		rv, err := readPropertyPointer(r)
		if err != nil {
			return nil, err
		}
		ctx, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return Context{op == OpClassContext, obj, off, rv, ctx}, nil
	case OpStructMemberContext:
		p, err := readPropertyPointer(r)
		if err != nil {
			return nil, err
		}
		s, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return StructMemberContext{p, s}, nil
	case OpCallMath, OpLocalFinalFunction, OpFinalFunction:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		params, err := decodeParamList(r)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpCallMath:
			return CallMath{asset.PackageIndex(idx), params}, nil
		case OpLocalFinalFunction:
			return LocalFinalFunction{asset.PackageIndex(idx), params}, nil
		default:
			return FinalFunction{asset.PackageIndex(idx), params}, nil
		}
	case OpLocalVirtualFunction, OpVirtualFunction:
		n, err := readFName(r)
		if err != nil {
			return nil, err
		}
		params, err := decodeParamList(r)
		if err != nil {
			return nil, err
		}
		if op == OpLocalVirtualFunction {
			return LocalVirtualFunction{n, params}, nil
		}
		return VirtualFunction{n, params}, nil
	case OpIntConst:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return IntConst{v}, nil
	case OpFloatConst:
		var v float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return FloatConst{v}, nil
	case OpStringConst:
		s, err := readASCIIZ(r)
		if err != nil {
			return nil, err
		}
		return StringConst{s}, nil
	case OpUnicodeStringConst:
		s, err := readUTF16Z(r)
		if err != nil {
			return nil, err
		}
		return UnicodeStringConst{s}, nil
	case OpNameConst:
		n, err := readFName(r)
		if err != nil {
			return nil, err
		}
		return NameConst{n}, nil
	case OpObjectConst:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		return ObjectConst{asset.PackageIndex(idx)}, nil
	case OpPropertyConst:
		p, err := readPropertyPointer(r)
		if err != nil {
			return nil, err
		}
		return PropertyConst{p}, nil
	case OpSoftObjectConst:
		e, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return SoftObjectConst{e}, nil
	case OpStructConst:
		var idx int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, err
		}
		var size int32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		var vals []Expression
		for {
			e, err := Decode(r)
			if err != nil {
				return nil, err
			}
			if e.Opcode() == OpEndStructConst {
				break
			}
			vals = append(vals, e)
		}
		return StructConst{asset.PackageIndex(idx), size, vals}, nil
	case OpEndStructConst:
		return EndStructConst{}, nil
	case OpSetArray:
		first, err := Decode(r)
		if err != nil {
			return nil, err
		}
		sa := SetArray{}
		if op2, ok := first.(ObjectConst); ok {
			sa.ArrayInnerProp = op2.Value
		} else {
			sa.AssigningProperty = first
		}
		for {
			e, err := Decode(r)
			if err != nil {
				return nil, err
			}
			if e.Opcode() == OpEndArray {
				break
			}
			sa.Elements = append(sa.Elements, e)
		}
		return sa, nil
	case OpEndArray:
		return EndArray{}, nil
	case OpByteConst:
		var v uint8
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return ByteConst{v}, nil
	case OpTrue:
		return True{}, nil
	case OpFalse:
		return False{}, nil
	case OpEndOfScript:
		return EndOfScript{}, nil
	case OpSkipOffsetConst:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return SkipOffsetConst{v}, nil
	case OpPushExecutionFlow:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return PushExecutionFlow{v}, nil
	case OpPopExecutionFlow:
		return PopExecutionFlow{}, nil
	case OpComputedJump:
		e, err := Decode(r)
		if err != nil {
			return nil, err
		}
		return ComputedJump{e}, nil
	case OpSwitchValue:
		var numCases uint16
		if err := binary.Read(r, binary.LittleEndian, &numCases); err != nil {
			return nil, err
		}
		cond, err := Decode(r)
		if err != nil {
			return nil, err
		}
		var endGoto uint32
		if err := binary.Read(r, binary.LittleEndian, &endGoto); err != nil {
			return nil, err
		}
		sv := SwitchValue{EndGotoOffset: endGoto, Condition: cond}
		for i := 0; i < int(numCases); i++ {
			caseIdx, err := Decode(r)
			if err != nil {
				return nil, err
			}
			var next uint32
			if err := binary.Read(r, binary.LittleEndian, &next); err != nil {
				return nil, err
			}
			caseTerm, err := Decode(r)
			if err != nil {
				return nil, err
			}
			sv.Cases = append(sv.Cases, SwitchCase{caseIdx, next, caseTerm})
		}
		def, err := Decode(r)
		if err != nil {
			return nil, err
		}
		sv.DefaultTerm = def
		return sv, nil
	case OpTextConst:
		var variant uint8
		if err := binary.Read(r, binary.LittleEndian, &variant); err != nil {
			return nil, err
		}
		tc := TextConst{Variant: TextConstVariant(variant)}
		switch tc.Variant {
		case TextLocalizedText, TextInvariantText, TextLiteralString:
			e, err := Decode(r)
			if err != nil {
				return nil, err
			}
			tc.SourceString = e
		case TextStringTableEntry:
			tableID, err := Decode(r)
			if err != nil {
				return nil, err
			}
			key, err := Decode(r)
			if err != nil {
				return nil, err
			}
			tc.TableID = tableID
			tc.Key = key
		case TextEmpty:
		}
		return tc, nil
	default:
		return nil, mint.New(mint.AssetBuildFailure, "unsupported kismet opcode")
	}
}

func decodeParamList(r *bytes.Reader) ([]Expression, error) {
	var params []Expression
	for {
		e, err := Decode(r)
		if err != nil {
			return nil, err
		}
		if e.Opcode() == OpEndFunctionParms {
			break
		}
		params = append(params, e)
	}
	return params, nil
}

func readASCIIZ(r *bytes.Reader) (string, error) {
	var b bytes.Buffer
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func readUTF16Z(r *bytes.Reader) (string, error) {
	var units []uint16
	for {
		var u uint16
		if err := binary.Read(r, binary.LittleEndian, &u); err != nil {
			return "", err
		}
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// Encode writes e's opcode tag and operands to buf.
func Encode(buf *bytes.Buffer, e Expression) error {
	buf.WriteByte(byte(e.Opcode()))
	switch v := e.(type) {
	case LocalVariable:
		writePropertyPointer(buf, v.Variable)
	case InstanceVariable:
		writePropertyPointer(buf, v.Variable)
	case DefaultVariable:
		writePropertyPointer(buf, v.Variable)
	case Return:
		return Encode(buf, v.ReturnExpression)
	case Jump:
		binary.Write(buf, binary.LittleEndian, v.CodeOffset)
	case JumpIfNot:
		binary.Write(buf, binary.LittleEndian, v.CodeOffset)
		return Encode(buf, v.BooleanExpression)
	case Nothing:
	case Let:
		if err := Encode(buf, v.Variable); err != nil {
			return err
		}
		return Encode(buf, v.AssignmentExpression)
	case LetBool:
		if err := Encode(buf, v.VariableExpression); err != nil {
			return err
		}
		return Encode(buf, v.AssignmentExpression)
	case LetObj:
		if err := Encode(buf, v.VariableExpression); err != nil {
			return err
		}
		return Encode(buf, v.AssignmentExpression)
	case EndFunctionParms:
	case Self:
	case Context:
		if err := Encode(buf, v.ObjectExpression); err != nil {
			return err
		}
		binary.Write(buf, binary.LittleEndian, v.Offset)
		writePropertyPointer(buf, v.RValuePointer)
		return Encode(buf, v.ContextExpression)
	case StructMemberContext:
		writePropertyPointer(buf, v.Property)
		return Encode(buf, v.StructExpression)
	case CallMath:
		binary.Write(buf, binary.LittleEndian, int32(v.StackNode))
		return encodeParamList(buf, v.Parameters)
	case LocalFinalFunction:
		binary.Write(buf, binary.LittleEndian, int32(v.StackNode))
		return encodeParamList(buf, v.Parameters)
	case FinalFunction:
		binary.Write(buf, binary.LittleEndian, int32(v.StackNode))
		return encodeParamList(buf, v.Parameters)
	case LocalVirtualFunction:
		writeFName(buf, v.FunctionName)
		return encodeParamList(buf, v.Parameters)
	case VirtualFunction:
		writeFName(buf, v.FunctionName)
		return encodeParamList(buf, v.Parameters)
	case IntConst:
		binary.Write(buf, binary.LittleEndian, v.Value)
	case FloatConst:
		binary.Write(buf, binary.LittleEndian, v.Value)
	case StringConst:
		buf.WriteString(v.Value)
		buf.WriteByte(0)
	case UnicodeStringConst:
		for _, u := range utf16.Encode([]rune(v.Value)) {
			binary.Write(buf, binary.LittleEndian, u)
		}
		binary.Write(buf, binary.LittleEndian, uint16(0))
	case NameConst:
		writeFName(buf, v.Value)
	case ObjectConst:
		binary.Write(buf, binary.LittleEndian, int32(v.Value))
	case PropertyConst:
		writePropertyPointer(buf, v.Value)
	case SoftObjectConst:
		return Encode(buf, v.Value)
	case StructConst:
		binary.Write(buf, binary.LittleEndian, int32(v.Struct))
		binary.Write(buf, binary.LittleEndian, v.StructSize)
		for _, e := range v.Value {
			if err := Encode(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(byte(OpEndStructConst))
	case EndStructConst:
	case SetArray:
		if v.AssigningProperty != nil {
			if err := Encode(buf, v.AssigningProperty); err != nil {
				return err
			}
		} else {
			if err := Encode(buf, ObjectConst{v.ArrayInnerProp}); err != nil {
				return err
			}
		}
		for _, e := range v.Elements {
			if err := Encode(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(byte(OpEndArray))
	case EndArray:
	case ByteConst:
		binary.Write(buf, binary.LittleEndian, v.Value)
	case True:
	case False:
	case EndOfScript:
	case SkipOffsetConst:
		binary.Write(buf, binary.LittleEndian, v.Value)
	case PushExecutionFlow:
		binary.Write(buf, binary.LittleEndian, v.PushingAddress)
	case PopExecutionFlow:
	case ComputedJump:
		return Encode(buf, v.CodeOffsetExpression)
	case SwitchValue:
		binary.Write(buf, binary.LittleEndian, uint16(len(v.Cases)))
		if err := Encode(buf, v.Condition); err != nil {
			return err
		}
		binary.Write(buf, binary.LittleEndian, v.EndGotoOffset)
		for _, c := range v.Cases {
			if err := Encode(buf, c.CaseIndexValueTerm); err != nil {
				return err
			}
			binary.Write(buf, binary.LittleEndian, c.NextOffset)
			if err := Encode(buf, c.CaseTerm); err != nil {
				return err
			}
		}
		return Encode(buf, v.DefaultTerm)
	case TextConst:
		buf.WriteByte(byte(v.Variant))
		switch v.Variant {
		case TextLocalizedText, TextInvariantText, TextLiteralString:
			return Encode(buf, v.SourceString)
		case TextStringTableEntry:
			if err := Encode(buf, v.TableID); err != nil {
				return err
			}
			return Encode(buf, v.Key)
		}
	default:
		return mint.New(mint.AssetBuildFailure, "unsupported kismet expression for encode")
	}
	return nil
}

func encodeParamList(buf *bytes.Buffer, params []Expression) error {
	for _, p := range params {
		if err := Encode(buf, p); err != nil {
			return err
		}
	}
	buf.WriteByte(byte(OpEndFunctionParms))
	return nil
}

// Size returns the on-wire byte length of e, including its opcode tag.
// This is computable from the decoded form alone; Size does so by
// re-encoding into a scratch buffer, which is the simplest way to keep
// the size computation and the encoder from drifting out of sync.
func Size(e Expression) int {
	var buf bytes.Buffer
	if err := Encode(&buf, e); err != nil {
		return 0
	}
	return buf.Len()
}

// DecodeScript decodes a full UFunction::script byte sequence into a
// flat list of top-level instructions, stopping after EndOfScript.
func DecodeScript(script []byte) ([]Expression, error) {
	r := bytes.NewReader(script)
	var out []Expression
	for r.Len() > 0 {
		e, err := Decode(r)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		out = append(out, e)
		if e.Opcode() == OpEndOfScript {
			break
		}
	}
	return out, nil
}

// EncodeScript re-serializes a flat instruction list back into bytes.
func EncodeScript(exprs []Expression) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range exprs {
		if err := Encode(&buf, e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Walk visits ex and every subexpression it contains, depth-first,
// calling f on each. f receives each subexpression as a value; Walk
// writes nothing back into ex.
func Walk(ex Expression, f func(Expression)) {
	f(ex)
	switch v := ex.(type) {
	case Return:
		Walk(v.ReturnExpression, f)
	case JumpIfNot:
		Walk(v.BooleanExpression, f)
	case Let:
		Walk(v.Variable, f)
		Walk(v.AssignmentExpression, f)
	case LetBool:
		Walk(v.VariableExpression, f)
		Walk(v.AssignmentExpression, f)
	case LetObj:
		Walk(v.VariableExpression, f)
		Walk(v.AssignmentExpression, f)
	case Context:
		Walk(v.ObjectExpression, f)
		Walk(v.ContextExpression, f)
	case StructMemberContext:
		Walk(v.StructExpression, f)
	case CallMath:
		for _, p := range v.Parameters {
			Walk(p, f)
		}
	case LocalFinalFunction:
		for _, p := range v.Parameters {
			Walk(p, f)
		}
	case FinalFunction:
		for _, p := range v.Parameters {
			Walk(p, f)
		}
	case LocalVirtualFunction:
		for _, p := range v.Parameters {
			Walk(p, f)
		}
	case VirtualFunction:
		for _, p := range v.Parameters {
			Walk(p, f)
		}
	case SoftObjectConst:
		Walk(v.Value, f)
	case StructConst:
		for _, e := range v.Value {
			Walk(e, f)
		}
	case SetArray:
		if v.AssigningProperty != nil {
			Walk(v.AssigningProperty, f)
		}
		for _, e := range v.Elements {
			Walk(e, f)
		}
	case ComputedJump:
		Walk(v.CodeOffsetExpression, f)
	case SwitchValue:
		Walk(v.Condition, f)
		for _, c := range v.Cases {
			Walk(c.CaseIndexValueTerm, f)
			Walk(c.CaseTerm, f)
		}
		Walk(v.DefaultTerm, f)
	case TextConst:
		if v.SourceString != nil {
			Walk(v.SourceString, f)
		}
		if v.TableID != nil {
			Walk(v.TableID, f)
		}
		if v.Key != nil {
			Walk(v.Key, f)
		}
	}
}
