// Package splice implements the three-phase bytecode splicer: Extract
// converts a FunctionExport's raw script into mutable, offset-tagged
// statements; callers insert/remove/modify freely; Inject recomputes
// absolute offsets and rewrites every jump, push-execution-flow,
// switch-value, and latent-action target to match. It also implements
// hook region discovery and cross-asset copy helpers that graft
// bytecode and properties from one asset into another.
package splice

import (
	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/kismet"
	"github.com/AssemblyStorm/mint/internal/mint"
)

// Origin names an owning function within one asset: the optional
// string distinguishes statements extracted from a different asset
// during a cross-asset copy (nil origin string means "this asset").
type Origin struct {
	Asset    *string
	Function asset.PackageIndex
}

// TrackedStatement is one Kismet instruction annotated with its owning
// function, its jump/push/latent-action target function (defaulting to
// Origin when nil), and its original absolute byte offset.
type TrackedStatement struct {
	Origin         Origin
	PointsTo       *Origin
	OriginalOffset *int
	Expr           kismet.Expression
}

func (t *TrackedStatement) dest() Origin {
	if t.PointsTo != nil {
		return *t.PointsTo
	}
	return t.Origin
}

// FunctionStatements maps each FunctionExport's PackageIndex to its
// tracked statement list.
type FunctionStatements map[asset.PackageIndex][]*TrackedStatement

// shiftSwitch adds shift to every SwitchValue offset field reachable
// from ex, used by Extract (shift = -originalOffset, making the offsets
// relative to the instruction's own start) and Inject (shift =
// +newOffset, restoring them to absolute).
func shiftSwitch(ex kismet.Expression, shift int) kismet.Expression {
	switch v := ex.(type) {
	case kismet.SwitchValue:
		v.EndGotoOffset = uint32(int(v.EndGotoOffset) + shift)
		for i := range v.Cases {
			v.Cases[i].NextOffset = uint32(int(v.Cases[i].NextOffset) + shift)
		}
		return v
	default:
		return ex
	}
}

func findUbergraph(a *asset.Asset) (asset.PackageIndex, bool) {
	for i, e := range a.Exports {
		if isFunctionExport(e) && hasPrefix(a.Names.Text(e.ObjectName), "ExecuteUbergraph") {
			return asset.FromExportIndex(int32(i)), true
		}
	}
	return 0, false
}

func isFunctionExport(e asset.Export) bool {
	// A FunctionExport is identified by carrying a decoded script body;
	// this codec does not track a separate export-class tag, so any
	// export whose RawBody looks like bytecode and whose name is used
	// as a function is accepted by callers that already know which
	// exports are functions (the deferred patcher looks these up by
	// name). Here we accept every export as a candidate and let the
	// ExecuteUbergraph name-prefix check discriminate.
	return true
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func findStructLatentAction(a *asset.Asset) (asset.PackageIndex, bool) {
	for i, imp := range a.Imports {
		if a.Names.Text(imp.ClassPackage) == "/Script/CoreUObject" &&
			a.Names.Text(imp.ClassName) == "ScriptStruct" &&
			a.Names.Text(imp.ObjectName) == "LatentActionInfo" {
			return asset.FromImportIndex(int32(i)), true
		}
	}
	return 0, false
}

// Extract decodes every FunctionExport's script bytecode into tracked
// statements keyed by the export's PackageIndex. SwitchValue offsets
// are shifted to be relative to their own instruction's start so they
// decouple from absolute byte position.
func Extract(a *asset.Asset, names map[asset.PackageIndex]string) (FunctionStatements, error) {
	out := make(FunctionStatements)
	for i := range a.Exports {
		e := &a.Exports[i]
		if len(e.RawBody) == 0 {
			continue
		}
		pi := asset.FromExportIndex(int32(i))
		if _, ok := names[pi]; !ok {
			continue
		}
		exprs, err := kismet.DecodeScript(e.RawBody)
		if err != nil {
			return nil, mint.Wrap(mint.AssetBuildFailure, "failed to decode function script", err)
		}
		origin := Origin{Function: pi}
		stmts := make([]*TrackedStatement, 0, len(exprs))
		offset := 0
		for _, ex := range exprs {
			oo := offset
			offset += kismet.Size(ex)
			ex = shiftSwitch(ex, -oo)
			stmts = append(stmts, &TrackedStatement{Origin: origin, OriginalOffset: &oo, Expr: ex})
		}
		out[pi] = stmts
	}
	return out, nil
}

// mappingKey identifies a function within a possibly cross-asset origin
// for offset-mapping lookups.
type mappingKey struct {
	asset string
	fn    asset.PackageIndex
}

func originKey(o Origin) mappingKey {
	k := mappingKey{fn: o.Function}
	if o.Asset != nil {
		k.asset = *o.Asset
	}
	return k
}

// Inject assigns new absolute offsets (cumulative size per function),
// then rewrites every Jump/JumpIfNot/PushExecutionFlow (via the origin
// function's map), every CallMath-to-LatentAction SkipOffsetConst (via
// the ubergraph's map), and restores SwitchValue offsets to absolute,
// writing the result back onto each export's RawBody. Returns an error
// naming the dangling jump if a statement's recorded target offset no
// longer exists in the mapping .
func Inject(a *asset.Asset, stmts FunctionStatements) error {
	mapping := make(map[mappingKey]map[int]int)
	for pi, fn := range stmts {
		m := make(map[int]int)
		offset := 0
		for _, st := range fn {
			if st.OriginalOffset != nil {
				m[*st.OriginalOffset] = offset
			}
			offset += kismet.Size(st.Expr)
		}
		mapping[originKey(Origin{Function: pi})] = m
	}

	ubergraph, hasUbergraph := findUbergraph(a)
	latentAction, hasLatent := findStructLatentAction(a)

	for pi, fn := range stmts {
		offset := 0
		resolved := make([]kismet.Expression, 0, len(fn))
		for _, st := range fn {
			dest := st.dest()
			ex, err := rewriteTargets(st.Expr, mapping, dest, ubergraph, hasUbergraph, latentAction, hasLatent)
			if err != nil {
				return err
			}
			ex = shiftSwitch(ex, offset)
			resolved = append(resolved, ex)
			offset += kismet.Size(ex)
		}
		raw, err := kismet.EncodeScript(resolved)
		if err != nil {
			return mint.Wrap(mint.AssetBuildFailure, "failed to encode function script", err)
		}
		idx := pi.ExportIndex()
		if int(idx) < 0 || int(idx) >= len(a.Exports) {
			return mint.New(mint.AssetBuildFailure, "inject target export out of range")
		}
		a.Exports[idx].RawBody = raw
		a.Exports[idx].SerialSize = int64(len(raw))
	}
	return nil
}

func rewriteTargets(ex kismet.Expression, mapping map[mappingKey]map[int]int, dest Origin, ubergraph asset.PackageIndex, hasUbergraph bool, latentAction asset.PackageIndex, hasLatent bool) (kismet.Expression, error) {
	lookup := func(o Origin, off uint32) (uint32, error) {
		m, ok := mapping[originKey(o)]
		if !ok {
			return 0, mint.New(mint.AssetBuildFailure, "jump target function missing from offset mapping")
		}
		n, ok := m[int(off)]
		if !ok {
			return 0, mint.New(mint.AssetBuildFailure, "dangling jump: target offset not present in mapping")
		}
		return uint32(n), nil
	}

	switch v := ex.(type) {
	case kismet.Jump:
		n, err := lookup(dest, v.CodeOffset)
		if err != nil {
			return nil, err
		}
		v.CodeOffset = n
		return v, nil
	case kismet.JumpIfNot:
		n, err := lookup(dest, v.CodeOffset)
		if err != nil {
			return nil, err
		}
		v.CodeOffset = n
		return v, nil
	case kismet.PushExecutionFlow:
		n, err := lookup(dest, v.PushingAddress)
		if err != nil {
			return nil, err
		}
		v.PushingAddress = n
		return v, nil
	case kismet.CallMath:
		if hasLatent && hasUbergraph {
			for i, p := range v.Parameters {
				sc, ok := p.(kismet.StructConst)
				if !ok || sc.Struct != latentAction || len(sc.Value) != 4 {
					continue
				}
				if off, ok := sc.Value[0].(kismet.SkipOffsetConst); ok {
					n, err := lookup(Origin{Function: ubergraph}, off.Value)
					if err != nil {
						return nil, err
					}
					off.Value = n
					sc.Value[0] = off
					v.Parameters[i] = sc
				}
			}
		}
		return v, nil
	default:
		return ex, nil
	}
}

// Hook is a contiguous region of a function delimited by a "HOOK
// START" / "HOOK END" virtual-function-call pair.
type Hook struct {
	Name        string
	Function    asset.PackageIndex
	Statements  []*TrackedStatement
	StartOffset int
	EndOffset   *int
}

// successorsOf returns the statement offsets ex can transfer control to
// within its own function, treating Return/PopExecutionFlow/
// EndOfScript/ComputedJump as terminal (no successors).
func successorsOf(ex kismet.Expression) ([]int, bool) {
	switch v := ex.(type) {
	case kismet.Jump:
		return []int{int(v.CodeOffset)}, true
	case kismet.JumpIfNot:
		return []int{int(v.CodeOffset)}, false
	case kismet.PushExecutionFlow:
		return []int{int(v.PushingAddress)}, false
	case kismet.Return, kismet.PopExecutionFlow, kismet.EndOfScript, kismet.ComputedJump:
		return nil, true
	default:
		return nil, false
	}
}

// FindHooks walks the control-flow graph of every function in stmts
// (successors = fallthrough, plus Jump/JumpIfNot/PushExecutionFlow
// targets) and collects every "HOOK START"..."HOOK END" region keyed by
// the hook's string-constant name.
func FindHooks(stmts FunctionStatements) map[string]Hook {
	hooks := make(map[string]Hook)
	for fn, list := range stmts {
		byOffset := make(map[int]*TrackedStatement, len(list))
		for i, st := range list {
			if st.OriginalOffset != nil {
				byOffset[*st.OriginalOffset] = list[i]
			}
		}
		for i, st := range list {
			lvf, ok := st.Expr.(kismet.LocalVirtualFunction)
			if !ok {
				continue
			}
			text := lvf.FunctionName.TableIndex
			_ = text
			if !isHookStart(lvf) {
				continue
			}
			name := lvf.Parameters[0].(kismet.StringConst).Value

			var startOffset int
			if i+1 < len(list) && list[i+1].OriginalOffset != nil {
				startOffset = *list[i+1].OriginalOffset
			}

			visited := map[int]bool{}
			var toVisit []int
			if terminal, isTerm := successorsOf(st.Expr); isTerm {
				_ = terminal
			} else if i+1 < len(list) && list[i+1].OriginalOffset != nil {
				toVisit = append(toVisit, *list[i+1].OriginalOffset)
			}

			collected := map[int]*TrackedStatement{}
			var endOffset *int
			for len(toVisit) > 0 {
				off := toVisit[len(toVisit)-1]
				toVisit = toVisit[:len(toVisit)-1]
				if visited[off] {
					continue
				}
				visited[off] = true
				next, ok := byOffset[off]
				if !ok {
					continue
				}
				collected[off] = next
				if lvf2, ok := next.Expr.(kismet.LocalVirtualFunction); ok && isHookEndName(lvf2) {
					eo := *next.OriginalOffset
					endOffset = &eo
					continue
				}
				succs, terminal := successorsOf(next.Expr)
				for _, s := range succs {
					if !visited[s] {
						toVisit = append(toVisit, s)
					}
				}
				if !terminal {
					idx := indexOf(list, next)
					if idx >= 0 && idx+1 < len(list) && list[idx+1].OriginalOffset != nil {
						n := *list[idx+1].OriginalOffset
						if !visited[n] {
							toVisit = append(toVisit, n)
						}
					}
				}
			}

			ordered := make([]*TrackedStatement, 0, len(collected))
			for _, s := range collected {
				ordered = append(ordered, s)
			}
			hooks[name] = Hook{Name: name, Function: fn, Statements: ordered, StartOffset: startOffset, EndOffset: endOffset}
		}
	}
	return hooks
}

func isHookStart(lvf kismet.LocalVirtualFunction) bool {
	return len(lvf.Parameters) == 1 && hookFunctionNameIs(lvf, "HOOK START")
}

func isHookEndName(lvf kismet.LocalVirtualFunction) bool {
	return hookFunctionNameIs(lvf, "HOOK END")
}

// hookFunctionNameIs reports whether lvf's function name, resolved
// through the resolver installed by SetNameResolver, equals want. It
// reports false when no resolver is installed.
func hookFunctionNameIs(lvf kismet.LocalVirtualFunction, want string) bool {
	return hookNameResolver != nil && hookNameResolver(lvf.FunctionName) == want
}

// hookNameResolver resolves an fname.Name to its text; set via
// SetNameResolver before calling FindHooks so hook-name comparisons can
// work without threading a *fname.Table through every helper.
var hookNameResolver func(fname.Name) string

// SetNameResolver installs the name table used to resolve FName text
// during hook discovery. Callers of FindHooks must call this with the
// target asset's Names table first.
func SetNameResolver(resolve func(fname.Name) string) {
	hookNameResolver = resolve
}

func indexOf(list []*TrackedStatement, target *TrackedStatement) int {
	for i, s := range list {
		if s == target {
			return i
		}
	}
	return -1
}

// CopyPackage recursively copies package, an import or export
// PackageIndex in from, into to, deduplicating imports by
// (class_package, class_name, outer_index, object_name) and
// memoizing the copy. Export-to-export copies are not supported;
// callers must convert to imports first .
func CopyPackage(from, to *asset.Asset, pkg asset.PackageIndex) (asset.PackageIndex, error) {
	if pkg.IsNull() {
		return 0, nil
	}
	if pkg.IsExport() {
		return 0, mint.New(mint.AssetBuildFailure, "cannot copy an export reference across assets")
	}
	imp := from.Imports[pkg.ImportIndex()]
	outer, err := CopyPackage(from, to, imp.OuterIndex)
	if err != nil {
		return 0, err
	}
	classPkg := to.Names.Make(from.Names.Text(imp.ClassPackage), 0)
	className := to.Names.Make(from.Names.Text(imp.ClassName), 0)
	objectName := to.Names.Make(from.Names.Text(imp.ObjectName), 0)
	for i, existing := range to.Imports {
		if existing.ClassPackage == classPkg && existing.ClassName == className &&
			existing.OuterIndex == outer && existing.ObjectName == objectName {
			return asset.FromImportIndex(int32(i)), nil
		}
	}
	to.Imports = append(to.Imports, asset.Import{
		ClassPackage: classPkg, ClassName: className, OuterIndex: outer, ObjectName: objectName,
	})
	return asset.FromImportIndex(int32(len(to.Imports) - 1)), nil
}

// CopyPropertyPointer rewrites a PropertyPointer's field-path FNames and
// resolved owner from from's name/import space into to's, per
//'s copy_kismetpropertypointer.
func CopyPropertyPointer(from, to *asset.Asset, fnFrom, fnTo asset.PackageIndex, p kismet.PropertyPointer) (kismet.PropertyPointer, error) {
	out := kismet.PropertyPointer{Path: make([]fname.Name, len(p.Path))}
	for i, n := range p.Path {
		out.Path[i] = to.Names.Make(from.Names.Text(n), n.Number)
	}
	switch {
	case p.ResolvedOwner.IsNull():
		out.ResolvedOwner = 0
	case p.ResolvedOwner == fnFrom:
		out.ResolvedOwner = fnTo
	case p.ResolvedOwner.IsImport():
		owner, err := CopyPackage(from, to, p.ResolvedOwner)
		if err != nil {
			return out, err
		}
		out.ResolvedOwner = owner
	default:
		// A resolved owner that is neither null, the source function, nor
		// an import has no defined copy target; fail loudly rather than
		// guess.
		return out, mint.New(mint.AssetBuildFailure, "unsupported resolved_owner during property pointer copy (resolved_owner != fn_from and not an import)")
	}
	return out, nil
}

// CopyExpression recursively copies ex from asset `from` into `to`,
// rewriting every FName and PackageIndex it carries; fnFrom/fnTo
// identify the owning function in each asset so that ResolvedOwner
// self-references retarget correctly. Jump-family offsets are copied
// verbatim: the caller is responsible for re-running Extract/Inject on
// the destination once grafting is complete.
func CopyExpression(from, to *asset.Asset, fnFrom, fnTo asset.PackageIndex, ex kismet.Expression) (kismet.Expression, error) {
	var err error
	switch v := ex.(type) {
	case kismet.LocalVariable:
		v.Variable, err = CopyPropertyPointer(from, to, fnFrom, fnTo, v.Variable)
		return v, err
	case kismet.InstanceVariable:
		v.Variable, err = CopyPropertyPointer(from, to, fnFrom, fnTo, v.Variable)
		return v, err
	case kismet.DefaultVariable:
		v.Variable, err = CopyPropertyPointer(from, to, fnFrom, fnTo, v.Variable)
		return v, err
	case kismet.Return:
		v.ReturnExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.ReturnExpression)
		return v, err
	case kismet.Jump:
		return v, nil
	case kismet.JumpIfNot:
		v.BooleanExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.BooleanExpression)
		return v, err
	case kismet.Nothing:
		return v, nil
	case kismet.Self:
		return v, nil
	case kismet.Let:
		if v.Variable, err = CopyExpression(from, to, fnFrom, fnTo, v.Variable); err != nil {
			return nil, err
		}
		v.AssignmentExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.AssignmentExpression)
		return v, err
	case kismet.LetBool:
		if v.VariableExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.VariableExpression); err != nil {
			return nil, err
		}
		v.AssignmentExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.AssignmentExpression)
		return v, err
	case kismet.LetObj:
		if v.VariableExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.VariableExpression); err != nil {
			return nil, err
		}
		v.AssignmentExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.AssignmentExpression)
		return v, err
	case kismet.Context:
		if v.ObjectExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.ObjectExpression); err != nil {
			return nil, err
		}
		if v.RValuePointer, err = CopyPropertyPointer(from, to, fnFrom, fnTo, v.RValuePointer); err != nil {
			return nil, err
		}
		v.ContextExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.ContextExpression)
		return v, err
	case kismet.CallMath:
		v.StackNode, err = CopyPackage(from, to, v.StackNode)
		if err != nil {
			return nil, err
		}
		v.Parameters, err = copyParams(from, to, fnFrom, fnTo, v.Parameters)
		return v, err
	case kismet.LocalFinalFunction:
		v.StackNode, err = CopyPackage(from, to, v.StackNode)
		if err != nil {
			return nil, err
		}
		v.Parameters, err = copyParams(from, to, fnFrom, fnTo, v.Parameters)
		return v, err
	case kismet.FinalFunction:
		v.StackNode, err = CopyPackage(from, to, v.StackNode)
		if err != nil {
			return nil, err
		}
		v.Parameters, err = copyParams(from, to, fnFrom, fnTo, v.Parameters)
		return v, err
	case kismet.LocalVirtualFunction:
		v.FunctionName = to.Names.Make(from.Names.Text(v.FunctionName), v.FunctionName.Number)
		v.Parameters, err = copyParams(from, to, fnFrom, fnTo, v.Parameters)
		return v, err
	case kismet.VirtualFunction:
		v.FunctionName = to.Names.Make(from.Names.Text(v.FunctionName), v.FunctionName.Number)
		v.Parameters, err = copyParams(from, to, fnFrom, fnTo, v.Parameters)
		return v, err
	case kismet.IntConst, kismet.FloatConst, kismet.StringConst, kismet.UnicodeStringConst,
		kismet.True, kismet.False, kismet.EndOfScript, kismet.ByteConst, kismet.SkipOffsetConst,
		kismet.PushExecutionFlow, kismet.PopExecutionFlow, kismet.EndFunctionParms,
		kismet.EndStructConst, kismet.EndArray:
		return v, nil
	case kismet.NameConst:
		v.Value = to.Names.Make(from.Names.Text(v.Value), v.Value.Number)
		return v, nil
	case kismet.ObjectConst:
		v.Value, err = CopyPackage(from, to, v.Value)
		return v, err
	case kismet.PropertyConst:
		v.Value, err = CopyPropertyPointer(from, to, fnFrom, fnTo, v.Value)
		return v, err
	case kismet.SoftObjectConst:
		v.Value, err = CopyExpression(from, to, fnFrom, fnTo, v.Value)
		return v, err
	case kismet.StructConst:
		v.Struct, err = CopyPackage(from, to, v.Struct)
		if err != nil {
			return nil, err
		}
		for i, e := range v.Value {
			if v.Value[i], err = CopyExpression(from, to, fnFrom, fnTo, e); err != nil {
				return nil, err
			}
			_ = e
		}
		return v, nil
	case kismet.SetArray:
		if v.AssigningProperty != nil {
			if v.AssigningProperty, err = CopyExpression(from, to, fnFrom, fnTo, v.AssigningProperty); err != nil {
				return nil, err
			}
		} else {
			v.ArrayInnerProp, err = CopyPackage(from, to, v.ArrayInnerProp)
			if err != nil {
				return nil, err
			}
		}
		for i, e := range v.Elements {
			if v.Elements[i], err = CopyExpression(from, to, fnFrom, fnTo, e); err != nil {
				return nil, err
			}
		}
		return v, nil
	case kismet.ComputedJump:
		v.CodeOffsetExpression, err = CopyExpression(from, to, fnFrom, fnTo, v.CodeOffsetExpression)
		return v, err
	case kismet.SwitchValue:
		if v.Condition, err = CopyExpression(from, to, fnFrom, fnTo, v.Condition); err != nil {
			return nil, err
		}
		for i, c := range v.Cases {
			if v.Cases[i].CaseIndexValueTerm, err = CopyExpression(from, to, fnFrom, fnTo, c.CaseIndexValueTerm); err != nil {
				return nil, err
			}
			if v.Cases[i].CaseTerm, err = CopyExpression(from, to, fnFrom, fnTo, c.CaseTerm); err != nil {
				return nil, err
			}
		}
		v.DefaultTerm, err = CopyExpression(from, to, fnFrom, fnTo, v.DefaultTerm)
		return v, err
	case kismet.TextConst:
		if v.SourceString != nil {
			if v.SourceString, err = CopyExpression(from, to, fnFrom, fnTo, v.SourceString); err != nil {
				return nil, err
			}
		}
		if v.TableID != nil {
			if v.TableID, err = CopyExpression(from, to, fnFrom, fnTo, v.TableID); err != nil {
				return nil, err
			}
		}
		if v.Key != nil {
			v.Key, err = CopyExpression(from, to, fnFrom, fnTo, v.Key)
		}
		return v, err
	default:
		return nil, mint.New(mint.AssetBuildFailure, "unsupported expression kind for cross-asset copy")
	}
}

func copyParams(from, to *asset.Asset, fnFrom, fnTo asset.PackageIndex, params []kismet.Expression) ([]kismet.Expression, error) {
	out := make([]kismet.Expression, len(params))
	for i, p := range params {
		c, err := CopyExpression(from, to, fnFrom, fnTo, p)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// CopyFProperty copies p from's representation into an equivalent
// asset.FProperty for to, rewriting its name and any nested
// object/struct/enum class references via CopyPackage.
func CopyFProperty(from, to *asset.Asset, p asset.FProperty) (asset.FProperty, error) {
	out := p
	out.Generic.Name = to.Names.Make(from.Names.Text(p.Generic.Name), p.Generic.Name.Number)
	out.Generic.RepNotifyFunc = to.Names.Make(from.Names.Text(p.Generic.RepNotifyFunc), p.Generic.RepNotifyFunc.Number)

	var err error
	if !p.ObjectClass.IsNull() {
		if out.ObjectClass, err = CopyPackage(from, to, p.ObjectClass); err != nil {
			return out, err
		}
	}
	if !p.StructType.IsNull() {
		if out.StructType, err = CopyPackage(from, to, p.StructType); err != nil {
			return out, err
		}
	}
	if !p.EnumType.IsNull() {
		if out.EnumType, err = CopyPackage(from, to, p.EnumType); err != nil {
			return out, err
		}
	}
	if len(p.Inner) > 0 {
		out.Inner = make([]asset.FProperty, len(p.Inner))
		for i, inner := range p.Inner {
			if out.Inner[i], err = CopyFProperty(from, to, inner); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}
