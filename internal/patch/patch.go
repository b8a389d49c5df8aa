// Package patch implements the deferred patcher: a fixed map from
// base-game asset path to a mutating transform, applied after all mod
// files have been processed.
package patch

import (
	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/kismet"
	"github.com/AssemblyStorm/mint/internal/splice"
)

// PlayerControllerPath is the base-game asset hook_pcb mutates.
const PlayerControllerPath = "FSD/Content/Game/BP_PlayerControllerBase"

// IsModdedTargets are the six base-game assets whose "is modded"
// check gets neutralized.
var IsModdedTargets = []string{
	"FSD/Content/Game/BP_GameInstance",
	"FSD/Content/Game/SpaceRig/BP_PlayerController_SpaceRig",
	"FSD/Content/Game/StartMenu/Bp_StartMenu_PlayerController",
	"FSD/Content/UI/Menu_DeepDives/ITM_DeepDives_Join",
	"FSD/Content/UI/Menu_ServerList/_MENU_ServerList",
	"FSD/Content/UI/Menu_ServerList/WND_JoiningModded",
}

const (
	EscapeMenuPath      = "FSD/Content/UI/Menu_EscapeMenu/MENU_EscapeMenu"
	ModdingTabPath      = "FSD/Content/UI/Menu_EscapeMenu/Modding/MENU_Modding"
	ServerListEntryPath = "FSD/Content/UI/Menu_ServerList/ITM_ServerList_Entry"
)

// TargetPaths lists every base-game asset path the deferred patcher
// touches, in no particular order.
func TargetPaths() []string {
	out := []string{PlayerControllerPath, EscapeMenuPath, ModdingTabPath, ServerListEntryPath}
	return append(out, IsModdedTargets...)
}

func findImportChain(a *asset.Asset, chain [][3]string) asset.PackageIndex {
	var outer asset.PackageIndex
	for _, link := range chain {
		found := false
		for i, imp := range a.Imports {
			if a.Names.Text(imp.ClassPackage) == link[0] &&
				a.Names.Text(imp.ClassName) == link[1] &&
				a.Names.Text(imp.ObjectName) == link[2] &&
				imp.OuterIndex == outer {
				outer = asset.FromImportIndex(int32(i))
				found = true
				break
			}
		}
		if !found {
			a.Imports = append(a.Imports, asset.Import{
				ClassPackage: a.Names.Make(link[0], 0),
				ClassName:    a.Names.Make(link[1], 0),
				OuterIndex:   outer,
				ObjectName:   a.Names.Make(link[2], 0),
			})
			outer = asset.FromImportIndex(int32(len(a.Imports) - 1))
		}
	}
	return outer
}

func findFunctionByName(a *asset.Asset, name string) (asset.PackageIndex, bool) {
	for i, imp := range a.Imports {
		if a.Names.Text(imp.ClassPackage) == "/Script/CoreUObject" &&
			a.Names.Text(imp.ClassName) == "Function" &&
			a.Names.Text(imp.ObjectName) == name {
			return asset.FromImportIndex(int32(i)), true
		}
	}
	return 0, false
}

func findFunctionExportByPrefix(a *asset.Asset, name string) (asset.PackageIndex, bool) {
	for i, e := range a.Exports {
		if a.Names.Text(e.ObjectName) == name {
			return asset.FromExportIndex(int32(i)), true
		}
	}
	return 0, false
}

// extractAll runs splice.Extract against every FunctionExport in a,
// keyed by export name for convenience.
func extractAll(a *asset.Asset) (splice.FunctionStatements, error) {
	names := make(map[asset.PackageIndex]string, len(a.Exports))
	for i, e := range a.Exports {
		names[asset.FromExportIndex(int32(i))] = a.Names.Text(e.ObjectName)
	}
	return splice.Extract(a, names)
}

// walkStatements rewrites every tracked statement's Expr through
// rewriteDeep, so f is applied bottom-up to every subexpression at any
// depth as well as to the statement's root expression.
func walkStatements(stmts splice.FunctionStatements, f func(kismet.Expression) kismet.Expression) {
	for _, list := range stmts {
		for _, st := range list {
			st.Expr = rewriteDeep(st.Expr, f)
		}
	}
}

// rewriteDeep applies f bottom-up across ex's expression tree: children
// are rewritten first (recursing via kismet.Walk's shape), then f is
// applied to the (possibly already-rewritten) node itself. kismet has
// no generic "map" helper (Walk is read/visit-oriented), so patches
// rebuild the handful of container shapes they care about directly.
func rewriteDeep(ex kismet.Expression, f func(kismet.Expression) kismet.Expression) kismet.Expression {
	switch v := ex.(type) {
	case kismet.Return:
		v.ReturnExpression = rewriteDeep(v.ReturnExpression, f)
		return f(v)
	case kismet.JumpIfNot:
		v.BooleanExpression = rewriteDeep(v.BooleanExpression, f)
		return f(v)
	case kismet.Let:
		v.Variable = rewriteDeep(v.Variable, f)
		v.AssignmentExpression = rewriteDeep(v.AssignmentExpression, f)
		return f(v)
	case kismet.LetBool:
		v.VariableExpression = rewriteDeep(v.VariableExpression, f)
		v.AssignmentExpression = rewriteDeep(v.AssignmentExpression, f)
		return f(v)
	case kismet.LetObj:
		v.VariableExpression = rewriteDeep(v.VariableExpression, f)
		v.AssignmentExpression = rewriteDeep(v.AssignmentExpression, f)
		return f(v)
	case kismet.Context:
		v.ObjectExpression = rewriteDeep(v.ObjectExpression, f)
		v.ContextExpression = rewriteDeep(v.ContextExpression, f)
		return f(v)
	case kismet.StructMemberContext:
		v.StructExpression = rewriteDeep(v.StructExpression, f)
		return f(v)
	case kismet.CallMath:
		for i, p := range v.Parameters {
			v.Parameters[i] = rewriteDeep(p, f)
		}
		return f(v)
	case kismet.LocalFinalFunction:
		for i, p := range v.Parameters {
			v.Parameters[i] = rewriteDeep(p, f)
		}
		return f(v)
	case kismet.FinalFunction:
		for i, p := range v.Parameters {
			v.Parameters[i] = rewriteDeep(p, f)
		}
		return f(v)
	case kismet.LocalVirtualFunction:
		for i, p := range v.Parameters {
			v.Parameters[i] = rewriteDeep(p, f)
		}
		return f(v)
	case kismet.VirtualFunction:
		for i, p := range v.Parameters {
			v.Parameters[i] = rewriteDeep(p, f)
		}
		return f(v)
	case kismet.SoftObjectConst:
		v.Value = rewriteDeep(v.Value, f)
		return f(v)
	case kismet.StructConst:
		for i, e := range v.Value {
			v.Value[i] = rewriteDeep(e, f)
		}
		return f(v)
	case kismet.SetArray:
		if v.AssigningProperty != nil {
			v.AssigningProperty = rewriteDeep(v.AssigningProperty, f)
		}
		for i, e := range v.Elements {
			v.Elements[i] = rewriteDeep(e, f)
		}
		return f(v)
	case kismet.ComputedJump:
		v.CodeOffsetExpression = rewriteDeep(v.CodeOffsetExpression, f)
		return f(v)
	case kismet.SwitchValue:
		v.Condition = rewriteDeep(v.Condition, f)
		for i, c := range v.Cases {
			v.Cases[i].CaseIndexValueTerm = rewriteDeep(c.CaseIndexValueTerm, f)
			v.Cases[i].CaseTerm = rewriteDeep(c.CaseTerm, f)
		}
		v.DefaultTerm = rewriteDeep(v.DefaultTerm, f)
		return f(v)
	default:
		return f(ex)
	}
}

// PatchIsModded neutralizes every FSDIsModdedServer/
// FSDIsModdedSandboxServer call in a, replacing the entire call
// expression with ExFalse .
func PatchIsModded(a *asset.Asset) error {
	stmts, err := extractAll(a)
	if err != nil {
		return err
	}
	isModded, _ := findFunctionByName(a, "FSDIsModdedServer")
	isModdedSandbox, _ := findFunctionByName(a, "FSDIsModdedSandboxServer")

	walkStatements(stmts, func(ex kismet.Expression) kismet.Expression {
		if cm, ok := ex.(kismet.CallMath); ok {
			if cm.StackNode == isModded || cm.StackNode == isModdedSandbox {
				return kismet.False{}
			}
		}
		return ex
	})
	return splice.Inject(a, stmts)
}

// PatchModdingTab removes the BTN_Modding element from any 2-element
// SetArray in the escape menu widget, matching the // "modding-tab reveal".
func PatchModdingTab(a *asset.Asset) error {
	stmts, err := extractAll(a)
	if err != nil {
		return err
	}
	walkStatements(stmts, func(ex kismet.Expression) kismet.Expression {
		sa, ok := ex.(kismet.SetArray)
		if !ok || len(sa.Elements) != 2 {
			return ex
		}
		kept := sa.Elements[:0:0]
		for _, e := range sa.Elements {
			if iv, ok := e.(kismet.InstanceVariable); ok && len(iv.Variable.Path) > 0 {
				last := iv.Variable.Path[len(iv.Variable.Path)-1]
				if a.Names.Text(last) == "BTN_Modding" {
					continue
				}
			}
			kept = append(kept, e)
		}
		sa.Elements = kept
		return sa
	})
	return splice.Inject(a, stmts)
}

// PatchModdingTabItem retargets the import that points at the base-game
// modding-tab widget so it instead resolves to the tool-provided
// /Game/_AssemblyStorm/ModIntegration/MI_UI package, substituting both
// the class name and the class-default-object name .
func PatchModdingTabItem(a *asset.Asset) error {
	cdo := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Game/UI/Menu_EscapeMenu/Modding/ITM_Tab_Modding"},
		{"/Game/UI/Menu_EscapeMenu/Modding/ITM_Tab_Modding", "ITM_Tab_Modding_C", "Default__ITM_Tab_Modding_C"},
	})
	class := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Game/UI/Menu_EscapeMenu/Modding/ITM_Tab_Modding"},
		{"/Script/UMG", "WidgetBlueprintGeneratedClass", "ITM_Tab_Modding_C"},
	})

	newClass := a.Names.Make("MI_UI_C", 0)
	newCDO := a.Names.Make("Default__MI_UI_C", 0)
	newPackage := a.Names.Make("/Game/_AssemblyStorm/ModIntegration/MI_UI", 0)

	cdoImp := &a.Imports[cdo.ImportIndex()]
	cdoImp.ObjectName = newCDO
	cdoImp.ClassPackage = newPackage
	cdoImp.ClassName = newClass

	classImp := &a.Imports[class.ImportIndex()]
	classImp.ObjectName = newClass
	packageIdx := classImp.OuterIndex

	a.Imports[packageIdx.ImportIndex()].ObjectName = newPackage
	return nil
}

// PatchServerListEntry neutralizes FSDGetModsInstalled's visibility
// argument and retargets FSDTargetPlatform calls inside
// GetMissionToolTip/SetSession to a fixed platform byte, matching
// vanilla's server-entry icon.
func PatchServerListEntry(a *asset.Asset) error {
	getModsInstalled, _ := findFunctionByName(a, "FSDGetModsInstalled")
	targetPlatform, _ := findFunctionByName(a, "FSDTargetPlatform")

	stmts, err := extractAll(a)
	if err != nil {
		return err
	}
	for fn, list := range stmts {
		var name string
		for i, e := range a.Exports {
			if asset.FromExportIndex(int32(i)) == fn {
				name = a.Names.Text(e.ObjectName)
				break
			}
		}
		swapPlatform := name == "GetMissionToolTip" || name == "SetSession"
		for _, st := range list {
			st.Expr = rewriteDeep(st.Expr, func(ex kismet.Expression) kismet.Expression {
				cm, ok := ex.(kismet.CallMath)
				if !ok {
					return ex
				}
				if cm.StackNode == getModsInstalled && len(cm.Parameters) == 2 {
					cm.Parameters[1] = kismet.False{}
					return cm
				}
				if swapPlatform && cm.StackNode == targetPlatform {
					return kismet.ByteConst{Value: 0}
				}
				return ex
			})
		}
	}
	return splice.Inject(a, stmts)
}

// HookPCB prepends the four-statement spawn-hook sequence described in
// to ReceiveBeginPlay: load the mod-loader Blueprint class
// by soft reference, construct a default-identity Transform, begin a
// deferred actor spawn, then finish spawning it.
func HookPCB(a *asset.Asset) error {
	transform := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/CoreUObject"},
		{"/Script/CoreUObject", "ScriptStruct", "Transform"},
	})
	actorClass := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/Engine"},
		{"/Script/CoreUObject", "Class", "Actor"},
	})
	loadClass := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/Engine"},
		{"/Script/CoreUObject", "Class", "KismetSystemLibrary"},
		{"/Script/CoreUObject", "Function", "LoadClassAsset_Blocking"},
	})
	makeTransform := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/Engine"},
		{"/Script/CoreUObject", "Class", "KismetMathLibrary"},
		{"/Script/CoreUObject", "Function", "MakeTransform"},
	})
	beginSpawn := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/Engine"},
		{"/Script/CoreUObject", "Class", "GameplayStatics"},
		{"/Script/CoreUObject", "Function", "BeginDeferredActorSpawnFromClass"},
	})
	finishSpawn := findImportChain(a, [][3]string{
		{"/Script/CoreUObject", "Package", "/Script/Engine"},
		{"/Script/CoreUObject", "Class", "GameplayStatics"},
		{"/Script/CoreUObject", "Function", "FinishSpawningActor"},
	})

	receiveBeginPlay, ok := findFunctionExportByPrefix(a, "ReceiveBeginPlay")
	if !ok {
		return nil
	}

	loadClassProp := addLocalProperty(a, receiveBeginPlay, "CallFunc_LoadClassAsset_Blocking_ReturnValue", actorClass)
	transformProp := addLocalProperty(a, receiveBeginPlay, "CallFunc_MakeTransform_ReturnValue", transform)
	spawnedActorProp := addLocalProperty(a, receiveBeginPlay, "CallFunc_BeginDeferredActorSpawnFromClass_ReturnValue", actorClass)

	hookStmts := buildHookStatements(loadClass, makeTransform, beginSpawn, finishSpawn, loadClassProp, transformProp, spawnedActorProp)

	stmts, err := extractAll(a)
	if err != nil {
		return err
	}

	existing := stmts[receiveBeginPlay]
	grafted := make([]*splice.TrackedStatement, 0, len(hookStmts)+len(existing))
	for _, ex := range hookStmts {
		grafted = append(grafted, &splice.TrackedStatement{Origin: splice.Origin{Function: receiveBeginPlay}, Expr: ex})
	}
	grafted = append(grafted, existing...)
	stmts[receiveBeginPlay] = grafted

	return splice.Inject(a, stmts)
}

// addLocalProperty appends a new Object-typed local FProperty named
// name to the given function export, returning a PropertyPointer that
// refers to it, for use as a spawn-hook scratch local.
func addLocalProperty(a *asset.Asset, fn asset.PackageIndex, name string, objectClass asset.PackageIndex) kismet.PropertyPointer {
	nameF := a.Names.Make(name, 0)
	idx := fn.ExportIndex()
	e := &a.Exports[idx]
	e.Body = append(e.Body, asset.LoadedProperty{
		Tag: asset.PropertyTag{Name: nameF, TypeName: a.Names.Make("ObjectProperty", 0)},
	})
	return kismet.PropertyPointer{Path: []fname.Name{nameF}, ResolvedOwner: fn}
}

// buildHookStatements constructs the four spawn-hook statements
// described load the mod-loader class by soft
// reference, build a default-identity Transform, begin a deferred actor
// spawn from that class, then finish spawning it.
func buildHookStatements(loadClass, makeTransform, beginSpawn, finishSpawn asset.PackageIndex, loadClassProp, transformProp, spawnedActorProp kismet.PropertyPointer) []kismet.Expression {
	softClassPath := "/Game/_AssemblyStorm/ModIntegration/MI_SpawnMods.MI_SpawnMods_C"

	loadClassCall := kismet.Let{
		Variable: kismet.LocalVariable{Variable: loadClassProp},
		AssignmentExpression: kismet.CallMath{
			StackNode: loadClass,
			Parameters: []kismet.Expression{
				kismet.StringConst{Value: softClassPath},
			},
		},
	}

	transformCall := kismet.Let{
		Variable: kismet.LocalVariable{Variable: transformProp},
		AssignmentExpression: kismet.CallMath{
			StackNode:  makeTransform,
			Parameters: []kismet.Expression{},
		},
	}

	beginSpawnCall := kismet.Let{
		Variable: kismet.LocalVariable{Variable: spawnedActorProp},
		AssignmentExpression: kismet.CallMath{
			StackNode: beginSpawn,
			Parameters: []kismet.Expression{
				kismet.Self{},
				kismet.LocalVariable{Variable: loadClassProp},
				kismet.LocalVariable{Variable: transformProp},
				kismet.ByteConst{Value: 0}, // ESpawnActorCollisionHandlingMethod::AlwaysSpawn
				kismet.Self{},
			},
		},
	}

	finishSpawnCall := kismet.CallMath{
		StackNode: finishSpawn,
		Parameters: []kismet.Expression{
			kismet.LocalVariable{Variable: spawnedActorProp},
			kismet.LocalVariable{Variable: transformProp},
		},
	}

	return []kismet.Expression{loadClassCall, transformCall, beginSpawnCall, finishSpawnCall}
}
