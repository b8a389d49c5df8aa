// Package installation identifies which DRG distribution (Steam or
// Xbox/GDK) a given game pak belongs to, and derives the well-known
// paths around it (pak directory, binaries directory, mod.io state
// directory) that Uninstall and the Mod Bundle Writer need.
package installation

import (
	"path/filepath"
	"strings"

	"github.com/AssemblyStorm/mint/internal/mint"
)

// Type distinguishes the two supported DRG distributions.
type Type int

const (
	Steam Type = iota
	Xbox
)

const (
	steamPakFileName = "fsd-windowsnoeditor.pak"
	xboxPakFileName  = "fsd-wingdk.pak"
)

// typeFromPakPath recognizes pak (the base-game reference pak path) by
// its file name, case-insensitively.
func typeFromPakPath(pak string) (Type, error) {
	name := strings.ToLower(filepath.Base(pak))
	switch name {
	case steamPakFileName:
		return Steam, nil
	case xboxPakFileName:
		return Xbox, nil
	default:
		return 0, mint.New(mint.UnknownGameInstallation,
			"unexpected pak file name, expected fsd-windowsnoeditor.pak or fsd-wingdk.pak, found "+name)
	}
}

// BinariesDirName is the directory under Binaries/ holding the game's
// executable and hook DLL target for this distribution.
func (t Type) BinariesDirName() string {
	if t == Xbox {
		return "WinGDK"
	}
	return "Win64"
}

// HookDLLName is the proxy DLL name the hook loader masquerades as, one
// per distribution since each ships a different set of system DLLs next
// to its executable.
func (t Type) HookDLLName() string {
	if t == Xbox {
		return "d3d9.dll"
	}
	return "x3daudio1_7.dll"
}

// Installation locates the root of a DRG install from the path to its
// reference pak.
type Installation struct {
	Root string
	Type Type
}

// FromPakPath derives an Installation from the path to a game pak,
// which is expected to live at {root}/Content/Paks/{name}.pak.
func FromPakPath(pak string) (*Installation, error) {
	root := filepath.Dir(filepath.Dir(filepath.Dir(pak)))
	if root == "." || root == "" {
		return nil, mint.New(mint.UnknownGameInstallation, "failed to determine pak root from "+pak)
	}
	t, err := typeFromPakPath(pak)
	if err != nil {
		return nil, err
	}
	return &Installation{Root: root, Type: t}, nil
}

// BinariesDirectory is where the hook DLL is installed.
func (i *Installation) BinariesDirectory() string {
	return filepath.Join(i.Root, "Binaries", i.Type.BinariesDirName())
}

// PaksPath is the directory mods_P.pak lives alongside.
func (i *Installation) PaksPath() string {
	return filepath.Join(i.Root, "Content", "Paks")
}

// ModioDirectory is the local mod.io client's state directory, if this
// distribution has one (Xbox has no mod.io integration).
func (i *Installation) ModioDirectory() (string, bool) {
	if i.Type == Xbox {
		return "", false
	}
	return `C:\Users\Public\mod.io\2475`, true
}
