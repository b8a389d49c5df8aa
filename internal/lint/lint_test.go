package lint

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/fname"
	"github.com/AssemblyStorm/mint/internal/pak"
)

func buildPak(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pak.NewWriter(&buf)
	for path, data := range files {
		require.NoError(t, w.WriteFile(path, data))
	}
	require.NoError(t, w.Finish())
	return buf.Bytes()
}

// downgradeVersion patches the version field of an already-serialized
// pak's footer in place, since Writer only ever emits V11.
func downgradeVersion(data []byte, v pak.Version) []byte {
	out := append([]byte(nil), data...)
	const footerLen = 16 + 1 + 44 // GUID + encrypted flag + magic/version/offsets/hash tail
	footerOff := len(out) - footerLen
	binary.LittleEndian.PutUint32(out[footerOff+21:footerOff+25], uint32(v))
	return out
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func zipOf(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestConflictingModsLintReportsMultiWriter(t *testing.T) {
	modA := buildPak(t, map[string][]byte{"../../../FSD/Content/X.uasset": []byte("aaa")})
	modB := buildPak(t, map[string][]byte{"../../../FSD/Content/X.uasset": []byte("bbb")})
	lcx := &LintCtxt{Mods: []ModRef{
		{ID: "ModA", Path: writeTemp(t, "a.pak", modA)},
		{ID: "ModB", Path: writeTemp(t, "b.pak", modB)},
	}}

	out, err := ConflictingModsLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"ModA", "ModB"}, out["fsd/content/x.uasset"])
}

func TestConflictingModsLintSkipsWhitelistedPrefix(t *testing.T) {
	modA := buildPak(t, map[string][]byte{"../../../FSD/Content/_interop/Shared.uasset": []byte("aaa")})
	modB := buildPak(t, map[string][]byte{"../../../FSD/Content/_interop/Shared.uasset": []byte("bbb")})
	lcx := &LintCtxt{Mods: []ModRef{
		{ID: "ModA", Path: writeTemp(t, "a.pak", modA)},
		{ID: "ModB", Path: writeTemp(t, "b.pak", modB)},
	}}

	out, err := ConflictingModsLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestAssetRegistryBinLint(t *testing.T) {
	mod := buildPak(t, map[string][]byte{
		"../../../FSD/Content/AssetRegistry.bin": []byte("junk"),
		"../../../FSD/Content/Real.uasset":       []byte("x"),
	})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", mod)}}}

	out, err := AssetRegistryBinLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"fsd/content/assetregistry.bin"}, out["ModA"])
}

func TestShaderFilesLint(t *testing.T) {
	mod := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Foo.ushaderbytecode": []byte("x"),
		"../../../FSD/Content/Foo.uasset":          []byte("x"),
	})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", mod)}}}

	out, err := ShaderFilesLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"fsd/content/foo.ushaderbytecode"}, out["ModA"])
}

func TestOutdatedPakVersionLint(t *testing.T) {
	mod := downgradeVersion(buildPak(t, map[string][]byte{"../../../FSD/Content/X.uasset": []byte("x")}), pak.Version10)
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", mod)}}}

	out, err := OutdatedPakVersionLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, pak.Version10, out["ModA"])
}

func TestEmptyArchiveLint(t *testing.T) {
	empty := zipOf(t, nil)
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.zip", empty)}}}

	out, err := EmptyArchiveLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"ModA"}, out)
}

func TestArchiveOnlyNonPakFilesLint(t *testing.T) {
	z := zipOf(t, map[string][]byte{"readme.txt": []byte("hi")})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.zip", z)}}}

	out, err := ArchiveOnlyNonPakFilesLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"ModA"}, out)
}

func TestArchiveMultiplePaksLint(t *testing.T) {
	mod := buildPak(t, map[string][]byte{"../../../FSD/Content/X.uasset": []byte("x")})
	z := zipOf(t, map[string][]byte{"one.pak": mod, "two.pak": mod})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.zip", z)}}}

	out, err := ArchiveMultiplePaksLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"ModA"}, out)
}

func TestNonAssetFilesLint(t *testing.T) {
	mod := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Foo.json":   []byte("{}"),
		"../../../FSD/Content/Foo.uasset": []byte("x"),
	})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", mod)}}}

	out, err := NonAssetFilesLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"fsd/content/foo.json"}, out["ModA"])
}

func TestSplitAssetPairsLint(t *testing.T) {
	mod := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Lonely.uasset": []byte("x"),
		"../../../FSD/Content/Paired.uasset": []byte("x"),
		"../../../FSD/Content/Paired.uexp":   []byte("y"),
	})
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", mod)}}}

	out, err := SplitAssetPairsLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, map[string]SplitAssetPairKind{"fsd/content/lonely.uasset": MissingUexp}, out["ModA"])
}

func TestUnmodifiedGameAssetsLint(t *testing.T) {
	game := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Shared.uasset": []byte("vanilla bytes"),
	})
	gamePath := writeTemp(t, "game.pak", game)

	modSame := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Shared.uasset": []byte("vanilla bytes"),
	})
	modChanged := buildPak(t, map[string][]byte{
		"../../../FSD/Content/Shared.uasset": []byte("modded bytes"),
	})
	lcx := &LintCtxt{
		GamePakPath: gamePath,
		Mods: []ModRef{
			{ID: "Unmodified", Path: writeTemp(t, "same.pak", modSame)},
			{ID: "Modified", Path: writeTemp(t, "changed.pak", modChanged)},
		},
	}

	out, err := UnmodifiedGameAssetsLint{}.CheckMods(lcx)
	require.NoError(t, err)
	require.Equal(t, []string{"fsd/content/shared.uasset"}, out["Unmodified"])
	require.NotContains(t, out, "Modified")
}

func TestUnmodifiedGameAssetsLintRequiresGamePak(t *testing.T) {
	lcx := &LintCtxt{Mods: []ModRef{{ID: "ModA", Path: writeTemp(t, "a.pak", buildPak(t, nil))}}}
	_, err := UnmodifiedGameAssetsLint{}.CheckMods(lcx)
	require.Error(t, err)
}

func TestIsGameplayAffecting(t *testing.T) {
	names := fname.New()
	soundWave := names.Make("SoundWave", 0)
	actorClass := names.Make("MyGameplayActor", 0)
	rootObj := names.Make("Root", 0)

	a := &asset.Asset{
		Names: names,
		Imports: []asset.Import{
			{ObjectName: soundWave},
			{ObjectName: actorClass},
		},
		Exports: []asset.Export{
			{ObjectName: rootObj, OuterIndex: 0, ClassIndex: asset.FromImportIndex(0)},
		},
	}
	require.False(t, isGameplayAffecting(a), "cosmetic-only class should not be flagged")

	a.Exports[0].ClassIndex = asset.FromImportIndex(1)
	require.True(t, isGameplayAffecting(a), "non-whitelisted imported root class should be flagged")
}

func TestIsGameplayAffectingIgnoresNestedOrLocalExports(t *testing.T) {
	names := fname.New()
	weirdClass := names.Make("SomeWeirdClass", 0)
	child := names.Make("Child", 0)
	localExport := names.Make("DefinedHere", 0)

	a := &asset.Asset{
		Names: names,
		Imports: []asset.Import{
			{ObjectName: weirdClass},
		},
		Exports: []asset.Export{
			// Nested (non-root) export referencing an imported, non-whitelisted class.
			{ObjectName: child, OuterIndex: asset.FromExportIndex(0), ClassIndex: asset.FromImportIndex(0)},
			// Root export whose class is defined locally rather than imported.
			{ObjectName: localExport, OuterIndex: 0, ClassIndex: asset.FromExportIndex(0)},
		},
	}
	require.False(t, isGameplayAffecting(a))
}
