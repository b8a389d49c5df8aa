package integrate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AssemblyStorm/mint/internal/pak"
	"github.com/AssemblyStorm/mint/internal/registry"
)

func buildModPak(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pak.NewWriter(&buf)
	for path, data := range files {
		require.NoError(t, w.WriteFile(path, data))
	}
	require.NoError(t, w.Finish())
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestStripMountPrefix(t *testing.T) {
	require.Equal(t, "FSD/Content/X.uasset", stripMountPrefix("../../../FSD/Content/X.uasset"))
	require.Equal(t, "FSD/Content/X.uasset", stripMountPrefix("FSD/Content/X.uasset"))
}

func TestFormatSoftClass(t *testing.T) {
	got := formatSoftClass("FSD/Content/SpaceRig/InitSpaceRig.uasset")
	require.Equal(t, "/Game/SpaceRig/InitSpaceRig.InitSpaceRig_C", got)
}

func TestNormalizeModPathsAndOriginalPaths(t *testing.T) {
	data := buildModPak(t, map[string][]byte{"../../../FSD/Content/X.uasset": []byte("x")})
	r, err := pak.Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	normalized := normalizeModPaths(r)
	require.Equal(t, "../../../FSD/Content/X.uasset", normalized["FSD/Content/X.uasset"])

	orig := originalPaths(r)
	require.Equal(t, []string{"../../../FSD/Content/X.uasset"}, orig)
}

func TestIntegrateOneModRoutesFiles(t *testing.T) {
	modPakBytes := buildModPak(t, map[string][]byte{
		"../../../FSD/Content/AssetRegistry.bin":            []byte("junk"),
		"../../../FSD/Content/Shader.ushaderbytecode":       []byte("junk"),
		"../../../FSD/Content/SomeTarget.uexp":              []byte("patched tail"),
		"../../../FSD/Content/SpaceRig/InitSpaceRig.uasset": []byte("spawn logic"),
		"../../../FSD/Content/Plain.uasset":                 []byte("plain data"),
	})
	modPath := writeTemp(t, "mod.pak", modPakBytes)

	deferred := map[string]*rawAsset{
		"FSD/Content/SomeTarget": {},
	}
	reg := &registry.Registry{}
	var buf bytes.Buffer
	bw := newBundleWriter(&buf, nil)
	added := make(map[string]bool)
	var initSpacerigAssets, initCaveAssets []string

	m := ModWithPath{Info: ModInfo{Name: "TestMod"}, Path: modPath}
	err := integrateOneMod(m, deferred, reg, bw, added, &initSpacerigAssets, &initCaveAssets, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, []byte("patched tail"), deferred["FSD/Content/SomeTarget"].uexp)
	require.Equal(t, []string{"/Game/SpaceRig/InitSpaceRig.InitSpaceRig_C"}, initSpacerigAssets)
	require.Empty(t, initCaveAssets)
	require.True(t, added["fsd/content/spacerig/initspacerig.uasset"])
	require.True(t, added["fsd/content/plain.uasset"])
	require.False(t, added["fsd/content/assetregistry.bin"])
	require.False(t, added["fsd/content/shader.ushaderbytecode"])

	require.NoError(t, bw.finish())
	r, err := pak.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	files := r.Files()
	require.Len(t, files, 2)
	for _, f := range files {
		require.NotContains(t, f, "assetregistry")
		require.NotContains(t, f, "ushaderbytecode")
		require.NotContains(t, f, "sometarget")
	}
}

func TestIntegrateOneModSkipsAlreadyAddedPath(t *testing.T) {
	firstMod := buildModPak(t, map[string][]byte{"../../../FSD/Content/Shared.uasset": []byte("first")})
	secondMod := buildModPak(t, map[string][]byte{"../../../FSD/Content/Shared.uasset": []byte("second")})

	reg := &registry.Registry{}
	var buf bytes.Buffer
	bw := newBundleWriter(&buf, nil)
	added := make(map[string]bool)
	deferred := map[string]*rawAsset{}
	var spacerig, cave []string

	m1 := ModWithPath{Info: ModInfo{Name: "First"}, Path: writeTemp(t, "first.pak", firstMod)}
	m2 := ModWithPath{Info: ModInfo{Name: "Second"}, Path: writeTemp(t, "second.pak", secondMod)}
	require.NoError(t, integrateOneMod(m1, deferred, reg, bw, added, &spacerig, &cave, zap.NewNop()))
	require.NoError(t, integrateOneMod(m2, deferred, reg, bw, added, &spacerig, &cave, zap.NewNop()))

	require.NoError(t, bw.finish())
	r, err := pak.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.Files(), 1)

	data, err := r.Get("FSD/Content/Shared.uasset")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), data, "second mod's write of an already-added path must be dropped")
}
