package installation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromPakPathSteam(t *testing.T) {
	pak := filepath.Join("C:", "Games", "DRG", "Content", "Paks", "FSD-WindowsNoEditor.pak")
	inst, err := FromPakPath(pak)
	require.NoError(t, err)
	require.Equal(t, Steam, inst.Type)
	require.Equal(t, filepath.Join("C:", "Games", "DRG"), inst.Root)
	require.Equal(t, filepath.Join(inst.Root, "Binaries", "Win64"), inst.BinariesDirectory())
	require.Equal(t, filepath.Join(inst.Root, "Content", "Paks"), inst.PaksPath())

	dir, ok := inst.ModioDirectory()
	require.True(t, ok)
	require.NotEmpty(t, dir)
}

func TestFromPakPathXbox(t *testing.T) {
	pak := filepath.Join("C:", "Games", "DRG", "Content", "Paks", "FSD-WinGDK.pak")
	inst, err := FromPakPath(pak)
	require.NoError(t, err)
	require.Equal(t, Xbox, inst.Type)
	require.Equal(t, "WinGDK", inst.Type.BinariesDirName())
	require.Equal(t, "d3d9.dll", inst.Type.HookDLLName())

	_, ok := inst.ModioDirectory()
	require.False(t, ok, "xbox distribution has no mod.io integration")
}

func TestFromPakPathUnrecognizedName(t *testing.T) {
	pak := filepath.Join("C:", "Games", "DRG", "Content", "Paks", "SomethingElse.pak")
	_, err := FromPakPath(pak)
	require.Error(t, err)
}

func TestSteamHookDLLName(t *testing.T) {
	require.Equal(t, "x3daudio1_7.dll", Steam.HookDLLName())
	require.Equal(t, "Win64", Steam.BinariesDirName())
}
