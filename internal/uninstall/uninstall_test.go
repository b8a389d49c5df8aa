package uninstall

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupInstall(t *testing.T) (root, pakPath string) {
	t.Helper()
	root = t.TempDir()
	paksDir := filepath.Join(root, "Content", "Paks")
	require.NoError(t, os.MkdirAll(paksDir, 0o755))
	pakPath = filepath.Join(paksDir, "fsd-windowsnoeditor.pak")
	require.NoError(t, os.WriteFile(pakPath, []byte("reference pak"), 0o644))

	binDir := filepath.Join(root, "Binaries", "Win64")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	return root, pakPath
}

func TestUninstallRemovesGeneratedPakAndHookDLL(t *testing.T) {
	root, pakPath := setupInstall(t)

	modsPak := filepath.Join(root, "Content", "Paks", "mods_P.pak")
	require.NoError(t, os.WriteFile(modsPak, []byte("bundle"), 0o644))
	hookDLL := filepath.Join(root, "Binaries", "Win64", "x3daudio1_7.dll")
	require.NoError(t, os.WriteFile(hookDLL, []byte("dll"), 0o644))

	require.NoError(t, Uninstall(pakPath, nil))

	require.NoFileExists(t, modsPak)
	require.NoFileExists(t, hookDLL)
}

func TestUninstallIsNoopWhenNothingToRemove(t *testing.T) {
	_, pakPath := setupInstall(t)
	require.NoError(t, Uninstall(pakPath, nil))
}

func TestUninstallFailsOnUnrecognizedInstallation(t *testing.T) {
	root := t.TempDir()
	paksDir := filepath.Join(root, "Content", "Paks")
	require.NoError(t, os.MkdirAll(paksDir, 0o755))
	pakPath := filepath.Join(paksDir, "not-a-recognized-name.pak")
	require.NoError(t, os.WriteFile(pakPath, []byte("x"), 0o644))

	err := Uninstall(pakPath, nil)
	require.Error(t, err)
}
