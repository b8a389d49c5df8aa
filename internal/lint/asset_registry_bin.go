package lint

import (
	"path/filepath"
	"strings"

	"github.com/AssemblyStorm/mint/internal/pak"
)

// AssetRegistryBinLint reports mods that ship their own AssetRegistry.bin,
// which will be ignored in favor of the rebuilt one.
type AssetRegistryBinLint struct{}

func (AssetRegistryBinLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	out := make(map[string]map[string]bool)

	err := lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		if !strings.EqualFold(filepath.Base(rawPath), "AssetRegistry.bin") {
			return nil
		}
		paths, ok := out[mod.ID]
		if !ok {
			paths = make(map[string]bool)
			out[mod.ID] = paths
		}
		paths[normalizedPath] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return flattenSorted(out), nil
}

func flattenSorted(m map[string]map[string]bool) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, set := range m {
		out[k] = sortedKeys(set)
	}
	return out
}
