package lint

import (
	"strings"

	"github.com/AssemblyStorm/mint/internal/pak"
)

// ShaderFilesLint reports mods that ship precompiled .ushaderbytecode
// files, which are engine-version- and GPU-driver-specific and rarely
// portable between installs.
type ShaderFilesLint struct{}

func (ShaderFilesLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	out := make(map[string]map[string]bool)

	err := lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		if !strings.HasSuffix(normalizedPath, ".ushaderbytecode") {
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
