package lint

import (
	"strings"

	"github.com/AssemblyStorm/mint/internal/pak"
)

// recognizedAssetSuffixes are the file extensions (and the one
// special-cased bare filename) the game actually loads out of a mod
// pak; anything else is very likely packaging debris.
var recognizedAssetSuffixes = []string{
	".uexp",
	".uasset",
	".ubulk",
	".ufont",
	".locres",
	".ushaderbytecode",
	"assetregistry.bin",
}

// NonAssetFilesLint reports mod-packaged files whose extension the
// game has no loader for.
type NonAssetFilesLint struct{}

func (NonAssetFilesLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	out := make(map[string]map[string]bool)

	err := lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		for _, suffix := range recognizedAssetSuffixes {
			if strings.HasSuffix(normalizedPath, suffix) {
				return nil
			}
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
