package lint

import (
	"strings"

	"github.com/AssemblyStorm/mint/internal/pak"
)

// conflictingModsWhitelist names path prefixes multiple mods may
// legitimately all write to without being flagged.
var conflictingModsWhitelist = []string{"fsd/content/_interop"}

// ConflictingModsLint reports every normalized path written by two or
// more mods, outside the whitelisted prefixes.
type ConflictingModsLint struct{}

func (ConflictingModsLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	perPath := make(map[string]map[string]bool)

	err := lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		mods, ok := perPath[normalizedPath]
		if !ok {
			mods = make(map[string]bool)
			perPath[normalizedPath] = mods
		}
		mods[mod.ID] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for path, mods := range perPath {
		if len(mods) <= 1 {
			continue
		}
		if isWhitelisted(path) {
			continue
		}
		out[path] = sortedKeys(mods)
	}
	return out, nil
}

func isWhitelisted(path string) bool {
	for _, prefix := range conflictingModsWhitelist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
