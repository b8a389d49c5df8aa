package lint

import (
	"strings"

	"github.com/AssemblyStorm/mint/internal/pak"
)

// SplitAssetPairKind names which half of a .uasset/.uexp pair is
// missing.
type SplitAssetPairKind int

const (
	MissingUexp SplitAssetPairKind = iota
	MissingUasset
)

// SplitAssetPairsLint reports every path stem where a mod ships a
// .uasset without its matching .uexp, or vice versa — either one
// alone fails to load.
type SplitAssetPairsLint struct{}

func (SplitAssetPairsLint) CheckMods(lcx *LintCtxt) (map[string]map[string]SplitAssetPairKind, error) {
	// per-mod stem -> set of final extensions seen for that stem
	extsByModAndStem := make(map[string]map[string]map[string]bool)

	err := lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		stem, ext, ok := lastTwoDotSeparated(normalizedPath)
		if !ok {
			return nil
		}
		byStem, ok := extsByModAndStem[mod.ID]
		if !ok {
			byStem = make(map[string]map[string]bool)
			extsByModAndStem[mod.ID] = byStem
		}
		exts, ok := byStem[stem]
		if !ok {
			exts = make(map[string]bool)
			byStem[stem] = exts
		}
		exts[ext] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]SplitAssetPairKind)
	for modID, byStem := range extsByModAndStem {
		for stem, exts := range byStem {
			hasUexp, hasUasset := exts["uexp"], exts["uasset"]
			switch {
			case hasUexp && !hasUasset:
				putSplitPair(out, modID, stem+".uexp", MissingUasset)
			case hasUasset && !hasUexp:
				putSplitPair(out, modID, stem+".uasset", MissingUexp)
			}
		}
	}
	return out, nil
}

func putSplitPair(out map[string]map[string]SplitAssetPairKind, modID, path string, kind SplitAssetPairKind) {
	m, ok := out[modID]
	if !ok {
		m = make(map[string]SplitAssetPairKind)
		out[modID] = m
	}
	m[path] = kind
}

// lastTwoDotSeparated splits path on its final '.' into (everything
// before, everything after). Returns false if path has no '.'.
func lastTwoDotSeparated(path string) (stem, ext string, ok bool) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}
