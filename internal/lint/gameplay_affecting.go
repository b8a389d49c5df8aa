package lint

import (
	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/mint"
	"github.com/AssemblyStorm/mint/internal/pak"
)

// cosmeticClasses are the export classes treated as pure content swaps;
// anything else imported by a root-level export is assumed capable of
// changing gameplay behavior.
var cosmeticClasses = map[string]bool{
	"SoundWave":                true,
	"SoundCue":                 true,
	"SoundClass":               true,
	"SoundMix":                 true,
	"MaterialInstanceConstant": true,
	"Material":                 true,
	"SkeletalMesh":             true,
	"StaticMesh":               true,
	"Texture2D":                true,
	"AnimSequence":             true,
	"Skeleton":                 true,
	"StringTable":              true,
}

// GameplayAffectingLint heuristically flags mod assets that are likely
// to change game behavior rather than just its look or sound: for each
// asset it inspects every root-level export whose class is imported
// (not defined in the asset itself) and fails the asset if that
// class isn't on the cosmetic whitelist. An asset this lint cannot
// even locate, in either the mod or the base game, is conservatively
// treated as gameplay-affecting.
type GameplayAffectingLint struct{}

func (GameplayAffectingLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	if lcx.GamePakPath == "" {
		return nil, mint.New(mint.LintError, "gameplay-affecting lint requires a valid game pak path")
	}

	gamePak, err := openPak(lcx.GamePakPath)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	err = lcx.forEachMod(func(mod ModRef, r *pak.Reader) error {
		affecting, err := gameplayAffectingPaths(r, gamePak)
		if err != nil {
			return err
		}
		if len(affecting) > 0 {
			out[mod.ID] = sortedKeys(affecting)
		}
		return nil
	}, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func gameplayAffectingPaths(modPak, gamePak *pak.Reader) (map[string]bool, error) {
	modIdx := lowerIndex(modPak)
	gameIdx := lowerIndex(gamePak)

	seen := make(map[string]bool)
	out := make(map[string]bool)

	for normalized := range modIdx {
		base, ext, ok := lastTwoDotSeparated(normalized)
		if !ok || !isAssetContainerExt(ext) {
			continue
		}
		if seen[base] {
			continue
		}
		seen[base] = true

		uasset, uexp, found := resolveAssetHalves(modPak, modIdx, gamePak, gameIdx, base)
		if !found {
			out[normalized] = true
			continue
		}

		a, err := asset.Read(uasset, uexp, asset.ReadOptions{SkipData: true})
		if err != nil {
			return nil, mint.Wrap(mint.AssetBuildFailure, "failed to parse asset for gameplay-affecting scan", err).WithPath(normalized)
		}
		if isGameplayAffecting(a) {
			out[normalized] = true
		}
	}
	return out, nil
}

func isAssetContainerExt(ext string) bool {
	switch ext {
	case "uasset", "uexp", "umap", "ubulk", "ufont":
		return true
	}
	return false
}

// resolveAssetHalves fetches base+".uasset"/".uexp" (falling back to
// base+".umap" in place of ".uasset" for level assets) from modPak,
// then from gamePak, keeping both halves from the same source so the
// name map and import table stay internally consistent.
func resolveAssetHalves(modPak *pak.Reader, modIdx map[string]string, gamePak *pak.Reader, gameIdx map[string]string, base string) (uasset, uexp []byte, ok bool) {
	if u, x, ok := readAssetHalves(modPak, modIdx, base); ok {
		return u, x, true
	}
	if u, x, ok := readAssetHalves(gamePak, gameIdx, base); ok {
		return u, x, true
	}
	return nil, nil, false
}

func readAssetHalves(p *pak.Reader, idx map[string]string, base string) (uasset, uexp []byte, ok bool) {
	uassetKey, ok := idx[base+".uasset"]
	if !ok {
		uassetKey, ok = idx[base+".umap"]
	}
	if !ok {
		return nil, nil, false
	}
	uexpKey, ok := idx[base+".uexp"]
	if !ok {
		return nil, nil, false
	}
	u, err := p.Get(uassetKey)
	if err != nil {
		return nil, nil, false
	}
	x, err := p.Get(uexpKey)
	if err != nil {
		return nil, nil, false
	}
	return u, x, true
}

func isGameplayAffecting(a *asset.Asset) bool {
	for _, e := range a.Exports {
		if !e.OuterIndex.IsNull() {
			continue
		}
		if !e.ClassIndex.IsImport() {
			continue
		}
		className := a.Names.Text(a.Imports[e.ClassIndex.ImportIndex()].ObjectName)
		if !cosmeticClasses[className] {
			return true
		}
	}
	return false
}
