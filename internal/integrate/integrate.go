// Package integrate implements the Mod Bundle Writer: it opens the base
// game pak, walks each mod pak in input order routing every file to one
// of verbatim-copy / registry-populate / deferred-patch-buffer / drop,
// applies the deferred patcher to the buffered base-game assets, and
// writes the finished mods_P.pak.
package integrate

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/AssemblyStorm/mint/internal/asset"
	"github.com/AssemblyStorm/mint/internal/blob"
	"github.com/AssemblyStorm/mint/internal/installation"
	"github.com/AssemblyStorm/mint/internal/mint"
	"github.com/AssemblyStorm/mint/internal/pak"
	"github.com/AssemblyStorm/mint/internal/patch"
	"github.com/AssemblyStorm/mint/internal/registry"
)

//go:embed all:fixtures
var fixturesFS embed.FS

// toolVersion is embedded at the front of the Meta blob.
var toolVersion = SemverVersion{Major: 0, Minor: 1, Patch: 0}

const assetRegistryPath = "FSD/AssetRegistry.bin"

// ModWithPath pairs a caller-resolved ModInfo with the local filesystem
// path of its already-fetched mod blob (pak or zip-of-pak).
type ModWithPath struct {
	Info ModInfo
	Path string
}

// Integrate reads gamePakPath, applies every mod in mods (in order) on
// top of it, and writes {installRoot}/Content/Paks/mods_P.pak.
func Integrate(gamePakPath string, cfg MetaConfig, mods []ModWithPath, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	inst, err := installation.FromPakPath(gamePakPath)
	if err != nil {
		return mint.Wrap(mint.UnknownGameInstallation, "failed to identify game installation", err).WithPath(gamePakPath)
	}

	gameFile, err := os.Open(gamePakPath)
	if err != nil {
		return mint.Wrap(mint.IoError, "failed to open game pak file", err).WithPath(gamePakPath)
	}
	defer gameFile.Close()

	fi, err := gameFile.Stat()
	if err != nil {
		return mint.Wrap(mint.IoError, "failed to stat game pak file", err).WithPath(gamePakPath)
	}

	gamePak, err := pak.Open(gameFile, fi.Size())
	if err != nil {
		return mint.Wrap(mint.InvalidPak, "failed to process game pak, possibly invalid", err).WithPath(gamePakPath)
	}

	arBytes, err := gamePak.Get(assetRegistryPath)
	if err != nil {
		return mint.Wrap(mint.AssetRegistryFailure, "failed to read asset registry", err).WithPath(assetRegistryPath)
	}
	reg, err := registry.Read(arBytes)
	if err != nil {
		return mint.Wrap(mint.AssetRegistryFailure, "failed to deserialize asset registry", err).WithPath(assetRegistryPath)
	}

	deferred := make(map[string]*rawAsset, len(patch.TargetPaths()))
	for _, p := range patch.TargetPaths() {
		deferred[p] = &rawAsset{}
	}
	for path, ra := range deferred {
		if b, err := gamePak.Get(path + ".uasset"); err == nil {
			ra.uasset = b
		}
		if b, err := gamePak.Get(path + ".uexp"); err == nil {
			ra.uexp = b
		}
	}

	modsPakPath := filepath.Join(inst.PaksPath(), "mods_P.pak")
	outFile, err := os.Create(modsPakPath)
	if err != nil {
		return mint.Wrap(mint.IoError, "failed to open mod bundle file for writing", err).WithPath(modsPakPath)
	}

	bw := newBundleWriter(outFile, originalPaths(gamePak))

	var initSpacerigAssets, initCaveAssets []string
	added := make(map[string]bool)

	for _, m := range mods {
		if err := integrateOneMod(m, deferred, reg, bw, added, &initSpacerigAssets, &initCaveAssets, logger); err != nil {
			outFile.Close()
			os.Remove(modsPakPath)
			return err
		}
	}

	if err := applyDeferredPatches(deferred, bw); err != nil {
		outFile.Close()
		os.Remove(modsPakPath)
		return err
	}

	if err := writeFixtures(bw); err != nil {
		outFile.Close()
		os.Remove(modsPakPath)
		return err
	}

	if err := writeMeta(bw, cfg, mods); err != nil {
		outFile.Close()
		os.Remove(modsPakPath)
		return err
	}

	if err := bw.writeFile(assetRegistryPath, reg.Write()); err != nil {
		outFile.Close()
		os.Remove(modsPakPath)
		return mint.Wrap(mint.AssetRegistryFailure, "failed to write rebuilt asset registry", err)
	}

	if err := bw.finish(); err != nil {
		outFile.Close()
		os.Remove(modsPakPath)
		return mint.Wrap(mint.WriteModBundleFailed, "failed to finalize mod bundle pak index", err).WithPath(modsPakPath)
	}
	if err := outFile.Close(); err != nil {
		return mint.Wrap(mint.IoError, "failed to close mod bundle file", err).WithPath(modsPakPath)
	}

	logger.Info("mods installed", zap.Int("count", len(mods)), zap.String("path", modsPakPath))
	return nil
}

type rawAsset struct {
	uasset, uexp []byte
}

func (r *rawAsset) parse(skipData bool) (*asset.Asset, error) {
	return asset.Read(r.uasset, r.uexp, asset.ReadOptions{SkipData: skipData})
}

func integrateOneMod(
	m ModWithPath,
	deferred map[string]*rawAsset,
	reg *registry.Registry,
	bw *bundleWriter,
	added map[string]bool,
	initSpacerigAssets, initCaveAssets *[]string,
	logger *zap.Logger,
) error {
	raw, err := os.ReadFile(m.Path)
	if err != nil {
		return mint.Wrap(mint.ModReadFailure, "could not open mod blob", err).WithPath(m.Path).WithModID(m.Info.Name)
	}

	pakData, err := blob.ExtractPak(raw, m.Path)
	if err != nil {
		return mint.Wrap(mint.ModReadFailure, "could not obtain mod file from raw mod blob", err).WithPath(m.Path).WithModID(m.Info.Name)
	}

	modPak, err := pak.Open(bytes.NewReader(pakData), int64(len(pakData)))
	if err != nil {
		return mint.Wrap(mint.ModReadFailure, "could not interpret mod file as valid UE 4.27 mod pak", err).WithPath(m.Path).WithModID(m.Info.Name)
	}

	normalized := normalizeModPaths(modPak)

	// First pass: populate the asset registry from every mod-supplied
	// uasset/uexp pair, before anything is written out.
	for norm, orig := range normalized {
		ext := strings.ToLower(filepath.Ext(norm))
		if ext != ".uasset" && ext != ".umap" {
			continue
		}
		uexpNorm := strings.TrimSuffix(norm, filepath.Ext(norm)) + ".uexp"
		if _, ok := normalized[uexpNorm]; !ok {
			continue
		}
		uassetBytes, err := modPak.Get(orig)
		if err != nil {
			return mint.Wrap(mint.ModAssetReadFailure, "failed to read uasset file", err).WithPath(orig).WithModID(m.Info.Name)
		}
		uexpBytes, err := modPak.Get(normalized[uexpNorm])
		if err != nil {
			return mint.Wrap(mint.ModAssetReadFailure, "failed to read uexp file", err).WithPath(normalized[uexpNorm]).WithModID(m.Info.Name)
		}
		a, err := asset.Read(uassetBytes, uexpBytes, asset.ReadOptions{SkipData: true})
		if err != nil {
			return mint.Wrap(mint.AssetBuildFailure, "failed to parse mod asset for registry population", err).WithPath(orig).WithModID(m.Info.Name)
		}
		reg.Populate(strings.TrimSuffix(norm, filepath.Ext(norm)), a)
	}

	// Second pass: route every file.
	for norm, orig := range normalized {
		lower := strings.ToLower(norm)
		if added[lower] {
			continue
		}

		base := filepath.Base(norm)
		if strings.EqualFold(base, "AssetRegistry.bin") {
			continue
		}
		if strings.EqualFold(filepath.Ext(norm), ".ushaderbytecode") {
			continue
		}
		switch strings.ToLower(base) {
		case "initspacerig.uasset":
			*initSpacerigAssets = append(*initSpacerigAssets, formatSoftClass(norm))
		case "initcave.uasset":
			*initCaveAssets = append(*initCaveAssets, formatSoftClass(norm))
		}

		data, err := modPak.Get(orig)
		if err != nil {
			return mint.Wrap(mint.ModAssetReadFailure, "failed to extract asset data", err).WithPath(orig).WithModID(m.Info.Name)
		}

		if stem, ok := strings.CutSuffix(norm, ".uasset"); ok {
			if ra, ok := deferred[stem]; ok {
				ra.uasset = data
				continue
			}
		}
		if stem, ok := strings.CutSuffix(norm, ".uexp"); ok {
			if ra, ok := deferred[stem]; ok {
				ra.uexp = data
				continue
			}
		}

		if err := bw.writeFile(norm, data); err != nil {
			return mint.Wrap(mint.WriteModBundleFailed, "failed to write mod file", err).WithPath(norm).WithModID(m.Info.Name)
		}
		added[lower] = true
	}

	logger.Debug("integrated mod", zap.String("mod", m.Info.Name), zap.String("path", m.Path))
	return nil
}

// normalizeModPaths maps every mount-stripped path of modPak to its
// original (pre-strip) path within the archive, case preserved.
func normalizeModPaths(modPak *pak.Reader) map[string]string {
	out := make(map[string]string, len(modPak.Files()))
	for _, lower := range modPak.Files() {
		orig, ok := modPak.OriginalPath(lower)
		if !ok {
			orig = lower
		}
		out[stripMountPrefix(orig)] = orig
	}
	return out
}

func stripMountPrefix(p string) string {
	return strings.TrimPrefix(p, "../../../")
}

// formatSoftClass builds the soft-class object path the loader uses to
// spawn a mod's InitSpaceRig/InitCave Blueprint, e.g.
// "FSD/Content/SpaceRig/InitSpaceRig.uasset" -> "/Game/SpaceRig/InitSpaceRig.InitSpaceRig_C".
func formatSoftClass(normalizedPath string) string {
	rel := strings.TrimPrefix(normalizedPath, "FSD/Content/")
	packagePath := strings.TrimSuffix(rel, filepath.Ext(rel))
	assetName := filepath.Base(packagePath)
	return "/Game/" + packagePath + "." + assetName + "_C"
}

func applyDeferredPatches(deferred map[string]*rawAsset, bw *bundleWriter) error {
	pcbPath := patch.PlayerControllerPath
	pcb, err := deferred[pcbPath].parse(false)
	if err != nil {
		return mint.Wrap(mint.AssetBuildFailure, "failed to parse base player controller asset", err).WithPath(pcbPath)
	}
	if err := patch.HookPCB(pcb); err != nil {
		return err
	}
	if err := bw.writeAsset(pcb, pcbPath); err != nil {
		return mint.Wrap(mint.WriteModBundleFailed, "failed to write patched player controller asset", err).WithPath(pcbPath)
	}

	applyOne := func(path string, f func(*asset.Asset) error) error {
		a, err := deferred[path].parse(false)
		if err != nil {
			return mint.Wrap(mint.AssetBuildFailure, "failed to parse base deferred asset", err).WithPath(path)
		}
		if err := f(a); err != nil {
			return err
		}
		if err := bw.writeAsset(a, path); err != nil {
			return mint.Wrap(mint.WriteModBundleFailed, "failed to write patched deferred asset", err).WithPath(path)
		}
		return nil
	}

	for _, p := range patch.IsModdedTargets {
		if err := applyOne(p, patch.PatchIsModded); err != nil {
			return err
		}
	}
	if err := applyOne(patch.EscapeMenuPath, patch.PatchModdingTab); err != nil {
		return err
	}
	if err := applyOne(patch.ModdingTabPath, patch.PatchModdingTabItem); err != nil {
		return err
	}
	if err := applyOne(patch.ServerListEntryPath, patch.PatchServerListEntry); err != nil {
		return err
	}
	return nil
}

func writeFixtures(bw *bundleWriter) error {
	return fs.WalkDir(fixturesFS, "fixtures", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fixturesFS.ReadFile(path)
		if err != nil {
			return mint.Wrap(mint.IoError, "failed to read embedded fixture", err).WithPath(path)
		}
		rel := strings.TrimPrefix(path, "fixtures/")
		return bw.writeFile(rel, data)
	})
}

func writeMeta(bw *bundleWriter, cfg MetaConfig, mods []ModWithPath) error {
	meta := Meta{Version: toolVersion, Config: cfg}
	for _, m := range mods {
		meta.Mods = append(meta.Mods, MetaMod{
			Name:     m.Info.Name,
			Version:  "unknown",
			Author:   "unknown",
			Required: m.Info.SuggestedRequire,
			URL:      m.Info.resolvableURL(),
			Approval: m.Info.approval(),
		})
	}
	data, err := msgpack.Marshal(meta)
	if err != nil {
		return mint.Wrap(mint.WriteModBundleFailed, "failed to serialize meta record", err)
	}
	return bw.writeFile("meta", data)
}

func originalPaths(r *pak.Reader) []string {
	out := make([]string, 0, len(r.Files()))
	for _, lower := range r.Files() {
		if orig, ok := r.OriginalPath(lower); ok {
			out = append(out, orig)
		}
	}
	return out
}
