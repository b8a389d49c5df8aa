// Package lint implements a set of independent checks run over a batch
// of (ModId, LocalPath) pairs, each reporting a structured finding
// rather than a pass/fail verdict. A shared iteration helper handles
// the archive-shaped edge cases (empty zip, zip with no pak inside,
// zip with more than one pak inside) so individual lints only see a
// normal pak reader or a normalized file path.
package lint

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/AssemblyStorm/mint/internal/mint"
	"github.com/AssemblyStorm/mint/internal/pak"
)

// ModRef identifies one mod under inspection by an opaque caller ID
// and the local filesystem path of its already-fetched blob.
type ModRef struct {
	ID   string
	Path string
}

// LintCtxt is the shared input every lint runs against.
type LintCtxt struct {
	Mods []ModRef

	// GamePakPath is the base-game pak, required by lints that compare
	// mod content against vanilla (UnmodifiedGameAssets, GameplayAffecting).
	// Empty if not supplied.
	GamePakPath string
}

// Lint is implemented by every individual check. T is that check's
// result shape.
type Lint[T any] interface {
	CheckMods(lcx *LintCtxt) (T, error)
}

// ID names one of the eleven lints, for selecting a subset to run.
type ID int

const (
	ConflictingID ID = iota
	AssetRegistryBinID
	ShaderFilesID
	OutdatedPakVersionID
	EmptyArchiveID
	ArchiveOnlyNonPakFilesID
	ArchiveMultiplePaksID
	NonAssetFilesID
	SplitAssetPairsID
	UnmodifiedGameAssetsID
	GameplayAffectingID
)

// Report collects the output of every lint that was run. A lint that
// was not selected leaves its field nil; a selected lint with no
// findings may also leave it nil or empty.
type Report struct {
	ConflictingMods           map[string][]string
	AssetRegistryBinMods      map[string][]string
	ShaderFileMods            map[string][]string
	OutdatedPakVersionMods    map[string]pak.Version
	EmptyArchiveMods          []string
	ArchiveOnlyNonPakFileMods []string
	ArchiveMultiplePaksMods   []string
	NonAssetFileMods          map[string][]string
	SplitAssetPairsMods       map[string]map[string]SplitAssetPairKind
	UnmodifiedGameAssetsMods  map[string][]string
	GameplayAffectingMods     map[string][]string
}

// Run executes every lint named in ids against lcx and assembles a
// Report.
func Run(ids []ID, lcx *LintCtxt) (*Report, error) {
	report := &Report{}
	for _, id := range ids {
		var err error
		switch id {
		case ConflictingID:
			report.ConflictingMods, err = ConflictingModsLint{}.CheckMods(lcx)
		case AssetRegistryBinID:
			report.AssetRegistryBinMods, err = AssetRegistryBinLint{}.CheckMods(lcx)
		case ShaderFilesID:
			report.ShaderFileMods, err = ShaderFilesLint{}.CheckMods(lcx)
		case OutdatedPakVersionID:
			report.OutdatedPakVersionMods, err = OutdatedPakVersionLint{}.CheckMods(lcx)
		case EmptyArchiveID:
			report.EmptyArchiveMods, err = EmptyArchiveLint{}.CheckMods(lcx)
		case ArchiveOnlyNonPakFilesID:
			report.ArchiveOnlyNonPakFileMods, err = ArchiveOnlyNonPakFilesLint{}.CheckMods(lcx)
		case ArchiveMultiplePaksID:
			report.ArchiveMultiplePaksMods, err = ArchiveMultiplePaksLint{}.CheckMods(lcx)
		case NonAssetFilesID:
			report.NonAssetFileMods, err = NonAssetFilesLint{}.CheckMods(lcx)
		case SplitAssetPairsID:
			report.SplitAssetPairsMods, err = SplitAssetPairsLint{}.CheckMods(lcx)
		case UnmodifiedGameAssetsID:
			report.UnmodifiedGameAssetsMods, err = UnmodifiedGameAssetsLint{}.CheckMods(lcx)
		case GameplayAffectingID:
			report.GameplayAffectingMods, err = GameplayAffectingLint{}.CheckMods(lcx)
		}
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

// archiveKind classifies the result of probing a mod blob for pak
// content.
type archiveKind int

const (
	archiveOK archiveKind = iota
	archiveEmpty
	archiveOnlyNonPak
)

// extractModPaks probes data as a zip archive and returns every entry
// whose name ends in ".pak" (case-insensitive). A non-zip blob is
// treated as a single bare pak. archiveEmpty and archiveOnlyNonPak are
// reported as a kind rather than an error, matching the soft-failure
// handlers individual lints register.
func extractModPaks(data []byte) ([][]byte, archiveKind, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return [][]byte{data}, archiveOK, nil
	}
	if len(zr.File) == 0 {
		return nil, archiveEmpty, nil
	}

	var paks [][]byte
	sawAny := false
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		sawAny = true
		if !strings.EqualFold(extOf(f.Name), ".pak") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, archiveOK, mint.Wrap(mint.LintError, "failed to open zip entry", err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, archiveOK, mint.Wrap(mint.IoError, "failed to read zip entry", err)
		}
		paks = append(paks, buf)
	}
	if len(paks) == 0 {
		if sawAny {
			return nil, archiveOnlyNonPak, nil
		}
		return nil, archiveEmpty, nil
	}
	return paks, archiveOK, nil
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i:]
}

// forEachMod opens every mod in lcx.Mods, routing the empty-archive,
// only-non-pak-files, and multiple-paks edge cases to the matching
// handler (any of which may be nil) instead of invoking f.
func (lcx *LintCtxt) forEachMod(
	f func(mod ModRef, r *pak.Reader) error,
	onEmptyArchive func(mod ModRef),
	onOnlyNonPakFiles func(mod ModRef),
	onMultiplePaks func(mod ModRef),
) error {
	for _, m := range lcx.Mods {
		raw, err := os.ReadFile(m.Path)
		if err != nil {
			return mint.Wrap(mint.ModReadFailure, "could not open mod blob", err).WithPath(m.Path).WithModID(m.ID)
		}

		paks, kind, err := extractModPaks(raw)
		if err != nil {
			return err
		}
		switch kind {
		case archiveEmpty:
			if onEmptyArchive != nil {
				onEmptyArchive(m)
			}
			continue
		case archiveOnlyNonPak:
			if onOnlyNonPakFiles != nil {
				onOnlyNonPakFiles(m)
			}
			continue
		}
		if len(paks) > 1 && onMultiplePaks != nil {
			onMultiplePaks(m)
		}

		r, err := pak.Open(bytes.NewReader(paks[0]), int64(len(paks[0])))
		if err != nil {
			return mint.Wrap(mint.InvalidPak, "failed to parse mod pak", err).WithPath(m.Path).WithModID(m.ID)
		}
		if err := f(m, r); err != nil {
			return err
		}
	}
	return nil
}

// forEachModFile walks every file of every mod's (sole) pak, yielding
// the raw reader key (suitable for r.Get), the mount-stripped path
// (case preserved), and its lowercased, forward-slash form. Mods that
// hit an archive-level edge case are silently skipped, matching the
// lints that only care about well-formed archives.
func (lcx *LintCtxt) forEachModFile(f func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error) error {
	return lcx.forEachMod(func(m ModRef, r *pak.Reader) error {
		for _, lower := range r.Files() {
			orig, ok := r.OriginalPath(lower)
			if !ok {
				orig = lower
			}
			stripped := stripMountPrefix(orig)
			normalized := strings.ToLower(strings.ReplaceAll(stripped, `\`, "/"))
			if err := f(m, r, lower, stripped, normalized); err != nil {
				return err
			}
		}
		return nil
	}, nil, nil, nil)
}

func stripMountPrefix(p string) string {
	return strings.TrimPrefix(p, "../../../")
}

// lowerIndex maps every normalized (mount-stripped, lowercased,
// forward-slash) path in r to the raw key r.Get and r.OriginalPath
// expect, so callers can resolve a path across two different readers
// without caring which one's casing or mount prefix it originated
// from.
func lowerIndex(r *pak.Reader) map[string]string {
	idx := make(map[string]string, len(r.Files()))
	for _, lower := range r.Files() {
		orig, ok := r.OriginalPath(lower)
		if !ok {
			orig = lower
		}
		normalized := strings.ToLower(strings.ReplaceAll(stripMountPrefix(orig), `\`, "/"))
		idx[normalized] = lower
	}
	return idx
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
