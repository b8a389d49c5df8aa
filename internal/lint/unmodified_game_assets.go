package lint

import (
	"bytes"
	"crypto/sha256"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AssemblyStorm/mint/internal/mint"
	"github.com/AssemblyStorm/mint/internal/pak"
)

// UnmodifiedGameAssetsLint reports mod-supplied files whose content is
// byte-identical to the base-game file at the same path — almost
// always dead weight left over from a mod's build process.
type UnmodifiedGameAssetsLint struct{}

func (UnmodifiedGameAssetsLint) CheckMods(lcx *LintCtxt) (map[string][]string, error) {
	if lcx.GamePakPath == "" {
		return nil, mint.New(mint.LintError, "unmodified-game-assets lint requires a valid game pak path")
	}

	gamePak, err := openPak(lcx.GamePakPath)
	if err != nil {
		return nil, err
	}

	files := gamePak.Files()
	hashes := make([][sha256.Size]byte, len(files))

	var g errgroup.Group
	for i, lower := range files {
		i, lower := i, lower
		g.Go(func() error {
			data, err := gamePak.Get(lower)
			if err != nil {
				return mint.Wrap(mint.IoError, "failed to read base game asset", err).WithPath(lower)
			}
			hashes[i] = sha256.Sum256(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gameHashes := make(map[string][sha256.Size]byte, len(files))
	for i, lower := range files {
		orig, ok := gamePak.OriginalPath(lower)
		if !ok {
			orig = lower
		}
		gameHashes[strings.ToLower(stripMountPrefix(orig))] = hashes[i]
	}

	out := make(map[string]map[string]bool)
	err = lcx.forEachModFile(func(mod ModRef, r *pak.Reader, lowerPath, rawPath, normalizedPath string) error {
		ref, ok := gameHashes[normalizedPath]
		if !ok {
			return nil
		}
		data, err := r.Get(lowerPath)
		if err != nil {
			return mint.Wrap(mint.ModAssetReadFailure, "failed to read mod asset", err).WithPath(normalizedPath).WithModID(mod.ID)
		}
		if sha256.Sum256(data) != ref {
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

func openPak(path string) (*pak.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mint.Wrap(mint.IoError, "failed to open pak", err).WithPath(path)
	}
	r, err := pak.Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, mint.Wrap(mint.InvalidPak, "failed to parse pak", err).WithPath(path)
	}
	return r, nil
}
