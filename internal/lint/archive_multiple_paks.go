package lint

import "github.com/AssemblyStorm/mint/internal/pak"

// ArchiveMultiplePaksLint reports mods whose zip archive contains more
// than one .pak file; only the first (by zip entry order) is actually
// integrated.
type ArchiveMultiplePaksLint struct{}

func (ArchiveMultiplePaksLint) CheckMods(lcx *LintCtxt) ([]string, error) {
	var out []string
	err := lcx.forEachMod(
		func(mod ModRef, r *pak.Reader) error { return nil },
		nil,
		nil,
		func(mod ModRef) { out = append(out, mod.ID) },
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
