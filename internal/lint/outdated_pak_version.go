package lint

import "github.com/AssemblyStorm/mint/internal/pak"

// OutdatedPakVersionLint reports mods built with a pak format older
// than V11, the version the game itself now produces.
type OutdatedPakVersionLint struct{}

func (OutdatedPakVersionLint) CheckMods(lcx *LintCtxt) (map[string]pak.Version, error) {
	out := make(map[string]pak.Version)

	err := lcx.forEachMod(func(mod ModRef, r *pak.Reader) error {
		if r.Version() < pak.Version11 {
			out[mod.ID] = r.Version()
		}
		return nil
	}, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}
