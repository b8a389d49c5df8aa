package lint

import "github.com/AssemblyStorm/mint/internal/pak"

// EmptyArchiveLint reports mods whose blob is a zip archive containing
// no entries at all.
type EmptyArchiveLint struct{}

func (EmptyArchiveLint) CheckMods(lcx *LintCtxt) ([]string, error) {
	var out []string
	err := lcx.forEachMod(
		func(mod ModRef, r *pak.Reader) error { return nil },
		func(mod ModRef) { out = append(out, mod.ID) },
		nil,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
