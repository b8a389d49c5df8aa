package lint

import "github.com/AssemblyStorm/mint/internal/pak"

// ArchiveOnlyNonPakFilesLint reports mods whose zip archive contains
// files but none of them is a .pak.
type ArchiveOnlyNonPakFilesLint struct{}

func (ArchiveOnlyNonPakFilesLint) CheckMods(lcx *LintCtxt) ([]string, error) {
	var out []string
	err := lcx.forEachMod(
		func(mod ModRef, r *pak.Reader) error { return nil },
		nil,
		func(mod ModRef) { out = append(out, mod.ID) },
		nil,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
