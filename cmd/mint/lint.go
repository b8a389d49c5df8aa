package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AssemblyStorm/mint/internal/lint"
	"github.com/AssemblyStorm/mint/internal/pak"
)

var (
	lintModPaths []string
	lintGamePak  string
	lintOnly     []string
)

var lintNames = map[string]lint.ID{
	"conflicting-mods":       lint.ConflictingID,
	"asset-registry-bin":     lint.AssetRegistryBinID,
	"shader-files":           lint.ShaderFilesID,
	"outdated-pak-version":   lint.OutdatedPakVersionID,
	"empty-archive":          lint.EmptyArchiveID,
	"archive-only-non-pak":   lint.ArchiveOnlyNonPakFilesID,
	"archive-multiple-paks":  lint.ArchiveMultiplePaksID,
	"non-asset-files":        lint.NonAssetFilesID,
	"split-asset-pairs":      lint.SplitAssetPairsID,
	"unmodified-game-assets": lint.UnmodifiedGameAssetsID,
	"gameplay-affecting":     lint.GameplayAffectingID,
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run the lint suite over a set of mod paks",
	Long:  `lint checks every --mod pak for common problems: conflicts, outdated formats, malformed archives, and (given --game-pak) unmodified or gameplay-affecting vanilla asset overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := resolveLintIDs(lintOnly)
		if err != nil {
			return err
		}

		mods := make([]lint.ModRef, len(lintModPaths))
		for i, path := range lintModPaths {
			mods[i] = lint.ModRef{
				ID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Path: path,
			}
		}

		lcx := &lint.LintCtxt{Mods: mods, GamePakPath: lintGamePak}

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Linting %d mod(s)...", len(mods)))
		report, err := lint.Run(ids, lcx)
		if err != nil {
			spinner.Fail("Lint run failed")
			return err
		}
		spinner.Success("Lint run complete")

		printLintReport(report)
		return nil
	},
}

// resolveLintIDs maps the --only flag's names to lint.ID values,
// defaulting to every lint when the flag is unset.
func resolveLintIDs(only []string) ([]lint.ID, error) {
	if len(only) == 0 {
		ids := make([]lint.ID, 0, len(lintNames))
		for _, id := range lintNames {
			ids = append(ids, id)
		}
		return ids, nil
	}
	ids := make([]lint.ID, 0, len(only))
	for _, name := range only {
		id, ok := lintNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown lint %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printLintReport renders every non-empty finding in the report as a
// pterm section: per-mod path findings as a table, plain mod lists as
// one line per mod. A clean report prints a single success line.
func printLintReport(report *lint.Report) {
	findings := 0

	printModSet := func(title string, mods map[string][]string) {
		if len(mods) == 0 {
			return
		}
		findings++
		tableData := pterm.TableData{{"Mod", "Paths"}}
		for mod, paths := range mods {
			tableData = append(tableData, []string{pterm.Red(mod), strings.Join(paths, ", ")})
		}
		pterm.DefaultSection.Println(title)
		_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	}

	printModList := func(title string, mods []string) {
		if len(mods) == 0 {
			return
		}
		findings++
		pterm.DefaultSection.Println(title)
		for _, mod := range mods {
			pterm.Println(pterm.Red(mod))
		}
	}

	// ConflictingMods is keyed by path; invert it so the table's Mod
	// column holds mod names like every other section.
	conflicts := make(map[string][]string)
	for path, mods := range report.ConflictingMods {
		for _, mod := range mods {
			conflicts[mod] = append(conflicts[mod], path)
		}
	}
	printModSet("Conflicting mods", conflicts)
	printModSet("Mods shipping AssetRegistry.bin", report.AssetRegistryBinMods)
	printModSet("Mods shipping shader files", report.ShaderFileMods)
	printModList("Mods using an outdated pak version", outdatedPakVersionNames(report.OutdatedPakVersionMods))
	printModList("Mods with an empty archive", report.EmptyArchiveMods)
	printModList("Mods whose archive has no pak", report.ArchiveOnlyNonPakFileMods)
	printModList("Mods whose archive has more than one pak", report.ArchiveMultiplePaksMods)
	printModSet("Mods shipping non-asset files", report.NonAssetFileMods)
	printModSet("Mods with split .uasset/.uexp pairs", splitAssetPairNames(report.SplitAssetPairsMods))
	printModSet("Mods shipping unmodified vanilla assets", report.UnmodifiedGameAssetsMods)
	printModSet("Mods overriding gameplay-affecting assets", report.GameplayAffectingMods)

	if findings == 0 {
		pterm.Success.Println("No problems found")
	}
}

func outdatedPakVersionNames(mods map[string]pak.Version) []string {
	names := make([]string, 0, len(mods))
	for mod := range mods {
		names = append(names, mod)
	}
	return names
}

func splitAssetPairNames(mods map[string]map[string]lint.SplitAssetPairKind) map[string][]string {
	out := make(map[string][]string, len(mods))
	for mod, paths := range mods {
		for path := range paths {
			out[mod] = append(out[mod], path)
		}
	}
	return out
}

func init() {
	lintCmd.Flags().StringArrayVarP(&lintModPaths, "mod", "m", nil, "path to a mod pak or zip-of-pak, repeatable")
	lintCmd.Flags().StringVar(&lintGamePak, "game-pak", "", "reference game pak, required by unmodified-game-assets and gameplay-affecting")
	lintCmd.Flags().StringArrayVar(&lintOnly, "only", nil, "restrict to these lint names, repeatable (default: all)")
	rootCmd.AddCommand(lintCmd)
}
