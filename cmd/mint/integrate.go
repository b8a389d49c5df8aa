package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AssemblyStorm/mint/internal/integrate"
)

var (
	integrateModPaths    []string
	integrateRequired    []string
	integrateNoGasFix    bool
	integrateVerboseLogs bool
)

var integrateCmd = &cobra.Command{
	Use:   "integrate GAME_PAK",
	Short: "Bundle local mod paks onto a reference game pak",
	Long:  `integrate reads the reference game pak at GAME_PAK, applies every --mod pak on top of it in the order given, and writes mods_P.pak next to the game's other paks.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gamePakPath := args[0]
		if len(integrateModPaths) == 0 {
			pterm.Warning.Println("no --mod paths given; writing an unmodified bundle")
		}

		required := make(map[string]bool, len(integrateRequired))
		for _, name := range integrateRequired {
			required[name] = true
		}

		mods := make([]integrate.ModWithPath, len(integrateModPaths))
		for i, path := range integrateModPaths {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			mods[i] = integrate.ModWithPath{
				Info: integrate.ModInfo{
					Name:             name,
					Resolution:       path,
					SuggestedRequire: required[name],
				},
				Path: path,
			}
		}

		cfg := integrate.MetaConfig{DisableExplodingGasFix: integrateNoGasFix}

		logger := zap.NewNop()
		if integrateVerboseLogs {
			var err error
			logger, err = zap.NewDevelopment()
			if err != nil {
				return err
			}
		}
		defer logger.Sync()

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Integrating %d mod(s)...", len(mods)))
		if err := integrate.Integrate(gamePakPath, cfg, mods, logger); err != nil {
			spinner.Fail("Integration failed")
			return err
		}
		spinner.Success("Wrote mods_P.pak")
		return nil
	},
}

func init() {
	integrateCmd.Flags().StringArrayVarP(&integrateModPaths, "mod", "m", nil, "path to a mod pak or zip-of-pak, repeatable; applied in order given")
	integrateCmd.Flags().StringArrayVar(&integrateRequired, "required", nil, "mod name (by file stem) the in-game loader should treat as required")
	integrateCmd.Flags().BoolVar(&integrateNoGasFix, "disable-exploding-gas-fix", false, "disable the exploding gas fix in the written meta blob")
	integrateCmd.Flags().BoolVarP(&integrateVerboseLogs, "verbose", "v", false, "emit structured per-stage tracing to stderr")
	rootCmd.AddCommand(integrateCmd)
}
