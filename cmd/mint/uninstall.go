package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AssemblyStorm/mint/internal/uninstall"
)

var uninstallKeepModioIDs []string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall GAME_PAK",
	Short: "Reverse a previous integration",
	Long:  `uninstall removes the generated mods_P.pak and hook DLL next to GAME_PAK, and, best-effort, rewrites the FSD.UserGeneratedContent section of GameUserSettings.ini: every key except CurrentModioUserId is cleared, each mod.io mod in the mod.io state file is set to True if its ID was given with --keep-modio-id and False otherwise, each local Mods directory is set to False, and CheckGameversion is set to False.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keep := make(map[uint32]bool, len(uninstallKeepModioIDs))
		for _, s := range uninstallKeepModioIDs {
			id, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return err
			}
			keep[uint32(id)] = true
		}

		if err := uninstall.Uninstall(args[0], keep); err != nil {
			return err
		}
		pterm.Success.Println("Uninstall complete")
		return nil
	},
}

func init() {
	uninstallCmd.Flags().StringArrayVar(&uninstallKeepModioIDs, "keep-modio-id", nil, "mod.io ID to leave enabled in GameUserSettings.ini, repeatable")
	rootCmd.AddCommand(uninstallCmd)
}
