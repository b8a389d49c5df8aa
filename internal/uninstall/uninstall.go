// Package uninstall reverses an integration: it deletes the generated
// mod pak and hook DLL, then restores GameUserSettings.ini's mod.io
// toggle section so the next launch doesn't silently re-enable mods
// the user removed.
package uninstall

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/AssemblyStorm/mint/internal/installation"
	"github.com/AssemblyStorm/mint/internal/mint"
)

const ugcSection = "/Script/FSD.UserGeneratedContent"

// Uninstall removes mods_P.pak and the optional hook DLL from the
// installation rooted at gamePakPath, then best-effort restores the
// mod.io toggle section of GameUserSettings.ini. keepModioIDs names
// mod.io mod IDs that should be left enabled (True) rather than
// disabled (False); every other known mod.io mod and every local mod
// directory entry is written as False.
func Uninstall(gamePakPath string, keepModioIDs map[uint32]bool) error {
	inst, err := installation.FromPakPath(gamePakPath)
	if err != nil {
		return err
	}

	modsPakPath := filepath.Join(inst.PaksPath(), "mods_P.pak")
	if err := tryRemoveFile(modsPakPath); err != nil {
		return mint.Wrap(mint.UninstallFailed, "failed to remove generated mod pak", err).WithPath(modsPakPath)
	}

	hookDLLPath := filepath.Join(inst.BinariesDirectory(), inst.Type.HookDLLName())
	if err := tryRemoveFile(hookDLLPath); err != nil {
		return mint.Wrap(mint.UninstallFailed, "failed to remove dll hook", err).WithPath(hookDLLPath)
	}

	tryUninstallModio(inst, keepModioIDs)
	return nil
}

// tryRemoveFile deletes path if present; a missing file is not an error.
func tryRemoveFile(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return err
}

type modioState struct {
	Mods []struct {
		ID uint32 `json:"ID"`
	} `json:"Mods"`
}

// tryUninstallModio is entirely best-effort: a missing mod.io
// directory, state file, local mods directory, or ini file silently
// skips the rest of the function.
func tryUninstallModio(inst *installation.Installation, keepModioIDs map[uint32]bool) {
	modioDir, ok := inst.ModioDirectory()
	if !ok {
		return
	}

	data, err := os.ReadFile(filepath.Join(modioDir, "metadata", "state.json"))
	if err != nil {
		return
	}
	var state modioState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}

	configPath := filepath.Join(inst.Root, "Saved", "Config", "WindowsNoEditor", "GameUserSettings.ini")
	cfg, err := ini.Load(configPath)
	if err != nil {
		return
	}

	localModsDir := filepath.Join(inst.Root, "Mods")
	entries, err := os.ReadDir(localModsDir)
	if err != nil {
		return
	}
	var localMods []string
	for _, e := range entries {
		if e.IsDir() {
			localMods = append(localMods, e.Name())
		}
	}

	section := cfg.Section(ugcSection)
	for _, key := range section.Keys() {
		if key.Name() != "CurrentModioUserId" {
			section.DeleteKey(key.Name())
		}
	}

	for _, m := range state.Mods {
		section.Key(modioKey(m.ID)).SetValue(boolString(keepModioIDs[m.ID]))
	}
	for _, name := range localMods {
		section.Key(name).SetValue(boolString(false))
	}
	section.Key("CheckGameversion").SetValue("False")

	_ = cfg.SaveTo(configPath)
}

func modioKey(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
