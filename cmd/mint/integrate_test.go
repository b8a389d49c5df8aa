package main

import (
	"testing"

	"github.com/AssemblyStorm/mint/internal/lint"
)

func TestResolveLintIDsDefaultsToEverything(t *testing.T) {
	ids, err := resolveLintIDs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != len(lintNames) {
		t.Fatalf("expected %d ids, got %d", len(lintNames), len(ids))
	}
}

func TestResolveLintIDsRestrictsToNamed(t *testing.T) {
	ids, err := resolveLintIDs([]string{"conflicting-mods", "empty-archive"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	want := map[lint.ID]bool{lint.ConflictingID: true, lint.EmptyArchiveID: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %v in result", id)
		}
	}
}

func TestResolveLintIDsRejectsUnknownName(t *testing.T) {
	_, err := resolveLintIDs([]string{"not-a-real-lint"})
	if err == nil {
		t.Fatal("expected an error for an unknown lint name")
	}
}

func TestSplitAssetPairNamesFlattensPaths(t *testing.T) {
	mods := map[string]map[string]lint.SplitAssetPairKind{
		"ModA": {"FSD/Content/X.uasset": lint.MissingUexp},
	}
	out := splitAssetPairNames(mods)
	if len(out["ModA"]) != 1 || out["ModA"][0] != "FSD/Content/X.uasset" {
		t.Fatalf("unexpected flattened output: %+v", out)
	}
}
