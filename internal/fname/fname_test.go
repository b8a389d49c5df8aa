package fname

import "testing"

func TestInternDedupesCaseInsensitively(t *testing.T) {
	tbl := New()
	a := tbl.Intern("BP_PlayerControllerBase")
	b := tbl.Intern("bp_playercontrollerbase")
	if a != b {
		t.Fatalf("expected case-insensitive dedup, got distinct indices %d != %d", a, b)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected table length 1, got %d", tbl.Len())
	}
	if tbl.String(a) != "BP_PlayerControllerBase" {
		t.Fatalf("expected first-seen casing preserved, got %q", tbl.String(a))
	}
}

func TestFindMissing(t *testing.T) {
	tbl := New()
	tbl.Intern("Foo")
	if _, ok := tbl.Find("Bar"); ok {
		t.Fatalf("expected Bar not to be found")
	}
	if idx, ok := tbl.Find("foo"); !ok || idx != 0 {
		t.Fatalf("expected case-insensitive find to succeed at index 0, got idx=%d ok=%v", idx, ok)
	}
}

func TestNewFromEntriesPreservesOrder(t *testing.T) {
	tbl := NewFromEntries([]string{"Alpha", "Beta", "Gamma"})
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", tbl.Len())
	}
	if idx, ok := tbl.Find("beta"); !ok || idx != 1 {
		t.Fatalf("expected Beta at index 1, got idx=%d ok=%v", idx, ok)
	}
}
