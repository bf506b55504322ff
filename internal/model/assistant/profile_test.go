package assistant

import "testing"

func TestSeedFallsBackToDefaults(t *testing.T) {
	p := Seed("", "", 0)

	if p.Name != DefaultName {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.Description != DefaultDescription {
		t.Fatalf("unexpected description %q", p.Description)
	}
	if p.MaxInput != DefaultMaxInput {
		t.Fatalf("unexpected max input %d", p.MaxInput)
	}
	if p.Welcome == "" || p.ErrorText == "" {
		t.Fatal("expected stock copy to be set")
	}
}

func TestSeedKeepsOverrides(t *testing.T) {
	p := Seed("Clinic Bot", "Ask anything", 200)

	if p.Name != "Clinic Bot" || p.Description != "Ask anything" || p.MaxInput != 200 {
		t.Fatalf("overrides lost: %+v", p)
	}
}
