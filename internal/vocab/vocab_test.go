package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultWhenPathEmpty(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.LeadSources) == 0 {
		t.Fatal("expected default lead sources")
	}
	if v.RNRCeiling != 6 {
		t.Fatalf("expected default ceiling 6, got %d", v.RNRCeiling)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	content := "leadSources:\n  - instagram\n  - referral\nrnrCeiling: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp vocab: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.LeadSources) != 2 {
		t.Fatalf("expected 2 sources, got %v", v.LeadSources)
	}
	if v.RNRCeiling != 4 {
		t.Fatalf("expected ceiling 4, got %d", v.RNRCeiling)
	}
}

func TestLoadRejectsEmptySourceList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("rnrCeiling: 3\n"), 0o600); err != nil {
		t.Fatalf("write temp vocab: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty lead source list")
	}
}

func TestHasSourceIsCaseInsensitive(t *testing.T) {
	v := Default()
	if !v.HasSource("WhatsApp") {
		t.Fatal("expected whatsApp to match case-insensitively")
	}
	if !v.HasSource(" instagram ") {
		t.Fatal("expected surrounding whitespace to be tolerated")
	}
	if v.HasSource("carrier-pigeon") {
		t.Fatal("unexpected match for unknown source")
	}
}
