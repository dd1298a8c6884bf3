package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `
max_pages = 20

[page]
size = "A5"
margin = "10mm 15mm"

[style]
font = "Body"
size = "4mm"
kerning = false

[styles.note]
color = "#888"

[tags.code]
font = "Mono"
wrap = "anywhere"

[fonts.Mono]
src = "builtin:go-mono"
`

func TestParse(t *testing.T) {
	cfg, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.MaxPages != 20 || cfg.Page.Size != "A5" || cfg.Page.Orientation != "portrait" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	want := map[string]string{"font": "Body", "size": "4mm", "kerning": "false"}
	if diff := cmp.Diff(want, Props(cfg.Style)); diff != "" {
		t.Fatalf("style mismatch (-want +got):\n%s", diff)
	}
	if got := Props(cfg.Tags["code"])["wrap"]; got != "anywhere" {
		t.Fatalf("unexpected tag wrap %q", got)
	}
	if cfg.Fonts["Mono"].Src != "builtin:go-mono" {
		t.Fatalf("unexpected fonts %+v", cfg.Fonts)
	}
}

func TestParseRejectsFontWithoutSrc(t *testing.T) {
	if _, err := Parse("[fonts.X]\nbold = \"a\"\n"); err == nil {
		t.Fatalf("expected error for font without src")
	}
	if _, err := Parse("max_pages = -1"); err == nil {
		t.Fatalf("expected error for negative max_pages")
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("[page]\nsize = \"A5\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if cfg.Page.Size != "A5" || cfg.BaseDir() != root {
		t.Fatalf("unexpected config %+v (base %s)", cfg.Page, cfg.BaseDir())
	}
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if cfg.Path != "" || cfg.MaxPages != DefaultMaxPages || cfg.Page.Size != "A4" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
