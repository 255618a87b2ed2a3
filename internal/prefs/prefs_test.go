package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want %#v", p, Default())
	}
	if p.Sort != "release_date" || p.Order != "desc" {
		t.Fatalf("default sort = %s %s, want release_date desc", p.Sort, p.Order)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "labelctl")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	content := "theme = \"Slate\"\nlabel = \" NickelDime \"\nsort = \"title\"\norder = \"asc\"\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Prefs{Theme: "Slate", Label: "nickeldime", Sort: "title", Order: "asc"}
	if p != want {
		t.Fatalf("Load = %#v, want %#v", p, want)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "custom.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Slate\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.Sort != Default().Sort {
		t.Fatalf("Sort = %q, want default when absent", p.Sort)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Slate", Label: "adedr", Sort: "created_at", Order: "asc"}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != p {
		t.Fatalf("Load = %#v, want %#v", loaded, p)
	}
}

func TestLoad_InvalidValuesFallBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	content := "theme = \"\"\nsort = \"popularity\"\norder = \"sideways\"\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want defaults", p)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestApplyTo(t *testing.T) {
	base := listing.DefaultFilter()
	base.Search = "jay"

	got := Prefs{Sort: "title", Order: "asc"}.ApplyTo(base)
	if got.Sort != catalog.SortTitle || got.Order != catalog.OrderAsc {
		t.Fatalf("ApplyTo sort = %s %s, want title asc", got.Sort, got.Order)
	}
	if got.Search != "jay" {
		t.Fatalf("ApplyTo dropped search: %q", got.Search)
	}

	kept := Prefs{Sort: "bogus", Order: ""}.ApplyTo(base)
	if kept.Sort != base.Sort || kept.Order != base.Order {
		t.Fatalf("ApplyTo with invalid values = %s %s, want unchanged", kept.Sort, kept.Order)
	}
}
