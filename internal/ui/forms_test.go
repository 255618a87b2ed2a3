package ui

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/five82/labelctl/internal/catalog"
)

func TestArtistsRoundTrip(t *testing.T) {
	in := "Jay Z; Beyoncé (featured);  ; Timbaland (producer); Prince (The Artist)"
	got := parseArtists(in)
	want := []catalog.ReleaseArtist{
		{Name: "Jay Z", Role: catalog.RolePrimary},
		{Name: "Beyoncé", Role: catalog.RoleFeatured},
		{Name: "Timbaland", Role: catalog.RoleProducer},
		{Name: "Prince (The Artist)", Role: catalog.RolePrimary},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseArtists = %+v, want %+v", got, want)
	}
	if s := formatArtists(got); s != "Jay Z; Beyoncé (featured); Timbaland (producer); Prince (The Artist)" {
		t.Fatalf("formatArtists = %q", s)
	}
}

func TestParseLinks(t *testing.T) {
	links, errs := parseLinks("Spotify=https://open.spotify.com/album/1 !bandcamp=https://x.bandcamp.com")
	if !errs.OK() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []catalog.StreamingLink{
		{Platform: "spotify", URL: "https://open.spotify.com/album/1", Active: true},
		{Platform: "bandcamp", URL: "https://x.bandcamp.com", Active: false},
	}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("parseLinks = %+v, want %+v", links, want)
	}
	if s := formatLinks(links); s != "spotify=https://open.spotify.com/album/1 !bandcamp=https://x.bandcamp.com" {
		t.Fatalf("formatLinks = %q", s)
	}

	_, errs = parseLinks("spotify")
	if _, ok := errs["streaming_links"]; !ok {
		t.Fatalf("missing '=' should be reported, got %v", errs)
	}
}

func TestParseTagAndYesNo(t *testing.T) {
	tests := []struct {
		in   string
		want catalog.Tag
		ok   bool
	}{
		{"", catalog.TagNone, true},
		{"featured", catalog.TagFeatured, true},
		{"RECENT", catalog.TagRecent, true},
		{"hot", "", false},
	}
	for _, tt := range tests {
		got, ok := parseTag(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseTag(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	for in, want := range map[string]bool{"yes": true, "Y": true, "on": true, "no": false, "": false} {
		got, ok := parseYesNo(in)
		if !ok || got != want {
			t.Errorf("parseYesNo(%q) = %v, %v; want %v, true", in, got, ok, want)
		}
	}
	if _, ok := parseYesNo("maybe"); ok {
		t.Error("parseYesNo(maybe) should fail")
	}
}

func TestParseReleaseForm(t *testing.T) {
	base := catalog.ReleaseInput{ID: 7, LabelID: 2}
	values := map[string]string{
		"title":               "Illmatic",
		"artists":             "Nas",
		"release_type":        "Album",
		"release_date":        "1994-04-19",
		"tag":                 "featured",
		"show_in_main":        "yes",
		"show_in_discography": "no",
		"track_count":         "10",
		"streaming_links":     "spotify=https://open.spotify.com/album/2",
	}
	in, errs := parseReleaseForm(base, values)
	if !errs.OK() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if in.ID != 7 || in.LabelID != 2 {
		t.Fatalf("base fields lost: %+v", in)
	}
	if in.Type != catalog.TypeAlbum || in.Tag != catalog.TagFeatured || in.TrackCount != 10 {
		t.Fatalf("parsed = %+v", in)
	}
	if !in.ShowInMain || in.ShowInDiscography {
		t.Fatalf("visibility = %v/%v, want true/false", in.ShowInMain, in.ShowInDiscography)
	}
	if len(in.StreamingLinks) != 1 {
		t.Fatalf("links = %+v", in.StreamingLinks)
	}

	values["track_count"] = "zero"
	values["tag"] = "hot"
	values["show_in_main"] = "sometimes"
	_, errs = parseReleaseForm(base, values)
	for _, field := range []string{"track_count", "tag", "show_in_main"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error on %s, got %v", field, errs)
		}
	}
}

func TestLocalCoverPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := localCoverPath(path); got != path {
		t.Fatalf("localCoverPath(file) = %q, want %q", got, path)
	}
	for _, in := range []string{"", "https://cdn.example.com/a.jpg", dir, filepath.Join(dir, "missing.jpg")} {
		if got := localCoverPath(in); got != "" {
			t.Errorf("localCoverPath(%q) = %q, want empty", in, got)
		}
	}
}

func TestLoginCmd_EmptyFields(t *testing.T) {
	msg := loginCmd(context.Background(), nil, "", "")()
	res, ok := msg.(actionResultMsg)
	if !ok {
		t.Fatalf("msg = %T, want actionResultMsg", msg)
	}
	if res.result.Success || len(res.result.Fields) != 2 {
		t.Fatalf("result = %+v, want two field errors", res.result)
	}
}

func TestSaveReleaseCmd_UploadsLocalCover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := &fakeBackend{}
	values := map[string]string{
		"title":        "Aquemini",
		"artists":      "OutKast",
		"release_type": "album",
		"release_date": "1998",
		"cover_image":  path,
		"track_count":  "16",
	}
	msg := saveReleaseCmd(context.Background(), b, catalog.ReleaseInput{}, values)()
	res := msg.(actionResultMsg)
	if !res.result.Success {
		t.Fatalf("result = %+v, want success", res.result)
	}
	if len(b.saved) != 1 || b.saved[0].CoverImage != "/uploads/covers/x.jpg" {
		t.Fatalf("saved = %+v, want uploaded cover URL", b.saved)
	}
}
