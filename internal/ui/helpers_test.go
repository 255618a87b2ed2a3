package ui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
	"github.com/five82/labelctl/internal/catalog"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"Reasonable Doubt", 10, "Reasona..."},
		{"abcdef", 3, "abc"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	got := truncateMiddle("/home/user/covers/reasonable-doubt.jpg", 16)
	if len([]rune(got)) != 16 {
		t.Fatalf("len = %d, want 16 (%q)", len([]rune(got)), got)
	}
	if got[len(got)-4:] != ".jpg" {
		t.Fatalf("truncateMiddle should keep the file extension, got %q", got)
	}
	if got := truncateMiddle("short", 16); got != "short" {
		t.Fatalf("truncateMiddle(short) = %q", got)
	}
}

func TestTitleCaseAndPad(t *testing.T) {
	if got := titleCase("apple_music"); got != "Apple Music" {
		t.Fatalf("titleCase = %q, want Apple Music", got)
	}
	if got := titleCase(""); got != "" {
		t.Fatalf("titleCase(empty) = %q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
}

func TestWrapTextAndStamp(t *testing.T) {
	lines := wrapText("  one two three four  ", 9)
	if len(lines) != 3 || lines[0] != "one two" || lines[2] != "four" {
		t.Fatalf("wrapText = %q, want [one two, three, four]", lines)
	}
	if lines := wrapText("   ", 9); lines != nil {
		t.Fatalf("wrapText(blank) = %q, want nil", lines)
	}
	if got := formatStamp(time.Time{}); got != "" {
		t.Fatalf("formatStamp(zero) = %q", got)
	}
	if got := firstNonEmpty("", "  ", " label "); got != "label" {
		t.Fatalf("firstNonEmpty = %q, want label", got)
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames = %v, want 3 themes", names)
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Errorf("GetTheme(%q).Name = %q", name, got)
		}
	}
	if got := GetTheme("Solarized").Name; got != "Nightfox" {
		t.Fatalf("unknown theme fell back to %q, want Nightfox", got)
	}

	seen := map[string]bool{}
	name := names[0]
	for range names {
		seen[name] = true
		name = NextTheme(name)
	}
	if name != names[0] || len(seen) != len(names) {
		t.Fatalf("NextTheme cycle visited %v and ended on %q", seen, name)
	}
	if got := NextTheme("Solarized"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		n, selected, height int
		start, end          int
	}{
		{10, 0, 4, 0, 4},
		{10, 9, 4, 6, 10},
		{10, 5, 4, 3, 7},
		{3, 1, 10, 0, 3},
		{0, 0, 5, 0, 0},
	}
	for _, tt := range tests {
		start, end := visibleWindow(tt.n, tt.selected, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleWindow(%d, %d, %d) = %d, %d; want %d, %d",
				tt.n, tt.selected, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestSplitWidthsAndMoveSelection(t *testing.T) {
	if l, d := splitWidths(100); l != 40 || d != 60 {
		t.Fatalf("splitWidths(100) = %d, %d", l, d)
	}
	if l, d := splitWidths(200); l != 60 || d != 140 {
		t.Fatalf("splitWidths(200) = %d, %d", l, d)
	}

	if got := moveSelection(2, 5, 10); got != 4 {
		t.Fatalf("moveSelection past end = %d, want 4", got)
	}
	if got := moveSelection(2, 5, -10); got != 0 {
		t.Fatalf("moveSelection past start = %d, want 0", got)
	}
	if got := moveSelection(3, 0, 1); got != 0 {
		t.Fatalf("moveSelection on empty list = %d, want 0", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err   error
		label string
		retry bool
	}{
		{&api.Error{Kind: api.KindNetwork, Reason: api.ReasonTimeout}, "TIMEOUT", true},
		{&api.Error{Kind: api.KindNetwork, Reason: api.ReasonOffline}, "OFFLINE", true},
		{&api.Error{Kind: api.KindNetwork, Reason: api.ReasonTransport}, "NETWORK", true},
		{&api.Error{Kind: api.KindCors}, "CORS BLOCKED", false},
		{&api.Error{Kind: api.KindHTTP, Status: 503}, "HTTP 503", true},
		{&api.Error{Kind: api.KindHTTP, Status: 404}, "HTTP 404", false},
		{fmt.Errorf("get releases: %w", &api.Error{Kind: api.KindHTTP, Status: 500}), "HTTP 500", true},
		{catalog.FieldErrors{"title": "required"}, "INVALID", false},
		{errors.New("boom"), "ERROR", true},
	}
	for _, tt := range tests {
		label, retry := classifyError(tt.err)
		if label != tt.label || retry != tt.retry {
			t.Errorf("classifyError(%v) = %q, %v; want %q, %v", tt.err, label, retry, tt.label, tt.retry)
		}
	}
	if label, _ := classifyError(nil); label != "" {
		t.Fatalf("classifyError(nil) = %q", label)
	}
}

func TestHomepageSlot(t *testing.T) {
	slots := [catalog.HomepageSlots]string{
		"https://www.youtube.com/watch?v=abc123",
		"",
		"https://youtu.be/xyz789",
		"",
	}
	tests := []struct {
		url  string
		want int
	}{
		{"https://www.youtube.com/embed/abc123", 0},
		{"https://www.youtube.com/watch?v=xyz789", 2},
		{"https://youtu.be/xyz789", 2},
		{"https://www.youtube.com/watch?v=nope", -1},
	}
	for _, tt := range tests {
		if got := homepageSlot(catalog.Video{YouTubeURL: tt.url}, slots); got != tt.want {
			t.Errorf("homepageSlot(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestLogLinesAndLevelFilter(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.handleLogLines(logLinesMsg{lines: []string{
		`{"level":"debug","component":"poller","message":"tick"}`,
		`{"level":"info","component":"releases","message":"refreshed","count":3}`,
		`{"level":"warn","component":"releases","message":"read degraded","error":"timeout"}`,
		`panic: plain text line`,
	}})
	if got := len(m.logState.entries); got != 4 {
		t.Fatalf("entries = %d, want 4", got)
	}

	m.logState.minLevel = zerolog.WarnLevel
	if got := len(m.visibleEntries()); got != 2 {
		t.Fatalf("visible at warn = %d, want 2 (warn plus unstructured)", got)
	}

	m.logState.minLevel = zerolog.DebugLevel
	m.logState.searchRegex = regexp.MustCompile("(?i)RELEASES")
	m.findSearchMatches()
	if got := m.logState.searchMatches; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("search matches = %v, want [1 2]", got)
	}
	m.nextSearchMatch()
	if m.logState.searchMatchIdx != 1 {
		t.Fatalf("searchMatchIdx = %d, want 1", m.logState.searchMatchIdx)
	}

	m.handleLogLines(logLinesMsg{err: errors.New("permission denied")})
	if m.logState.err == nil || len(m.logState.entries) != 4 {
		t.Fatalf("read error should keep previous entries, got %d err=%v", len(m.logState.entries), m.logState.err)
	}
}

func TestDeleteVideoCmd(t *testing.T) {
	msg := deleteVideoCmd(context.Background(), &fakeBackend{}, 5)()
	if res, ok := msg.(actionResultMsg); !ok || !res.result.Success {
		t.Fatalf("msg = %+v, want successful actionResultMsg", msg)
	}
}
