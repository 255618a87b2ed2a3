package listing

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/labelctl/internal/api"
	"github.com/five82/labelctl/internal/catalog"
)

func release(id int64, title, artist string) catalog.Release {
	return catalog.Release{
		ID:                id,
		Title:             title,
		Artist:            artist,
		Artists:           []catalog.ReleaseArtist{{Name: artist, Role: catalog.RolePrimary}},
		ShowInMain:        true,
		ShowInDiscography: true,
		Tag:               catalog.TagNone,
	}
}

// corpus builds a deterministic, varied release list.
func corpus(n int) []catalog.Release {
	rng := rand.New(rand.NewSource(42))
	artists := []string{"Mara", "kofi", "Jay Z", "DJ Jazzy Jeff", "2Pac", "Ébène", "zed", " Ada", "Öland", "Bo"}
	words := []string{"Dusk", "jay", "Night", "Gold", "Reasonable", "Doubt", "Echo", "Rain"}
	types := []catalog.ReleaseType{catalog.TypeSingle, catalog.TypeEP, catalog.TypeAlbum}
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]catalog.Release, 0, n)
	for i := 0; i < n; i++ {
		r := release(int64(i+1), words[rng.Intn(len(words))]+" "+words[rng.Intn(len(words))], artists[rng.Intn(len(artists))])
		if rng.Intn(3) == 0 {
			r.Artists = append(r.Artists, catalog.ReleaseArtist{Name: artists[rng.Intn(len(artists))], Role: catalog.RoleFeatured})
		}
		r.Type = types[rng.Intn(len(types))]
		r.LabelID = int64(1 + rng.Intn(2))
		r.ReleaseDate = catalog.ReleaseDate{Time: base.AddDate(rng.Intn(20), 0, 0)}
		r.CreatedAt = base.AddDate(0, 0, rng.Intn(400))
		out = append(out, r)
	}
	return out
}

func ids(releases []catalog.Release) []int64 {
	out := make([]int64, len(releases))
	for i, r := range releases {
		out[i] = r.ID
	}
	return out
}

func TestApply_EmptyFilterKeepsEverythingSorted(t *testing.T) {
	input := corpus(60)
	for _, key := range []catalog.SortKey{catalog.SortReleaseDate, catalog.SortTitle, catalog.SortCreatedAt} {
		for _, order := range []catalog.SortOrder{catalog.OrderAsc, catalog.OrderDesc} {
			got := Apply(input, FilterState{Sort: key, Order: order})
			require.Len(t, got, len(input), "%s %s", key, order)
			assert.ElementsMatch(t, ids(input), ids(got), "%s %s", key, order)

			compare := comparator(key)
			for i := 1; i < len(got); i++ {
				c := compare(got[i-1], got[i])
				if order == catalog.OrderDesc {
					c = -c
				}
				assert.LessOrEqual(t, c, 0, "%s %s out of order at %d", key, order, i)
			}
		}
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	input := corpus(20)
	before := ids(input)
	Apply(input, FilterState{Sort: catalog.SortTitle, Order: catalog.OrderDesc})
	assert.Equal(t, before, ids(input))
}

func TestApply_SearchIsExactPredicate(t *testing.T) {
	input := corpus(80)
	for _, search := range []string{"", "jay", "JAY", "doubt", "featured", "kofi (featured)", "zed", "ébène", "nomatch"} {
		got := Apply(input, FilterState{Search: search})
		kept := map[int64]bool{}
		for _, r := range got {
			kept[r.ID] = true
			needle := strings.ToLower(search)
			assert.True(t,
				strings.Contains(strings.ToLower(r.Title), needle) || strings.Contains(strings.ToLower(r.ArtistsWithRoles()), needle),
				"search %q kept non-matching %d", search, r.ID)
		}
		for _, r := range input {
			if Matches(r, search) {
				assert.True(t, kept[r.ID], "search %q dropped matching %d", search, r.ID)
			}
		}
	}
}

func TestApply_TypeLabelLetterAndView(t *testing.T) {
	input := []catalog.Release{
		release(1, "A", "Mara"),
		release(2, "B", "mara"),
		release(3, "C", "Kofi"),
		release(4, "D", "Mara"),
	}
	input[0].Type, input[1].Type, input[2].Type, input[3].Type = catalog.TypeEP, catalog.TypeAlbum, catalog.TypeEP, catalog.TypeEP
	input[2].LabelID = 2
	input[3].Tag = catalog.TagRemoved
	input[1].ShowInMain = false

	assert.Equal(t, []int64{1, 3, 4}, ids(Apply(input, FilterState{Type: catalog.TypeEP})))
	assert.Equal(t, []int64{3}, ids(Apply(input, FilterState{LabelID: 2})))
	assert.Equal(t, []int64{1, 2, 4}, ids(Apply(input, FilterState{Letter: "m"})))
	assert.Equal(t, []int64{1, 3}, ids(Apply(input, FilterState{View: ViewMain})))
	assert.Equal(t, []int64{1, 2, 3}, ids(Apply(input, FilterState{View: ViewDiscography})))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Apply(input, FilterState{})))
}

func TestSort_StableAndCaseInsensitive(t *testing.T) {
	input := []catalog.Release{
		release(1, "beta", "x"),
		release(2, "Alpha", "x"),
		release(3, "Beta", "x"),
		release(4, "alpha", "x"),
	}
	asc := Apply(input, FilterState{Sort: catalog.SortTitle, Order: catalog.OrderAsc})
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(asc))
	desc := Apply(input, FilterState{Sort: catalog.SortTitle, Order: catalog.OrderDesc})
	assert.Equal(t, []int64{1, 3, 2, 4}, ids(desc))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Apply(input, FilterState{})))
}

func TestGroup_IsTotalPartition(t *testing.T) {
	input := corpus(120)
	g := Group(input)

	seen := map[int64]int{}
	for key, bucket := range g.Buckets {
		if key != OtherKey {
			require.Len(t, key, 1)
			assert.True(t, key[0] >= 'A' && key[0] <= 'Z', "key %q", key)
		}
		for _, r := range bucket {
			seen[r.ID]++
			assert.Equal(t, key, GroupKey(r))
		}
	}
	require.Len(t, seen, len(input))
	for id, n := range seen {
		assert.Equal(t, 1, n, "release %d", id)
	}

	assert.NotContains(t, g.Available, OtherKey)
	assert.IsIncreasing(t, g.Available)
	for _, key := range g.Available {
		assert.NotEmpty(t, g.Buckets[key])
	}
}

func TestGroupKey(t *testing.T) {
	tests := map[string]string{
		"Mara":    "M",
		"kofi":    "K",
		" Ada":    "A",
		"2Pac":    OtherKey,
		"Ébène":   OtherKey,
		"":        OtherKey,
		"!llmind": OtherKey,
	}
	for artist, want := range tests {
		assert.Equal(t, want, GroupKey(release(1, "t", artist)), artist)
	}

	featuredFirst := catalog.Release{Artists: []catalog.ReleaseArtist{
		{Name: "Zed", Role: catalog.RoleFeatured},
		{Name: "Bo", Role: catalog.RolePrimary},
	}}
	assert.Equal(t, "B", GroupKey(featuredFirst))
}

func TestGroupKeys(t *testing.T) {
	g := Group([]catalog.Release{release(1, "t", "zed"), release(2, "t", "2Pac"), release(3, "t", "Ada")})
	assert.Equal(t, []string{"A", "Z"}, g.Available)
	assert.Equal(t, []string{"A", "Z", OtherKey}, g.Keys())
}

func TestToggleLetter(t *testing.T) {
	assert.Equal(t, "M", ToggleLetter("", "m"))
	assert.Equal(t, "", ToggleLetter("M", "M"))
	assert.Equal(t, "K", ToggleLetter("M", "K"))
	assert.Equal(t, "", ToggleLetter("m", "M"))
}

func TestScenario_SearchJayThroughReleaseService(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"releases":[
			{"id":1,"title":"Jay Z — Reasonable Doubt","artist":"Jay Z","status":"published"},
			{"id":2,"title":"DJ Jazzy","artist":"DJ Jazzy Jeff","status":"published"}
		]}`)
	}))
	t.Cleanup(server.Close)
	client, err := api.NewClient(api.Config{BaseURL: server.URL})
	require.NoError(t, err)

	svc := catalog.NewReleaseService(client, nil)
	fetched := svc.GetReleases(context.Background(), catalog.ReleaseQuery{Status: "published", Search: "Jay"})
	require.Len(t, fetched, 2)
	assert.Equal(t, "search=Jay&status=published", query)

	got := Apply(fetched, FilterState{Search: "Jay"})
	require.Len(t, got, 1)
	assert.Equal(t, "Jay Z — Reasonable Doubt", got[0].Title)
}

func TestCarousel(t *testing.T) {
	c := NewCarousel(7, 3)
	assert.Equal(t, 3, c.Pages())

	items := []int{0, 1, 2, 3, 4, 5, 6}
	assert.Equal(t, []int{0, 1, 2}, PageItems(items, c))
	c = c.Next()
	assert.Equal(t, []int{3, 4, 5}, PageItems(items, c))
	c = c.Next()
	assert.Equal(t, []int{6}, PageItems(items, c))
	c = c.Next()
	assert.Equal(t, 0, c.Page())
	c = c.Prev()
	assert.Equal(t, 2, c.Page())

	c = c.Resize(4)
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, []int{3}, PageItems(items[:4], c))

	empty := NewCarousel(0, 3)
	assert.Equal(t, 0, empty.Pages())
	assert.Equal(t, 0, empty.Next().Page())
	assert.Nil(t, PageItems(items, empty))
	assert.Equal(t, 7, NewCarousel(7, 0).Pages())
}

func TestDebouncer_OnlyLastValueFires(t *testing.T) {
	fired := make(chan string, 4)
	d := NewDebouncer(40*time.Millisecond, func(v string) { fired <- v })
	defer d.Stop()

	for _, v := range []string{"j", "ja", "jay"} {
		d.Submit(v)
	}

	select {
	case v := <-fired:
		assert.Equal(t, "jay", v)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
	select {
	case v := <-fired:
		t.Fatalf("unexpected second fire %q", v)
	case <-time.After(120 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	fired := make(chan int, 1)
	d := NewDebouncer(20*time.Millisecond, func(v int) { fired <- v })
	d.Submit(1)
	d.Stop()
	d.Submit(2)
	select {
	case v := <-fired:
		t.Fatalf("stopped debouncer fired %d", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_DefaultQuiet(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultQuiet, d.quiet)
}

func TestSequencer(t *testing.T) {
	s := NewSequencer()
	first := s.Next("releases")
	assert.True(t, s.IsLatest(first))

	second := s.Next("releases")
	assert.False(t, s.IsLatest(first))
	assert.True(t, s.IsLatest(second))

	other := s.Next("videos")
	assert.True(t, s.IsLatest(other))
	assert.True(t, s.IsLatest(second))
	assert.False(t, s.IsLatest(Token{}))
	assert.Equal(t, uint64(2), second.Seq)
}
