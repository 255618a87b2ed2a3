package catalog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func decodeRaw(t *testing.T, body string) rawRelease {
	t.Helper()
	var raw rawRelease
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestNormalizeRelease_Defaults(t *testing.T) {
	rel := normalizeRelease(decodeRaw(t, `{"id":"42","title":" Ready to Die ","artist_name":"Biggie"}`), fixedNow)

	assert.Equal(t, int64(42), rel.ID)
	assert.Equal(t, "Ready to Die", rel.Title)
	assert.Equal(t, "release-42", rel.Slug)
	assert.Equal(t, 1, rel.TrackCount)
	assert.Equal(t, 0, rel.DisplayOrder)
	assert.Equal(t, fixedNow, rel.CreatedAt)
	assert.Equal(t, fixedNow, rel.UpdatedAt)
	assert.True(t, rel.ShowInMain)
	assert.True(t, rel.ShowInDiscography)
	assert.Equal(t, TagNone, rel.Tag)
	assert.Equal(t, "Biggie", rel.Artist)
	assert.Equal(t, []ReleaseArtist{{Name: "Biggie", Role: RolePrimary}}, rel.Artists)
}

func TestNormalizeRelease_CoalescesFieldVariants(t *testing.T) {
	body := `{
		"id": 7,
		"slug": "dusk",
		"title": "Dusk",
		"artists": [
			{"artist_id": "3", "name": "Mara", "role": "primary"},
			{"id": 9, "artist_name": "Kofi", "role": "Featured"},
			{"name": "", "role": "remixer"}
		],
		"type": "EP",
		"cover_url": "https://cdn.example.com/dusk.jpg",
		"tag": "featured",
		"show_in_main": "0",
		"show_in_discography": 1,
		"track_count": "5",
		"display_order": 2,
		"release_date": "2024",
		"created_at": "2024-03-01 10:00:00",
		"spotify_url": "https://open.spotify.com/album/x",
		"bandcamp_url": ""
	}`
	rel := normalizeRelease(decodeRaw(t, body), fixedNow)

	assert.Equal(t, TypeEP, rel.Type)
	assert.Equal(t, "https://cdn.example.com/dusk.jpg", rel.CoverImage)
	assert.Equal(t, TagFeatured, rel.Tag)
	assert.False(t, rel.ShowInMain)
	assert.True(t, rel.ShowInDiscography)
	assert.Equal(t, 5, rel.TrackCount)
	assert.Equal(t, 2, rel.DisplayOrder)
	assert.Equal(t, "2024", rel.ReleaseDate.String())
	assert.True(t, rel.ReleaseDate.YearOnly)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rel.CreatedAt)
	assert.Equal(t, rel.CreatedAt, rel.UpdatedAt)

	require.Len(t, rel.Artists, 2)
	assert.Equal(t, ReleaseArtist{ID: 3, Name: "Mara", Role: RolePrimary}, rel.Artists[0])
	assert.Equal(t, ReleaseArtist{ID: 9, Name: "Kofi", Role: RoleFeatured}, rel.Artists[1])
	assert.Equal(t, "Mara", rel.Artist)
	assert.Equal(t, "Mara, Kofi (featured)", rel.ArtistsWithRoles())

	require.Len(t, rel.StreamingLinks, 1)
	link, ok := rel.Link(PlatformSpotify)
	require.True(t, ok)
	assert.Equal(t, "https://open.spotify.com/album/x", link.URL)
	_, ok = rel.Link(PlatformBandcamp)
	assert.False(t, ok)
}

func TestNormalizeRelease_StreamingLinkShapes(t *testing.T) {
	list := normalizeRelease(decodeRaw(t, `{"id":1,"streaming_links":[
		{"platform":"Spotify","url":"https://s/1","is_active":"1"},
		{"platform":"spotify","url":"https://s/dup"},
		{"platform":"tidal","url":"https://t/1","is_active":false},
		{"platform":"youtube","url":""}
	],"youtube_url":"https://y/1"}`), fixedNow)
	assert.Equal(t, []StreamingLink{
		{Platform: "spotify", URL: "https://s/1", Active: true},
		{Platform: "tidal", URL: "https://t/1", Active: false},
		{Platform: "youtube", URL: "https://y/1", Active: true},
	}, list.StreamingLinks)

	byPlatform := normalizeRelease(decodeRaw(t, `{"id":2,"streaming_links":{"tidal":"https://t/2","apple_music":"https://a/2","spotify":""}}`), fixedNow)
	assert.Equal(t, []StreamingLink{
		{Platform: "apple_music", URL: "https://a/2", Active: true},
		{Platform: "tidal", URL: "https://t/2", Active: true},
	}, byPlatform.StreamingLinks)
}

func TestNormalizeRelease_ArtistStringWinsForDisplay(t *testing.T) {
	rel := normalizeRelease(decodeRaw(t, `{"id":3,"artist":"Jay Z","artists":[{"name":"Jay Z"},{"name":"Memphis Bleek","role":"featured"}]}`), fixedNow)
	assert.Equal(t, "Jay Z", rel.Artist)
	assert.Len(t, rel.Artists, 2)
	assert.Equal(t, "Jay Z", rel.PrimaryArtist())
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		year bool
	}{
		{"", "", false},
		{"0000-00-00", "", false},
		{"1996", "1996", true},
		{"1996-06-25", "1996-06-25", false},
		{"1996-06-25T00:00:00Z", "1996-06-25", false},
		{"1996-06-25 12:00:00", "1996-06-25", false},
		{"june", "", false},
	}
	for _, tt := range tests {
		got := parseReleaseDate(tt.in)
		assert.Equal(t, tt.want, got.String(), "parseReleaseDate(%q)", tt.in)
		assert.Equal(t, tt.year, got.YearOnly, "parseReleaseDate(%q).YearOnly", tt.in)
	}
}

func TestFlattenHTML(t *testing.T) {
	assert.Equal(t, "plain text", flattenHTML("  plain text "))
	assert.Equal(t, "Shot in Lagos.\nDirected by Ada & Bo", flattenHTML("<p>Shot in   <b>Lagos</b>.</p><p>Directed by Ada &amp; Bo</p>"))
	assert.Equal(t, "line one\nline two", flattenHTML("line one<br>line two"))
}

func TestNormalizeVideoAndUser(t *testing.T) {
	var rv rawVideo
	require.NoError(t, json.Unmarshal([]byte(`{"id":"5","title":"Live","artist_name":"Mara","url":"https://youtu.be/abc123","description":"<p>Encore</p>"}`), &rv))
	v := normalizeVideo(rv, fixedNow)
	assert.Equal(t, int64(5), v.ID)
	assert.Equal(t, "Mara", v.Artist)
	assert.Equal(t, "abc123", v.YouTubeID())
	assert.Equal(t, "Encore", v.Description)
	assert.Equal(t, fixedNow, v.CreatedAt)

	var ru rawUser
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"email":"admin@adedrecords.com","role":"admin"}`), &ru))
	u := normalizeUser(ru)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "admin@adedrecords.com", u.DisplayName())

	ru = rawUser{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"username":"ops","is_admin":"0","role":"admin"}`), &ru))
	assert.False(t, normalizeUser(ru).IsAdmin)
}

func TestHomepageVideosPadsAndTruncates(t *testing.T) {
	assert.Equal(t, [HomepageSlots]string{"a", "", "", ""}, HomepageVideos([]string{" a "}))
	assert.Equal(t, [HomepageSlots]string{"1", "2", "3", "4"}, HomepageVideos([]string{"1", "2", "3", "4", "5"}))
}

func TestYouTubeID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":   "dQw4w9WgXcQ",
		"https://youtube.com/shorts/abc":              "abc",
		"https://vimeo.com/123":                       "",
		"not a url":                                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Video{YouTubeURL: in}.YouTubeID(), in)
	}
}
