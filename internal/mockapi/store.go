package mockapi

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Records are kept in the backend's own wire shape: snake_case columns,
// 0/1 flags and a flattened "artist" display string next to the credits.

type artistCredit struct {
	ArtistID int64  `json:"artist_id,omitempty"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type streamingLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	IsActive int    `json:"is_active"`
}

type release struct {
	ID                int64           `json:"id"`
	Slug              string          `json:"slug"`
	Title             string          `json:"title"`
	Artist            string          `json:"artist"`
	Artists           []artistCredit  `json:"artists,omitempty"`
	ReleaseType       string          `json:"release_type"`
	ReleaseDate       string          `json:"release_date,omitempty"`
	CoverImage        string          `json:"cover_image"`
	StreamingLinks    []streamingLink `json:"streaming_links,omitempty"`
	Tag               string          `json:"tag"`
	ShowInMain        int             `json:"show_in_main"`
	ShowInDiscography int             `json:"show_in_discography"`
	LabelID           int64           `json:"label_id,omitempty"`
	Status            string          `json:"status"`
	TrackCount        int             `json:"track_count"`
	DisplayOrder      int             `json:"display_order"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

// overview drops the nested detail the list endpoint does not return.
func (r release) overview() release {
	r.Artists = nil
	r.StreamingLinks = nil
	r.Description = ""
	return r
}

type video struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	YouTubeURL  string `json:"youtube_url"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type account struct {
	ID       int64
	Username string
	Email    string
	Hash     []byte
	IsAdmin  bool
}

type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   int    `json:"is_admin"`
	LoginTime string `json:"login_time,omitempty"`
}

func (a account) payload(loginTime time.Time) userPayload {
	p := userPayload{ID: a.ID, Username: a.Username, Email: a.Email}
	if a.IsAdmin {
		p.IsAdmin = 1
	}
	if !loginTime.IsZero() {
		p.LoginTime = loginTime.UTC().Format(timestampLayout)
	}
	return p
}

const timestampLayout = "2006-01-02 15:04:05"

var (
	slugNonAlnum  = regexp.MustCompile(`[^a-z0-9-]+`)
	slugMultiDash = regexp.MustCompile(`-{2,}`)
)

func generateSlug(artist, title string) string {
	s := strings.ToLower(artist + "-" + title)
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = slugMultiDash.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "untitled"
	}
	return s
}

// uniqueSlugLocked appends -2, -3, ... until no other release owns the slug.
func (s *Server) uniqueSlugLocked(artist, title string, excludeID int64) string {
	base := generateSlug(artist, title)
	slug := base
	for i := 2; ; i++ {
		taken := false
		for id, r := range s.releases {
			if id != excludeID && r.Slug == slug {
				taken = true
				break
			}
		}
		if !taken {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Server) sortedReleasesLocked() []release {
	out := make([]release, 0, len(s.releases))
	for _, r := range s.releases {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b release) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}
		return int(a.ID - b.ID)
	})
	return out
}

func (s *Server) sortedVideosLocked() []video {
	out := make([]video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b video) int { return int(b.ID - a.ID) })
	return out
}

// seed loads a small demo catalog.
func (s *Server) seed() {
	stamp := s.now().UTC().Format(timestampLayout)
	releases := []release{
		{
			Title: "Reasonable Doubt", Artist: "Jay Z",
			Artists:     []artistCredit{{ArtistID: 1, Name: "Jay Z", Role: "primary"}, {ArtistID: 2, Name: "Mary J. Blige", Role: "featured"}},
			ReleaseType: "album", ReleaseDate: "1996-06-25", CoverImage: "https://cdn.example/covers/reasonable-doubt.jpg",
			StreamingLinks: []streamingLink{
				{Platform: "spotify", URL: "https://open.spotify.com/album/3", IsActive: 1},
				{Platform: "bandcamp", URL: "https://label.bandcamp.com/album/rd", IsActive: 0},
			},
			Tag: "Featured", Status: "published", TrackCount: 14,
		},
		{
			Title: "Summertime", Artist: "DJ Jazzy",
			Artists:     []artistCredit{{ArtistID: 3, Name: "DJ Jazzy", Role: "primary"}},
			ReleaseType: "single", ReleaseDate: "1991", CoverImage: "https://cdn.example/covers/summertime.jpg",
			Tag: "New", Status: "published", TrackCount: 1,
		},
		{
			Title: "After Hours", Artist: "Ada Obi",
			Artists:     []artistCredit{{ArtistID: 4, Name: "Ada Obi", Role: "primary"}, {ArtistID: 5, Name: "Bo Kay", Role: "remixer"}},
			ReleaseType: "ep", ReleaseDate: "2024-03-01", CoverImage: "https://cdn.example/covers/after-hours.jpg",
			Tag: "Recent", Status: "published", TrackCount: 5,
		},
		{
			Title: "Untitled Draft", Artist: "2Fast",
			Artists:     []artistCredit{{ArtistID: 6, Name: "2Fast", Role: "primary"}},
			ReleaseType: "mixtape", Tag: "None", Status: "draft", TrackCount: 12,
		},
	}
	for i := range releases {
		r := releases[i]
		s.nextReleaseID++
		r.ID = s.nextReleaseID
		r.Slug = s.uniqueSlugLocked(r.Artist, r.Title, r.ID)
		r.ShowInMain, r.ShowInDiscography = 1, 1
		r.DisplayOrder = i
		r.CreatedAt, r.UpdatedAt = stamp, stamp
		s.releases[r.ID] = &r
	}

	videos := []video{
		{Title: "Reasonable Doubt (Live)", Artist: "Jay Z", YouTubeURL: "https://www.youtube.com/watch?v=rd-live",
			Description: "<p>Shot in <b>Brooklyn</b>.</p><p>Directed by Ada &amp; Bo</p>"},
		{Title: "Can't Knock the Hustle", Artist: "Jay Z", YouTubeURL: "https://youtu.be/hustle"},
		{Title: "Summertime", Artist: "DJ Jazzy", YouTubeURL: "https://www.youtube.com/embed/summer"},
	}
	for i := range videos {
		v := videos[i]
		s.nextVideoID++
		v.ID = s.nextVideoID
		v.CreatedAt, v.UpdatedAt = stamp, stamp
		s.videos[v.ID] = &v
	}
	s.homepage = [homepageSlots]string{videos[0].YouTubeURL, videos[2].YouTubeURL}
}
