package catalog

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ReleaseType enumerates catalog entry formats.
type ReleaseType string

const (
	TypeSingle      ReleaseType = "single"
	TypeEP          ReleaseType = "ep"
	TypeAlbum       ReleaseType = "album"
	TypeCompilation ReleaseType = "compilation"
	TypeMixtape     ReleaseType = "mixtape"
	TypeRemix       ReleaseType = "remix"
)

// ReleaseTypes lists the known types in display order.
var ReleaseTypes = []ReleaseType{TypeSingle, TypeEP, TypeAlbum, TypeCompilation, TypeMixtape, TypeRemix}

// Valid reports whether t is one of the known release types.
func (t ReleaseType) Valid() bool {
	for _, known := range ReleaseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the display name ("EP", "Album", ...).
func (t ReleaseType) Label() string {
	switch t {
	case TypeEP:
		return "EP"
	case "":
		return ""
	default:
		s := string(t)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// ArtistRole describes how an artist takes part in a release.
type ArtistRole string

const (
	RolePrimary      ArtistRole = "primary"
	RoleFeatured     ArtistRole = "featured"
	RoleRemixer      ArtistRole = "remixer"
	RoleProducer     ArtistRole = "producer"
	RoleCollaborator ArtistRole = "collaborator"
)

// Tag is the curation label that drives homepage sections.
type Tag string

const (
	TagNone     Tag = "None"
	TagFeatured Tag = "Featured"
	TagNew      Tag = "New"
	TagRecent   Tag = "Recent"
	TagRemoved  Tag = "Removed"
)

// Tags lists the curation tags in display order.
var Tags = []Tag{TagNone, TagFeatured, TagNew, TagRecent, TagRemoved}

// SortKey selects the field releases are ordered by.
type SortKey string

const (
	SortReleaseDate SortKey = "release_date"
	SortTitle       SortKey = "title"
	SortCreatedAt   SortKey = "created_at"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	return k == SortReleaseDate || k == SortTitle || k == SortCreatedAt
}

// SortOrder is asc or desc.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc.
func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// Known streaming platforms. Other platform names are accepted as-is.
const (
	PlatformSpotify      = "spotify"
	PlatformAppleMusic   = "apple_music"
	PlatformAmazonMusic  = "amazon_music"
	PlatformYouTubeMusic = "youtube_music"
	PlatformYouTube      = "youtube"
	PlatformSoundCloud   = "soundcloud"
	PlatformBandcamp     = "bandcamp"
)

// Platforms lists the known streaming platforms in display order.
var Platforms = []string{
	PlatformSpotify,
	PlatformAppleMusic,
	PlatformAmazonMusic,
	PlatformYouTubeMusic,
	PlatformYouTube,
	PlatformSoundCloud,
	PlatformBandcamp,
}

// ReleaseArtist is one credited artist on a release.
type ReleaseArtist struct {
	ID   int64      `json:"id,omitempty"`
	Name string     `json:"name"`
	Role ArtistRole `json:"role"`
}

// StreamingLink is a platform URL owned by a release.
type StreamingLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Active   bool   `json:"is_active"`
}

// ReleaseDate is an optional date that may only carry a year.
type ReleaseDate struct {
	Time     time.Time
	YearOnly bool
}

// IsZero reports whether no date is known.
func (d ReleaseDate) IsZero() bool {
	return d.Time.IsZero()
}

// String renders the date the way the backend stores it.
func (d ReleaseDate) String() string {
	switch {
	case d.IsZero():
		return ""
	case d.YearOnly:
		return d.Time.Format("2006")
	default:
		return d.Time.Format("2006-01-02")
	}
}

// Release is a normalized catalog entry.
type Release struct {
	ID                int64
	Slug              string
	Title             string
	Artists           []ReleaseArtist
	Artist            string // display string as supplied by the backend
	Type              ReleaseType
	ReleaseDate       ReleaseDate
	CoverImage        string
	StreamingLinks    []StreamingLink
	Tag               Tag
	ShowInMain        bool
	ShowInDiscography bool
	LabelID           int64
	LabelName         string
	Status            string
	TrackCount        int
	DisplayOrder      int
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PrimaryArtist returns the first primary artist name, falling back to the
// first credited artist and then the display string.
func (r Release) PrimaryArtist() string {
	for _, a := range r.Artists {
		if a.Role == RolePrimary && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	for _, a := range r.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			return name
		}
	}
	return strings.TrimSpace(r.Artist)
}

// ArtistsWithRoles renders "Name (role), Name (role)"; primary credits carry
// no suffix.
func (r Release) ArtistsWithRoles() string {
	if len(r.Artists) == 0 {
		return strings.TrimSpace(r.Artist)
	}
	parts := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		if a.Role == "" || a.Role == RolePrimary {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, a.Role))
	}
	return strings.Join(parts, ", ")
}

// Link returns the active link for platform.
func (r Release) Link(platform string) (StreamingLink, bool) {
	for _, l := range r.StreamingLinks {
		if l.Platform == platform && l.Active && l.URL != "" {
			return l, true
		}
	}
	return StreamingLink{}, false
}

// Publishable reports whether the release can be shown publicly. A release
// without a cover image is not publishable.
func (r Release) Publishable() bool {
	return strings.TrimSpace(r.CoverImage) != ""
}

// Hidden reports whether curation has soft-removed the release.
func (r Release) Hidden() bool {
	return r.Tag == TagRemoved
}

// CarouselItem is the narrow shape rendered by the homepage carousel.
type CarouselItem struct {
	ID          int64
	Slug        string
	Title       string
	Artist      string
	CoverImage  string
	Tag         Tag
	ReleaseDate string
}

// Video is an artist video from the catalog.
type Video struct {
	ID          int64
	Title       string
	Artist      string
	YouTubeURL  string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// YouTubeID extracts the video id from watch, short, or embed URLs.
func (v Video) YouTubeID() string {
	u, err := url.Parse(strings.TrimSpace(v.YouTubeURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
			}
		}
	}
	return ""
}

// HomepageSlots is the fixed number of homepage video positions.
const HomepageSlots = 4

// User is an authenticated identity.
type User struct {
	ID        int64
	Username  string
	Email     string
	IsAdmin   bool
	LoginTime time.Time
}

// DisplayName prefers the username.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Health is the backend status reported by /health.php.
type Health struct {
	Status      string
	Connected   bool
	ResponseMS  float64
	Version     string
	Environment string
}

// Healthy reports whether the backend said so.
func (h Health) Healthy() bool {
	return strings.EqualFold(h.Status, "healthy")
}

// WriteResult is the uniform outcome of a mutating call. Server rejections
// and network failures are reported here rather than as Go errors.
type WriteResult struct {
	Success bool
	Message string
	Error   string
	ID      int64
	Title   string
	Fields  FieldErrors
}
