package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// The backend's PHP encoder is loose about types: ids arrive as numbers or
// strings, flags as bools, 0/1 or "1". These helpers absorb that.

type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "1", "yes", "on":
		*f = true
	case "false", "0", "no", "off", "", "null":
		*f = false
	default:
		return fmt.Errorf("parse bool %s", data)
	}
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = flexFloat(n)
	return nil
}

type rawArtist struct {
	ID         flexInt `json:"id"`
	ArtistID   flexInt `json:"artist_id"`
	Name       string  `json:"name"`
	ArtistName string  `json:"artist_name"`
	Role       string  `json:"role"`
}

type rawLink struct {
	Platform string    `json:"platform"`
	URL      string    `json:"url"`
	Active   *flexBool `json:"is_active"`
}

type rawRelease struct {
	ID                flexInt         `json:"id"`
	Title             string          `json:"title"`
	Slug              string          `json:"slug"`
	Artist            json.RawMessage `json:"artist"`
	Artists           json.RawMessage `json:"artists"`
	ArtistName        string          `json:"artist_name"`
	ReleaseType       string          `json:"release_type"`
	Type              string          `json:"type"`
	ReleaseDate       string          `json:"release_date"`
	CoverImage        string          `json:"cover_image"`
	CoverImageURL     string          `json:"cover_image_url"`
	CoverURL          string          `json:"cover_url"`
	Tag               string          `json:"tag"`
	ShowInMain        *flexBool       `json:"show_in_main"`
	ShowInDiscography *flexBool       `json:"show_in_discography"`
	LabelID           flexInt         `json:"label_id"`
	LabelName         string          `json:"label_name"`
	Status            string          `json:"status"`
	TrackCount        *flexInt        `json:"track_count"`
	DisplayOrder      *flexInt        `json:"display_order"`
	Description       string          `json:"description"`
	StreamingLinks    json.RawMessage `json:"streaming_links"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`

	// Flat "<platform>_url" columns used by older endpoints.
	platformURLs map[string]string
}

func (r *rawRelease) UnmarshalJSON(data []byte) error {
	type alias rawRelease
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = rawRelease(a)
	for _, platform := range Platforms {
		raw, ok := fields[platform+"_url"]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			if r.platformURLs == nil {
				r.platformURLs = map[string]string{}
			}
			r.platformURLs[platform] = strings.TrimSpace(s)
		}
	}
	return nil
}

type rawVideo struct {
	ID          flexInt `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ArtistName  string  `json:"artist_name"`
	YouTubeURL  string  `json:"youtube_url"`
	URL         string  `json:"url"`
	VideoURL    string  `json:"video_url"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type rawUser struct {
	ID        flexInt   `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   *flexBool `json:"is_admin"`
	IsAdminJS *flexBool `json:"isAdmin"`
	Role      string    `json:"role"`
	LoginTime string    `json:"login_time"`
}

func normalizeRelease(raw rawRelease, now time.Time) Release {
	rel := Release{
		ID:          int64(raw.ID),
		Title:       strings.TrimSpace(raw.Title),
		Slug:        strings.TrimSpace(raw.Slug),
		Type:        ReleaseType(strings.ToLower(strings.TrimSpace(firstNonEmpty(raw.ReleaseType, raw.Type)))),
		ReleaseDate: parseReleaseDate(raw.ReleaseDate),
		CoverImage:  firstNonEmpty(raw.CoverImage, raw.CoverImageURL, raw.CoverURL),
		Tag:         normalizeTag(raw.Tag),
		LabelID:     int64(raw.LabelID),
		LabelName:   strings.TrimSpace(raw.LabelName),
		Status:      strings.TrimSpace(raw.Status),
		TrackCount:  1,
		Description: flattenHTML(raw.Description),
		CreatedAt:   parseTimestamp(raw.CreatedAt),
		UpdatedAt:   parseTimestamp(raw.UpdatedAt),
	}
	if rel.Slug == "" {
		rel.Slug = fmt.Sprintf("release-%d", rel.ID)
	}
	if raw.TrackCount != nil && *raw.TrackCount > 0 {
		rel.TrackCount = int(*raw.TrackCount)
	}
	if raw.DisplayOrder != nil {
		rel.DisplayOrder = int(*raw.DisplayOrder)
	}
	rel.ShowInMain = raw.ShowInMain == nil || bool(*raw.ShowInMain)
	rel.ShowInDiscography = raw.ShowInDiscography == nil || bool(*raw.ShowInDiscography)
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	if rel.UpdatedAt.IsZero() {
		rel.UpdatedAt = rel.CreatedAt
	}

	rel.Artists, rel.Artist = coalesceArtists(raw)
	rel.StreamingLinks = coalesceLinks(raw)
	return rel
}

// coalesceArtists merges the artists / artist / artist_name variants into a
// credit list and a display string.
func coalesceArtists(raw rawRelease) ([]ReleaseArtist, string) {
	var credits []ReleaseArtist
	var display string

	if list := decodeArtistList(raw.Artists); len(list) > 0 {
		credits = list
	} else if s, ok := decodeString(raw.Artists); ok {
		display = s
	}
	if single, ok := decodeString(raw.Artist); ok {
		display = firstNonEmpty(display, single)
	} else if list := decodeArtistList(raw.Artist); len(list) > 0 && len(credits) == 0 {
		credits = list
	}
	display = firstNonEmpty(display, raw.ArtistName)

	if len(credits) == 0 && display != "" {
		credits = []ReleaseArtist{{Name: display, Role: RolePrimary}}
	}
	if display == "" {
		names := make([]string, 0, len(credits))
		for _, c := range credits {
			if c.Role == RolePrimary {
				names = append(names, c.Name)
			}
		}
		display = strings.Join(names, ", ")
	}
	return credits, display
}

func decodeArtistList(data json.RawMessage) []ReleaseArtist {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' && data[0] != '{' {
		return nil
	}
	if data[0] == '{' {
		data = append(append([]byte{'['}, data...), ']')
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	out := make([]ReleaseArtist, 0, len(elems))
	for _, elem := range elems {
		if name, ok := decodeString(elem); ok {
			out = append(out, ReleaseArtist{Name: name, Role: RolePrimary})
			continue
		}
		var ra rawArtist
		if err := json.Unmarshal(elem, &ra); err != nil {
			continue
		}
		name := firstNonEmpty(ra.Name, ra.ArtistName)
		if name == "" {
			continue
		}
		role := ArtistRole(strings.ToLower(strings.TrimSpace(ra.Role)))
		if role == "" {
			role = RolePrimary
		}
		id := int64(ra.ID)
		if ra.ArtistID != 0 {
			id = int64(ra.ArtistID)
		}
		out = append(out, ReleaseArtist{ID: id, Name: name, Role: role})
	}
	return out
}

func coalesceLinks(raw rawRelease) []StreamingLink {
	var links []StreamingLink
	seen := map[string]bool{}

	data := bytes.TrimSpace(raw.StreamingLinks)
	if len(data) > 0 && data[0] == '[' {
		var list []rawLink
		if json.Unmarshal(data, &list) == nil {
			for _, l := range list {
				platform := strings.ToLower(strings.TrimSpace(l.Platform))
				if platform == "" || strings.TrimSpace(l.URL) == "" || seen[platform] {
					continue
				}
				seen[platform] = true
				links = append(links, StreamingLink{
					Platform: platform,
					URL:      strings.TrimSpace(l.URL),
					Active:   l.Active == nil || bool(*l.Active),
				})
			}
		}
	} else if len(data) > 0 && data[0] == '{' {
		var byPlatform map[string]string
		if json.Unmarshal(data, &byPlatform) == nil {
			for _, platform := range sortedPlatforms(byPlatform) {
				links = append(links, StreamingLink{Platform: platform, URL: byPlatform[platform], Active: true})
				seen[platform] = true
			}
		}
	}
	for _, platform := range Platforms {
		if u, ok := raw.platformURLs[platform]; ok && !seen[platform] {
			links = append(links, StreamingLink{Platform: platform, URL: u, Active: true})
		}
	}
	return links
}

// sortedPlatforms orders known platforms first, then unknown ones by name.
func sortedPlatforms(m map[string]string) []string {
	var out []string
	for _, p := range Platforms {
		if strings.TrimSpace(m[p]) != "" {
			out = append(out, p)
		}
	}
	var extra []string
	for p, u := range m {
		if strings.TrimSpace(u) == "" || isKnownPlatform(p) {
			continue
		}
		extra = append(extra, p)
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func isKnownPlatform(p string) bool {
	return slices.Contains(Platforms, p)
}

func normalizeVideo(raw rawVideo, now time.Time) Video {
	v := Video{
		ID:          int64(raw.ID),
		Title:       strings.TrimSpace(raw.Title),
		Artist:      firstNonEmpty(raw.Artist, raw.ArtistName),
		YouTubeURL:  firstNonEmpty(raw.YouTubeURL, raw.URL, raw.VideoURL),
		Description: flattenHTML(raw.Description),
		CreatedAt:   parseTimestamp(raw.CreatedAt),
		UpdatedAt:   parseTimestamp(raw.UpdatedAt),
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	return v
}

func normalizeUser(raw rawUser) User {
	u := User{
		ID:        int64(raw.ID),
		Username:  strings.TrimSpace(raw.Username),
		Email:     strings.TrimSpace(raw.Email),
		LoginTime: parseTimestamp(raw.LoginTime),
	}
	switch {
	case raw.IsAdmin != nil:
		u.IsAdmin = bool(*raw.IsAdmin)
	case raw.IsAdminJS != nil:
		u.IsAdmin = bool(*raw.IsAdminJS)
	default:
		u.IsAdmin = strings.EqualFold(raw.Role, "admin")
	}
	return u
}

func normalizeTag(s string) Tag {
	s = strings.TrimSpace(s)
	for _, t := range Tags {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return TagNone
}

// HomepageVideos pads or truncates urls to exactly HomepageSlots entries.
func HomepageVideos(urls []string) [HomepageSlots]string {
	var out [HomepageSlots]string
	for i := 0; i < HomepageSlots && i < len(urls); i++ {
		out[i] = strings.TrimSpace(urls[i])
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "0000-00-00") {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

var yearOnly = regexp.MustCompile(`^\d{4}$`)

func parseReleaseDate(value string) ReleaseDate {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "0000") {
		return ReleaseDate{}
	}
	if yearOnly.MatchString(value) {
		t, err := time.Parse("2006", value)
		if err != nil {
			return ReleaseDate{}
		}
		return ReleaseDate{Time: t, YearOnly: true}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return ReleaseDate{Time: t}
	}
	if t := parseTimestamp(value); !t.IsZero() {
		return ReleaseDate{Time: t}
	}
	return ReleaseDate{}
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// flattenHTML turns rich-text descriptions from the admin editor into plain
// text. Plain strings pass through trimmed.
func flattenHTML(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func decodeString(data json.RawMessage) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
