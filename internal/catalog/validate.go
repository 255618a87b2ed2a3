package catalog

import (
	"net/url"
	"sort"
	"strings"
)

// FieldErrors maps form field names to a human-readable problem. It is built
// client-side and never sent to the server.
type FieldErrors map[string]string

// Error renders the field errors in a stable order.
func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OK reports whether no field failed.
func (f FieldErrors) OK() bool {
	return len(f) == 0
}

// ValidateRelease applies the authoring form rules. A release without a
// cover image is rejected here; the data model itself allows it.
func ValidateRelease(in ReleaseInput) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	named := 0
	for _, a := range in.Artists {
		if strings.TrimSpace(a.Name) != "" {
			named++
		}
	}
	if named == 0 {
		errs["artists"] = "At least one artist is required"
	}
	if !in.Type.Valid() {
		errs["release_type"] = "Choose a release type"
	}
	if strings.TrimSpace(in.CoverImage) == "" {
		errs["cover_image"] = "Cover image is required"
	}
	if in.ReleaseDate != "" && parseReleaseDate(in.ReleaseDate).IsZero() {
		errs["release_date"] = "Use YYYY-MM-DD or YYYY"
	}
	for _, l := range in.StreamingLinks {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		if !absoluteHTTP(l.URL) {
			errs["streaming_links."+l.Platform] = "Must be a full http(s) URL"
		}
	}
	return errs
}

// ValidateVideo applies the video form rules.
func ValidateVideo(in VideoInput) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Artist) == "" {
		errs["artist"] = "Artist is required"
	}
	if (Video{YouTubeURL: in.YouTubeURL}).YouTubeID() == "" {
		errs["youtube_url"] = "Enter a YouTube link"
	}
	return errs
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
