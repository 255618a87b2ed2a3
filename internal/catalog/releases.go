package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
)

// ReleaseQuery configures /get-releases.php. Zero values are omitted from the
// query string.
type ReleaseQuery struct {
	Limit       int
	Offset      int
	Featured    *bool
	ReleaseType ReleaseType
	Status      string
	ArtistID    int64
	LabelID     int64
	Search      string
	Sort        SortKey
	Order       SortOrder
	Admin       bool
}

// Values serializes the present keys only.
func (q ReleaseQuery) Values() url.Values {
	values := url.Values{}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Featured != nil {
		values.Set("featured", strconv.FormatBool(*q.Featured))
	}
	if t := strings.TrimSpace(string(q.ReleaseType)); t != "" {
		values.Set("release_type", t)
	}
	if s := strings.TrimSpace(q.Status); s != "" {
		values.Set("status", s)
	}
	if q.ArtistID > 0 {
		values.Set("artist_id", strconv.FormatInt(q.ArtistID, 10))
	}
	if q.LabelID > 0 {
		values.Set("label_id", strconv.FormatInt(q.LabelID, 10))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	if q.Sort != "" {
		values.Set("sort", string(q.Sort))
	}
	if q.Order != "" {
		values.Set("order", string(q.Order))
	}
	if q.Admin {
		values.Set("admin", "1")
	}
	return values
}

// CarouselOptions narrows the carousel feed.
type CarouselOptions struct {
	Tag   Tag
	Limit int
}

// ReleaseInput is the authoring form payload. ID zero creates a release.
type ReleaseInput struct {
	ID                int64           `json:"id,omitempty"`
	Title             string          `json:"title"`
	Artists           []ReleaseArtist `json:"artists"`
	Type              ReleaseType     `json:"release_type"`
	ReleaseDate       string          `json:"release_date,omitempty"`
	CoverImage        string          `json:"cover_image"`
	StreamingLinks    []StreamingLink `json:"streaming_links"`
	Tag               Tag             `json:"tag"`
	ShowInMain        bool            `json:"show_in_main"`
	ShowInDiscography bool            `json:"show_in_discography"`
	LabelID           int64           `json:"label_id,omitempty"`
	Status            string          `json:"status,omitempty"`
	TrackCount        int             `json:"track_count"`
	DisplayOrder      int             `json:"display_order"`
	Description       string          `json:"description,omitempty"`
}

// InputFromRelease seeds the edit form from an existing release.
func InputFromRelease(r Release) ReleaseInput {
	return ReleaseInput{
		ID:                r.ID,
		Title:             r.Title,
		Artists:           append([]ReleaseArtist(nil), r.Artists...),
		Type:              r.Type,
		ReleaseDate:       r.ReleaseDate.String(),
		CoverImage:        r.CoverImage,
		StreamingLinks:    append([]StreamingLink(nil), r.StreamingLinks...),
		Tag:               r.Tag,
		ShowInMain:        r.ShowInMain,
		ShowInDiscography: r.ShowInDiscography,
		LabelID:           r.LabelID,
		Status:            r.Status,
		TrackCount:        r.TrackCount,
		DisplayOrder:      r.DisplayOrder,
		Description:       r.Description,
	}
}

// ReleaseService exposes release reads and admin writes.
type ReleaseService struct {
	transport api.Transport
	tracker
}

// NewReleaseService builds a ReleaseService over transport.
func NewReleaseService(transport api.Transport, logger *zerolog.Logger) *ReleaseService {
	s := &ReleaseService{transport: transport}
	s.tracker.init(logger, "releases")
	return s
}

type releaseListResponse struct {
	envelope
	Releases []rawRelease `json:"releases"`
}

type releaseDetailResponse struct {
	envelope
	Release *rawRelease `json:"release"`
}

type writeResponse struct {
	envelope
	ID    flexInt `json:"id"`
	Title string  `json:"title"`
}

// GetReleases lists releases. Failures are logged, kept in LastError and
// degrade to an empty slice.
func (s *ReleaseService) GetReleases(ctx context.Context, query ReleaseQuery) []Release {
	var payload releaseListResponse
	if err := s.transport.Get(ctx, "/get-releases.php", query.Values(), &payload); err != nil {
		s.record("get releases", fmt.Errorf("get releases: %w", err))
		return []Release{}
	}
	if !payload.Success {
		s.record("get releases", fmt.Errorf("get releases: %s", firstNonEmpty(payload.Error, payload.Message, "request rejected")))
		return []Release{}
	}
	now := s.now()
	out := make([]Release, 0, len(payload.Releases))
	for _, raw := range payload.Releases {
		out = append(out, normalizeRelease(raw, now))
	}
	s.record("get releases", nil)
	return out
}

// GetReleaseByID returns the full release, or nil when it is missing, the
// body is malformed, or the request failed.
func (s *ReleaseService) GetReleaseByID(ctx context.Context, id int64) *Release {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))
	return s.getRelease(ctx, values)
}

// GetReleaseBySlug is GetReleaseByID keyed by slug.
func (s *ReleaseService) GetReleaseBySlug(ctx context.Context, slug string) *Release {
	values := url.Values{}
	values.Set("slug", strings.TrimSpace(slug))
	return s.getRelease(ctx, values)
}

func (s *ReleaseService) getRelease(ctx context.Context, values url.Values) *Release {
	var payload releaseDetailResponse
	if err := s.transport.Get(ctx, "/get-releases-by-id.php", values, &payload); err != nil {
		if api.StatusCode(err) == 404 {
			err = ErrNotFound
		}
		// Malformed bodies (api.ErrDecode) also land here.
		s.record("get release", fmt.Errorf("get release: %w", err))
		return nil
	}
	if !payload.Success || payload.Release == nil || payload.Release.ID == 0 {
		s.record("get release", fmt.Errorf("get release: %w", ErrNotFound))
		return nil
	}
	rel := normalizeRelease(*payload.Release, s.now())
	s.record("get release", nil)
	return &rel
}

// GetReleasesForCarousel fetches every release and keeps those whose tag
// matches opts.Tag (any tag when empty), up to opts.Limit. The backend cannot
// filter this endpoint by tag.
func (s *ReleaseService) GetReleasesForCarousel(ctx context.Context, opts CarouselOptions) []CarouselItem {
	releases := s.GetReleases(ctx, ReleaseQuery{})
	items := make([]CarouselItem, 0, len(releases))
	for _, r := range releases {
		if opts.Tag != "" && !strings.EqualFold(string(r.Tag), string(opts.Tag)) {
			continue
		}
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
		items = append(items, CarouselItem{
			ID:          r.ID,
			Slug:        r.Slug,
			Title:       r.Title,
			Artist:      r.PrimaryArtist(),
			CoverImage:  r.CoverImage,
			Tag:         r.Tag,
			ReleaseDate: r.ReleaseDate.String(),
		})
	}
	return items
}

// UpsertRelease validates in and creates or updates the release. Validation
// failures are returned without contacting the server.
func (s *ReleaseService) UpsertRelease(ctx context.Context, in ReleaseInput) WriteResult {
	if fields := ValidateRelease(in); !fields.OK() {
		return WriteResult{Success: false, Error: "Please fix the highlighted fields", Message: "Please fix the highlighted fields", Fields: fields}
	}
	var payload writeResponse
	if err := s.transport.Post(ctx, "/upsert-release.php", in, &payload); err != nil {
		s.logger.Warn().Err(err).Int64("id", in.ID).Msg("upsert release failed")
		return writeFailure(err)
	}
	if !payload.Success {
		return writeRejected(payload.envelope, "Failed to save release")
	}
	id := int64(payload.ID)
	if id == 0 {
		id = in.ID
	}
	return WriteResult{
		Success: true,
		Message: firstNonEmpty(payload.Message, "Release saved"),
		ID:      id,
		Title:   firstNonEmpty(payload.Title, in.Title),
	}
}

// DeleteRelease hard-deletes a release.
func (s *ReleaseService) DeleteRelease(ctx context.Context, id int64) WriteResult {
	var payload writeResponse
	if err := s.transport.Post(ctx, "/delete-release.php", map[string]any{"id": id}, &payload); err != nil {
		s.logger.Warn().Err(err).Int64("id", id).Msg("delete release failed")
		return writeFailure(err)
	}
	if !payload.Success {
		return writeRejected(payload.envelope, "Failed to delete release")
	}
	return WriteResult{
		Success: true,
		Message: firstNonEmpty(payload.Message, "Release deleted"),
		ID:      id,
		Title:   payload.Title,
	}
}

// Release builds the client-side view of in after a successful save, used as
// the optimistic patch until the server's canonical record arrives.
func (in ReleaseInput) Release(id int64, now time.Time) Release {
	rel := Release{
		ID:                id,
		Slug:              fmt.Sprintf("release-%d", id),
		Title:             strings.TrimSpace(in.Title),
		Artists:           append([]ReleaseArtist(nil), in.Artists...),
		Type:              in.Type,
		ReleaseDate:       parseReleaseDate(in.ReleaseDate),
		CoverImage:        strings.TrimSpace(in.CoverImage),
		StreamingLinks:    append([]StreamingLink(nil), in.StreamingLinks...),
		Tag:               in.Tag,
		ShowInMain:        in.ShowInMain,
		ShowInDiscography: in.ShowInDiscography,
		LabelID:           in.LabelID,
		Status:            in.Status,
		TrackCount:        max(in.TrackCount, 1),
		DisplayOrder:      in.DisplayOrder,
		Description:       in.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if rel.Tag == "" {
		rel.Tag = TagNone
	}
	names := make([]string, 0, len(rel.Artists))
	for _, a := range rel.Artists {
		if a.Role == RolePrimary || a.Role == "" {
			names = append(names, a.Name)
		}
	}
	rel.Artist = strings.Join(names, ", ")
	return rel
}
