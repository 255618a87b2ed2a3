package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
)

// VideoInput is the video form payload. ID zero creates a video.
type VideoInput struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	YouTubeURL  string `json:"youtube_url"`
	Description string `json:"description,omitempty"`
}

// VideoService exposes the video catalog and the homepage video slots.
type VideoService struct {
	transport api.Transport
	tracker
}

// NewVideoService builds a VideoService over transport.
func NewVideoService(transport api.Transport, logger *zerolog.Logger) *VideoService {
	s := &VideoService{transport: transport}
	s.tracker.init(logger, "videos")
	return s
}

type videoListResponse struct {
	envelope
	Videos []rawVideo `json:"videos"`
}

type videoDetailResponse struct {
	envelope
	Video   *rawVideo  `json:"video"`
	Related []rawVideo `json:"relatedVideos"`
}

type homepageVideosResponse struct {
	envelope
	Videos []string `json:"videos"`
}

// GetVideos returns the full catalog, or an empty slice on failure.
func (s *VideoService) GetVideos(ctx context.Context) []Video {
	var payload videoListResponse
	if err := s.transport.Get(ctx, "/get-videos.php", nil, &payload); err != nil {
		s.record("get videos", fmt.Errorf("get videos: %w", err))
		return []Video{}
	}
	if !payload.Success {
		s.record("get videos", fmt.Errorf("get videos: %s", firstNonEmpty(payload.Error, payload.Message, "request rejected")))
		return []Video{}
	}
	s.record("get videos", nil)
	return s.normalizeVideos(payload.Videos)
}

// GetVideoByID returns the video and the server's related-by-artist list. A
// missing video yields nil.
func (s *VideoService) GetVideoByID(ctx context.Context, id int64) (*Video, []Video) {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))
	var payload videoDetailResponse
	if err := s.transport.Get(ctx, "/get-video-by-id.php", values, &payload); err != nil {
		if api.StatusCode(err) == 404 {
			err = ErrNotFound
		}
		s.record("get video", fmt.Errorf("get video: %w", err))
		return nil, nil
	}
	if !payload.Success || payload.Video == nil || payload.Video.ID == 0 {
		s.record("get video", fmt.Errorf("get video: %w", ErrNotFound))
		return nil, nil
	}
	s.record("get video", nil)
	video := normalizeVideo(*payload.Video, s.now())
	return &video, s.normalizeVideos(payload.Related)
}

func (s *VideoService) normalizeVideos(raws []rawVideo) []Video {
	now := s.now()
	out := make([]Video, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalizeVideo(raw, now))
	}
	return out
}

// UpsertVideo creates or updates a video. The server enforces the admin
// session; no client-side check is made beyond form validation.
func (s *VideoService) UpsertVideo(ctx context.Context, in VideoInput) WriteResult {
	if fields := ValidateVideo(in); !fields.OK() {
		return WriteResult{Success: false, Error: "Please fix the highlighted fields", Message: "Please fix the highlighted fields", Fields: fields}
	}
	var payload writeResponse
	if err := s.transport.Post(ctx, "/upsert-video.php", in, &payload); err != nil {
		s.logger.Warn().Err(err).Int64("id", in.ID).Msg("upsert video failed")
		return writeFailure(err)
	}
	if !payload.Success {
		return writeRejected(payload.envelope, "Failed to save video")
	}
	id := int64(payload.ID)
	if id == 0 {
		id = in.ID
	}
	return WriteResult{Success: true, Message: firstNonEmpty(payload.Message, "Video saved"), ID: id, Title: firstNonEmpty(payload.Title, in.Title)}
}

// DeleteVideo removes a video.
func (s *VideoService) DeleteVideo(ctx context.Context, id int64) WriteResult {
	var payload writeResponse
	if err := s.transport.Post(ctx, "/delete-video.php", map[string]any{"id": id}, &payload); err != nil {
		s.logger.Warn().Err(err).Int64("id", id).Msg("delete video failed")
		return writeFailure(err)
	}
	if !payload.Success {
		return writeRejected(payload.envelope, "Failed to delete video")
	}
	return WriteResult{Success: true, Message: firstNonEmpty(payload.Message, "Video deleted"), ID: id, Title: payload.Title}
}

// GetHomepageVideos returns the four homepage slots. Failures are silent:
// the homepage shows an empty grid rather than an error banner.
func (s *VideoService) GetHomepageVideos(ctx context.Context) [HomepageSlots]string {
	var payload homepageVideosResponse
	if err := s.transport.Get(ctx, "/get-homepage-videos.php", nil, &payload); err != nil {
		s.logger.Debug().Err(err).Msg("homepage videos unavailable")
		return [HomepageSlots]string{}
	}
	if !payload.Success {
		return [HomepageSlots]string{}
	}
	return HomepageVideos(payload.Videos)
}

// UpdateHomepageVideos replaces the four homepage slots.
func (s *VideoService) UpdateHomepageVideos(ctx context.Context, urls [HomepageSlots]string) WriteResult {
	for i, u := range urls {
		if u != "" && (Video{YouTubeURL: u}).YouTubeID() == "" {
			fields := FieldErrors{fmt.Sprintf("videos.%d", i): "Enter a YouTube link"}
			return WriteResult{Success: false, Error: "Please fix the highlighted fields", Message: "Please fix the highlighted fields", Fields: fields}
		}
	}
	body := map[string]any{"videos": urls[:]}
	var payload writeResponse
	if err := s.transport.Post(ctx, "/update-homepage-videos.php", body, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("update homepage videos failed")
		return writeFailure(err)
	}
	if !payload.Success {
		return writeRejected(payload.envelope, "Failed to update homepage videos")
	}
	return WriteResult{Success: true, Message: firstNonEmpty(payload.Message, "Homepage videos updated")}
}
