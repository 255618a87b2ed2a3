package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/config"
	"github.com/five82/labelctl/internal/session"
	"github.com/five82/labelctl/internal/state"
)

// Services is the per-process object graph: one transport, one session, one
// store, and the domain services over them.
type Services struct {
	Config   config.Config
	Logger   zerolog.Logger
	Client   *api.Client
	Releases *catalog.ReleaseService
	Videos   *catalog.VideoService
	Site     *catalog.SiteService
	Session  *session.Session
	Store    *state.Store

	// Read services report failures through LastError, so refreshes run one
	// at a time to keep each error with the read that caused it.
	refreshMu sync.Mutex
	now       func() time.Time
}

// NewServices wires the transport and services for cfg.
func NewServices(cfg config.Config, logger zerolog.Logger) (*Services, error) {
	client, err := api.NewClient(api.Config{
		BaseURL:       cfg.BaseURL,
		Timeout:       cfg.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		Headers:       cfg.Headers,
		TokenField:    cfg.TokenField,
		Origin:        cfg.Origin,
		Logger:        &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return &Services{
		Config:   cfg,
		Logger:   logger.With().Str("component", "app").Logger(),
		Client:   client,
		Releases: catalog.NewReleaseService(client, &logger),
		Videos:   catalog.NewVideoService(client, &logger),
		Site:     catalog.NewSiteService(client),
		Session:  session.New(catalog.NewAuthService(client, &logger), client, &logger),
		Store:    &state.Store{},
		now:      time.Now,
	}, nil
}

// Snapshot returns the current catalog snapshot.
func (s *Services) Snapshot() state.Snapshot {
	return s.Store.Snapshot()
}

// SessionState returns the current authentication state.
func (s *Services) SessionState() session.Snapshot {
	return s.Session.Snapshot()
}

// releaseQuery asks for drafts too when an admin is signed in.
func (s *Services) releaseQuery() catalog.ReleaseQuery {
	snap := s.Session.Snapshot()
	return catalog.ReleaseQuery{Admin: snap.Authenticated() && snap.User != nil && snap.User.IsAdmin}
}

// RefreshReleases reloads the release list into the store.
func (s *Services) RefreshReleases(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.reloadReleasesLocked(ctx, false)
}

func (s *Services) reloadReleasesLocked(ctx context.Context, reconcile bool) error {
	tok := s.Store.Begin(state.QueryReleases)
	releases := s.Releases.GetReleases(ctx, s.releaseQuery())
	err := s.Releases.LastError()
	var applied bool
	if reconcile {
		applied = s.Store.Reconcile(tok, releases, err)
	} else {
		applied = s.Store.UpdateReleases(tok, releases, err)
	}
	if !applied {
		s.Logger.Debug().Msg("stale release response discarded")
	}
	return err
}

// RefreshVideos reloads the video catalog and homepage slots.
func (s *Services) RefreshVideos(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	tok := s.Store.Begin(state.QueryVideos)
	videos := s.Videos.GetVideos(ctx)
	err := s.Videos.LastError()
	homepage := s.Videos.GetHomepageVideos(ctx)
	if !s.Store.UpdateVideos(tok, videos, homepage, err) {
		s.Logger.Debug().Msg("stale video response discarded")
	}
	return err
}

// RefreshHealth records the backend health check.
func (s *Services) RefreshHealth(ctx context.Context) error {
	h, err := s.Site.Health(ctx)
	s.Store.UpdateHealth(h, err)
	return err
}

// Refresh reloads everything. Only release and video failures are
// returned; health failures are recorded in the store.
func (s *Services) Refresh(ctx context.Context) error {
	if err := s.RefreshHealth(ctx); err != nil {
		s.Logger.Debug().Err(err).Msg("health check failed")
	}
	return errors.Join(s.RefreshReleases(ctx), s.RefreshVideos(ctx))
}

// ReleaseDetail fetches the full record, including credits and links the
// list rows leave out.
func (s *Services) ReleaseDetail(ctx context.Context, id int64) (*catalog.Release, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	rel := s.Releases.GetReleaseByID(ctx, id)
	if rel == nil {
		err := s.Releases.LastError()
		if err == nil {
			err = catalog.ErrNotFound
		}
		return nil, fmt.Errorf("release %d: %w", id, err)
	}
	return rel, nil
}

// Login authenticates and reloads the releases so admin-only records show.
func (s *Services) Login(ctx context.Context, identifier, password string) catalog.LoginResult {
	res := s.Session.Login(ctx, identifier, password)
	if res.Success {
		if err := s.RefreshReleases(ctx); err != nil {
			s.Logger.Warn().Err(err).Msg("reload after login failed")
		}
	}
	return res
}

// Logout ends the session and reloads the public listing.
func (s *Services) Logout(ctx context.Context) session.Snapshot {
	snap := s.Session.Logout(ctx)
	if err := s.RefreshReleases(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("reload after logout failed")
	}
	return snap
}

// SaveRelease writes in, patches the store immediately, and then reconciles
// with the server's canonical list.
func (s *Services) SaveRelease(ctx context.Context, in catalog.ReleaseInput) catalog.WriteResult {
	res := s.Releases.UpsertRelease(ctx, in)
	if !res.Success {
		return res
	}
	s.Store.ApplyOptimistic(in.Release(res.ID, s.now()))
	s.Logger.Info().Int64("id", res.ID).Str("title", res.Title).Msg("release saved")
	s.reconcile(ctx)
	return res
}

// DeleteRelease removes the release locally and on the server.
func (s *Services) DeleteRelease(ctx context.Context, id int64) catalog.WriteResult {
	res := s.Releases.DeleteRelease(ctx, id)
	if !res.Success {
		return res
	}
	s.Store.RemoveOptimistic(id)
	s.Logger.Info().Int64("id", id).Str("title", res.Title).Msg("release deleted")
	s.reconcile(ctx)
	return res
}

func (s *Services) reconcile(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if err := s.reloadReleasesLocked(ctx, true); err != nil {
		s.Logger.Warn().Err(err).Msg("reconcile after write failed")
	}
}

// SaveHomepageVideos replaces the homepage slots and reloads the videos.
func (s *Services) SaveHomepageVideos(ctx context.Context, urls [catalog.HomepageSlots]string) catalog.WriteResult {
	res := s.Videos.UpdateHomepageVideos(ctx, urls)
	if !res.Success {
		return res
	}
	if err := s.RefreshVideos(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("reload after homepage update failed")
	}
	return res
}

// Carousel returns up to limit releases carrying tag, in the shape the
// homepage rotation renders.
func (s *Services) Carousel(ctx context.Context, tag catalog.Tag, limit int) ([]catalog.CarouselItem, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	items := s.Releases.GetReleasesForCarousel(ctx, catalog.CarouselOptions{Tag: tag, Limit: limit})
	return items, s.Releases.LastError()
}

// VideoDetail fetches one video and the videos related to it by artist.
func (s *Services) VideoDetail(ctx context.Context, id int64) (*catalog.Video, []catalog.Video, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	video, related := s.Videos.GetVideoByID(ctx, id)
	if video == nil {
		err := s.Videos.LastError()
		if err == nil {
			err = catalog.ErrNotFound
		}
		return nil, nil, fmt.Errorf("video %d: %w", id, err)
	}
	return video, related, nil
}

// SaveVideo creates or updates a video and reloads the video list.
func (s *Services) SaveVideo(ctx context.Context, in catalog.VideoInput) catalog.WriteResult {
	res := s.Videos.UpsertVideo(ctx, in)
	if !res.Success {
		return res
	}
	s.Logger.Info().Int64("id", res.ID).Str("title", res.Title).Msg("video saved")
	if err := s.RefreshVideos(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("reload after video save failed")
	}
	return res
}

// DeleteVideo removes a video and reloads the video list.
func (s *Services) DeleteVideo(ctx context.Context, id int64) catalog.WriteResult {
	res := s.Videos.DeleteVideo(ctx, id)
	if !res.Success {
		return res
	}
	s.Logger.Info().Int64("id", id).Msg("video deleted")
	if err := s.RefreshVideos(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("reload after video delete failed")
	}
	return res
}

// UploadCover uploads a local image file as a cover and returns its hosted
// URL.
func (s *Services) UploadCover(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open cover: %w", err)
	}
	defer func() { _ = f.Close() }()

	url, err := s.Site.UploadImage(ctx, catalog.ImageCover, path, f)
	if err != nil {
		return "", err
	}
	s.Logger.Info().Str("file", path).Str("url", url).Msg("cover uploaded")
	return url, nil
}
