package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

type detailKind int

const (
	detailRelease detailKind = iota
	detailVideo
)

func (k detailKind) query() string {
	if k == detailVideo {
		return "video-detail"
	}
	return "release-detail"
}

// detailRequest asks for the full record behind the list selection.
type detailRequest struct {
	kind detailKind
	id   int64
}

type releaseDetailMsg struct {
	tok     listing.Token
	id      int64
	release *catalog.Release
	err     error
}

type videoDetailMsg struct {
	tok     listing.Token
	id      int64
	video   *catalog.Video
	related []catalog.Video
	err     error
}

// fetchDetail issues the request under a fresh token; only the response to
// the latest token per kind is applied.
func (m *Model) fetchDetail(req detailRequest) tea.Cmd {
	if m.backend == nil || req.id == 0 {
		return nil
	}
	tok := m.detailSeq.Next(req.kind.query())
	ctx, b := m.ctx, m.backend

	switch req.kind {
	case detailVideo:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
			defer cancel()
			video, related, err := b.VideoDetail(ctx, req.id)
			return videoDetailMsg{tok: tok, id: req.id, video: video, related: related, err: err}
		}
	default:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
			defer cancel()
			rel, err := b.ReleaseDetail(ctx, req.id)
			return releaseDetailMsg{tok: tok, id: req.id, release: rel, err: err}
		}
	}
}

func (m *Model) handleReleaseDetail(msg releaseDetailMsg) {
	if !m.detailSeq.IsLatest(msg.tok) || msg.id != m.releases.detailID {
		m.logger.Debug().Int64("id", msg.id).Msg("stale release detail discarded")
		return
	}
	m.releases.loading = false
	m.releases.detail = msg.release
	m.releases.detailErr = msg.err
}

func (m *Model) handleVideoDetail(msg videoDetailMsg) {
	if !m.detailSeq.IsLatest(msg.tok) || msg.id != m.videos.detailID {
		m.logger.Debug().Int64("id", msg.id).Msg("stale video detail discarded")
		return
	}
	m.videos.loading = false
	m.videos.detail = msg.video
	m.videos.related = msg.related
	m.videos.detailErr = msg.err
}
