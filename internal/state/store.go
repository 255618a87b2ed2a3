package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

// Logical queries guarded by the sequencer.
const (
	QueryReleases = "releases"
	QueryVideos   = "videos"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Releases       []catalog.Release
	HasReleases    bool
	Videos         []catalog.Video
	HomepageVideos [catalog.HomepageSlots]string
	HasVideos      bool
	Health         catalog.Health
	HasHealth      bool
	// Optimistic holds ids whose local patch has not been confirmed by a
	// reload yet.
	Optimistic          map[int64]bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	seq      *listing.Sequencer
}

func (s *Store) sequencer() *listing.Sequencer {
	if s.seq == nil {
		s.seq = listing.NewSequencer()
	}
	return s.seq
}

// Begin issues a token for a new request for query. Only the most recent
// token's result will be applied.
func (s *Store) Begin(query string) listing.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequencer().Next(query)
}

// UpdateReleases records a release fetch. It returns false and changes
// nothing when tok has been superseded. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) UpdateReleases(tok listing.Token, releases []catalog.Release, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sequencer().IsLatest(tok) {
		return false
	}
	if err != nil {
		s.recordErrorLocked(err)
		return true
	}
	s.snapshot.Releases = cloneReleases(releases)
	s.snapshot.HasReleases = true
	s.snapshot.Optimistic = nil
	s.recordSuccessLocked()
	return true
}

// Reconcile is UpdateReleases for the reload that follows an optimistic
// edit: the server's records overwrite every local patch.
func (s *Store) Reconcile(tok listing.Token, releases []catalog.Release, err error) bool {
	return s.UpdateReleases(tok, releases, err)
}

// UpdateVideos records a video catalog fetch with the same rules as
// UpdateReleases.
func (s *Store) UpdateVideos(tok listing.Token, videos []catalog.Video, homepage [catalog.HomepageSlots]string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sequencer().IsLatest(tok) {
		return false
	}
	if err != nil {
		s.recordErrorLocked(err)
		return true
	}
	s.snapshot.Videos = cloneVideos(videos)
	s.snapshot.HomepageVideos = homepage
	s.snapshot.HasVideos = true
	s.recordSuccessLocked()
	return true
}

// UpdateHealth records a health check. Health failures do not count towards
// ConsecutiveFailures.
func (s *Store) UpdateHealth(h catalog.Health, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snapshot.HasHealth = false
		s.snapshot.LastError = err
		return
	}
	s.snapshot.Health = h
	s.snapshot.HasHealth = true
}

// ApplyOptimistic patches the local release list right after a successful
// write. Any release fetch already in flight is superseded because it
// predates the write.
func (s *Store) ApplyOptimistic(patch catalog.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequencer().Next(QueryReleases)

	replaced := false
	for i, existing := range s.snapshot.Releases {
		if existing.ID != patch.ID {
			continue
		}
		patch.Slug = existing.Slug
		patch.CreatedAt = existing.CreatedAt
		s.snapshot.Releases[i] = patch
		replaced = true
		break
	}
	if !replaced {
		s.snapshot.Releases = append(s.snapshot.Releases, patch)
	}
	s.markOptimisticLocked(patch.ID)
}

// RemoveOptimistic drops a release locally after a successful delete.
func (s *Store) RemoveOptimistic(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequencer().Next(QueryReleases)

	kept := s.snapshot.Releases[:0]
	for _, r := range s.snapshot.Releases {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.snapshot.Releases = kept
	s.markOptimisticLocked(id)
}

func (s *Store) markOptimisticLocked(id int64) {
	if s.snapshot.Optimistic == nil {
		s.snapshot.Optimistic = make(map[int64]bool)
	}
	s.snapshot.Optimistic[id] = true
}

func (s *Store) recordErrorLocked(err error) {
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

func (s *Store) recordSuccessLocked() {
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Releases = cloneReleases(s.snapshot.Releases)
	snap.Videos = cloneVideos(s.snapshot.Videos)
	if len(s.snapshot.Optimistic) > 0 {
		snap.Optimistic = make(map[int64]bool, len(s.snapshot.Optimistic))
		for id := range s.snapshot.Optimistic {
			snap.Optimistic[id] = true
		}
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneReleases(items []catalog.Release) []catalog.Release {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catalog.Release, len(items))
	copy(dup, items)
	return dup
}

func cloneVideos(items []catalog.Video) []catalog.Video {
	if len(items) == 0 {
		return nil
	}
	dup := make([]catalog.Video, len(items))
	copy(dup, items)
	return dup
}
