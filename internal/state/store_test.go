package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/labelctl/internal/catalog"
)

func releases(ids ...int64) []catalog.Release {
	out := make([]catalog.Release, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Release{ID: id, Title: "r", Slug: "slug"})
	}
	return out
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	tok := s.Begin(QueryReleases)
	if !s.UpdateReleases(tok, releases(1, 2), nil) {
		t.Fatal("UpdateReleases with latest token = false, want true")
	}

	snap := s.Snapshot()
	if !snap.HasReleases || len(snap.Releases) != 2 || snap.Releases[0].ID != 1 {
		t.Fatalf("snapshot releases = %#v, want 2 items", snap.Releases)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Releases[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Releases[0].ID != 1 {
		t.Fatalf("Snapshot should clone releases; got id %d want 1", snap2.Releases[0].ID)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.UpdateReleases(s.Begin(QueryReleases), releases(1), nil)
	before := time.Now()
	origErr := errors.New("boom")
	s.UpdateReleases(s.Begin(QueryReleases), nil, origErr)

	snap := s.Snapshot()
	if len(snap.Releases) != 1 || snap.Releases[0].ID != 1 {
		t.Fatalf("releases changed on error: got %#v", snap.Releases)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_StaleResponseIsDiscarded(t *testing.T) {
	var s Store

	slow := s.Begin(QueryReleases)
	fast := s.Begin(QueryReleases)

	if !s.UpdateReleases(fast, releases(2), nil) {
		t.Fatal("newest response rejected")
	}
	if s.UpdateReleases(slow, releases(1), nil) {
		t.Fatal("stale response applied")
	}
	if s.UpdateReleases(slow, nil, errors.New("late failure")) {
		t.Fatal("stale error applied")
	}

	snap := s.Snapshot()
	if len(snap.Releases) != 1 || snap.Releases[0].ID != 2 {
		t.Fatalf("releases = %#v, want the newest response", snap.Releases)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Queries are sequenced independently.
	videos := s.Begin(QueryVideos)
	s.Begin(QueryReleases)
	if !s.UpdateVideos(videos, []catalog.Video{{ID: 1}}, [catalog.HomepageSlots]string{"u"}, nil) {
		t.Fatal("video update rejected by unrelated release request")
	}
	if got := s.Snapshot().HomepageVideos[0]; got != "u" {
		t.Fatalf("HomepageVideos[0] = %q, want u", got)
	}
}

func TestStore_OptimisticThenReconcile(t *testing.T) {
	var s Store
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := releases(1, 2)
	seed[0].CreatedAt = created
	s.UpdateReleases(s.Begin(QueryReleases), seed, nil)

	inFlight := s.Begin(QueryReleases)
	s.ApplyOptimistic(catalog.Release{ID: 1, Title: "edited", Slug: "release-1"})
	s.ApplyOptimistic(catalog.Release{ID: 3, Title: "new"})

	snap := s.Snapshot()
	if len(snap.Releases) != 3 {
		t.Fatalf("releases = %d, want 3 after optimistic insert", len(snap.Releases))
	}
	if snap.Releases[0].Title != "edited" || snap.Releases[0].Slug != "slug" || !snap.Releases[0].CreatedAt.Equal(created) {
		t.Fatalf("patched release = %#v, want edited title with original slug and created time", snap.Releases[0])
	}
	if !snap.Optimistic[1] || !snap.Optimistic[3] {
		t.Fatalf("Optimistic = %v, want ids 1 and 3", snap.Optimistic)
	}

	// A fetch issued before the write must not undo it.
	if s.UpdateReleases(inFlight, releases(1, 2), nil) {
		t.Fatal("pre-write fetch applied over optimistic patch")
	}

	reload := s.Begin(QueryReleases)
	canonical := releases(1, 2, 3)
	canonical[0].Title = "edited (server)"
	if !s.Reconcile(reload, canonical, nil) {
		t.Fatal("Reconcile rejected latest reload")
	}
	snap = s.Snapshot()
	if snap.Releases[0].Title != "edited (server)" || len(snap.Releases) != 3 {
		t.Fatalf("reconciled releases = %#v", snap.Releases)
	}
	if len(snap.Optimistic) != 0 {
		t.Fatalf("Optimistic = %v, want cleared after reconcile", snap.Optimistic)
	}
}

func TestStore_RemoveOptimistic(t *testing.T) {
	var s Store
	s.UpdateReleases(s.Begin(QueryReleases), releases(1, 2, 3), nil)
	s.RemoveOptimistic(2)

	snap := s.Snapshot()
	if len(snap.Releases) != 2 || snap.Releases[0].ID != 1 || snap.Releases[1].ID != 3 {
		t.Fatalf("releases = %#v, want 1 and 3", snap.Releases)
	}
	if !snap.Optimistic[2] {
		t.Fatal("deleted id not marked optimistic")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	// Initially zero failures
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.UpdateReleases(s.Begin(QueryReleases), nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.UpdateVideos(s.Begin(QueryVideos), nil, [catalog.HomepageSlots]string{}, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Health failures are reported but do not count.
	s.UpdateHealth(catalog.Health{}, errors.New("health down"))
	if got := s.Snapshot().ConsecutiveFailures; got != 2 {
		t.Fatalf("ConsecutiveFailures = %d after health failure, want 2", got)
	}

	// Success resets counter
	s.UpdateReleases(s.Begin(QueryReleases), releases(1), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_UpdateHealth(t *testing.T) {
	var s Store
	s.UpdateHealth(catalog.Health{Status: "healthy", Version: "1.2.0"}, nil)
	snap := s.Snapshot()
	if !snap.HasHealth || !snap.Health.Healthy() || snap.Health.Version != "1.2.0" {
		t.Fatalf("health = %#v HasHealth=%v", snap.Health, snap.HasHealth)
	}
}
