package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/five82/labelctl/internal/catalog"
)

// View selects which visibility flag a listing honours.
type View int

const (
	// ViewAll shows every release, including removed ones. Admin lists use it.
	ViewAll View = iota
	// ViewMain shows releases flagged for the main list that are not removed.
	ViewMain
	// ViewDiscography shows releases flagged for the discography.
	ViewDiscography
)

// FilterState is the UI-local search, filter and sort selection.
type FilterState struct {
	Search  string
	Type    catalog.ReleaseType
	LabelID int64
	Sort    catalog.SortKey
	Order   catalog.SortOrder
	// Letter narrows the discography view to one group key.
	Letter string
	View   View
}

// DefaultFilter is newest first over everything.
func DefaultFilter() FilterState {
	return FilterState{Sort: catalog.SortReleaseDate, Order: catalog.OrderDesc}
}

// Matches reports whether search is a case-insensitive substring of the
// release title or its artists-with-roles string. An empty search matches.
func Matches(r catalog.Release, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(r.ArtistsWithRoles()), needle)
}

func visible(r catalog.Release, view View) bool {
	switch view {
	case ViewMain:
		return r.ShowInMain && !r.Hidden()
	case ViewDiscography:
		return r.ShowInDiscography && !r.Hidden()
	default:
		return true
	}
}

// Apply filters releases by f and sorts the result. The input slice is not
// modified.
func Apply(releases []catalog.Release, f FilterState) []catalog.Release {
	letter := strings.ToUpper(strings.TrimSpace(f.Letter))
	out := make([]catalog.Release, 0, len(releases))
	for _, r := range releases {
		if !visible(r, f.View) {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.LabelID != 0 && r.LabelID != f.LabelID {
			continue
		}
		if letter != "" && GroupKey(r) != letter {
			continue
		}
		if !Matches(r, f.Search) {
			continue
		}
		out = append(out, r)
	}
	Sort(out, f.Sort, f.Order)
	return out
}

// Sort orders releases in place by key. The sort is stable and ties keep
// their input order. An empty key leaves the order untouched.
func Sort(releases []catalog.Release, key catalog.SortKey, order catalog.SortOrder) {
	compare := comparator(key)
	if compare == nil {
		return
	}
	if order == catalog.OrderDesc {
		slices.SortStableFunc(releases, func(a, b catalog.Release) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(releases, compare)
}

func comparator(key catalog.SortKey) func(a, b catalog.Release) int {
	switch key {
	case catalog.SortReleaseDate:
		return func(a, b catalog.Release) int {
			return a.ReleaseDate.Time.Compare(b.ReleaseDate.Time)
		}
	case catalog.SortTitle:
		return func(a, b catalog.Release) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case catalog.SortCreatedAt:
		return func(a, b catalog.Release) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		return nil
	}
}
