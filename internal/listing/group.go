package listing

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/five82/labelctl/internal/catalog"
)

// OtherKey collects releases whose primary artist does not start with A-Z.
const OtherKey = "#"

// GroupKey returns the uppercase first letter of the primary artist when it
// is A-Z, otherwise OtherKey.
func GroupKey(r catalog.Release) string {
	name := r.PrimaryArtist()
	first, _ := utf8.DecodeRuneInString(name)
	if first >= 'a' && first <= 'z' {
		first -= 'a' - 'A'
	}
	if first >= 'A' && first <= 'Z' {
		return string(first)
	}
	return OtherKey
}

// Groups is a partition of releases by GroupKey.
type Groups struct {
	Buckets map[string][]catalog.Release
	// Available lists the letter keys present, ascending, without OtherKey.
	Available []string
}

// Group partitions releases by GroupKey. Each release lands in exactly one
// bucket and buckets keep the input order.
func Group(releases []catalog.Release) Groups {
	g := Groups{Buckets: make(map[string][]catalog.Release)}
	for _, r := range releases {
		key := GroupKey(r)
		if _, seen := g.Buckets[key]; !seen && key != OtherKey {
			g.Available = append(g.Available, key)
		}
		g.Buckets[key] = append(g.Buckets[key], r)
	}
	sort.Strings(g.Available)
	return g
}

// Keys returns Available followed by OtherKey when that bucket is non-empty.
func (g Groups) Keys() []string {
	keys := append([]string(nil), g.Available...)
	if len(g.Buckets[OtherKey]) > 0 {
		keys = append(keys, OtherKey)
	}
	return keys
}

// ToggleLetter returns the new active letter after letter is selected:
// selecting the active letter clears it.
func ToggleLetter(active, letter string) string {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == strings.ToUpper(strings.TrimSpace(active)) {
		return ""
	}
	return letter
}
