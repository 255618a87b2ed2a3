// Package listing derives what the release views render from a raw release
// list and a FilterState.
//
// Everything here is synchronous and free of I/O except Debouncer, which
// owns a timer. Apply, Group and the Carousel helpers never modify their
// input.
//
// # Search
//
// Matches is a case-insensitive substring test against the title and the
// artists-with-roles string ("Mara, Kofi (featured)"). The empty search
// matches every release.
//
// # Discography Grouping
//
// GroupKey is the uppercase first letter of the primary artist, or "#" when
// that is not A-Z. Group is a total partition; Available lists the letter
// keys for the navigation bar. ToggleLetter implements the select/deselect
// behaviour of that bar.
//
// # Stale Responses
//
// Sequencer issues a token per request for a logical query ("releases",
// "videos", ...). A response is applied only if its token is still the
// latest, so a slow earlier search cannot overwrite a newer one.
package listing
