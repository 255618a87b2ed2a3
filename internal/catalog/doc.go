// Package catalog provides typed services over the label backend API.
//
// # Overview
//
// Each service wraps an api.Transport and turns backend endpoints into
// domain operations on normalized types:
//
//   - ReleaseService: list, search, detail, carousel feed, upsert, delete
//   - VideoService: video catalog, detail with related videos, homepage slots
//   - AuthService: login, logout, session probe
//   - SiteService: health check, image uploads
//
// The transport is passed explicitly; one transport is shared by all
// services of an app instance.
//
// # Normalization
//
// The PHP backend is loose about field names and types. normalize.go is the
// only place that knows about it:
//
//   - artists / artist / artist_name coalesce into Release.Artists and
//     Release.Artist
//   - cover_image / cover_image_url / cover_url coalesce into CoverImage
//   - release_type / type coalesce into Type
//   - streaming_links may be a list, a platform map, or flat
//     "<platform>_url" columns
//   - numbers and flags may arrive as strings
//
// Missing fields receive explicit defaults: TrackCount 1, DisplayOrder 0,
// Slug "release-{id}", visibility flags true, timestamps set to the fetch
// time. HTML in descriptions is flattened to plain text with goquery.
//
// # Error Handling
//
// Reads never fail loudly. List calls return an empty slice and detail calls
// return nil; the cause is logged and kept in LastError so a page can show a
// retry banner. Writes return a WriteResult:
//
//   - client-side validation failures carry Fields and never reach the server
//   - server rejections carry the backend's error message
//   - anything else becomes "Network error. Please try again."
//
// Login follows the same rule through LoginResult. GetHomepageVideos is the
// one silent read: failures produce four blank slots and no LastError.
//
// # Thread Safety
//
// Services are safe for concurrent use. LastError reflects whichever read
// finished last.
package catalog
