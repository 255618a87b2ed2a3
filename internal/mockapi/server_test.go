package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/labelctl/internal/api"
	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/session"
)

const adminPassword = "s3cret-pass"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server   *Server
	client   *api.Client
	releases *catalog.ReleaseService
	videos   *catalog.VideoService
	site     *catalog.SiteService
	session  *session.Session
}

func newFixture(t *testing.T, serverField, clientField string) fixture {
	t.Helper()
	srv, err := New(Config{AdminPassword: adminPassword, TokenField: serverField, Seed: true})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Config{
		BaseURL:       ts.URL,
		RetryAttempts: 1,
		RetryDelay:    -1,
		TokenField:    clientField,
	})
	require.NoError(t, err)

	return fixture{
		server:   srv,
		client:   client,
		releases: catalog.NewReleaseService(client, nil),
		videos:   catalog.NewVideoService(client, nil),
		site:     catalog.NewSiteService(client),
		session:  session.New(catalog.NewAuthService(client, nil), client, nil),
	}
}

func TestNew_RequiresPassword(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	h, err := f.site.Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.True(t, h.Connected)
	assert.Equal(t, apiVersion, h.Version)

	f.server.SetHealthy(false)
	h, err = f.site.Health(ctx)
	require.NoError(t, err, "503 body is still a health answer")
	assert.False(t, h.Healthy())
	assert.False(t, h.Connected)
}

func TestGetReleases_PublicListing(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	public := f.releases.GetReleases(ctx, catalog.ReleaseQuery{})
	require.NoError(t, f.releases.LastError())
	assert.Len(t, public, 3, "drafts are hidden from public listings")

	admin := f.releases.GetReleases(ctx, catalog.ReleaseQuery{Admin: true})
	assert.Len(t, admin, 4)

	jay := f.releases.GetReleases(ctx, catalog.ReleaseQuery{Status: "published", Search: "Jay"})
	require.Len(t, jay, 1)
	assert.Equal(t, "Reasonable Doubt", jay[0].Title)
	assert.Equal(t, "Jay Z", jay[0].PrimaryArtist())
	assert.Equal(t, "jay-z-reasonable-doubt", jay[0].Slug)
	assert.True(t, jay[0].ShowInMain)

	singles := f.releases.GetReleases(ctx, catalog.ReleaseQuery{ReleaseType: catalog.TypeSingle})
	require.Len(t, singles, 1)
	assert.True(t, singles[0].ReleaseDate.YearOnly)

	sorted := f.releases.GetReleases(ctx, catalog.ReleaseQuery{Sort: catalog.SortTitle, Order: catalog.OrderAsc, Limit: 2})
	require.Len(t, sorted, 2)
	assert.Equal(t, "After Hours", sorted[0].Title)
	assert.Equal(t, "Reasonable Doubt", sorted[1].Title)
}

func TestGetRelease_DetailAndNotFound(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	rel := f.releases.GetReleaseByID(ctx, 1)
	require.NotNil(t, rel)
	assert.Equal(t, "Jay Z, Mary J. Blige (featured)", rel.ArtistsWithRoles())
	link, found := rel.Link(catalog.PlatformSpotify)
	require.True(t, found)
	assert.Equal(t, "https://open.spotify.com/album/3", link.URL)
	_, found = rel.Link(catalog.PlatformBandcamp)
	assert.False(t, found, "inactive links are not offered")

	bySlug := f.releases.GetReleaseBySlug(ctx, "dj-jazzy-summertime")
	require.NotNil(t, bySlug)
	assert.Equal(t, int64(2), bySlug.ID)

	assert.Nil(t, f.releases.GetReleaseByID(ctx, 9999))
}

func TestWrites_RequireSession(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	res := f.releases.DeleteRelease(ctx, 1)
	assert.False(t, res.Success)
	assert.Equal(t, "Authentication required", res.Error)
	assert.NotNil(t, f.releases.GetReleaseByID(ctx, 1))
}

func TestLoginAndWrite_WithCSRFToken(t *testing.T) {
	f := newFixture(t, "dev_token", "dev_token")
	ctx := context.Background()

	assert.Equal(t, session.StatusAnonymous, f.session.Probe(ctx).Status)

	bad := f.session.Login(ctx, "admin@example.com", "wrong")
	assert.False(t, bad.Success)
	assert.Equal(t, "Invalid credentials", bad.Message)
	assert.Equal(t, session.StatusAnonymous, f.session.Snapshot().Status)

	good := f.session.Login(ctx, "admin", adminPassword)
	require.True(t, good.Success, good.Message)
	assert.NotEmpty(t, good.Token)
	snap := f.session.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.True(t, snap.HasToken)
	require.NotNil(t, snap.User)
	assert.True(t, snap.User.IsAdmin)

	probed := f.session.Probe(ctx)
	assert.True(t, probed.Authenticated(), "cookie session survives a probe")

	res := f.releases.UpsertRelease(ctx, catalog.ReleaseInput{
		Title:       "Night Drive",
		Artists:     []catalog.ReleaseArtist{{Name: "Ada Obi", Role: catalog.RolePrimary}},
		Type:        catalog.TypeSingle,
		ReleaseDate: "2025-01-10",
		CoverImage:  "https://cdn.example/covers/night-drive.jpg",
		Tag:         catalog.TagNew,
		ShowInMain:  true,
	})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, int64(5), res.ID)

	created := f.releases.GetReleaseBySlug(ctx, "ada-obi-night-drive")
	require.NotNil(t, created)
	assert.Equal(t, "Night Drive", created.Title)
	assert.False(t, created.ShowInDiscography)

	del := f.releases.DeleteRelease(ctx, res.ID)
	require.True(t, del.Success, del.Error)
	assert.Equal(t, "Night Drive", del.Title)

	f.session.Logout(ctx)
	assert.Equal(t, session.StatusAnonymous, f.session.Probe(ctx).Status)
}

func TestWrite_MissingTokenRejected(t *testing.T) {
	// Server expects dev_token; the client never sends it.
	f := newFixture(t, "dev_token", "")
	ctx := context.Background()

	require.True(t, f.session.Login(ctx, "admin@example.com", adminPassword).Success)
	res := f.releases.DeleteRelease(ctx, 1)
	assert.False(t, res.Success)
	assert.Equal(t, "Missing security token", res.Error)
}

func TestVerifyToken_Expired(t *testing.T) {
	srv, err := New(Config{AdminPassword: adminPassword})
	require.NoError(t, err)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return issued }
	token, err := srv.issueToken(1)
	require.NoError(t, err)
	require.NoError(t, srv.verifyToken(token, 1))
	assert.Error(t, srv.verifyToken(token, 2), "token is bound to its user")

	srv.now = func() time.Time { return issued.Add(tokenTTL + time.Minute) }
	assert.Error(t, srv.verifyToken(token, 1))
}

func TestVideos(t *testing.T) {
	f := newFixture(t, "", "")
	ctx := context.Background()

	all := f.videos.GetVideos(ctx)
	require.Len(t, all, 3)

	v, related := f.videos.GetVideoByID(ctx, 1)
	require.NotNil(t, v)
	assert.Equal(t, "rd-live", v.YouTubeID())
	assert.Equal(t, "Shot in Brooklyn.\nDirected by Ada & Bo", v.Description)
	require.Len(t, related, 1)
	assert.Equal(t, "hustle", related[0].YouTubeID())

	slots := f.videos.GetHomepageVideos(ctx)
	assert.Equal(t, "https://www.youtube.com/watch?v=rd-live", slots[0])
	assert.Empty(t, slots[3])

	require.True(t, f.session.Login(ctx, "admin", adminPassword).Success)
	next := [catalog.HomepageSlots]string{"https://youtu.be/a", "", "https://youtu.be/c"}
	require.True(t, f.videos.UpdateHomepageVideos(ctx, next).Success)
	assert.Equal(t, next, f.videos.GetHomepageVideos(ctx))

	saved := f.videos.UpsertVideo(ctx, catalog.VideoInput{Title: "New Cut", Artist: "DJ Jazzy", YouTubeURL: "https://youtu.be/new"})
	require.True(t, saved.Success, saved.Error)
	_, related = f.videos.GetVideoByID(ctx, saved.ID)
	require.Len(t, related, 1)
	assert.Equal(t, "Summertime", related[0].Title)

	assert.True(t, f.videos.DeleteVideo(ctx, saved.ID).Success)
	v, _ = f.videos.GetVideoByID(ctx, saved.ID)
	assert.Nil(t, v)
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t, "dev_token", "dev_token")
	ctx := context.Background()

	_, err := f.site.UploadImage(ctx, catalog.ImageCover, "cover.JPG", strings.NewReader("jpeg"))
	require.Error(t, err, "upload needs a session")

	require.True(t, f.session.Login(ctx, "admin", adminPassword).Success)
	url, err := f.site.UploadImage(ctx, catalog.ImageCover, "/tmp/cover.JPG", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/covers/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	url, err = f.site.UploadImage(ctx, catalog.ImageGeneric, "banner.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/images/"), url)
}

func TestCORS(t *testing.T) {
	srv, err := New(Config{AdminPassword: adminPassword, Seed: true, AllowOrigins: []string{"https://adedrecords.com"}})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	newReleases := func(origin string) *catalog.ReleaseService {
		client, err := api.NewClient(api.Config{BaseURL: ts.URL, RetryAttempts: 1, RetryDelay: -1, Origin: origin})
		require.NoError(t, err)
		return catalog.NewReleaseService(client, nil)
	}

	allowed := newReleases("https://adedrecords.com")
	assert.NotEmpty(t, allowed.GetReleases(context.Background(), catalog.ReleaseQuery{}))

	blocked := newReleases("https://evil.example")
	assert.Empty(t, blocked.GetReleases(context.Background(), catalog.ReleaseQuery{}))
	assert.True(t, api.IsKind(blocked.LastError(), api.KindCors))
}

func TestHandler_RawContract(t *testing.T) {
	srv, err := New(Config{AdminPassword: adminPassword, Seed: true})
	require.NoError(t, err)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get-releases.php?search=jay&status=published", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		Success  bool             `json:"success"`
		Releases []map[string]any `json:"releases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Releases, 1)
	assert.Equal(t, "Jay Z", body.Releases[0]["artist"])
	_, hasLinks := body.Releases[0]["streaming_links"]
	assert.False(t, hasLinks, "list rows carry no nested links")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.php", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Endpoint not found"}`, rec.Body.String())
}
