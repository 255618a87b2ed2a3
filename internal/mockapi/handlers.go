package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var releaseTypes = []string{"single", "ep", "album", "compilation", "mixtape", "remix"}

func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	unhealthy := s.unhealthy
	s.mu.RUnlock()

	status, code := "healthy", http.StatusOK
	if unhealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"database": gin.H{"connected": !unhealthy, "responseTime": 1.5},
		"api":      gin.H{"version": apiVersion, "environment": "mock"},
	})
}

func (s *Server) getReleases(c *gin.Context) {
	admin := c.Query("admin") == "1"
	status := strings.TrimSpace(c.Query("status"))
	releaseType := strings.ToLower(strings.TrimSpace(c.Query("release_type")))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	featured := c.Query("featured") == "true" || c.Query("featured") == "1"
	labelID, _ := strconv.ParseInt(c.Query("label_id"), 10, 64)
	artistID, _ := strconv.ParseInt(c.Query("artist_id"), 10, 64)

	s.mu.RLock()
	all := s.sortedReleasesLocked()
	s.mu.RUnlock()

	out := make([]release, 0, len(all))
	for _, r := range all {
		switch {
		case status != "" && !strings.EqualFold(r.Status, status):
			continue
		case status == "" && !admin && r.Status != "published":
			continue
		case releaseType != "" && r.ReleaseType != releaseType:
			continue
		case featured && r.Tag != "Featured":
			continue
		case labelID > 0 && r.LabelID != labelID:
			continue
		case artistID > 0 && !slices.ContainsFunc(r.Artists, func(a artistCredit) bool { return a.ArtistID == artistID }):
			continue
		case search != "" && !strings.Contains(strings.ToLower(r.Title), search) && !strings.Contains(strings.ToLower(r.Artist), search):
			continue
		}
		out = append(out, r.overview())
	}

	sortReleases(out, c.Query("sort"), c.Query("order"))

	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		out = out[min(offset, len(out)):]
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	ok(c, gin.H{"releases": out})
}

func sortReleases(items []release, key, order string) {
	var cmp func(a, b release) int
	switch key {
	case "title":
		cmp = func(a, b release) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	case "release_date":
		cmp = func(a, b release) int { return strings.Compare(a.ReleaseDate, b.ReleaseDate) }
	case "created_at":
		cmp = func(a, b release) int { return strings.Compare(a.CreatedAt, b.CreatedAt) }
	default:
		return
	}
	if strings.EqualFold(order, "desc") {
		asc := cmp
		cmp = func(a, b release) int { return asc(b, a) }
	}
	slices.SortStableFunc(items, cmp)
}

func (s *Server) getRelease(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Query("id"), 10, 64)
	slug := strings.TrimSpace(c.Query("slug"))

	s.mu.RLock()
	var found *release
	if id > 0 {
		found = s.releases[id]
	} else if slug != "" {
		for _, r := range s.releases {
			if r.Slug == slug {
				found = r
				break
			}
		}
	}
	var out release
	if found != nil {
		out = *found
	}
	s.mu.RUnlock()

	if found == nil {
		fail(c, http.StatusNotFound, "Release not found")
		return
	}
	ok(c, gin.H{"release": out})
}

type inputArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type inputLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Active   bool   `json:"is_active"`
}

type releaseInput struct {
	ID                int64         `json:"id"`
	Title             string        `json:"title"`
	Artists           []inputArtist `json:"artists"`
	ReleaseType       string        `json:"release_type"`
	ReleaseDate       string        `json:"release_date"`
	CoverImage        string        `json:"cover_image"`
	StreamingLinks    []inputLink   `json:"streaming_links"`
	Tag               string        `json:"tag"`
	ShowInMain        bool          `json:"show_in_main"`
	ShowInDiscography bool          `json:"show_in_discography"`
	LabelID           int64         `json:"label_id"`
	Status            string        `json:"status"`
	TrackCount        int           `json:"track_count"`
	DisplayOrder      int           `json:"display_order"`
	Description       string        `json:"description"`
}

// readJSON decodes the body into dest and returns the loose field map used
// for the csrf check.
func readJSON(c *gin.Context, dest any) (map[string]any, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "Unable to read request")
		return nil, false
	}
	fields := map[string]any{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		fail(c, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			fail(c, http.StatusBadRequest, "Invalid JSON body")
			return nil, false
		}
	}
	return fields, true
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Server) upsertRelease(c *gin.Context) {
	var in releaseInput
	fields, good := readJSON(c, &in)
	if !good || !s.authorize(c, fields) {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		fail(c, http.StatusBadRequest, "Title is required")
		return
	}
	if !slices.Contains(releaseTypes, in.ReleaseType) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid release type %q", in.ReleaseType))
		return
	}

	credits := make([]artistCredit, 0, len(in.Artists))
	var primary []string
	for _, a := range in.Artists {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		role := firstNonEmpty(a.Role, "primary")
		credits = append(credits, artistCredit{ArtistID: a.ID, Name: name, Role: role})
		if role == "primary" {
			primary = append(primary, name)
		}
	}
	if len(credits) == 0 {
		fail(c, http.StatusBadRequest, "At least one artist is required")
		return
	}
	if len(primary) == 0 {
		primary = []string{credits[0].Name}
	}
	links := make([]streamingLink, 0, len(in.StreamingLinks))
	for _, l := range in.StreamingLinks {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		links = append(links, streamingLink{Platform: l.Platform, URL: strings.TrimSpace(l.URL), IsActive: flag(l.Active)})
	}

	stamp := s.now().UTC().Format(timestampLayout)
	s.mu.Lock()
	rec := &release{CreatedAt: stamp}
	if in.ID > 0 {
		existing, found := s.releases[in.ID]
		if !found {
			s.mu.Unlock()
			fail(c, http.StatusNotFound, "Release not found")
			return
		}
		rec = existing
	} else {
		s.nextReleaseID++
		rec.ID = s.nextReleaseID
	}
	artist := strings.Join(primary, " & ")
	if rec.Slug == "" || rec.Title != in.Title || rec.Artist != artist {
		rec.Slug = s.uniqueSlugLocked(artist, in.Title, rec.ID)
	}
	rec.Title = in.Title
	rec.Artist = artist
	rec.Artists = credits
	rec.ReleaseType = in.ReleaseType
	rec.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	rec.CoverImage = strings.TrimSpace(in.CoverImage)
	rec.StreamingLinks = links
	rec.Tag = firstNonEmpty(in.Tag, "None")
	rec.ShowInMain = flag(in.ShowInMain)
	rec.ShowInDiscography = flag(in.ShowInDiscography)
	rec.LabelID = in.LabelID
	rec.Status = firstNonEmpty(in.Status, "published")
	rec.TrackCount = max(in.TrackCount, 1)
	rec.DisplayOrder = in.DisplayOrder
	rec.Description = in.Description
	rec.UpdatedAt = stamp
	s.releases[rec.ID] = rec
	id, title := rec.ID, rec.Title
	s.mu.Unlock()

	msg := "Release created"
	if in.ID > 0 {
		msg = "Release updated"
	}
	ok(c, gin.H{"id": id, "title": title, "message": msg})
}

type idInput struct {
	ID int64 `json:"id"`
}

func (s *Server) deleteRelease(c *gin.Context) {
	var in idInput
	fields, good := readJSON(c, &in)
	if !good || !s.authorize(c, fields) {
		return
	}
	s.mu.Lock()
	rec, found := s.releases[in.ID]
	if found {
		delete(s.releases, in.ID)
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Release not found")
		return
	}
	ok(c, gin.H{"title": rec.Title})
}

func (s *Server) getVideos(c *gin.Context) {
	s.mu.RLock()
	out := s.sortedVideosLocked()
	s.mu.RUnlock()
	ok(c, gin.H{"videos": out})
}

func (s *Server) getVideo(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Query("id"), 10, 64)

	s.mu.RLock()
	found, exists := s.videos[id]
	var (
		out     video
		related []video
	)
	if exists {
		out = *found
		for _, v := range s.sortedVideosLocked() {
			if v.ID != id && strings.EqualFold(v.Artist, out.Artist) {
				related = append(related, v)
			}
		}
	}
	s.mu.RUnlock()

	if !exists {
		fail(c, http.StatusNotFound, "Video not found")
		return
	}
	if related == nil {
		related = []video{}
	}
	ok(c, gin.H{"video": out, "relatedVideos": related})
}

type videoInput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	YouTubeURL  string `json:"youtube_url"`
	Description string `json:"description"`
}

func (s *Server) upsertVideo(c *gin.Context) {
	var in videoInput
	fields, good := readJSON(c, &in)
	if !good || !s.authorize(c, fields) {
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.YouTubeURL) == "" {
		fail(c, http.StatusBadRequest, "Title and YouTube URL are required")
		return
	}

	stamp := s.now().UTC().Format(timestampLayout)
	s.mu.Lock()
	rec := &video{CreatedAt: stamp}
	if in.ID > 0 {
		existing, found := s.videos[in.ID]
		if !found {
			s.mu.Unlock()
			fail(c, http.StatusNotFound, "Video not found")
			return
		}
		rec = existing
	} else {
		s.nextVideoID++
		rec.ID = s.nextVideoID
	}
	rec.Title = strings.TrimSpace(in.Title)
	rec.Artist = strings.TrimSpace(in.Artist)
	rec.YouTubeURL = strings.TrimSpace(in.YouTubeURL)
	rec.Description = in.Description
	rec.UpdatedAt = stamp
	s.videos[rec.ID] = rec
	id, title := rec.ID, rec.Title
	s.mu.Unlock()

	ok(c, gin.H{"id": id, "title": title, "message": "Video saved"})
}

func (s *Server) deleteVideo(c *gin.Context) {
	var in idInput
	fields, good := readJSON(c, &in)
	if !good || !s.authorize(c, fields) {
		return
	}
	s.mu.Lock()
	rec, found := s.videos[in.ID]
	if found {
		delete(s.videos, in.ID)
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Video not found")
		return
	}
	ok(c, gin.H{"title": rec.Title})
}

func (s *Server) getHomepageVideos(c *gin.Context) {
	s.mu.RLock()
	slots := s.homepage
	s.mu.RUnlock()
	ok(c, gin.H{"videos": slots[:]})
}

func (s *Server) updateHomepageVideos(c *gin.Context) {
	var in struct {
		Videos []string `json:"videos"`
	}
	fields, good := readJSON(c, &in)
	if !good || !s.authorize(c, fields) {
		return
	}
	if len(in.Videos) > homepageSlots {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Expected %d videos", homepageSlots))
		return
	}
	var slots [homepageSlots]string
	for i, u := range in.Videos {
		slots[i] = strings.TrimSpace(u)
	}
	s.mu.Lock()
	s.homepage = slots
	s.mu.Unlock()
	ok(c, gin.H{"message": "Homepage videos updated"})
}

type loginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var in loginInput
	if _, good := readJSON(c, &in); !good {
		return
	}
	matches := (in.Email != "" && strings.EqualFold(strings.TrimSpace(in.Email), s.admin.Email)) ||
		(in.Username != "" && strings.EqualFold(strings.TrimSpace(in.Username), s.admin.Username))
	if !matches {
		// Same cost whether or not the account exists.
		_ = bcrypt.CompareHashAndPassword(s.admin.Hash, []byte(in.Password+"\x00"))
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword(s.admin.Hash, []byte(in.Password)); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(s.admin.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("sign token")
		fail(c, http.StatusInternalServerError, "Unable to start session")
		return
	}
	now := s.now()
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = userSession{userID: s.admin.ID, loginTime: now}
	s.mu.Unlock()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(tokenTTL.Seconds()), "/", "", false, true)
	ok(c, gin.H{"user": s.admin.payload(now), "csrfToken": token, "message": "Login successful"})
}

func (s *Server) logout(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	ok(c, gin.H{"message": "Logged out"})
}

func (s *Server) userInfo(c *gin.Context) {
	sess, found := s.currentSession(c)
	if !found || sess.userID != s.admin.ID {
		c.JSON(http.StatusOK, gin.H{"success": false, "authenticated": false})
		return
	}
	ok(c, gin.H{"authenticated": true, "user": s.admin.payload(sess.loginTime)})
}

func (s *Server) uploadImage(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			fail(c, http.StatusBadRequest, "No file uploaded")
			return
		}
		fields := map[string]any{}
		if s.tokenField != "" {
			fields[s.tokenField] = c.PostForm(s.tokenField)
		}
		if !s.authorize(c, fields) {
			return
		}
		name := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
		ok(c, gin.H{"url": fmt.Sprintf("/uploads/%s/%s", dir, name), "size": file.Size})
	}
}
