package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/labelctl/internal/catalog"
)

const fixFieldsMessage = "Please fix the highlighted fields"

// --- Login ---

func newLoginModal(ctx context.Context, b Backend, identifier string) formModal {
	password := newField("password", "Password", "", "")
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'

	fields := []formField{
		newField("identifier", "Email or username", identifier, "admin@example.com"),
		password,
	}
	f := newFormModal("Sign in", fields, func(values map[string]string) tea.Cmd {
		return loginCmd(ctx, b, values["identifier"], values["password"])
	})
	if identifier != "" {
		f.setFocus(1)
	}
	return f
}

func loginCmd(ctx context.Context, b Backend, identifier, password string) tea.Cmd {
	return func() tea.Msg {
		fields := catalog.FieldErrors{}
		if identifier == "" {
			fields["identifier"] = "Enter your email or username"
		}
		if password == "" {
			fields["password"] = "Enter your password"
		}
		if !fields.OK() {
			return actionResultMsg{action: "login", result: catalog.WriteResult{Error: fixFieldsMessage, Fields: fields}}
		}

		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		res := b.Login(ctx, identifier, password)
		out := catalog.WriteResult{Success: res.Success, Message: res.Message, Error: res.Error}
		if res.Success && res.User != nil {
			out.Message = "Signed in as " + res.User.DisplayName()
		}
		if !res.Success && out.Error == "" {
			out.Error = firstNonEmpty(res.Message, "Login failed")
		}
		return actionResultMsg{action: "login", result: out}
	}
}

// --- Release ---

var artistRoleRe = regexp.MustCompile(`^(.*?)\s*\(([a-z_]+)\)$`)

var knownRoles = []catalog.ArtistRole{
	catalog.RolePrimary,
	catalog.RoleFeatured,
	catalog.RoleRemixer,
	catalog.RoleProducer,
	catalog.RoleCollaborator,
}

// formatArtists renders credits as "Name; Name (role)". Primary credits
// carry no suffix.
func formatArtists(artists []catalog.ReleaseArtist) string {
	parts := make([]string, 0, len(artists))
	for _, a := range artists {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		if a.Role == "" || a.Role == catalog.RolePrimary {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, a.Role))
	}
	return strings.Join(parts, "; ")
}

// parseArtists reads the formatArtists syntax. A parenthesised suffix that is
// not a known role stays part of the name.
func parseArtists(value string) []catalog.ReleaseArtist {
	var out []catalog.ReleaseArtist
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		artist := catalog.ReleaseArtist{Name: part, Role: catalog.RolePrimary}
		if m := artistRoleRe.FindStringSubmatch(part); m != nil {
			for _, role := range knownRoles {
				if string(role) == m[2] {
					artist = catalog.ReleaseArtist{Name: strings.TrimSpace(m[1]), Role: role}
					break
				}
			}
		}
		out = append(out, artist)
	}
	return out
}

// formatLinks renders links as space-separated "platform=url" pairs, with a
// leading "!" on inactive ones.
func formatLinks(links []catalog.StreamingLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		prefix := ""
		if !l.Active {
			prefix = "!"
		}
		parts = append(parts, prefix+l.Platform+"="+strings.TrimSpace(l.URL))
	}
	return strings.Join(parts, " ")
}

// parseLinks reads the formatLinks syntax. Pairs without "=" are reported
// under "streaming_links".
func parseLinks(value string) ([]catalog.StreamingLink, catalog.FieldErrors) {
	var links []catalog.StreamingLink
	errs := catalog.FieldErrors{}
	for _, pair := range strings.Fields(value) {
		active := !strings.HasPrefix(pair, "!")
		platform, url, ok := strings.Cut(strings.TrimPrefix(pair, "!"), "=")
		platform = strings.ToLower(strings.TrimSpace(platform))
		if !ok || platform == "" || url == "" {
			errs["streaming_links"] = "Use platform=url pairs separated by spaces"
			continue
		}
		links = append(links, catalog.StreamingLink{Platform: platform, URL: url, Active: active})
	}
	return links, errs
}

func parseTag(value string) (catalog.Tag, bool) {
	if value == "" {
		return catalog.TagNone, true
	}
	for _, tag := range catalog.Tags {
		if strings.EqualFold(string(tag), value) {
			return tag, true
		}
	}
	return "", false
}

func parseYesNo(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "y", "yes", "true", "1", "on":
		return true, true
	case "", "n", "no", "false", "0", "off":
		return false, true
	default:
		return false, false
	}
}

func yesNo(b bool) string {
	return ternary(b, "yes", "no")
}

// parseReleaseForm applies the form values on top of base. The returned
// errors cover only what the form syntax can catch; catalog.ValidateRelease
// runs on save.
func parseReleaseForm(base catalog.ReleaseInput, values map[string]string) (catalog.ReleaseInput, catalog.FieldErrors) {
	in := base
	errs := catalog.FieldErrors{}

	in.Title = values["title"]
	in.Artists = parseArtists(values["artists"])
	in.Type = catalog.ReleaseType(strings.ToLower(values["release_type"]))
	in.ReleaseDate = values["release_date"]
	in.CoverImage = values["cover_image"]
	in.Description = values["description"]

	if tag, ok := parseTag(values["tag"]); ok {
		in.Tag = tag
	} else {
		errs["tag"] = "Use None, Featured, New, Recent or Removed"
	}

	var ok bool
	if in.ShowInMain, ok = parseYesNo(values["show_in_main"]); !ok {
		errs["show_in_main"] = "Answer yes or no"
	}
	if in.ShowInDiscography, ok = parseYesNo(values["show_in_discography"]); !ok {
		errs["show_in_discography"] = "Answer yes or no"
	}

	if raw := values["track_count"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs["track_count"] = "Enter a whole number of tracks"
		} else {
			in.TrackCount = n
		}
	}

	links, linkErrs := parseLinks(values["streaming_links"])
	in.StreamingLinks = links
	for k, v := range linkErrs {
		errs[k] = v
	}
	return in, errs
}

// localCoverPath returns the path when value names a readable local image
// rather than a URL.
func localCoverPath(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return ""
	}
	if rest, ok := strings.CutPrefix(value, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		value = filepath.Join(home, rest)
	}
	info, err := os.Stat(value)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return value
}

func newReleaseForm(ctx context.Context, b Backend, base catalog.ReleaseInput) formModal {
	title := "New release"
	if base.ID != 0 {
		title = fmt.Sprintf("Edit release #%d", base.ID)
	}
	if base.TrackCount == 0 {
		base.TrackCount = 1
	}
	if base.Tag == "" {
		base.Tag = catalog.TagNone
	}
	types := make([]string, 0, len(catalog.ReleaseTypes))
	for _, t := range catalog.ReleaseTypes {
		types = append(types, string(t))
	}

	fields := []formField{
		newField("title", "Title", base.Title, ""),
		newField("artists", "Artists", formatArtists(base.Artists), "Name; Name (featured)"),
		newField("release_type", "Type", string(base.Type), strings.Join(types, ", ")),
		newField("release_date", "Release date", base.ReleaseDate, "YYYY-MM-DD or YYYY"),
		newField("cover_image", "Cover", base.CoverImage, "https://... or a local image file"),
		newField("tag", "Tag", string(base.Tag), "None, Featured, New, Recent, Removed"),
		newField("show_in_main", "Main list", yesNo(base.ShowInMain), "yes/no"),
		newField("show_in_discography", "Discography", yesNo(base.ShowInDiscography), "yes/no"),
		newField("track_count", "Tracks", strconv.Itoa(base.TrackCount), ""),
		newField("streaming_links", "Links", formatLinks(base.StreamingLinks), "spotify=https://... bandcamp=https://..."),
		newField("description", "Description", base.Description, ""),
	}
	return newFormModal(title, fields, func(values map[string]string) tea.Cmd {
		return saveReleaseCmd(ctx, b, base, values)
	})
}

func saveReleaseCmd(ctx context.Context, b Backend, base catalog.ReleaseInput, values map[string]string) tea.Cmd {
	return func() tea.Msg {
		in, errs := parseReleaseForm(base, values)
		if !errs.OK() {
			return actionResultMsg{action: "save release", result: catalog.WriteResult{Error: fixFieldsMessage, Fields: errs}}
		}

		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()

		if path := localCoverPath(in.CoverImage); path != "" {
			url, err := b.UploadCover(ctx, path)
			if err != nil {
				return actionResultMsg{action: "save release", result: catalog.WriteResult{
					Error:  "Cover upload failed",
					Fields: catalog.FieldErrors{"cover_image": err.Error()},
				}}
			}
			in.CoverImage = url
		}
		return actionResultMsg{action: "save release", result: b.SaveRelease(ctx, in)}
	}
}

func deleteReleaseCmd(ctx context.Context, b Backend, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return actionResultMsg{action: "delete release", result: b.DeleteRelease(ctx, id)}
	}
}

// --- Video ---

func newVideoForm(ctx context.Context, b Backend, base catalog.VideoInput) formModal {
	title := "New video"
	if base.ID != 0 {
		title = fmt.Sprintf("Edit video #%d", base.ID)
	}
	fields := []formField{
		newField("title", "Title", base.Title, ""),
		newField("artist", "Artist", base.Artist, ""),
		newField("youtube_url", "YouTube URL", base.YouTubeURL, "https://www.youtube.com/watch?v=..."),
		newField("description", "Description", base.Description, ""),
	}
	return newFormModal(title, fields, func(values map[string]string) tea.Cmd {
		in := catalog.VideoInput{
			ID:          base.ID,
			Title:       values["title"],
			Artist:      values["artist"],
			YouTubeURL:  values["youtube_url"],
			Description: values["description"],
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
			defer cancel()
			return actionResultMsg{action: "save video", result: b.SaveVideo(ctx, in)}
		}
	})
}

func deleteVideoCmd(ctx context.Context, b Backend, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return actionResultMsg{action: "delete video", result: b.DeleteVideo(ctx, id)}
	}
}

// --- Homepage videos ---

func newHomepageForm(ctx context.Context, b Backend, current [catalog.HomepageSlots]string) formModal {
	fields := make([]formField, 0, catalog.HomepageSlots)
	for i, url := range current {
		fields = append(fields, newField(fmt.Sprintf("videos.%d", i), fmt.Sprintf("Slot %d", i+1), url, "YouTube link or blank"))
	}
	return newFormModal("Homepage videos", fields, func(values map[string]string) tea.Cmd {
		var urls [catalog.HomepageSlots]string
		for i := range urls {
			urls[i] = values[fmt.Sprintf("videos.%d", i)]
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
			defer cancel()
			return actionResultMsg{action: "save homepage videos", result: b.SaveHomepageVideos(ctx, urls)}
		}
	})
}
