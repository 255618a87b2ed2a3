package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/five82/labelctl/internal/api"
)

// ImageKind selects the upload endpoint.
type ImageKind string

const (
	ImageCover   ImageKind = "cover"
	ImageGeneric ImageKind = "image"
)

// SiteService covers the health check and image uploads.
type SiteService struct {
	transport api.Transport
}

// NewSiteService builds a SiteService over transport.
func NewSiteService(transport api.Transport) *SiteService {
	return &SiteService{transport: transport}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database struct {
		Connected    flexBool  `json:"connected"`
		ResponseTime flexFloat `json:"responseTime"`
	} `json:"database"`
	API struct {
		Version     string `json:"version"`
		Environment string `json:"environment"`
	} `json:"api"`
}

// Health reports backend status. An unhealthy backend answers 503 with the
// same body; that body is still decoded.
func (s *SiteService) Health(ctx context.Context) (Health, error) {
	var payload healthResponse
	err := s.transport.Get(ctx, "/health.php", nil, &payload)
	if err != nil {
		apiErr, ok := api.AsError(err)
		if !ok || apiErr.Kind != api.KindHTTP || json.Unmarshal(apiErr.Body, &payload) != nil || payload.Status == "" {
			return Health{Status: "unhealthy"}, fmt.Errorf("health: %w", err)
		}
	}
	return Health{
		Status:      strings.ToLower(strings.TrimSpace(payload.Status)),
		Connected:   bool(payload.Database.Connected),
		ResponseMS:  float64(payload.Database.ResponseTime),
		Version:     payload.API.Version,
		Environment: payload.API.Environment,
	}, nil
}

type uploadResponse struct {
	envelope
	URL string `json:"url"`
}

// UploadImage sends an image as the multipart field "file" and returns the
// hosted URL.
func (s *SiteService) UploadImage(ctx context.Context, kind ImageKind, filename string, r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("upload image: no data")
	}
	path := "/upload-image.php"
	if kind == ImageCover {
		path = "/upload-cover-image.php"
	}
	var payload uploadResponse
	file := api.FormFile{Field: "file", Filename: filepath.Base(filename), Reader: r}
	if err := s.transport.Upload(ctx, path, file, nil, &payload); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if !payload.Success || strings.TrimSpace(payload.URL) == "" {
		return "", fmt.Errorf("upload image: %s", firstNonEmpty(payload.Error, payload.Message, "no url returned"))
	}
	return strings.TrimSpace(payload.URL), nil
}
