package background

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultNASABaseURL   = "https://api.nasa.gov"
	defaultPexelsBaseURL = "https://api.pexels.com"
	fetchTimeout         = 60 * time.Second
)

// Fetcher downloads daily background images and writes image + metadata
// pairs into the backgrounds directory. The dark theme uses NASA APOD, the
// light theme a Pexels landscape photo.
type Fetcher struct {
	NASAAPIKey   string
	PexelsAPIKey string

	// Base URLs are overridable for tests.
	NASABaseURL   string
	PexelsBaseURL string

	HTTP *http.Client
	Now  func() time.Time
}

func (f *Fetcher) client() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return &http.Client{Timeout: fetchTimeout}
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FetchDark pulls the NASA Astronomy Picture of the Day into bg-dark.{jpg,json}.
func (f *Fetcher) FetchDark(ctx context.Context, destDir string) (Metadata, error) {
	base := f.NASABaseURL
	if base == "" {
		base = defaultNASABaseURL
	}
	endpoint := fmt.Sprintf("%s/planetary/apod?api_key=%s&thumbs=true", strings.TrimRight(base, "/"), url.QueryEscape(f.NASAAPIKey))

	var payload struct {
		Title        string `json:"title"`
		MediaType    string `json:"media_type"`
		URL          string `json:"url"`
		HDURL        string `json:"hdurl"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := f.getJSON(ctx, endpoint, nil, &payload); err != nil {
		return Metadata{}, err
	}

	imgURL := ""
	if payload.MediaType == "image" {
		imgURL = firstNonEmpty(payload.HDURL, payload.URL)
	} else if payload.ThumbnailURL != "" {
		imgURL = payload.ThumbnailURL
	}
	if imgURL == "" {
		return Metadata{}, fmt.Errorf("background: no APOD image available today")
	}

	meta := Metadata{
		Title:  firstNonEmpty(payload.Title, "Astronomy Picture of the Day"),
		Source: "NASA APOD",
		Href:   "https://apod.nasa.gov",
		Date:   f.now().Format(time.RFC3339),
	}
	if err := f.saveImagePair(ctx, destDir, "dark", imgURL, nil, meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// FetchLight pulls a Pexels landscape photo into bg-light.{jpg,json}.
func (f *Fetcher) FetchLight(ctx context.Context, destDir string) (Metadata, error) {
	base := f.PexelsBaseURL
	if base == "" {
		base = defaultPexelsBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/v1/search?query=landscape&orientation=landscape&per_page=1&page=1"
	headers := map[string]string{"Authorization": f.PexelsAPIKey}

	var payload struct {
		Photos []struct {
			Alt             string `json:"alt"`
			Photographer    string `json:"photographer"`
			PhotographerURL string `json:"photographer_url"`
			Src             struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := f.getJSON(ctx, endpoint, headers, &payload); err != nil {
		return Metadata{}, err
	}
	if len(payload.Photos) == 0 || payload.Photos[0].Src.Large == "" {
		return Metadata{}, fmt.Errorf("background: no Pexels image available")
	}

	photo := payload.Photos[0]
	meta := Metadata{
		Title:  firstNonEmpty(photo.Alt, "Landscape Photo"),
		Source: firstNonEmpty(photo.Photographer, "Unknown") + " on Pexels",
		Href:   firstNonEmpty(photo.PhotographerURL, "https://pexels.com"),
		Date:   f.now().Format(time.RFC3339),
	}
	if err := f.saveImagePair(ctx, destDir, "light", photo.Src.Large, nil, meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, headers map[string]string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("background: fetch status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (f *Fetcher) saveImagePair(ctx context.Context, destDir, theme, imgURL string, headers map[string]string, meta Metadata) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("background: image fetch status %d", resp.StatusCode)
	}

	imgPath := filepath.Join(destDir, "bg-"+theme+".jpg")
	out, err := os.Create(imgPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destDir, "bg-"+theme+".json"), append(metaBytes, '\n'), 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
