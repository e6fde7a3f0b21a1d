// Package releasenotes fetches and condenses upstream release descriptions.
package releasenotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"koharu-go/internal/koharu"
)

// DefaultAPIBaseURL is the GitHub REST endpoint.
const DefaultAPIBaseURL = "https://api.github.com"

// maxSummaryLines bounds the summary shown next to the update preview.
const maxSummaryLines = 5

// Client reads releases of one GitHub repository ("owner/name").
type Client struct {
	repo       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL uses DefaultAPIBaseURL.
func NewClient(repo, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		repo:       repo,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// FetchNotes loads the release tagged v<version>.
func (c *Client) FetchNotes(ctx context.Context, version string) (*koharu.ReleaseNotes, error) {
	if c.repo == "" {
		return nil, fmt.Errorf("no release repository configured")
	}
	version = strings.TrimPrefix(version, "v")
	url := fmt.Sprintf("%s/repos/%s/releases/tags/v%s", c.baseURL, c.repo, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetching release: unexpected status %s", resp.Status)
	}

	var r release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	notes := &koharu.ReleaseNotes{
		Version: version,
		Name:    r.Name,
		Body:    r.Body,
		Summary: Summary(r.Body, maxSummaryLines),
		URL:     r.HTMLURL,
	}
	if notes.URL == "" {
		notes.URL = BuildReleaseURL(c.repo, version)
	}
	return notes, nil
}

// BuildReleaseURL returns the human-facing page of a release.
func BuildReleaseURL(repo, version string) string {
	return fmt.Sprintf("https://github.com/%s/releases/tag/v%s", repo, strings.TrimPrefix(version, "v"))
}

// Summary returns up to max bullet items from a markdown body, stripped of
// list markers and emphasis. Headings and prose are skipped.
func Summary(body string, max int) []string {
	var lines []string
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		var item string
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "+ "):
			item = line[2:]
		default:
			continue
		}
		item = strings.NewReplacer("**", "", "__", "", "`", "").Replace(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		lines = append(lines, item)
		if len(lines) == max {
			break
		}
	}
	return lines
}
