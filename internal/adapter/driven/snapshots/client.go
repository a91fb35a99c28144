// Package snapshots implements the SnapshotClient port against the snapshot
// hosting service that stores pull request test builds.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// DefaultBaseURL is the public snapshot service.
const DefaultBaseURL = "https://make.mudlet.org"

// Compile-time interface satisfaction check.
var _ driven.SnapshotClient = (*Client)(nil)

// creationTimeLayouts are tried in order when parsing creation_time.
var creationTimeLayouts = []string{time.DateTime, time.RFC3339}

// Client lists the artifacts the snapshot service holds for a pull request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL overrides the snapshot service base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a snapshot service client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLinks returns every artifact stored for the pull request, in the order
// the service listed them. The service answers with {"data": [...]}; when data
// is not a list (it sends an error string instead) the result is empty.
func (c *Client) FetchLinks(ctx context.Context, prNumber int) ([]model.ArtifactLink, error) {
	endpoint := c.baseURL + "/snapshots/json.php?prid=" + strconv.Itoa(prNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshots for PR %d: %w", prNumber, &model.UpstreamError{Service: "snapshots", Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots for PR %d: %w", prNumber, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching snapshots for PR %d: %w", prNumber, &model.UpstreamError{
			Service:    "snapshots",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		})
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("fetching snapshots for PR %d: invalid JSON response", prNumber)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return []model.ArtifactLink{}, nil
	}

	links := make([]model.ArtifactLink, 0, len(data.Array()))
	data.ForEach(func(_, entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		links = append(links, model.ArtifactLink{
			Platform:  model.Platform(entry.Get("platform").String()),
			URL:       entry.Get("url").String(),
			CreatedAt: parseCreationTime(entry.Get("creation_time")),
		})
		return true
	})

	return links, nil
}

// parseCreationTime accepts "2006-01-02 15:04:05" (UTC), RFC 3339 or unix
// seconds. Anything else yields the zero time, which ranks last.
func parseCreationTime(v gjson.Result) time.Time {
	if v.Type == gjson.Number {
		return time.Unix(v.Int(), 0).UTC()
	}

	s := strings.TrimSpace(v.String())
	for _, layout := range creationTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}
