// Package appveyor implements the CIClient port against the AppVeyor REST API.
package appveyor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// DefaultBaseURL is the public AppVeyor service.
const DefaultBaseURL = "https://ci.appveyor.com"

// Compile-time interface satisfaction check.
var _ driven.CIClient = (*Client)(nil)

// Client reads builds and job logs from AppVeyor. Public projects need no
// authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL overrides the AppVeyor base URL.
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

// New creates an AppVeyor client.
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

// FetchBuild returns the build with the given id. AppVeyor project slugs are
// lower case, so the repository name is lower-cased in the request path.
func (c *Client) FetchBuild(ctx context.Context, repo model.Repo, buildID int64) (*model.Build, error) {
	path := fmt.Sprintf("/api/projects/%s/%s/builds/%d",
		url.PathEscape(repo.Owner), url.PathEscape(strings.ToLower(repo.Name)), buildID)

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching build %d for %s: %w", buildID, repo.FullName(), err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("fetching build %d for %s: invalid JSON response", buildID, repo.FullName())
	}

	build := &model.Build{ID: buildID}

	if prID := gjson.GetBytes(body, "build.pullRequestId"); prID.Exists() && prID.Type != gjson.Null {
		// AppVeyor sends the id as a string; an empty string means a branch build.
		if n, err := strconv.Atoi(strings.TrimSpace(prID.String())); err == nil && n > 0 {
			build.PullRequestNumber = n
			build.HasPullRequest = true
		}
	}

	gjson.GetBytes(body, "build.jobs").ForEach(func(_, job gjson.Result) bool {
		build.Jobs = append(build.Jobs, model.BuildJob{
			ID:     job.Get("jobId").String(),
			Status: model.JobStatus(job.Get("status").String()),
		})
		return true
	})

	return build, nil
}

// FetchJobLog returns the plain-text console log of a build job.
func (c *Client) FetchJobLog(ctx context.Context, jobID string) (string, error) {
	body, err := c.get(ctx, "/api/buildjobs/"+url.PathEscape(jobID)+"/log")
	if err != nil {
		return "", fmt.Errorf("fetching log for job %s: %w", jobID, err)
	}
	return string(body), nil
}

// get performs a GET request and returns the response body. Non-2xx answers
// are reported as *model.UpstreamError.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{Service: "appveyor", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.UpstreamError{
			Service:    "appveyor",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	return body, nil
}
