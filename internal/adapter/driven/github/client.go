// Package github implements the CommentStore and GitHubApp ports using the
// go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommentStore = (*Client)(nil)

// Client implements the driven.CommentStore port for a single app
// installation. Authentication lives in the http.Client transport.
type Client struct {
	gh *gh.Client
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{gh: newGitHubClient(httpClient, u)}, nil
}

// parseBaseURL parses an API root, appending the trailing slash go-github
// requires. Empty input yields nil, meaning api.github.com.
func parseBaseURL(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// newGitHubClient builds a go-github client, pointing it at baseURL when set.
func newGitHubClient(httpClient *http.Client, baseURL *url.URL) *gh.Client {
	client := gh.NewClient(httpClient)
	if baseURL != nil {
		client.BaseURL = baseURL
		client.UploadURL = baseURL
	}
	return client
}

// ListIssueComments retrieves all comments on an issue or pull request.
// It handles pagination automatically and maps go-github types to domain model types.
func (c *Client) ListIssueComments(ctx context.Context, repo model.Repo, number int) ([]model.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var allComments []model.IssueComment

	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issue comments for %s#%d (page %d): %w", repo.FullName(), number, opts.Page, upstreamError(err))
		}

		logRateLimit(resp, repo.FullName()+"/comments", opts.Page, len(comments))

		for _, comment := range comments {
			allComments = append(allComments, mapIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateIssueComment posts a new comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, repo model.Repo, number int, body string) (int64, error) {
	comment, resp, err := c.gh.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return 0, fmt.Errorf("creating comment on %s#%d: %w", repo.FullName(), number, upstreamError(err))
	}

	logRateLimit(resp, repo.FullName()+"/comments", 0, 1)

	return comment.GetID(), nil
}

// UpdateIssueComment replaces the body of an existing issue comment.
func (c *Client) UpdateIssueComment(ctx context.Context, repo model.Repo, commentID int64, body string) error {
	_, resp, err := c.gh.Issues.EditComment(ctx, repo.Owner, repo.Name, commentID, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("editing comment %d on %s: %w", commentID, repo.FullName(), upstreamError(err))
	}

	logRateLimit(resp, repo.FullName()+"/comments", 0, 1)

	return nil
}

// mapIssueComment converts a go-github IssueComment to a domain model IssueComment.
func mapIssueComment(c *gh.IssueComment) model.IssueComment {
	return model.IssueComment{
		ID:        c.GetID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

// upstreamError wraps a go-github error response in a model.UpstreamError so
// callers can inspect the HTTP status without importing go-github.
func upstreamError(err error) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &model.UpstreamError{Service: "github", StatusCode: ghErr.Response.StatusCode, Err: err}
	}
	return &model.UpstreamError{Service: "github", Err: err}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
