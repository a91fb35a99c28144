package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	ghauth "github.com/jferrl/go-githubauth"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubApp = (*App)(nil)

// App authenticates as a GitHub App and mints per-installation clients.
type App struct {
	gh       *gh.Client
	appToken oauth2.TokenSource
	baseURL  *url.URL
	timeout  time.Duration
}

// AppOption customizes an App.
type AppOption func(*appOptions)

type appOptions struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the App at a GitHub Enterprise Server host such as
// "https://ghe.example.com" or its API root "https://ghe.example.com/api/v3/".
// See enterpriseAPIRoot. Empty means api.github.com.
func WithBaseURL(baseURL string) AppOption {
	return func(o *appOptions) { o.baseURL = baseURL }
}

// WithTimeout bounds every GitHub request.
func WithTimeout(d time.Duration) AppOption {
	return func(o *appOptions) { o.timeout = d }
}

// WithHTTPClient replaces the app-level HTTP client. Intended for tests; the
// client is used as is, without JWT authentication. Installation clients are
// not affected.
func WithHTTPClient(c *http.Client) AppOption {
	return func(o *appOptions) { o.httpClient = c }
}

// NewApp creates an App from the application id and its PEM-encoded private
// key. App-level calls authenticate with a short-lived JWT signed by the key.
func NewApp(appID int64, privateKey []byte, opts ...AppOption) (*App, error) {
	o := appOptions{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	appToken, err := ghauth.NewApplicationTokenSource(appID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("creating app token source: %w", err)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, appToken),
				Base:   http.DefaultTransport,
			},
		}
	}

	baseURL, err := enterpriseAPIRoot(o.baseURL)
	if err != nil {
		return nil, err
	}

	return &App{
		gh:       newGitHubClient(httpClient, baseURL),
		appToken: appToken,
		baseURL:  baseURL,
		timeout:  o.timeout,
	}, nil
}

// FindRepoInstallation returns the installation id of the app on owner/repo.
// A 404 from GitHub is reported as driven.ErrNotInstalled; any other failure
// is returned as a *model.UpstreamError carrying the HTTP status.
func (a *App) FindRepoInstallation(ctx context.Context, owner, repo string) (int64, error) {
	installation, resp, err := a.gh.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return 0, fmt.Errorf("finding installation for %s/%s: %w", owner, repo, driven.ErrNotInstalled)
		}
		return 0, fmt.Errorf("finding installation for %s/%s: %w", owner, repo, upstreamError(err))
	}

	logRateLimit(resp, owner+"/"+repo+"/installation", 0, 1)

	return installation.GetID(), nil
}

// CommentStore returns a Client authenticated as the installation, with the
// following transport stack:
//  1. oauth2 with a cached installation token minted from the app JWT
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. httpcache (ETag-based conditional request caching)
func (a *App) CommentStore(installationID int64) driven.CommentStore {
	tokenOpts := []ghauth.InstallationTokenSourceOpt{
		ghauth.WithHTTPClient(&http.Client{Timeout: a.timeout}),
	}
	if a.baseURL != nil {
		tokenOpts = append(tokenOpts, ghauth.WithEnterpriseURLs(a.baseURL.String(), a.baseURL.String()))
	}
	installationToken := oauth2.ReuseTokenSource(nil,
		ghauth.NewInstallationTokenSource(installationID, a.appToken, tokenOpts...))

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = a.timeout
	rateLimitClient.Transport = &oauth2.Transport{
		Source: installationToken,
		Base:   rateLimitClient.Transport,
	}

	return &Client{gh: newGitHubClient(rateLimitClient, a.baseURL)}
}

// enterpriseAPIRoot resolves a GitHub Enterprise Server URL to its REST API
// root, appending "api/v3/" unless the path already ends with it. Both the
// app client and the installation token source are given the resolved root,
// so go-githubauth leaves it untouched. Empty input yields nil.
func enterpriseAPIRoot(baseURL string) (*url.URL, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil || u == nil {
		return u, err
	}
	if !strings.HasSuffix(u.Path, "/api/v3/") {
		u.Path += "api/v3/"
	}
	return u, nil
}
