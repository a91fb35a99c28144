// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
	"github.com/ericfisherdev/deploylinks/internal/metrics"
)

// RefreshCommand is the issue comment body that triggers a link refresh.
const RefreshCommand = "/refresh links"

// buildIDPattern extracts the numeric build id from a CI status target URL
// such as https://ci.appveyor.com/project/Mudlet/Mudlet/builds/49623547.
var buildIDPattern = regexp.MustCompile(`/builds/(\d+)`)

// DeploymentService keeps the deployment comment of each pull request in sync
// with the snapshot service and the CI translation statistics. It holds no
// per-PR state: every call re-reads the comment it edits.
type DeploymentService struct {
	ci               driven.CIClient
	snapshots        driven.SnapshotClient
	botLogin         string
	translationTitle string
}

// NewDeploymentService creates a new DeploymentService. botLogin identifies
// the deployment comment among all comments; translationTitle is the PR title
// that gets a translation statistics section.
func NewDeploymentService(
	ci driven.CIClient,
	snapshots driven.SnapshotClient,
	botLogin string,
	translationTitle string,
) *DeploymentService {
	return &DeploymentService{
		ci:               ci,
		snapshots:        snapshots,
		botLogin:         botLogin,
		translationTitle: translationTitle,
	}
}

// HandlePullRequest posts the deployment comment when a pull request is opened.
// Other actions are ignored so edits and pushes never duplicate the comment.
func (s *DeploymentService) HandlePullRequest(ctx context.Context, store driven.CommentStore, ev model.PullRequestEvent) error {
	intent := PlanNewComment(ev, s.translationTitle)
	if intent.Kind == IntentSkip {
		slog.Debug("pull request event ignored", "repo", ev.Repo.FullName(), "pr_number", ev.Number, "action", ev.Action)
		return nil
	}
	return applyIntent(ctx, store, intent)
}

// HandleStatus reacts to CI commit statuses whose context mentions "pr" or
// "appveyor". It updates translation statistics and then refreshes links.
// The halves are independent: each resolves the pull request from the build
// on its own, and the second runs even when the first fails. Their errors are
// joined.
func (s *DeploymentService) HandleStatus(ctx context.Context, store driven.CommentStore, ev model.StatusEvent) error {
	if !strings.Contains(ev.Context, "pr") && !strings.Contains(ev.Context, "appveyor") {
		slog.Debug("status event ignored", "repo", ev.Repo.FullName(), "context", ev.Context)
		return nil
	}
	slog.Info("handling status event",
		"repo", ev.Repo.FullName(),
		"context", ev.Context,
		"state", ev.State,
		"target_url", ev.TargetURL,
	)

	statsErr := s.UpdateTranslationStats(ctx, store, ev.Repo, ev.TargetURL)
	if statsErr != nil {
		statsErr = fmt.Errorf("updating translation stats: %w", statsErr)
	}

	linksErr := s.refreshLinksForBuild(ctx, store, ev.Repo, ev.TargetURL)
	if linksErr != nil {
		linksErr = fmt.Errorf("refreshing links: %w", linksErr)
	}

	return errors.Join(statsErr, linksErr)
}

// HandleIssueComment refreshes links when someone comments exactly
// RefreshCommand on a pull request.
func (s *DeploymentService) HandleIssueComment(ctx context.Context, store driven.CommentStore, ev model.IssueCommentEvent) error {
	if ev.Action != model.ActionCreated || ev.Body != RefreshCommand {
		return nil
	}

	slog.Info("link refresh requested",
		"repo", ev.Repo.FullName(),
		"pr_number", ev.IssueNumber,
		"author", ev.Author,
	)
	return s.RefreshLinks(ctx, store, ev.Repo, ev.IssueNumber)
}

// HandleSnapshotPingback refreshes links for every pull request the snapshot
// service reported. Each PR is attempted even if an earlier one failed; the
// failures are joined.
func (s *DeploymentService) HandleSnapshotPingback(ctx context.Context, store driven.CommentStore, repo model.Repo, prNumbers []int) error {
	var errs []error
	for _, number := range prNumbers {
		if err := s.RefreshLinks(ctx, store, repo, number); err != nil {
			slog.Error("snapshot pingback refresh failed", "repo", repo.FullName(), "pr_number", number, "error", err)
			errs = append(errs, fmt.Errorf("PR %d: %w", number, err))
		}
	}
	return errors.Join(errs...)
}

// RefreshLinks writes the newest snapshot link per platform into the
// deployment comment of PR prNumber. A non-positive prNumber, an empty link
// list or a missing comment make this a logged no-op.
func (s *DeploymentService) RefreshLinks(ctx context.Context, store driven.CommentStore, repo model.Repo, prNumber int) error {
	if prNumber <= 0 {
		slog.Info("link refresh skipped", "repo", repo.FullName(), "reason", ReasonNoPullRequest)
		metrics.Refreshes.WithLabelValues("links", "skipped").Inc()
		return nil
	}

	slog.Info("refreshing links", "repo", repo.FullName(), "pr_number", prNumber)

	links, err := s.snapshots.FetchLinks(ctx, prNumber)
	if err != nil {
		metrics.Refreshes.WithLabelValues("links", "error").Inc()
		return fmt.Errorf("fetching snapshot links for %s#%d: %w", repo.FullName(), prNumber, err)
	}
	if len(comment.LatestPerPlatform(links)) == 0 {
		return s.finish(ctx, store, "links", skip(repo, prNumber, ReasonNoLinks))
	}

	comments, err := store.ListIssueComments(ctx, repo, prNumber)
	if err != nil {
		metrics.Refreshes.WithLabelValues("links", "error").Inc()
		return fmt.Errorf("listing comments for %s#%d: %w", repo.FullName(), prNumber, err)
	}

	return s.finish(ctx, store, "links", PlanLinkUpdate(repo, prNumber, comments, s.botLogin, links))
}

// UpdateTranslationStats fills the translation statistics section of the
// deployment comment from the log of the first successful job of the build
// linked by targetURL. Every missing piece of data is a logged no-op.
func (s *DeploymentService) UpdateTranslationStats(ctx context.Context, store driven.CommentStore, repo model.Repo, targetURL string) error {
	buildID, ok := buildIDFromTargetURL(targetURL)
	if !ok {
		return s.finish(ctx, store, "stats", skip(repo, 0, ReasonNoBuildID))
	}

	build, err := s.ci.FetchBuild(ctx, repo, buildID)
	if err != nil {
		metrics.Refreshes.WithLabelValues("stats", "error").Inc()
		return fmt.Errorf("fetching build %d: %w", buildID, err)
	}

	job, ok := comment.FirstSuccessfulJob(build.Jobs)
	if !ok {
		return s.finish(ctx, store, "stats", skip(repo, build.PullRequestNumber, ReasonNoSuccessfulJob))
	}

	log, err := s.ci.FetchJobLog(ctx, job.ID)
	if err != nil {
		metrics.Refreshes.WithLabelValues("stats", "error").Inc()
		return fmt.Errorf("fetching log of job %s: %w", job.ID, err)
	}

	stats := comment.ExtractTranslationStats(log)
	if len(stats) == 0 {
		return s.finish(ctx, store, "stats", skip(repo, build.PullRequestNumber, ReasonNoStats))
	}
	if !build.HasPullRequest {
		return s.finish(ctx, store, "stats", skip(repo, 0, ReasonNoPullRequest))
	}

	comments, err := store.ListIssueComments(ctx, repo, build.PullRequestNumber)
	if err != nil {
		metrics.Refreshes.WithLabelValues("stats", "error").Inc()
		return fmt.Errorf("listing comments for %s#%d: %w", repo.FullName(), build.PullRequestNumber, err)
	}

	return s.finish(ctx, store, "stats", PlanStatsUpdate(repo, build.PullRequestNumber, comments, s.botLogin, stats))
}

// refreshLinksForBuild resolves the pull request of the build linked by
// targetURL and refreshes its links.
func (s *DeploymentService) refreshLinksForBuild(ctx context.Context, store driven.CommentStore, repo model.Repo, targetURL string) error {
	buildID, ok := buildIDFromTargetURL(targetURL)
	if !ok {
		return s.finish(ctx, store, "links", skip(repo, 0, ReasonNoBuildID))
	}

	build, err := s.ci.FetchBuild(ctx, repo, buildID)
	if err != nil {
		metrics.Refreshes.WithLabelValues("links", "error").Inc()
		return fmt.Errorf("fetching build %d: %w", buildID, err)
	}
	if !build.HasPullRequest {
		return s.finish(ctx, store, "links", skip(repo, 0, ReasonNoPullRequest))
	}

	return s.RefreshLinks(ctx, store, repo, build.PullRequestNumber)
}

// finish applies intent and records the refresh outcome under kind.
func (s *DeploymentService) finish(ctx context.Context, store driven.CommentStore, kind string, intent Intent) error {
	if err := applyIntent(ctx, store, intent); err != nil {
		metrics.Refreshes.WithLabelValues(kind, "error").Inc()
		return err
	}

	outcome := "updated"
	switch {
	case intent.Kind != IntentSkip:
	case intent.Reason == ReasonUnchanged:
		outcome = "unchanged"
	default:
		outcome = "skipped"
	}
	metrics.Refreshes.WithLabelValues(kind, outcome).Inc()

	return nil
}

// buildIDFromTargetURL returns the numeric build id in a CI status target URL.
func buildIDFromTargetURL(targetURL string) (int64, bool) {
	m := buildIDPattern.FindStringSubmatch(targetURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
