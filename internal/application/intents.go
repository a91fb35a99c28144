package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
	"github.com/ericfisherdev/deploylinks/internal/metrics"
)

// IntentKind names the side effect a plan asks for.
type IntentKind int

const (
	// IntentSkip means nothing is written; Intent.Reason says why.
	IntentSkip IntentKind = iota
	// IntentCreateComment posts Intent.Body as a new comment on Intent.Number.
	IntentCreateComment
	// IntentUpdateComment replaces the body of comment Intent.CommentID.
	IntentUpdateComment
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreateComment:
		return "create"
	case IntentUpdateComment:
		return "update"
	default:
		return "skip"
	}
}

// Reasons attached to skip intents. They double as log messages.
const (
	ReasonIgnoredAction   = "action ignored"
	ReasonNoLinks         = "no snapshot links found"
	ReasonNoComment       = "deployment comment not found"
	ReasonUnchanged       = "comment body unchanged"
	ReasonNoStats         = "no translation stats found"
	ReasonNoStatsHeading  = "comment has no translation stats section"
	ReasonNoPullRequest   = "build is not associated with a pull request"
	ReasonNoBuildID       = "no build id in status target URL"
	ReasonNoSuccessfulJob = "no successful build job"
)

// Intent is the outcome of a planning function: one comment write, or a skip
// with a reason. Planning functions are pure; applyIntent performs the write.
type Intent struct {
	Kind      IntentKind
	Repo      model.Repo
	Number    int   // Issue or pull request number.
	CommentID int64 // Set for IntentUpdateComment.
	Body      string
	Reason    string
}

func skip(repo model.Repo, number int, reason string) Intent {
	return Intent{Kind: IntentSkip, Repo: repo, Number: number, Reason: reason}
}

// PlanNewComment decides whether a pull_request event creates the deployment
// comment. Only the "opened" action does; the translation statistics section
// is included only for PRs titled translationTitle.
func PlanNewComment(ev model.PullRequestEvent, translationTitle string) Intent {
	if ev.Action != model.ActionOpened {
		return skip(ev.Repo, ev.Number, ReasonIgnoredAction)
	}
	return Intent{
		Kind:   IntentCreateComment,
		Repo:   ev.Repo,
		Number: ev.Number,
		Body:   comment.NewBody(ev.Title, translationTitle),
	}
}

// PlanLinkUpdate writes the newest link per platform into the deployment
// comment found among comments. Links are ranked here, so callers may pass the
// snapshot service's list as is.
func PlanLinkUpdate(repo model.Repo, number int, comments []model.IssueComment, botLogin string, links []model.ArtifactLink) Intent {
	latest := comment.LatestPerPlatform(links)
	if len(latest) == 0 {
		return skip(repo, number, ReasonNoLinks)
	}

	existing, ok := comment.FindDeploymentComment(comments, botLogin)
	if !ok {
		return skip(repo, number, ReasonNoComment)
	}

	doc := comment.Parse(existing.Body)
	for _, link := range latest {
		doc.SetLink(link.Platform, link.URL)
	}

	body := doc.String()
	if body == existing.Body {
		return skip(repo, number, ReasonUnchanged)
	}

	return Intent{Kind: IntentUpdateComment, Repo: repo, Number: number, CommentID: existing.ID, Body: body}
}

// PlanStatsUpdate replaces the translation statistics section of the
// deployment comment with a table rendered from stats. Comments created
// without the section are left alone.
func PlanStatsUpdate(repo model.Repo, number int, comments []model.IssueComment, botLogin string, stats model.TranslationStats) Intent {
	if len(stats) == 0 {
		return skip(repo, number, ReasonNoStats)
	}

	existing, ok := comment.FindDeploymentComment(comments, botLogin)
	if !ok {
		return skip(repo, number, ReasonNoComment)
	}

	doc := comment.Parse(existing.Body)
	if !doc.ReplaceTranslationStats(comment.RenderTranslationTable(stats)) {
		return skip(repo, number, ReasonNoStatsHeading)
	}

	body := doc.String()
	if body == existing.Body {
		return skip(repo, number, ReasonUnchanged)
	}

	return Intent{Kind: IntentUpdateComment, Repo: repo, Number: number, CommentID: existing.ID, Body: body}
}

// applyIntent performs the comment write an Intent asks for. Skips are logged
// at info level and are not errors.
func applyIntent(ctx context.Context, store driven.CommentStore, intent Intent) error {
	switch intent.Kind {
	case IntentCreateComment:
		id, err := store.CreateIssueComment(ctx, intent.Repo, intent.Number, intent.Body)
		if err != nil {
			metrics.CommentWrites.WithLabelValues("create", "error").Inc()
			return fmt.Errorf("creating deployment comment: %w", err)
		}
		metrics.CommentWrites.WithLabelValues("create", "ok").Inc()
		slog.Info("deployment comment created",
			"repo", intent.Repo.FullName(),
			"pr_number", intent.Number,
			"comment_id", id,
		)

	case IntentUpdateComment:
		slog.Debug("setting new comment body",
			"repo", intent.Repo.FullName(),
			"pr_number", intent.Number,
			"body", intent.Body,
		)
		if err := store.UpdateIssueComment(ctx, intent.Repo, intent.CommentID, intent.Body); err != nil {
			metrics.CommentWrites.WithLabelValues("update", "error").Inc()
			return fmt.Errorf("updating deployment comment %d: %w", intent.CommentID, err)
		}
		metrics.CommentWrites.WithLabelValues("update", "ok").Inc()
		slog.Info("deployment comment updated",
			"repo", intent.Repo.FullName(),
			"pr_number", intent.Number,
			"comment_id", intent.CommentID,
		)

	default:
		slog.Info("deployment comment left unchanged",
			"repo", intent.Repo.FullName(),
			"pr_number", intent.Number,
			"reason", intent.Reason,
		)
	}

	return nil
}
