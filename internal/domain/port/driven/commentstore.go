package driven

import (
	"context"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// CommentStore defines the driven port for reading and writing issue comments
// on a single GitHub App installation. Pull request comments are issue
// comments as far as the GitHub API is concerned.
type CommentStore interface {
	// ListIssueComments returns every comment on the issue in the order GitHub
	// returned them (oldest first).
	ListIssueComments(ctx context.Context, repo model.Repo, number int) ([]model.IssueComment, error)
	// CreateIssueComment posts a new comment and returns its id.
	CreateIssueComment(ctx context.Context, repo model.Repo, number int, body string) (int64, error)
	// UpdateIssueComment replaces the body of an existing comment.
	UpdateIssueComment(ctx context.Context, repo model.Repo, commentID int64, body string) error
}
