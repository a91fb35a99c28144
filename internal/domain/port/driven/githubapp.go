package driven

import (
	"context"
	"errors"
)

// ErrNotInstalled is returned by GitHubApp.FindRepoInstallation when the app is
// not installed on the requested repository.
var ErrNotInstalled = errors.New("app not installed to given owner and repository")

// GitHubApp defines the driven port for app-level GitHub operations: the
// single authenticated application handle that mints per-installation clients.
type GitHubApp interface {
	// FindRepoInstallation returns the installation id of the app on owner/repo.
	// It returns an error wrapping ErrNotInstalled when GitHub answers 404.
	FindRepoInstallation(ctx context.Context, owner, repo string) (int64, error)
	// CommentStore returns a comment store authenticated as the installation.
	CommentStore(installationID int64) CommentStore
}
