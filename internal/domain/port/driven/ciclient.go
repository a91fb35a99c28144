package driven

import (
	"context"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// CIClient defines the driven port for the continuous-integration provider
// that builds pull requests and prints translation statistics in its logs.
type CIClient interface {
	// FetchBuild returns the build with the given id for the repository.
	FetchBuild(ctx context.Context, repo model.Repo, buildID int64) (*model.Build, error)
	// FetchJobLog returns the raw console log of a build job.
	FetchJobLog(ctx context.Context, jobID string) (string, error)
}
