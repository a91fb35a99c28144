package driven

import (
	"context"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// SnapshotClient defines the driven port for the snapshot hosting service that
// stores test builds produced for pull requests.
type SnapshotClient interface {
	// FetchLinks returns every artifact the service holds for the pull request.
	// A payload without a usable list yields an empty slice and no error.
	FetchLinks(ctx context.Context, prNumber int) ([]model.ArtifactLink, error)
}
