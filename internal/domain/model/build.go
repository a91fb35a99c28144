package model

// Build is the subset of an AppVeyor build the bot needs: the pull request it
// was triggered for and its jobs in the order AppVeyor returned them.
type Build struct {
	ID                int64
	PullRequestNumber int
	HasPullRequest    bool // False for branch builds with no associated PR.
	Jobs              []BuildJob
}

// BuildJob is a single job inside an AppVeyor build matrix.
type BuildJob struct {
	ID     string
	Status JobStatus
}
