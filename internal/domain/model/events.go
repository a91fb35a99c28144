package model

// PullRequestEvent is the subset of a pull_request webhook the bot acts on.
type PullRequestEvent struct {
	Repo           Repo
	InstallationID int64
	Action         string
	Number         int
	Title          string
}

// StatusEvent is the subset of a commit status webhook the bot acts on.
// TargetURL points at the CI build page and carries the numeric build id.
type StatusEvent struct {
	Repo           Repo
	InstallationID int64
	Context        string
	State          string
	TargetURL      string
}

// IssueCommentEvent is the subset of an issue_comment webhook the bot acts on.
type IssueCommentEvent struct {
	Repo           Repo
	InstallationID int64
	Action         string
	IssueNumber    int
	Body           string
	Author         string
}
