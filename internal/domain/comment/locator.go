package comment

import "github.com/ericfisherdev/deploylinks/internal/domain/model"

// FindDeploymentComment returns the first comment authored by botLogin.
// Comments are expected in the order GitHub lists them, oldest first.
func FindDeploymentComment(comments []model.IssueComment, botLogin string) (model.IssueComment, bool) {
	for _, c := range comments {
		if c.Author == botLogin {
			return c, true
		}
	}
	return model.IssueComment{}, false
}
