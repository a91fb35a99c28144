package application_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/deploylinks/internal/application"
	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

const (
	testBot         = "add-deployment-links[bot]"
	testTranslation = "New Crowdin updates"
)

var testRepo = model.Repo{Owner: "Mudlet", Name: "Mudlet"}

func botComment(id int64, body string) model.IssueComment {
	return model.IssueComment{ID: id, Author: testBot, Body: body}
}

func TestPlanNewComment(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		title     string
		wantKind  application.IntentKind
		wantStats bool
	}{
		{name: "opened regular PR", action: "opened", title: "Fix crash", wantKind: application.IntentCreateComment},
		{name: "opened translation PR", action: "opened", title: testTranslation, wantKind: application.IntentCreateComment, wantStats: true},
		{name: "edited", action: "edited", title: "Fix crash", wantKind: application.IntentSkip},
		{name: "synchronize", action: "synchronize", title: testTranslation, wantKind: application.IntentSkip},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := application.PlanNewComment(model.PullRequestEvent{
				Repo: testRepo, Action: tc.action, Number: 7, Title: tc.title,
			}, testTranslation)

			assert.Equal(t, tc.wantKind, intent.Kind)
			if tc.wantKind == application.IntentSkip {
				assert.Equal(t, application.ReasonIgnoredAction, intent.Reason)
				return
			}
			assert.Equal(t, 7, intent.Number)
			assert.Equal(t, tc.wantStats, strings.Contains(intent.Body, "## Translation stats"))
		})
	}
}

func TestPlanLinkUpdate(t *testing.T) {
	body := comment.NewBody("Fix crash", testTranslation)
	comments := []model.IssueComment{
		{ID: 1, Author: "octocat", Body: "- linux: mine"},
		botComment(2, body),
	}
	links := []model.ArtifactLink{
		{Platform: "linux", URL: "https://dl/linux-old", CreatedAt: time.Unix(100, 0)},
		{Platform: "linux", URL: "https://dl/linux-new", CreatedAt: time.Unix(200, 0)},
		{Platform: "macos", URL: "https://dl/osx", CreatedAt: time.Unix(150, 0)},
	}

	intent := application.PlanLinkUpdate(testRepo, 7, comments, testBot, links)

	require.Equal(t, application.IntentUpdateComment, intent.Kind)
	assert.Equal(t, int64(2), intent.CommentID)
	assert.Contains(t, intent.Body, "- linux: https://dl/linux-new\n")
	assert.Contains(t, intent.Body, "- osx: https://dl/osx\n")
	assert.Contains(t, intent.Body, "- windows: (download pending, check back soon!)\n")
}

func TestPlanLinkUpdate_Skips(t *testing.T) {
	links := []model.ArtifactLink{{Platform: "linux", URL: "https://dl/linux"}}
	current := "- linux: https://dl/linux\n"

	tests := []struct {
		name     string
		comments []model.IssueComment
		links    []model.ArtifactLink
		reason   string
	}{
		{name: "no links", comments: []model.IssueComment{botComment(1, current)}, links: nil, reason: application.ReasonNoLinks},
		{name: "only unknown platforms", comments: []model.IssueComment{botComment(1, current)}, links: []model.ArtifactLink{{Platform: "android", URL: "x"}}, reason: application.ReasonNoLinks},
		{name: "no bot comment", comments: []model.IssueComment{{ID: 1, Author: "octocat", Body: current}}, links: links, reason: application.ReasonNoComment},
		{name: "already current", comments: []model.IssueComment{botComment(1, current)}, links: links, reason: application.ReasonUnchanged},
		{name: "no link line", comments: []model.IssueComment{botComment(1, "custom text\n")}, links: links, reason: application.ReasonUnchanged},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := application.PlanLinkUpdate(testRepo, 7, tc.comments, testBot, tc.links)

			assert.Equal(t, application.IntentSkip, intent.Kind)
			assert.Equal(t, tc.reason, intent.Reason)
		})
	}
}

func TestPlanStatsUpdate(t *testing.T) {
	body := comment.NewBody(testTranslation, testTranslation)
	stats := model.TranslationStats{
		"de_DE": {Language: "de_DE", Translated: 120, Untranslated: 3, Percentage: 97},
	}

	intent := application.PlanStatsUpdate(testRepo, 7, []model.IssueComment{botComment(5, body)}, testBot, stats)

	require.Equal(t, application.IntentUpdateComment, intent.Kind)
	assert.Equal(t, int64(5), intent.CommentID)
	assert.Contains(t, intent.Body, "|de_DE|120|3|97|\n")
	assert.NotContains(t, intent.Body, "calculation pending")
	assert.True(t, strings.HasPrefix(intent.Body, body[:strings.Index(body, "## Translation stats")]))
}

func TestPlanStatsUpdate_Skips(t *testing.T) {
	stats := model.TranslationStats{"de_DE": {Language: "de_DE", Translated: 1}}
	withHeading := comment.NewBody(testTranslation, testTranslation)
	withoutHeading := comment.NewBody("Fix crash", testTranslation)

	tests := []struct {
		name     string
		comments []model.IssueComment
		stats    model.TranslationStats
		reason   string
	}{
		{name: "no stats", comments: []model.IssueComment{botComment(1, withHeading)}, stats: model.TranslationStats{}, reason: application.ReasonNoStats},
		{name: "no bot comment", comments: nil, stats: stats, reason: application.ReasonNoComment},
		{name: "no heading", comments: []model.IssueComment{botComment(1, withoutHeading)}, stats: stats, reason: application.ReasonNoStatsHeading},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := application.PlanStatsUpdate(testRepo, 7, tc.comments, testBot, tc.stats)

			assert.Equal(t, application.IntentSkip, intent.Kind)
			assert.Equal(t, tc.reason, intent.Reason)
		})
	}
}

func TestPlanStatsUpdate_Idempotent(t *testing.T) {
	stats := model.TranslationStats{"fr_FR": {Language: "fr_FR", Translated: 9, Untranslated: 1, Percentage: 90}}
	first := application.PlanStatsUpdate(testRepo, 7,
		[]model.IssueComment{botComment(1, comment.NewBody(testTranslation, testTranslation))}, testBot, stats)
	require.Equal(t, application.IntentUpdateComment, first.Kind)

	second := application.PlanStatsUpdate(testRepo, 7, []model.IssueComment{botComment(1, first.Body)}, testBot, stats)

	assert.Equal(t, application.IntentSkip, second.Kind)
	assert.Equal(t, application.ReasonUnchanged, second.Reason)
}
