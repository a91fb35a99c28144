package appveyor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/deploylinks/internal/adapter/driven/appveyor"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.Handler) *appveyor.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return appveyor.New(
		appveyor.WithBaseURL(server.URL+"/"),
		appveyor.WithHTTPClient(server.Client()),
	)
}

func TestFetchBuild(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/Mudlet/mudlet/builds/5150", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"project": {"slug": "mudlet"},
			"build": {
				"buildId": 5150,
				"pullRequestId": "4321",
				"jobs": [
					{"jobId": "job-a", "status": "failed"},
					{"jobId": "job-b", "status": "success"}
				]
			}
		}`))
	}))

	build, err := client.FetchBuild(context.Background(), model.Repo{Owner: "Mudlet", Name: "Mudlet"}, 5150)

	require.NoError(t, err)
	assert.Equal(t, int64(5150), build.ID)
	assert.True(t, build.HasPullRequest)
	assert.Equal(t, 4321, build.PullRequestNumber)
	assert.Equal(t, []model.BuildJob{
		{ID: "job-a", Status: model.JobStatus("failed")},
		{ID: "job-b", Status: model.JobStatusSuccess},
	}, build.Jobs)
}

func TestFetchBuild_NumericPullRequestID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"build": {"pullRequestId": 77, "jobs": []}}`))
	}))

	build, err := client.FetchBuild(context.Background(), model.Repo{Owner: "o", Name: "r"}, 1)

	require.NoError(t, err)
	assert.True(t, build.HasPullRequest)
	assert.Equal(t, 77, build.PullRequestNumber)
	assert.Empty(t, build.Jobs)
}

func TestFetchBuild_BranchBuild(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"build": {"branch": "development", "jobs": [{"jobId": "j", "status": "success"}]}}`))
	}))

	build, err := client.FetchBuild(context.Background(), model.Repo{Owner: "o", Name: "r"}, 1)

	require.NoError(t, err)
	assert.False(t, build.HasPullRequest)
	assert.Len(t, build.Jobs, 1)
}

func TestFetchBuild_UpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Build not found", http.StatusNotFound)
	}))

	_, err := client.FetchBuild(context.Background(), model.Repo{Owner: "o", Name: "r"}, 1)

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "appveyor", upstream.Service)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Contains(t, err.Error(), "Build not found")
}

func TestFetchBuild_InvalidJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))

	_, err := client.FetchBuild(context.Background(), model.Repo{Owner: "o", Name: "r"}, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestFetchJobLog(t *testing.T) {
	const log = "[12:00:05] de_DE 120 3 0 0 0 97%\n"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/buildjobs/job-b/log", r.URL.Path)
		w.Write([]byte(log))
	}))

	got, err := client.FetchJobLog(context.Background(), "job-b")

	require.NoError(t, err)
	assert.Equal(t, log, got)
}
