package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// --- CommentStore mock ---

type createCall struct {
	Repo   model.Repo
	Number int
	Body   string
}

type updateCall struct {
	Repo      model.Repo
	CommentID int64
	Body      string
}

type mockCommentStore struct {
	mu        sync.Mutex
	comments  map[int][]model.IssueComment
	listErr   error
	updateErr error
	lists     []int
	creates   []createCall
	updates   []updateCall
}

func newMockCommentStore() *mockCommentStore {
	return &mockCommentStore{comments: make(map[int][]model.IssueComment)}
}

func (m *mockCommentStore) ListIssueComments(_ context.Context, _ model.Repo, number int) ([]model.IssueComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, number)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.comments[number], nil
}

func (m *mockCommentStore) CreateIssueComment(_ context.Context, repo model.Repo, number int, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, createCall{Repo: repo, Number: number, Body: body})
	return int64(1000 + len(m.creates)), nil
}

func (m *mockCommentStore) UpdateIssueComment(_ context.Context, repo model.Repo, commentID int64, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updateCall{Repo: repo, CommentID: commentID, Body: body})
	// Keep the stored body current so repeated refreshes see their own writes.
	for number, list := range m.comments {
		for i := range list {
			if list[i].ID == commentID {
				m.comments[number][i].Body = body
			}
		}
	}
	return nil
}

// --- CIClient mock ---

type mockCIClient struct {
	builds      map[int64]*model.Build
	logs        map[string]string
	buildErr    error
	fetchBuilds int
	fetchLogs   []string
}

func (m *mockCIClient) FetchBuild(_ context.Context, _ model.Repo, buildID int64) (*model.Build, error) {
	m.fetchBuilds++
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if b, ok := m.builds[buildID]; ok {
		return b, nil
	}
	return &model.Build{ID: buildID}, nil
}

func (m *mockCIClient) FetchJobLog(_ context.Context, jobID string) (string, error) {
	m.fetchLogs = append(m.fetchLogs, jobID)
	return m.logs[jobID], nil
}

// --- SnapshotClient mock ---

type mockSnapshotClient struct {
	links   map[int][]model.ArtifactLink
	err     error
	fetched []int
}

func (m *mockSnapshotClient) FetchLinks(_ context.Context, prNumber int) ([]model.ArtifactLink, error) {
	m.fetched = append(m.fetched, prNumber)
	if m.err != nil {
		return nil, m.err
	}
	return m.links[prNumber], nil
}

// --- GitHubApp mock ---

type mockGitHubApp struct {
	mu            sync.Mutex
	installations map[string]int64
	lookupErr     error
	minted        []int64
}

func (m *mockGitHubApp) FindRepoInstallation(_ context.Context, owner, repo string) (int64, error) {
	if m.lookupErr != nil {
		return 0, m.lookupErr
	}
	id, ok := m.installations[owner+"/"+repo]
	if !ok {
		return 0, driven.ErrNotInstalled
	}
	return id, nil
}

func (m *mockGitHubApp) CommentStore(installationID int64) driven.CommentStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minted = append(m.minted, installationID)
	return newMockCommentStore()
}
