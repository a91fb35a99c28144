package application

import (
	"context"
	"sync"

	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

// InstallationClients hands out per-installation comment stores minted from
// the single GitHub App handle. Stores are cached by installation id so their
// token sources and HTTP caches are reused across deliveries.
type InstallationClients struct {
	app driven.GitHubApp

	mu     sync.RWMutex
	stores map[int64]driven.CommentStore
}

// NewInstallationClients creates a provider backed by app.
func NewInstallationClients(app driven.GitHubApp) *InstallationClients {
	return &InstallationClients{
		app:    app,
		stores: make(map[int64]driven.CommentStore),
	}
}

// ForInstallation returns the comment store for installationID, creating it
// on first use.
func (p *InstallationClients) ForInstallation(installationID int64) driven.CommentStore {
	p.mu.RLock()
	store, ok := p.stores[installationID]
	p.mu.RUnlock()
	if ok {
		return store
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if store, ok := p.stores[installationID]; ok {
		return store
	}
	store = p.app.CommentStore(installationID)
	p.stores[installationID] = store
	return store
}

// ForRepo resolves the app installation on owner/repo and returns its comment
// store. Lookup errors are returned unchanged so callers can match
// driven.ErrNotInstalled.
func (p *InstallationClients) ForRepo(ctx context.Context, owner, repo string) (driven.CommentStore, error) {
	id, err := p.app.FindRepoInstallation(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	return p.ForInstallation(id), nil
}

// Len returns the number of cached installation stores.
func (p *InstallationClients) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stores)
}
