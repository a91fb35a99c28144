package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/deploylinks/internal/application"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
)

func TestInstallationClients_CachesPerInstallation(t *testing.T) {
	app := &mockGitHubApp{}
	provider := application.NewInstallationClients(app)

	first := provider.ForInstallation(1)
	again := provider.ForInstallation(1)
	other := provider.ForInstallation(2)

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, []int64{1, 2}, app.minted)
	assert.Equal(t, 2, provider.Len())
}

func TestInstallationClients_ForRepo(t *testing.T) {
	app := &mockGitHubApp{installations: map[string]int64{"Mudlet/Mudlet": 42}}
	provider := application.NewInstallationClients(app)

	store, err := provider.ForRepo(context.Background(), "Mudlet", "Mudlet")

	require.NoError(t, err)
	assert.Same(t, provider.ForInstallation(42), store)
}

func TestInstallationClients_ForRepoNotInstalled(t *testing.T) {
	provider := application.NewInstallationClients(&mockGitHubApp{})

	store, err := provider.ForRepo(context.Background(), "someone", "else")

	assert.Nil(t, store)
	assert.ErrorIs(t, err, driven.ErrNotInstalled)
	assert.Equal(t, 0, provider.Len())
}

func TestInstallationClients_ForRepoLookupError(t *testing.T) {
	boom := errors.New("boom")
	provider := application.NewInstallationClients(&mockGitHubApp{lookupErr: boom})

	_, err := provider.ForRepo(context.Background(), "Mudlet", "Mudlet")

	assert.ErrorIs(t, err, boom)
}

func TestInstallationClients_ConcurrentAccess(t *testing.T) {
	app := &mockGitHubApp{}
	provider := application.NewInstallationClients(app)

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := range goroutines {
		go func() {
			defer wg.Done()
			assert.NotNil(t, provider.ForInstallation(int64(i%5)))
		}()
	}

	wg.Wait()

	assert.Equal(t, 5, provider.Len())
	assert.Len(t, app.minted, 5, "each installation is minted exactly once")
}
