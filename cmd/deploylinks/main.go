package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/deploylinks/internal/adapter/driven/appveyor"
	githubadapter "github.com/ericfisherdev/deploylinks/internal/adapter/driven/github"
	"github.com/ericfisherdev/deploylinks/internal/adapter/driven/snapshots"
	"github.com/ericfisherdev/deploylinks/internal/application"
	"github.com/ericfisherdev/deploylinks/internal/config"
	"github.com/ericfisherdev/deploylinks/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "deploylinks",
	Short: "Keep pull request deployment comments up to date",
	Long: `deploylinks is a GitHub App that posts a deployment comment on every new
pull request and keeps it current with links to the latest test builds and,
for translation updates, the per-language translation statistics.

Run without a subcommand to start the webhook server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(refreshCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the configured logger as the process default.
func setupLogger(cfg *config.Config) {
	slog.SetDefault(logging.NewLogger(os.Stderr, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel)))
}

// components are the adapters and services shared by serve and refresh.
type components struct {
	clients *application.InstallationClients
	svc     *application.DeploymentService
}

// wire builds the GitHub App handle, the CI and snapshot clients and the
// deployment service from cfg.
func wire(cfg *config.Config) (*components, error) {
	appOpts := []githubadapter.AppOption{githubadapter.WithTimeout(cfg.HTTPTimeout)}
	if cfg.GitHubBaseURL != "" {
		appOpts = append(appOpts, githubadapter.WithBaseURL(cfg.GitHubBaseURL))
	}
	app, err := githubadapter.NewApp(cfg.AppID, []byte(cfg.PrivateKey), appOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating github app: %w", err)
	}

	httpClient := newHTTPClient(cfg.HTTPTimeout)
	ci := appveyor.New(appveyor.WithBaseURL(cfg.AppVeyorURL), appveyor.WithHTTPClient(httpClient))
	snaps := snapshots.New(snapshots.WithBaseURL(cfg.SnapshotURL), snapshots.WithHTTPClient(httpClient))

	return &components{
		clients: application.NewInstallationClients(app),
		svc:     application.NewDeploymentService(ci, snaps, cfg.BotLogin, cfg.TranslationTitle),
	}, nil
}
