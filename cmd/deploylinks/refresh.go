package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/deploylinks/internal/config"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

var (
	refreshOwner string
	refreshRepo  string
	refreshPR    int
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the snapshot links of one pull request",
	Long: `Look up the app installation for the repository and rewrite the link
lines of the pull request's deployment comment with the newest snapshots, the
same way the "/refresh links" comment command does.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if refreshOwner == "" || refreshRepo == "" {
			return errors.New("--owner and --repo are required")
		}
		if refreshPR <= 0 {
			return fmt.Errorf("--pr must be a positive pull request number, got %d", refreshPR)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg)

		c, err := wire(cfg)
		if err != nil {
			return err
		}

		store, err := c.clients.ForRepo(cmd.Context(), refreshOwner, refreshRepo)
		if err != nil {
			return err
		}

		repo := model.Repo{Owner: refreshOwner, Name: refreshRepo}
		if err := c.svc.RefreshLinks(cmd.Context(), store, repo, refreshPR); err != nil {
			return err
		}
		slog.Info("refresh complete", "repo", repo.FullName(), "pr_number", refreshPR)
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshOwner, "owner", "", "Repository owner")
	refreshCmd.Flags().StringVar(&refreshRepo, "repo", "", "Repository name")
	refreshCmd.Flags().IntVar(&refreshPR, "pr", 0, "Pull request number")
}
