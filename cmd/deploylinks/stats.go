package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
)

var statsCmd = &cobra.Command{
	Use:   "stats <logfile>",
	Short: "Print the translation statistics table for a CI job log",
	Long: `Extract the per-language translation statistics from a CI job log and
print the Markdown table that would be written into the deployment comment.
Use "-" to read the log from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := readLog(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		stats := comment.ExtractTranslationStats(log)
		if len(stats) == 0 {
			return fmt.Errorf("no translation statistics found in %s", args[0])
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), comment.RenderTranslationTable(stats))
		return err
	},
}

func readLog(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading log: %w", err)
	}
	return string(data), nil
}
