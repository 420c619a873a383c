package main

import (
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <remote-path>",
	Short: "Show file metadata",
	Long: `Show the metadata of a file without downloading it.

Prints content type, size, last modification time and ETag as reported by a
HEAD request.

Examples:
  filegate-cli info docs/report.pdf
  filegate-cli info --json docs/report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	info, err := client.Info(cmd.Context(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatInfo(os.Stdout, info)
}
