package main

import (
	"os"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <remote-path> [remote-path...]",
	Short: "Delete files from the server",
	Long: `Delete one or more files from the server.

Every path is attempted; the command exits non-zero if any of them failed.

Examples:
  filegate-cli delete docs/file.txt
  filegate-cli delete old/a.txt old/b.txt old/c.txt
  filegate-cli delete -q temp/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Paths: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
