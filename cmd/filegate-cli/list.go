package main

import (
	"errors"
	"os"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/spf13/cobra"
)

var (
	listDirectory string
	listPageSize  int
	listPageToken string
	listAll       bool
)

var errTokenCombined = errors.New("--page-token cannot be combined with --directory, --page-size or a directory argument")

var listCmd = &cobra.Command{
	Use:   "list [directory]",
	Short: "List files on the server",
	Long: `List files on the server, one page at a time.

A page token from a previous listing resumes that listing with its original
directory and page size, so it cannot be combined with --directory or
--page-size.

Examples:
  filegate-cli list
  filegate-cli list images/
  filegate-cli list --directory documents/ --page-size 10
  filegate-cli list --all
  filegate-cli list --page-token "eyJjIjoi..."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listDirectory, "directory", "", "only list files under this directory prefix")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "files per page (server default when unset)")
	listCmd.Flags().StringVar(&listPageToken, "page-token", "", "resume a previous listing")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
}

func runList(cmd *cobra.Command, args []string) error {
	directory := listDirectory
	if len(args) > 0 {
		directory = args[0]
	}

	if listPageToken != "" && (directory != "" || cmd.Flags().Changed("page-size")) {
		return errTokenCombined
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{
		Directory: directory,
		PageSize:  listPageSize,
		PageToken: listPageToken,
		All:       listAll,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatList(os.Stdout, result)
}
