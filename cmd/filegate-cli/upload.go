package main

import (
	"os"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadConcurrency int
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-path]",
	Short: "Upload files to the server",
	Long: `Upload files to the server.

The server answers 201 for a new file and 200 when an existing file was
replaced. When remote-path is omitted the local path is used, without any
leading "./", "/" or "../".

Examples:
  filegate-cli upload ./file.txt docs/file.txt
  filegate-cli upload -r ./images/ media/images/
  filegate-cli upload -r --concurrency 8 ./site/
  filegate-cli upload --content-type application/json ./data config.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().IntVar(&uploadConcurrency, "concurrency", clientcli.DefaultConcurrency, "parallel uploads in recursive mode")
}

func runUpload(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := ""
	if len(args) > 1 {
		remotePath = args[1]
	} else if !uploadRecursive {
		remotePath = clientcli.NormalizeLocalToRemotePath(localPath)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPath:   localPath,
		RemotePath:  remotePath,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
		Concurrency: uploadConcurrency,
	})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}

	return nil
}
