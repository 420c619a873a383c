package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filegate/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured bucket",
	Long: `Make sure the configured bucket exists on the storage backend.

  s3      HeadBucket, then CreateBucket when missing
  minio   BucketExists, then MakeBucket when missing
  local   creates the bucket directory and migrates the index table
  memory  no-op

Running init against an existing bucket is safe.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := store.EnsureBucket(ctx, cfg.Storage.Bucket); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", cfg.Storage.Bucket, err)
	}

	slog.Info("initialization complete", "provider", cfg.Storage.Provider, "bucket", cfg.Storage.Bucket)
	return nil
}
