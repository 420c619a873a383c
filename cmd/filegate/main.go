package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filegate/config"
)

var version = "dev"

var configFiles []string

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filegate",
	Short:   "HTTP file gateway over object storage",
	Long: `filegate exposes a bucket on S3, MinIO, local disk or memory as a small
REST API: upload, download, inspect, delete and paginated listing of files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", nil, "config file path(s), merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "storage provider: s3, minio, local, memory (env: FILEGATE_STORAGE_PROVIDER)")
	rootCmd.PersistentFlags().String("bucket", "", "bucket name (env: FILEGATE_STORAGE_BUCKET or S3_BUCKET_NAME)")
	rootCmd.PersistentFlags().String("storage-path", "", "local storage directory (default: ./data, env: FILEGATE_STORAGE_LOCAL_PATH)")
	rootCmd.PersistentFlags().String("db-type", "", "index database type: sqlite, postgres (default: sqlite, env: FILEGATE_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "index database connection string (default: filegate.db, env: FILEGATE_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: FILEGATE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (env: FILEGATE_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
