// Package config provides configuration loading and validation for filegate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FILEGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with FILEGATE_ prefix:
//   - server.port → FILEGATE_SERVER_PORT
//   - storage.provider → FILEGATE_STORAGE_PROVIDER
//   - storage.s3.endpoint → FILEGATE_STORAGE_S3_ENDPOINT
//
// storage.bucket can also be set with S3_BUCKET_NAME.
//
// # Configuration Structure
//
//   - Server: port and max_upload_size
//   - Storage: provider (s3, minio, local, memory), bucket and per-provider settings
//   - Database: object index for the local provider
//   - List: minimum, default and maximum page size of GET /files
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format (text or json)
package config
