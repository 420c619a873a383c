package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database"
	filegatehttp "github.com/sagarc03/filegate/http"
	"github.com/sagarc03/filegate/minio"
	"github.com/sagarc03/filegate/s3"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FILEGATE"

// BucketEnvAlias is an additional environment variable for storage.bucket.
const BucketEnvAlias = "S3_BUCKET_NAME"

// Storage providers accepted by storage.provider.
const (
	ProviderS3     = "s3"
	ProviderMinio  = "minio"
	ProviderLocal  = "local"
	ProviderMemory = "memory"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for filegate.
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Storage  StorageConfig           `mapstructure:"storage"`
	Database database.Config         `mapstructure:"database"`
	List     filegate.PageSizeBounds `mapstructure:"list"`
	CORS     filegatehttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=0"`
}

// StorageConfig selects and configures the object storage backend.
type StorageConfig struct {
	Provider string       `mapstructure:"provider" validate:"required,oneof=s3 minio local memory"`
	Bucket   string       `mapstructure:"bucket" validate:"required"`
	S3       s3.Config    `mapstructure:"s3"`
	Minio    minio.Config `mapstructure:"minio"`
	Local    LocalConfig  `mapstructure:"local"`
}

// LocalConfig holds settings for the local disk backend.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.local.path",
	"provider":     "storage.provider",
	"bucket":       "storage.bucket",
	"port":         "server.port",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key is
// registered so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit

	v.SetDefault("storage.provider", ProviderLocal)
	v.SetDefault("storage.bucket", "files")

	v.SetDefault("storage.s3.region", s3.DefaultRegion)
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.force_path_style", false)

	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.region", "")

	v.SetDefault("storage.local.path", "./data")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "filegate.db")
	v.SetDefault("database.table", "filegate_objects")

	bounds := filegate.DefaultPageSizeBounds()
	v.SetDefault("list.min_page_size", bounds.Min)
	v.SetDefault("list.default_page_size", bounds.Default)
	v.SetDefault("list.max_page_size", bounds.Max)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "PUT", "HEAD", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.exposed_headers", []string{"Content-Length", "Last-Modified", "ETag"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("storage.bucket", EnvPrefix+"_STORAGE_BUCKET", BucketEnvAlias)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := c.List.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	switch c.Storage.Provider {
	case ProviderLocal:
		if c.Storage.Local.Path == "" {
			return errors.New("validate config: storage.local.path is required for the local provider")
		}
		if err := filegate.ValidateTableName(c.Database.Table); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	case ProviderMinio:
		if c.Storage.Minio.Endpoint == "" {
			return errors.New("validate config: storage.minio.endpoint is required for the minio provider")
		}
	}

	return nil
}

// HandlerConfig builds the HTTP handler configuration.
func (c *Config) HandlerConfig(logger *slog.Logger) filegatehttp.HandlerConfig {
	return filegatehttp.HandlerConfig{
		Bounds:        c.List,
		MaxUploadSize: c.Server.MaxUploadSize,
		CORS:          c.CORS,
		Logger:        logger,
	}
}
