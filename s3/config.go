package s3

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// Config holds the connection settings for an S3 or S3-compatible endpoint.
type Config struct {
	// Region is the AWS region.
	Region string `mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint URL (e.g. http://localhost:9000).
	Endpoint string `mapstructure:"endpoint"`

	// AccessKey and SecretKey are optional; the default AWS credential chain
	// is used when either is empty.
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

func (c Config) withDefaults() Config {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return c
}
