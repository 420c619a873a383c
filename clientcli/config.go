package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5708"

// Environment variables read by the CLI.
const (
	EnvEndpoint = "FILEGATE_ENDPOINT"
	EnvProfile  = "FILEGATE_PROFILE"
	EnvConfig   = "FILEGATE_CONFIG"
)

// Profile holds configuration for a single server profile.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Default  bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// index returns the position of the named profile, or -1.
func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// GetProfile returns the named profile, or the default one when name is empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if i := c.index(name); i >= 0 {
		return &c.Profiles[i], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the profile marked default, falling back to the
// first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
		return &c.Profiles[i], nil
	}
	return &c.Profiles[0], nil
}

// DefaultProfileName returns the name GetDefaultProfile resolves to, or "".
func (c *ConfigFile) DefaultProfileName() string {
	if p, err := c.GetDefaultProfile(); err == nil {
		return p.Name
	}
	return ""
}

// AddProfile appends p. Names are unique; use UpdateProfile to change one.
func (c *ConfigFile) AddProfile(p Profile) error {
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile with the same name as p.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	i := c.index(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks the named profile as the only default.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
	}
	return nil
}

// ProfileNames returns the profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the file atomically with mode 0600, creating the parent
// directory when needed.
func (c *ConfigFile) Save(path string) (err error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(0o600); err != nil {
		return fmt.Errorf("chmod config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.filegate/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".filegate", "config.yaml")
}

// Config holds resolved client configuration for a single server.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint string
}

// Validate checks that Endpoint, when set, is an absolute http(s) URL.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	return ValidateEndpoint(c.Endpoint)
}

// WithDefaults returns a copy of the config with default values applied.
// If Endpoint is empty, it defaults to DefaultEndpoint.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// ValidateEndpoint reports whether s is an http or https URL with a host.
func ValidateEndpoint(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, s)
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint: p.Endpoint,
	}
}

// ConfigFromEnv loads config from environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: strings.TrimSpace(os.Getenv(EnvEndpoint)),
	}
}

// ProfileFromEnv returns the profile name from FILEGATE_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv(EnvProfile)
}

// ConfigPathFromEnv returns the config file path from FILEGATE_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv(EnvConfig)
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty strings in later configs do not override non-empty values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
	}
	return result
}
