package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	endpoint    string
	profileName string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "filegate-cli",
	Version: version,
	Short:   "Client for the filegate file gateway",
	Long: `filegate-cli - Client for the filegate file gateway

Upload, download, inspect, delete and list files stored behind a filegate
server. Server endpoints can be saved as named profiles with
'filegate-cli configure'.

Endpoint resolution (later wins):
  1. profile from the config file (--profile, FILEGATE_PROFILE or the default)
  2. FILEGATE_ENDPOINT
  3. --endpoint`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.filegate/config.yaml, env: FILEGATE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: FILEGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: FILEGATE_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the config file from --config, FILEGATE_CONFIG or the
// default location, in that order.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && name != "" {
				return nil, profileErr
			}
			if profileErr == nil {
				configs = append(configs, clientcli.ConfigFromProfile(p))
			}
		case errors.Is(err, os.ErrNotExist):
			if name != "" {
				return nil, fmt.Errorf("profile %q requested but %s does not exist", name, configPath)
			}
		default:
			return nil, err
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError prints err through the formatter and returns an exitError so
// main does not print it twice.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
