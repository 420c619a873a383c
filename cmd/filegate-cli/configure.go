package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/filegate/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

Profiles save the endpoint of one or more filegate servers so you can switch
between them with --profile or FILEGATE_PROFILE.

Configuration is stored in ~/.filegate/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for:
  - Endpoint URL
  - Whether to set as default

The endpoint connection will be tested before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)
}

// confirm asks a yes/no question; anything but "y" is a no.
func confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

// loadProfiles reads the profile file. A missing file yields an empty
// ConfigFile when allowMissing is set.
func loadProfiles(path string, allowMissing bool) (*clientcli.ConfigFile, error) {
	cfg, err := clientcli.LoadConfigFile(path)
	switch {
	case err == nil:
		return cfg, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, nil
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
}

func saveProfiles(cfg *clientcli.ConfigFile, path string) error {
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(getConfigPath(), true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'filegate-cli configure add <name>' to create one.")
		return nil
	}

	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, cfg.DefaultProfileName())
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := loadProfiles(configPath, true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	endpointPrompt := promptui.Prompt{
		Label:    "Endpoint URL",
		Default:  clientcli.DefaultEndpoint,
		Validate: clientcli.ValidateEndpoint,
	}
	if existing != nil {
		endpointPrompt.Default = existing.Endpoint
	}
	endpointURL, err := endpointPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	// The first profile, or an updated default, stays default without asking.
	makeDefault := len(cfg.Profiles) == 0 || (existing != nil && existing.Default)
	if !makeDefault {
		makeDefault = confirm("Set as default profile")
	}

	fmt.Print("Testing connection... ")
	if connErr := testServerConnection(cmd.Context(), endpointURL); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: Could not connect to server: %v\n", connErr)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	profile := clientcli.Profile{Name: name, Endpoint: strings.TrimSuffix(endpointURL, "/")}
	verb := "added"
	if existing != nil {
		verb = "updated"
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return err
	}

	if makeDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := saveProfiles(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if makeDefault {
		fmt.Println("Set as default profile.")
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := loadProfiles(configPath, false)
	if err != nil {
		return err
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := saveProfiles(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	configPath := getConfigPath()

	cfg, err := loadProfiles(configPath, false)
	if err != nil {
		return err
	}

	if err := cfg.SetDefault(args[0]); err != nil {
		return err
	}

	if err := saveProfiles(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := loadProfiles(getConfigPath(), false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(os.Stdout, *p, p.Name == cfg.DefaultProfileName())
}

// testServerConnection requests a one-file listing. Any HTTP response counts
// as reachable.
func testServerConnection(ctx context.Context, endpointURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	target := strings.TrimSuffix(endpointURL, "/") + "/files?page_size=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return resp.Body.Close()
}

// handlePromptError turns Ctrl-C into a clean exit and Ctrl-D into a no-op.
func handlePromptError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		fmt.Println("\nCancelled.")
		os.Exit(0)
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrEOF):
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
