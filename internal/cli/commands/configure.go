package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
)

// configureCmd is the configure command
var configureCmd = &cobra.Command{
	Use:   "configure [server]",
	Short: "configure server address and credentials",
	Long: `Configure the Wayfinder API server address, API key, and shopper
identity, and save them locally.

Settings are stored in ~/.wayctl/config.json and used automatically for
all subsequent commands. Leave the API key empty when the server runs
without authentication (local dev).

If server is not provided, defaults to http://localhost:8000.`,
	Example: `  # Configure interactively against the default server
  $ wayctl configure

  # Configure against a custom server
  $ wayctl configure http://api.example.com:8000`,
	Args: cobra.MaximumNArgs(1), // Allow 0 or 1 server argument
	RunE: runConfigure,
}

func init() {
	configureCmd.SilenceUsage = true
}

func runConfigure(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Start from the existing config so reruns keep previous answers
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if len(args) > 0 {
		cfg.Server = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Server address:",
			Default: cfg.Server,
		}
		if err := survey.AskOne(prompt, &cfg.Server, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read server address: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	// Hidden input; empty means the server runs without auth
	var apiKey string
	keyPrompt := &survey.Password{
		Message: "API key (empty for none):",
	}
	if err := survey.AskOne(keyPrompt, &apiKey); err != nil {
		ui.PrintError("failed to read API key: %v", err)
		return fmt.Errorf("input failed")
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	userPrompt := &survey.Input{
		Message: "Shopper user ID:",
		Default: cfg.UserID,
	}
	if err := survey.AskOne(userPrompt, &cfg.UserID, survey.WithValidator(survey.Required)); err != nil {
		ui.PrintError("failed to read user ID: %v", err)
		return fmt.Errorf("input failed")
	}

	tierPrompt := &survey.Select{
		Message: "Loyalty tier:",
		Options: []string{"standard", "platinum", "business"},
		Default: tierOrDefault(cfg.LoyaltyTier),
	}
	if err := survey.AskOne(tierPrompt, &cfg.LoyaltyTier); err != nil {
		ui.PrintError("failed to read loyalty tier: %v", err)
		return fmt.Errorf("input failed")
	}

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	// Verify connectivity; a warning only, the config is already saved
	apiClient, err := client.NewAPIClient(cfg.Server, cfg.APIKey)
	if err != nil {
		ui.PrintWarning("saved, but server address looks invalid: %v", err)
		return nil
	}
	if err := apiClient.Ping(ctx); err != nil {
		ui.PrintWarning("saved, but server is not reachable: %v", err)
	}

	configPath, _ := config.GetConfigPath()
	successContent := fmt.Sprintf(`Server:        %s
User ID:       %s
Loyalty tier:  %s
Config saved:  %s`,
		cfg.Server,
		cfg.UserID,
		cfg.LoyaltyTier,
		configPath,
	)

	ui.PrintSuccessBox("✓ Configuration Saved", successContent)

	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  wayctl chat                 # Plan a trip with the assistant")
	ui.PrintBold("  wayctl search <query>       # Search the gear catalog")

	return nil
}

func tierOrDefault(tier string) string {
	switch tier {
	case "platinum", "business":
		return tier
	default:
		return "standard"
	}
}
