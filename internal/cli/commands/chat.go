package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/tui"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive trip-planning chat",
	Long: `Start an interactive chat session with the Wayfinder trip-planning
assistant. The assistant streams its reasoning and tool calls live, and
recommends gear from the catalog as it plans.`,
	Example: `  # Start interactive chat
  $ wayctl chat

  # Keyboard controls:
  • Enter sends the message
  • Esc quits the session`,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'wayctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.APIKey)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintChatWelcomeBanner()

	program := tui.NewChatProgram(apiClient, cfg.UserID)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
