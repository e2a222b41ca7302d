package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xdamman/stripe-mcp-fridge/internal/cli/client"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/config"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/tui"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat with the Fridge Agent",
	Long: `Start an interactive chat session with the Fridge Agent.

The agent streams its replies token by token and can call payment platform
tools mid-turn. Conversation context is kept for the whole session.`,
	Example: `  # Start interactive chat
  $ fridgectl chat

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
		fmt.Println("\nRun 'fridgectl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	program := tui.NewChatProgram(apiClient, cfg.Model)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
