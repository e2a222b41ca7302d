package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/xdamman/stripe-mcp-fridge/internal/cli/client"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/config"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/ui"
)

var (
	configureModel string
)

// configureCmd is the configure command
var configureCmd = &cobra.Command{
	Use:   "configure [server]",
	Short: "configure the agent server connection",
	Long: `Configure the agent server address and the default model, saved locally.

Settings are stored in ~/.fridgectl/config.json and used automatically by
all subsequent commands.

If server is not provided, you will be prompted for it.`,
	Example: `  # Configure interactively
  $ fridgectl configure

  # Configure against a custom server
  $ fridgectl configure http://agent.example.com:8080

  # Configure with a preferred model
  $ fridgectl configure http://localhost:8080 -m gpt-4o-mini`,
	Args: cobra.MaximumNArgs(1), // Allow 0 or 1 server argument
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVarP(&configureModel, "model", "m", "", "Default model (blank keeps the server default)")

	// Silence usage to avoid showing help on every error
	configureCmd.SilenceUsage = true
}

func runConfigure(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Start from the existing config so re-running keeps prior answers
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	// 1. Server from positional argument, otherwise prompt with the current value
	server := ""
	if len(args) > 0 {
		server = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Server URL:",
			Default: cfg.Server,
		}
		if err := survey.AskOne(prompt, &server, survey.WithValidator(survey.Required)); err != nil {
			ui.PrintError("failed to read server URL: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	// 2. Model from flag, otherwise prompt (blank keeps the server default)
	model := configureModel
	if model == "" && len(args) == 0 {
		prompt := &survey.Input{
			Message: "Default model (leave blank for server default):",
			Default: cfg.Model,
		}
		if err := survey.AskOne(prompt, &model); err != nil {
			ui.PrintError("failed to read model: %v", err)
			return fmt.Errorf("input failed")
		}
	}

	// 3. Create API client
	apiClient, err := client.NewAPIClient(server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Connecting to %s...", server)

	// 4. Verify the server is reachable. An unreachable server is still
	// saved so the CLI can be configured before the server is started.
	if err := apiClient.Ping(ctx); err != nil {
		ui.PrintWarning("server not reachable right now: %v", err)
	} else {
		ui.PrintSuccess("Server is reachable")
	}

	// 5. Save config to local file
	cfg.Server = server
	if model != "" || configureModel != "" {
		cfg.Model = model
	}

	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}

	// 6. Display success message
	configPath, _ := config.GetConfigPath()
	modelDisplay := cfg.Model
	if modelDisplay == "" {
		modelDisplay = "(server default)"
	}
	successContent := fmt.Sprintf(`Server:        %s
Model:         %s
Config saved:  %s`,
		cfg.Server,
		modelDisplay,
		configPath,
	)

	ui.PrintSuccessBox("✓ Configuration Saved", successContent)

	// 7. Display usage hints
	fmt.Println()
	ui.PrintInfo("You can now use the following commands:")
	ui.PrintBold("  fridgectl chat    # Start interactive chat")
	ui.PrintBold("  fridgectl tools   # Inspect the tool catalog")

	return nil
}
