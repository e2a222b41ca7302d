package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdamman/stripe-mcp-fridge/internal/cli/client"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/config"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/ui"
)

var (
	toolsRefresh bool
)

// toolsCmd is the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "list the tools the agent can call",
	Long: `List the payment platform tools the agent can call, in a tree view.

The catalog is served from the agent server's cache. Use --refresh to make
the server refetch it from the tool server first.

The output includes:
  • Tool names and descriptions
  • Parameter names, types, and required markers`,
	Example: `  # List the tool catalog
  $ fridgectl tools

  # Bypass the server-side cache
  $ fridgectl tools --refresh`,
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVarP(&toolsRefresh, "refresh", "r", false, "Refetch the catalog from the tool server")

	// Silence usage to avoid showing help on every error
	toolsCmd.SilenceUsage = true
}

func runTools(cmd *cobra.Command, args []string) error {
	// Validate arguments
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Printf("\nRun '%s --help' for usage.\n", cmd.CommandPath())
		return fmt.Errorf("invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	// Create API client
	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	if toolsRefresh {
		ui.PrintInfo("Refreshing tool catalog...")
	} else {
		ui.PrintInfo("Fetching tool catalog...")
	}

	// Fetch the catalog
	tools, err := apiClient.ListTools(ctx, toolsRefresh)
	if err != nil {
		ui.PrintError("failed to list tools: %v", err)
		return fmt.Errorf("list operation failed")
	}

	// Render and display results using UI package
	fmt.Println()
	fmt.Println(ui.RenderToolTree(tools))
	fmt.Println(ui.RenderToolSummary(len(tools)))

	return nil
}
