package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/xdamman/stripe-mcp-fridge/internal/cli/client"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/config"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/loader"
	"github.com/xdamman/stripe-mcp-fridge/internal/cli/ui"
)

var (
	callArgs string
	callFile string
)

// callCmd is the call command
var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "invoke a tool directly",
	Long: `Invoke a single payment platform tool through the agent server, outside
any conversation.

Arguments are a JSON object matching the tool's parameter schema, given
inline with --args or loaded from a YAML file with --file. Tools without
parameters need neither.

The tool's output is printed to stdout as-is, so it can be piped.`,
	Example: `  # Invoke a tool without arguments
  $ fridgectl call retrieve_balance

  # Invoke with inline JSON arguments
  $ fridgectl call create_customer --args '{"name": "Ada"}'

  # Invoke with arguments from a YAML file
  $ fridgectl call create_payment_link -f payment-link.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callArgs, "args", "a", "", "Tool arguments as a JSON object")
	callCmd.Flags().StringVarP(&callFile, "file", "f", "", "YAML file with tool arguments")

	// Silence usage to avoid showing help on every error
	callCmd.SilenceUsage = true
}

func runCall(cmd *cobra.Command, args []string) error {
	toolName := args[0]

	if callArgs != "" && callFile != "" {
		ui.PrintError("--args and --file are mutually exclusive")
		return fmt.Errorf("invalid arguments")
	}

	// Resolve tool arguments
	arguments := callArgs
	if callFile != "" {
		loaded, err := loader.LoadToolArguments(callFile)
		if err != nil {
			ui.PrintError("failed to load arguments: %v", err)
			return fmt.Errorf("argument load failed")
		}
		arguments = loaded
	}

	// Inline arguments must be a JSON object, the same shape the model sends
	if arguments != "" && callFile == "" {
		var probe map[string]interface{}
		if err := sonic.UnmarshalString(arguments, &probe); err != nil {
			ui.PrintError("--args must be a JSON object: %v", err)
			return fmt.Errorf("invalid arguments")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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

	ui.PrintInfo("Calling tool '%s'...", toolName)

	result, err := apiClient.CallTool(ctx, toolName, arguments)
	if err != nil {
		ui.PrintErrorBox("✗ Call Failed", err.Error())
		return fmt.Errorf("call operation failed")
	}

	// A failed tool still returns a result; the failure is in the content
	if result.IsError {
		ui.PrintErrorBox("✗ Tool Error", result.Content)
		return fmt.Errorf("tool reported an error")
	}

	fmt.Println()
	fmt.Println(result.Content)

	return nil
}
