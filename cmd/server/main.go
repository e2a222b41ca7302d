package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	_ "github.com/xdamman/stripe-mcp-fridge/docs" // swagger docs
	"github.com/xdamman/stripe-mcp-fridge/internal/config"
	"github.com/xdamman/stripe-mcp-fridge/internal/handler"
	"github.com/xdamman/stripe-mcp-fridge/internal/infrastructure/llm"
	"github.com/xdamman/stripe-mcp-fridge/internal/infrastructure/mcp"
	"github.com/xdamman/stripe-mcp-fridge/internal/router"
	"github.com/xdamman/stripe-mcp-fridge/internal/usecase"
	"github.com/xdamman/stripe-mcp-fridge/pkg/logger"
)

//	@title			Fridge Agent Server
//	@version		0.1.0
//	@description	Streaming chat agent that answers payment-platform questions by calling MCP tools server-side and relaying the model's token stream over SSE

//	@contact.name	API Support
//	@contact.email	support@example.com

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:8080
//	@BasePath	/v1

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "fridge-server",
	Short: "Streaming tool-calling agent server",
	Long: `Fridge Agent Server is a streaming chat service built on the Hertz framework.
It drives an OpenAI-compatible model, executes the tool calls the model requests
against an MCP tool server, and relays the final answer token by token over SSE.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("config loaded successfully", "config_file", cfgFile)
	slog.Info("Fridge Agent Server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz's own logging through slog
	hertzLogger := logger.NewHertzSlogAdapter(slog.Default())
	hlog.SetLogger(hertzLogger)
	hlog.SetLevel(hlog.LevelDebug)

	slog.Debug("hertz logger configured to use slog")

	// Tool transport and catalog. The MCP connection is lazy: a tool server
	// that is down at boot degrades to an empty catalog instead of blocking
	// startup.
	toolbox := mcp.NewToolbox(cfg.Tools.Transport, cfg.Tools.ConnectTimeout, slog.Default())
	catalog := usecase.NewToolCatalog(toolbox, cfg.Tools.CacheTTL, slog.Default())

	// Model provider
	providerClient, err := llm.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout, slog.Default())
	if err != nil {
		slog.Error("failed to create provider client", "error", err)
		os.Exit(1)
	}

	// Chat components
	settings := usecase.ChatSettings{
		DefaultModel: cfg.Provider.Model,
		Temperature:  cfg.Provider.Temperature,
		MaxTokens:    cfg.Provider.MaxTokens,
		MaxTurns:     cfg.Chat.MaxTurns,
		SystemPrompt: cfg.Chat.SystemPrompt,
		ToolTimeout:  cfg.Tools.CallTimeout,
	}
	chatUsecase := usecase.NewChatUsecase(providerClient, toolbox, catalog, settings, slog.Default())
	chatHandler := handler.NewChatHandler(chatUsecase, cfg.Provider.Model, slog.Default())

	toolsUsecase := usecase.NewToolsUsecase(toolbox, catalog, cfg.Tools.CallTimeout, slog.Default())
	toolsHandler := handler.NewToolsHandler(toolsUsecase, slog.Default())

	healthHandler := handler.NewHealthHandler(cfg.Provider.BaseURL, catalog)

	slog.Info("handlers initialized",
		"provider", cfg.Provider.BaseURL,
		"model", cfg.Provider.Model,
		"tool_transport", cfg.Tools.Transport,
		"max_turns", cfg.Chat.MaxTurns,
	)

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.GetReadTimeout()),
		server.WithWriteTimeout(cfg.GetWriteTimeout()),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize),
		server.WithTransport(netpoll.NewTransporter),
	)

	// Setup routes
	router.Setup(h, chatHandler, toolsHandler, healthHandler)

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	// Graceful shutdown
	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	// Close the tool server session
	if err := toolbox.Close(); err != nil {
		slog.Error("failed to close tool session", "error", err)
	} else {
		slog.Info("tool session closed")
	}

	slog.Info("server stopped gracefully")
}
