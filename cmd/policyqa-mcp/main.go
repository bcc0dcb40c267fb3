package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/policyqa/internal/app"
	"github.com/ternarybob/policyqa/internal/common"
	"github.com/ternarybob/policyqa/internal/services/transform"
)

func main() {
	var configFiles []string
	if configPath := os.Getenv("POLICYQA_CONFIG"); configPath != "" {
		configFiles = append(configFiles, configPath)
	} else if _, err := os.Stat("policyqa.toml"); err == nil {
		configFiles = append(configFiles, "policyqa.toml")
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := common.NewQuietLogger("warn")

	client, err := app.NewQAClient(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize question-answering client")
	}

	mcpServer := server.NewMCPServer(
		"policyqa",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	asker := &questionAsker{
		client:    client,
		transform: transform.NewService(logger),
		rawMarkup: config.Render.RawSourceMarkup,
		logger:    logger,
	}
	mcpServer.AddTool(createAskQuestionTool(), handleAskQuestion(asker))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
