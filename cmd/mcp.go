package cmd

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"podscope/internal/config"
	"podscope/internal/mcptools"
	"podscope/pkg/logging"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server exposing pod inspection tools",
		Long: `Runs a Model Context Protocol server over stdio exposing podscope's
inspection surface (list_contexts, list_pods, describe_pod, pod_logs)
to MCP clients such as LLM agents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			// stdout carries the protocol; logs go to stderr.
			logging.InitForCLI(parseLogLevel(cfg.GlobalSettings.LogLevel), os.Stderr)

			s := server.NewMCPServer(
				"podscope",
				rootCmd.Version,
				server.WithToolCapabilities(true),
			)
			s.AddTools(mcptools.New(cfg.Kube.ConfigDir).ServerTools()...)

			logging.Info("MCP", "serving inspection tools over stdio")
			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
