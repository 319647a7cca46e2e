package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"podscope/internal/config"
	"podscope/internal/tui/controller"
	"podscope/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podscope",
	Short: "Inspect Kubernetes pods from your terminal",
	Long: `podscope is a terminal UI for inspecting Kubernetes workloads.
It discovers the contexts in your kubeconfig directory, lists pods, and
attaches to a selected pod with an interactive shell, streamed logs,
describe output or ad-hoc kubectl commands, with optional LLM-based
analysis of what it sees.`,
	// SilenceUsage prevents printing the usage block on errors we
	// already report ourselves.
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func runTUI() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logChannel := logging.InitForTUI(parseLogLevel(cfg.GlobalSettings.LogLevel))
	defer logging.CloseTUIChannel()

	p := controller.NewProgram(cfg, logChannel)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "podscope version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newMCPCmd())
}
