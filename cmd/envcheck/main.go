package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jenian/envcheck/internal/config"
	"github.com/jenian/envcheck/internal/output"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "envcheck",
		Short: "Audit the environment variables a codebase reads",
		Long: "A CLI tool that finds the environment variables a codebase reads and checks them\n" +
			"against a deployment descriptor (serverless.yml, docker-compose.yml, ...) or the live environment.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Create a " + config.FileName + " file in the current directory",
		Long:  "Creates a " + config.FileName + " file with default configuration in the current directory.",
		Args:  cobra.NoArgs,
		RunE:  runInitConfig,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number of envcheck",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging routes diagnostics to stderr; --debug lowers the level to Debug
func setupLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	configPath := config.FileName

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in the current directory", config.FileName)
	}

	if err := os.WriteFile(configPath, []byte(config.Template), 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.FileName, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s in the current directory\n", config.FileName)
	return nil
}

func printHeader() {
	fmt.Fprintf(os.Stderr, "envcheck: environment variable audit\n")
	fmt.Fprintf(os.Stderr, "Version: %s\n\n", Version)
}

// exitError ends a successful run with a non-zero status, after deferred
// cleanup in the command has run
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitStatus maps the error returned by Execute to the process exit code and
// the message printed for it
func exitStatus(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code, ""
	}
	return 1, output.FormatError(err)
}

func main() {
	code, msg := exitStatus(rootCmd.Execute())
	if msg != "" {
		fmt.Fprint(os.Stderr, msg)
	}
	os.Exit(code)
}
