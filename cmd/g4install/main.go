package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "g4install",
	Short: "Download, build and install Geant4 from source",
	Long: `g4install installs a Geant4 release from source on Linux and WSL.

It detects the distribution, installs the build dependencies, downloads
and unpacks the release archive, configures it with CMake, compiles and
installs it, then adds a shell alias that loads the Geant4 environment.

Every step that would replace existing files asks first. Use --yes to
accept the defaults, or --non-interactive when no terminal is attached.

Examples:
  g4install
  g4install --version 11.3.2 --cores 8
  g4install --remote
  g4install --non-interactive --version 11.2 --cores 4 --smoke-test never`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := installFlags.validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runInstall(ctx, installFlags); err != nil {
			exitWithCode(reportError(err))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show only errors")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show informational log messages")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug log messages")
	registerInstallFlags(rootCmd)

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(packagesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// isTruthy reports whether an environment value means "on".
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// determineLogLevel picks the log level from the flags, falling back to
// G4INSTALL_DEBUG, G4INSTALL_VERBOSE and G4INSTALL_QUIET. Debug beats
// verbose beats quiet within each group.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	case isTruthy(os.Getenv("G4INSTALL_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("G4INSTALL_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("G4INSTALL_QUIET")):
		return slog.LevelError
	}
	return slog.LevelWarn
}

func initLogger() {
	log.SetDefault(log.NewText(os.Stderr, determineLogLevel()))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		exitWithCode(ExitUsage)
	}
}
