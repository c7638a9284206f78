package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/secrets"
	"github.com/tsukumogami/g4install/internal/userconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage g4install configuration",
	Long: `Manage g4install configuration settings.

Configuration is stored in $XDG_CONFIG_HOME/g4install/config.toml
(~/.config/g4install/config.toml by default). Command-line flags take
precedence over these settings.

Examples:
  g4install config list
  g4install config get tag_source
  g4install config set default_cores 8
  g4install config set smoke_test never`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		value, ok := cfg.Get(key)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys(os.Stderr)
			exitWithCode(ExitUsage)
		}

		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		if err := cfg.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			printAvailableKeys(os.Stderr)
			exitWithCode(ExitUsage)
		}

		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		fmt.Printf("%s = %s\n", key, value)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every configuration value",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}
		printConfig(os.Stdout, cfg)
		printSecrets(os.Stdout)
	},
}

func printConfig(w io.Writer, cfg *userconfig.Config) {
	for _, k := range userconfig.SortedKeys() {
		value, _ := cfg.Get(k)
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(w, "%-16s %s\n", k, value)
	}
}

// printSecrets shows where each secret comes from, never its value.
func printSecrets(w io.Writer) {
	fmt.Fprintln(w, "\nSecrets:")
	for _, k := range secrets.KnownKeys() {
		fmt.Fprintf(w, "%-16s %s\n", k.Name, secrets.Describe(k.Name))
		fmt.Fprintf(w, "%-16s %s; env %s\n", "", k.Desc, strings.Join(k.EnvVars, ", "))
	}
}

func printAvailableKeys(w io.Writer) {
	keys := userconfig.AvailableKeys()
	for _, k := range userconfig.SortedKeys() {
		fmt.Fprintf(w, "  %s - %s\n", k, keys[k])
	}
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
}
