package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the g4install version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("g4install %s\n", buildinfo.Version())
	},
}
