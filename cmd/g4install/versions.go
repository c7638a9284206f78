package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/config"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/ui"
	"github.com/tsukumogami/g4install/internal/userconfig"
	"github.com/tsukumogami/g4install/internal/version"
)

var (
	versionsTagSource string
	versionsLimit     int
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the newest published Geant4 releases",
	Long: `List the newest Geant4 releases, newest first, as offered by the
interactive release menu.

Examples:
  g4install versions
  g4install versions --limit 10 --tag-source github`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get config: %v\n", err)
			exitWithCode(ExitGeneral)
		}
		ucfg, err := userconfig.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			exitWithCode(ExitGeneral)
		}

		name := installOptions{tagSource: versionsTagSource}.tagSourceName(ucfg)
		source, err := newTagSource(name, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}

		limit := ucfg.CandidateCount
		if versionsLimit > 0 {
			limit = versionsLimit
		}
		session := prompt.NewSession(prompt.NonInteractive, prompt.NilPrompter{}, ui.Discard(), log.Default())
		resolver := version.New(source, nil, session, version.WithCandidateCount(limit))

		fmt.Printf("Fetching Geant4 releases (%s)...\n", source.Name())
		releases, err := resolver.Candidates(cmd.Context())
		if err != nil {
			exitWithCode(reportError(err))
		}
		fmt.Printf("Available releases (%d shown):\n\n", len(releases))
		for _, v := range releases {
			fmt.Printf("  %s\n", v.Tag())
		}
	},
}

func init() {
	versionsCmd.Flags().StringVar(&versionsTagSource, "tag-source", "", "Where release tags are listed from: gitlab or github")
	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 0, "Number of releases to show (default candidate_count)")
}
