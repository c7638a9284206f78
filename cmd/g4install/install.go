package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/acquire"
	"github.com/tsukumogami/g4install/internal/buildinfo"
	"github.com/tsukumogami/g4install/internal/config"
	"github.com/tsukumogami/g4install/internal/httputil"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/pipeline"
	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/ui"
	"github.com/tsukumogami/g4install/internal/userconfig"
	"github.com/tsukumogami/g4install/internal/version"
)

// installOptions holds the flags of the root command.
type installOptions struct {
	assumeYes      bool
	nonInteractive bool
	release        string
	cores          int
	workspace      string
	tagSource      string
	remote         bool
	skipPackages   bool
	smokeTest      string
	rcFile         string
}

var installFlags installOptions

func registerInstallFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&installFlags.assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	f.BoolVar(&installFlags.nonInteractive, "non-interactive", false, "Never read from the terminal; use defaults and flags")
	f.StringVar(&installFlags.release, "version", "", "Geant4 release to install, e.g. 11.3.2 (default: choose from the newest)")
	f.IntVar(&installFlags.cores, "cores", 0, "Parallel make jobs (default: ask, or default_cores)")
	f.StringVar(&installFlags.workspace, "workspace", "", "Directory holding archives, sources and builds (default ./Geant4)")
	f.StringVar(&installFlags.tagSource, "tag-source", "", "Where release tags are listed from: gitlab or github")
	f.BoolVar(&installFlags.remote, "remote", false, "Ignore source trees already in the workspace and choose from the remote releases")
	f.BoolVar(&installFlags.skipPackages, "skip-packages", false, "Do not install system packages")
	f.StringVar(&installFlags.smokeTest, "smoke-test", "", "Build and run example B1 afterwards: ask, always or never")
	f.StringVar(&installFlags.rcFile, "rc-file", "", "Shell start-up file that receives the alias (default ~/.bashrc)")
}

func (o installOptions) validate() error {
	if o.cores < 0 {
		return fmt.Errorf("--cores must be a positive number, got %d", o.cores)
	}
	switch o.tagSource {
	case "", userconfig.TagSourceGitLab, userconfig.TagSourceGitHub:
	default:
		return fmt.Errorf("--tag-source must be %s or %s, got %q",
			userconfig.TagSourceGitLab, userconfig.TagSourceGitHub, o.tagSource)
	}
	switch o.smokeTest {
	case "", userconfig.SmokeTestAsk, userconfig.SmokeTestAlways, userconfig.SmokeTestNever:
	default:
		return fmt.Errorf("--smoke-test must be ask, always or never, got %q", o.smokeTest)
	}
	if o.release != "" {
		if _, err := version.Parse(o.release); err != nil {
			return err
		}
	}
	return nil
}

// pipelineOptions merges the flags over the user configuration.
func (o installOptions) pipelineOptions(cfg *config.Config, ucfg *userconfig.Config, home string) (pipeline.Options, error) {
	opts := pipeline.Options{
		VersionHint:   o.release,
		WorkspaceRoot: cfg.WorkspaceRoot,
		SkipPackages:  o.skipPackages,
		Cores:         o.cores,
		DefaultCores:  ucfg.DefaultCores,
		RCFile:        ucfg.RCFile,
		HomeDir:       home,
		SmokeTest:     ucfg.SmokeTest,
	}
	if o.workspace != "" {
		root, err := filepath.Abs(o.workspace)
		if err != nil {
			return opts, fmt.Errorf("failed to resolve workspace: %w", err)
		}
		opts.WorkspaceRoot = root
	}
	if o.rcFile != "" {
		opts.RCFile = o.rcFile
	}
	if o.smokeTest != "" {
		opts.SmokeTest = o.smokeTest
	}
	return opts, nil
}

func (o installOptions) tagSourceName(ucfg *userconfig.Config) string {
	if o.tagSource != "" {
		return o.tagSource
	}
	if ucfg.TagSource != "" {
		return ucfg.TagSource
	}
	return userconfig.TagSourceGitLab
}

func newTagSource(name string, cfg *config.Config) (version.TagSource, error) {
	if name == userconfig.TagSourceGitHub {
		owner, repo, err := cfg.GitHubOwnerRepo()
		if err != nil {
			return nil, err
		}
		return version.NewGitHubSource(owner, repo), nil
	}
	return version.NewGitLabSource(version.NewHTTPClient(cfg.APITimeout), cfg.TagsURL), nil
}

func newPrompter(mode prompt.RunMode) prompt.Prompter {
	if mode == prompt.NonInteractive {
		return prompt.NilPrompter{}
	}
	return &prompt.TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func runInstall(ctx context.Context, o installOptions) error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return err
	}
	ucfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}
	opts, err := o.pipelineOptions(cfg, ucfg, home)
	if err != nil {
		return err
	}

	logger := log.Default()
	mode := prompt.ModeFromFlags(o.assumeYes, o.nonInteractive)
	console := ui.NewConsole(os.Stdout, ui.Options{Color: colorEnabled(), Quiet: quietFlag})
	if mode == prompt.Interactive && !progress.StdinIsTerminal() {
		console.Warn("Standard input is not a terminal. Pass --non-interactive to run unattended.")
	}
	session := prompt.NewSession(mode, newPrompter(mode), console, logger)

	source, err := newTagSource(o.tagSourceName(ucfg), cfg)
	if err != nil {
		return err
	}
	resolverOpts := []version.Option{
		version.WithCandidateCount(ucfg.CandidateCount),
		version.WithWorkspace(opts.WorkspaceRoot),
	}
	if o.remote {
		resolverOpts = append(resolverOpts, version.WithRemoteOnly())
	}
	spinner := newSpinner()
	if spinner != nil {
		resolverOpts = append(resolverOpts, version.WithSpinner(spinner))
	}
	resolver := version.New(source, version.NewArchiveProber(version.NewHTTPClient(cfg.APITimeout), cfg.ArchiveURL), session, resolverOpts...)

	// Archive downloads are bounded by the context only.
	downloadClient := httputil.NewSecureClient(httputil.ClientOptions{Timeout: -1, UserAgent: buildinfo.UserAgent()})

	p := &pipeline.Pipeline{
		Session:    session,
		Runner:     shell.NewExecRunner(logger),
		Detector:   platform.NewProber(logger),
		Resolver:   resolver,
		Downloader: acquire.NewDownloader(downloadClient, os.Stderr, logger),
		ArchiveURL: cfg.ArchiveURL,
		Spinner:    spinner,
		Logger:     logger,
		Summary:    os.Stdout,
	}
	_, err = p.Run(ctx, opts)
	return err
}
