// Package verify checks a finished install and wires it into the
// operator's shell. Nothing here fails the run: every problem becomes a
// warning in the Report.
package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/ui"
	"github.com/tsukumogami/g4install/internal/userconfig"
	"github.com/tsukumogami/g4install/internal/workspace"
)

// SmokeOutcome is the result of the example build.
type SmokeOutcome string

const (
	SmokeSkipped SmokeOutcome = "skipped"
	SmokePassed  SmokeOutcome = "passed"
	SmokeFailed  SmokeOutcome = "failed"
)

// Report is what verification found and changed.
type Report struct {
	// Version is the output of geant4-config --version, empty if unknown.
	Version  string
	Warnings []string

	RCFile    string
	AliasLine string
	// AliasPresent is set once the alias line is known to be in RCFile,
	// either written now or found there. AliasAdded means written now.
	AliasPresent bool
	AliasAdded   bool
	SourceLine   string
	SourceAdded  bool

	// Libraries counts installed shared libraries that passed validation.
	Libraries int

	Smoke        SmokeOutcome
	SmokeMessage string
}

func (r *Report) warn(console *ui.Console, msg string) {
	r.Warnings = append(r.Warnings, msg)
	console.Warn(msg)
}

// Options controls the finalization steps.
type Options struct {
	// RCFile receives the alias; empty means ~/.bashrc.
	RCFile string
	// HomeDir hosts ~/.bashrc and the example copy; empty means the
	// current user's home.
	HomeDir string
	// SmokeTest is one of the userconfig smoke test policies.
	SmokeTest string
	Cores     int
}

// Stage runs verification.
type Stage struct {
	Session *prompt.Session
	Runner  shell.Runner
	Logger  log.Logger
}

// Run verifies the install of ws and never returns an error.
func (s *Stage) Run(ctx context.Context, ws *workspace.Workspace, opts Options) *Report {
	logger := log.OrDefault(s.Logger)
	console := s.Session.Console
	report := &Report{Smoke: SmokeSkipped}
	install := ws.InstallPath()

	s.checkConfig(ctx, install, report)
	s.checkLibraries(install, report)

	home := opts.HomeDir
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			report.warn(console, fmt.Sprintf("Could not determine home directory: %v", err))
			return report
		}
		home = h
	}
	report.RCFile = opts.RCFile
	if report.RCFile == "" {
		report.RCFile = filepath.Join(home, ".bashrc")
	}

	report.AliasLine = AliasLine(ws.Version.String(), install)
	added, err := AppendLine(report.RCFile, report.AliasLine)
	switch {
	case err != nil:
		report.warn(console, fmt.Sprintf("Could not add alias: %v", err))
	case added:
		report.AliasPresent = true
		report.AliasAdded = true
		console.Successf("Alias '%s' added to %s", AliasName(ws.Version.String()), report.RCFile)
	default:
		report.AliasPresent = true
		console.Infof("Alias '%s' already present in %s", AliasName(ws.Version.String()), report.RCFile)
	}

	if ws.Version.Major() < 11 {
		report.SourceLine = SourceLine(install)
		added, err := AppendLine(report.RCFile, report.SourceLine)
		switch {
		case err != nil:
			report.warn(console, fmt.Sprintf("Could not add environment setup: %v", err))
		case added:
			report.SourceAdded = true
			console.Infof("Geant4 environment setup added to %s", report.RCFile)
			console.Infof("Run 'source %s' or restart terminal to apply changes.", report.RCFile)
		}
	}

	s.smoke(ctx, install, home, opts, report)
	logger.Debug("verification finished",
		"version", report.Version, "warnings", len(report.Warnings), "smoke", report.Smoke)
	return report
}

func (s *Stage) checkConfig(ctx context.Context, install string, report *Report) {
	console := s.Session.Console
	configTool := filepath.Join(install, "bin", "geant4-config")
	if !workspace.Exists(configTool) {
		report.warn(console, "geant4-config not found. Installation may not be correct.")
		return
	}
	out, err := s.Runner.Run(ctx, shell.Cmd(configTool, "--version"))
	if err != nil {
		report.warn(console, fmt.Sprintf("geant4-config --version failed: %v", err))
		return
	}
	report.Version = strings.TrimSpace(string(out))
	console.Successf("Geant4 Version Installed: %s", report.Version)
}

func (s *Stage) checkLibraries(install string, report *Report) {
	console := s.Session.Console
	libs := FindLibraries(install)
	if len(libs) == 0 {
		report.warn(console, fmt.Sprintf("No Geant4 shared libraries found under %s.", install))
		return
	}
	for _, lib := range libs {
		if err := ValidateLibrary(lib); err != nil {
			report.warn(console, fmt.Sprintf("Installed library failed validation: %v", err))
			continue
		}
		report.Libraries++
	}
}

func (s *Stage) smoke(ctx context.Context, install, home string, opts Options, report *Report) {
	console := s.Session.Console
	run := false
	switch opts.SmokeTest {
	case userconfig.SmokeTestAlways:
		run = true
	case userconfig.SmokeTestNever:
	default:
		ok, err := s.Session.Confirm(ctx, "Do you want to build and run Example B1 to verify installation?", false)
		if err != nil {
			report.warn(console, fmt.Sprintf("Skipping Example B1: %v", err))
			return
		}
		run = ok
	}
	if !run {
		console.Success("Installation completed. You can manually test Geant4 later.")
		return
	}

	if err := s.runExampleB1(ctx, install, home, opts.Cores); err != nil {
		report.Smoke = SmokeFailed
		report.SmokeMessage = err.Error()
		console.Errorf("Failed during Example B1 verification: %v", err)
		report.Warnings = append(report.Warnings, "Example B1 failed: "+err.Error())
		return
	}
	report.Smoke = SmokePassed
	console.Success("Example B1 ran successfully. Geant4 is working.")
}
