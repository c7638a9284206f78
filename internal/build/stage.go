// Package build configures, compiles and installs an extracted Geant4
// source tree.
package build

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tsukumogami/g4install/internal/deps"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/workspace"
)

// Plan is everything the build needs to know about one run.
type Plan struct {
	Workspace *workspace.Workspace
	// Packages is installed before building; nil skips installation.
	Packages *deps.Plan
	// Cores, when positive, is used without asking.
	Cores int
	// DefaultCores answers the core-count question when nobody can.
	DefaultCores int
	WSL          bool
}

// Result describes a completed build.
type Result struct {
	Cores int
	// Configured names the configure front end, "ccmake" or "cmake".
	Configured string
}

// Stage runs the build.
type Stage struct {
	Session *prompt.Session
	Runner  shell.Runner
	Logger  log.Logger
}

// Run installs packages, checks the toolchain, configures, compiles and
// installs. The first failing external command stops the run with its
// *shell.CommandError.
func (s *Stage) Run(ctx context.Context, plan Plan) (*Result, error) {
	logger := log.OrDefault(s.Logger)
	ws := plan.Workspace
	console := s.Session.Console
	headless := !s.Session.Mode.ReadsInput()

	if plan.Packages != nil {
		if err := s.run(ctx, shell.Line(plan.Packages.CommandLine()), "Installing required packages", true); err != nil {
			return nil, err
		}
	}

	if err := s.preflight(ctx, !headless); err != nil {
		return nil, err
	}

	console.Infof("Install path: %s", ws.InstallPath())
	res := &Result{}
	if headless {
		cm := NewCMake(ws.SourceDir(), ws.BuildDir(), ws.InstallPath())
		if err := s.run(ctx, cm.ConfigureCommand(), "Configuring Geant4", false); err != nil {
			return nil, err
		}
		res.Configured = "cmake"
	} else {
		if err := s.configureByHand(ctx, plan); err != nil {
			return nil, err
		}
		res.Configured = "ccmake"
	}

	cores, err := s.cores(ctx, plan)
	if err != nil {
		return nil, err
	}
	res.Cores = cores
	logger.Debug("building", "cores", cores, "build_dir", ws.BuildDir())

	if err := s.run(ctx, shell.Cmd("make", "-j"+strconv.Itoa(cores)).In(ws.BuildDir()), "Compiling Geant4", true); err != nil {
		return nil, err
	}
	if err := s.run(ctx, shell.Cmd("make", "install").In(ws.BuildDir()).AsRoot(), "Installing Geant4", true); err != nil {
		return nil, err
	}
	console.Success("Geant4 installed successfully.")
	return res, nil
}

func (s *Stage) preflight(ctx context.Context, needCCMake bool) error {
	console := s.Session.Console
	p := CheckToolchain(ctx, s.Runner, needCCMake)
	if len(p.MissingRequired) > 0 {
		return &MissingToolsError{Tools: p.MissingRequired}
	}
	if len(p.MissingOptional) == 0 {
		console.Success("All required dependencies are present.")
		return nil
	}

	console.Errorf("Missing dependencies: %s", strings.Join(p.MissingOptional, ", "))
	console.Action("You can choose to install them manually later.")
	ok, err := s.Session.ContinueOrAbort(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("missing dependencies: %w", prompt.ErrAborted)
	}
	console.Warn("Continuing despite missing dependencies.")
	return nil
}

func (s *Stage) configureByHand(ctx context.Context, plan Plan) error {
	ws := plan.Workspace
	guide := ws.InstructionsPath()
	if err := WriteGuide(guide, ws.InstallPath()); err != nil {
		return err
	}
	viewer := &Viewer{Runner: s.Runner, Console: s.Session.Console, WSL: plan.WSL}
	viewer.Show(ctx, guide)

	if err := s.Session.WaitForEnter(ctx, "Press Enter to open CMake configuration..."); err != nil {
		return err
	}
	ccmake := shell.Cmd("ccmake", "../"+ws.Name()).In(ws.BuildDir())
	if err := s.run(ctx, ccmake, "Running CMake", true); err != nil {
		return err
	}
	return s.Session.WaitForEnter(ctx, "Press Enter after completing CMake configuration to continue...")
}

func (s *Stage) cores(ctx context.Context, plan Plan) (int, error) {
	if plan.Cores > 0 {
		return plan.Cores, nil
	}
	if s.Session.Mode.ReadsInput() {
		s.Session.Console.Info("(If you don't know your CPU core count, open a new terminal and run: `nproc`, then enter the number here.)")
	}
	n, err := s.Session.PositiveInt(ctx, "Enter the number of CPU cores for compilation: ", plan.DefaultCores)
	if errors.Is(err, prompt.ErrNoDefault) {
		return 0, errors.New("no core count available: pass --cores or set default_cores")
	}
	return n, err
}

func (s *Stage) run(ctx context.Context, cmd shell.Command, description string, interactive bool) error {
	console := s.Session.Console
	console.Infof("Running command: %s (%s)", cmd, description)
	var err error
	if interactive {
		err = s.Runner.RunInteractive(ctx, cmd)
	} else {
		var out []byte
		out, err = s.Runner.Run(ctx, cmd)
		if len(out) > 0 {
			log.OrDefault(s.Logger).Debug("command output", "cmd", cmd.String(), "output", string(out))
		}
	}
	if err != nil {
		console.Errorf("%s failed: %v", description, err)
		return err
	}
	console.Successf("%s completed!", description)
	return nil
}
