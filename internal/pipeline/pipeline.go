// Package pipeline runs the install stages in order: host detection,
// release selection, package planning, acquisition, build and
// verification.
package pipeline

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/tsukumogami/g4install/internal/acquire"
	"github.com/tsukumogami/g4install/internal/build"
	"github.com/tsukumogami/g4install/internal/deps"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/verify"
	"github.com/tsukumogami/g4install/internal/version"
	"github.com/tsukumogami/g4install/internal/workspace"
)

// Detector probes the host.
type Detector interface {
	Detect(ctx context.Context) platform.DistroIdentity
}

// Resolver selects the release to install.
type Resolver interface {
	Resolve(ctx context.Context, hint string) (version.TargetVersion, error)
}

// Options are the per-run choices made on the command line or in the
// user configuration.
type Options struct {
	VersionHint   string
	WorkspaceRoot string
	SkipPackages  bool
	// Cores, when positive, skips the core-count question.
	Cores int
	// DefaultCores answers the core-count question when nobody can.
	DefaultCores int
	RCFile       string
	HomeDir      string
	SmokeTest    string
}

// Pipeline wires the stages to their collaborators.
type Pipeline struct {
	Session    *prompt.Session
	Runner     shell.Runner
	Detector   Detector
	Resolver   Resolver
	Downloader *acquire.Downloader
	ArchiveURL func(release string) string
	Spinner    *progress.Spinner
	Logger     log.Logger
	// Summary receives the final report table; nil skips it.
	Summary io.Writer
}

// Summary is what a completed run did.
type Summary struct {
	RunID     string
	Identity  platform.DistroIdentity
	Version   version.TargetVersion
	Workspace *workspace.Workspace
	Packages  *deps.Plan
	Acquired  *acquire.Result
	Built     *build.Result
	Report    *verify.Report
}

// Run executes every stage. Unsupported hosts stop before any network or
// filesystem access.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	sum := &Summary{RunID: uuid.New().String()}
	logger := log.OrDefault(p.Logger).With("run", sum.RunID)
	console := p.Session.Console
	logger.Debug("pipeline starting", "mode", p.Session.Mode, "workspace", opts.WorkspaceRoot)

	sum.Identity = p.Detector.Detect(ctx)
	console.Infof("Detected OS info: %s", sum.Identity.DisplayName())
	if err := sum.Identity.CheckSupported(); err != nil {
		console.Warn("This installer only supports Linux or WSL.")
		return sum, err
	}
	if sum.Identity.WSL {
		console.Info("Running under WSL.")
	}

	v, err := p.Resolver.Resolve(ctx, opts.VersionHint)
	if err != nil {
		return sum, err
	}
	sum.Version = v
	logger = logger.With("version", v.String())
	console.Successf("Selected Geant4 %s.", v.Tag())

	ws, err := workspace.New(opts.WorkspaceRoot, v)
	if err != nil {
		return sum, err
	}
	sum.Workspace = ws

	if !opts.SkipPackages {
		if sum.Packages, err = p.planPackages(ctx, sum.Identity, v); err != nil {
			return sum, err
		}
	} else {
		console.Info("Skipping system package installation.")
	}

	acq := &acquire.Stage{
		Session:    p.Session,
		Runner:     p.Runner,
		Downloader: p.Downloader,
		ArchiveURL: p.ArchiveURL,
		Spinner:    p.Spinner,
		Logger:     logger,
	}
	if sum.Acquired, err = acq.Acquire(ctx, ws); err != nil {
		return sum, err
	}

	b := &build.Stage{Session: p.Session, Runner: p.Runner, Logger: logger}
	sum.Built, err = b.Run(ctx, build.Plan{
		Workspace:    ws,
		Packages:     sum.Packages,
		Cores:        opts.Cores,
		DefaultCores: opts.DefaultCores,
		WSL:          sum.Identity.WSL,
	})
	if err != nil {
		return sum, err
	}

	vf := &verify.Stage{Session: p.Session, Runner: p.Runner, Logger: logger}
	sum.Report = vf.Run(ctx, ws, verify.Options{
		RCFile:    opts.RCFile,
		HomeDir:   opts.HomeDir,
		SmokeTest: opts.SmokeTest,
		Cores:     sum.Built.Cores,
	})

	if p.Summary != nil {
		RenderSummary(p.Summary, sum)
	}
	logger.Info("pipeline finished", "warnings", len(sum.Report.Warnings), "smoke", sum.Report.Smoke)
	return sum, nil
}

// planPackages resolves the package set and asks before it is installed.
// A nil plan means installation is skipped.
func (p *Pipeline) planPackages(ctx context.Context, id platform.DistroIdentity, v version.TargetVersion) (*deps.Plan, error) {
	console := p.Session.Console
	family := id.Family()
	plan, ok := deps.PlanFor(family, v, id.KernelRelease)
	if !ok {
		console.Warn("Distro not recognized. Please install dependencies manually.")
		console.Actionf("Install cmake, make, a C++ compiler and the Qt5, OpenGL, X11 and Expat development packages. 'g4install packages <family>' lists them for: %s.", familyNames())
		return nil, nil
	}

	console.Infof("Required packages for %s (%d):", family, len(plan.Packages))
	console.Println("  " + plan.Packages.String())
	console.Infof("Install command: %s", plan.CommandLine())
	install, err := p.Session.Confirm(ctx, "Install these packages now?", false)
	if err != nil {
		return nil, err
	}
	if !install {
		console.Info("Skipping package installation.")
		return nil, nil
	}
	return &plan, nil
}

func familyNames() string {
	names := make([]string, 0, len(platform.KnownFamilies()))
	for _, f := range platform.KnownFamilies() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
