package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/tsukumogami/g4install/internal/buildinfo"
	"github.com/tsukumogami/g4install/internal/httputil"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/prompt"
)

// DefaultCandidates is how many of the newest releases are offered.
const DefaultCandidates = 5

// NewHTTPClient creates the hardened client used for tag listing and
// archive probes.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return httputil.NewSecureClient(httputil.ClientOptions{
		Timeout:      timeout,
		DialTimeout:  10 * time.Second,
		MaxRedirects: 5,
		UserAgent:    buildinfo.UserAgent(),
	})
}

// Resolver selects the TargetVersion for a run.
type Resolver struct {
	source     TagSource
	prober     *ArchiveProber
	session    *prompt.Session
	candidates int
	localRoot  string
	remoteOnly bool
	spinner    *progress.Spinner
	logger     log.Logger
}

// New creates a resolver. The session decides whether selection prompts
// are shown or answered from mode defaults.
func New(source TagSource, prober *ArchiveProber, session *prompt.Session, opts ...Option) *Resolver {
	r := &Resolver{
		source:     source,
		prober:     prober,
		session:    session,
		candidates: DefaultCandidates,
		logger:     session.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrDefault(r.logger)
	return r
}

// Resolve returns the release to install. A non-empty hint is validated
// and probed. Otherwise a source tree already in the workspace is reused
// without network access, and the remote tag listing is the fallback.
func (r *Resolver) Resolve(ctx context.Context, hint string) (TargetVersion, error) {
	if hint != "" {
		return r.resolveHint(ctx, hint)
	}
	if r.localRoot != "" && !r.remoteOnly {
		v, ok, err := r.resolveLocal(ctx)
		if err != nil || ok {
			return v, err
		}
		r.logger.Debug("no local source tree to resume", "root", r.localRoot)
	}
	return r.resolveRemote(ctx)
}

func (r *Resolver) resolveHint(ctx context.Context, hint string) (TargetVersion, error) {
	v, err := Parse(hint)
	if err != nil {
		return TargetVersion{}, err
	}
	ok, err := r.available(ctx, v)
	if err != nil {
		return TargetVersion{}, err
	}
	if !ok {
		return TargetVersion{}, &ResolverError{
			Type:    ErrTypeNotFound,
			Source:  "probe",
			Message: fmt.Sprintf("release %s has no published source archive", v.Tag()),
		}
	}
	return v, nil
}

func (r *Resolver) resolveLocal(ctx context.Context) (TargetVersion, bool, error) {
	local, err := DiscoverLocal(r.localRoot)
	if err != nil {
		return TargetVersion{}, false, err
	}

	var v TargetVersion
	switch len(local) {
	case 0:
		return TargetVersion{}, false, nil
	case 1:
		v = local[0]
		resume, err := r.session.Confirm(ctx,
			fmt.Sprintf("Found existing source tree geant4-%s. Resume with it?", v.Tag()), true)
		if err != nil {
			return TargetVersion{}, false, err
		}
		if !resume {
			return TargetVersion{}, false, nil
		}
	default:
		r.session.Console.Info("Existing Geant4 source trees:")
		for i, lv := range local {
			r.session.Console.Println(fmt.Sprintf("  [%d] %s", i+1, lv.Tag()))
		}
		idx, err := r.session.Choose(ctx, "Choose a source tree to resume", len(local), 0)
		if err != nil {
			return TargetVersion{}, false, err
		}
		v = local[idx]
	}

	sourceDir := filepath.Join(r.localRoot, "geant4-"+v.Tag())
	if header, ok := FindVersionHeader(sourceDir); ok {
		hv, err := ParseVersionHeader(header)
		switch {
		case err != nil:
			r.logger.Debug("unreadable version header", "path", header, "error", err)
		case hv.sv.Compare(v.sv) != 0:
			r.session.Console.Warnf("%s declares version %s; continuing with %s from the directory name.",
				VersionHeaderName, hv, v)
		}
	}
	r.session.Console.Infof("Resuming with existing source tree for Geant4 %s.", v.Tag())
	return v, true, nil
}

// Candidates returns the newest releases from the tag source, at most the
// configured candidate count.
func (r *Resolver) Candidates(ctx context.Context) ([]TargetVersion, error) {
	r.spinner.Start(fmt.Sprintf("Fetching release tags from %s", r.source.Name()))
	all, err := r.source.ListVersions(ctx)
	r.spinner.Stop("")
	if err != nil {
		return nil, err
	}
	sorted := SortDescending(all)
	r.logger.Debug("listed releases", "source", r.source.Name(), "count", len(sorted))
	if len(sorted) == 0 {
		return nil, &ResolverError{
			Type:    ErrTypeNotFound,
			Source:  r.source.Name(),
			Message: "could not detect any Geant4 versions",
		}
	}
	if len(sorted) > r.candidates {
		sorted = sorted[:r.candidates]
	}
	return sorted, nil
}

func (r *Resolver) available(ctx context.Context, v TargetVersion) (bool, error) {
	r.session.Console.Infof("Checking if tarball exists: %s", r.prober.URL(v))
	r.spinner.Start("Waiting for " + v.Tag() + " archive headers")
	defer r.spinner.Stop("")
	return r.prober.Available(ctx, v)
}

func (r *Resolver) resolveRemote(ctx context.Context) (TargetVersion, error) {
	candidates, err := r.Candidates(ctx)
	if err != nil {
		return TargetVersion{}, err
	}

	console := r.session.Console
	console.Info("Available Geant4 versions:")
	for i, v := range candidates {
		console.Println(fmt.Sprintf("  [%d] %s", i+1, v.Tag()))
	}

	next := 0
	for {
		idx, err := r.session.Choose(ctx, "Choose a version to install", len(candidates), next)
		if errors.Is(err, prompt.ErrNoDefault) {
			return TargetVersion{}, &ResolverError{
				Type:    ErrTypeNotFound,
				Source:  "probe",
				Message: fmt.Sprintf("none of the %d newest releases has a published source archive", len(candidates)),
			}
		}
		if err != nil {
			return TargetVersion{}, err
		}

		v := candidates[idx]
		ok, err := r.available(ctx, v)
		if err != nil {
			return TargetVersion{}, err
		}
		if ok {
			return v, nil
		}

		console.Warnf("Could not find source tarball for %s.", v.Tag())
		console.Warn("This probably means it's not released yet.")
		console.Action("Check your version or pick an older stable version.")

		if r.session.Mode == prompt.NonInteractive {
			next = idx + 1
			continue
		}
		again, err := r.session.Confirm(ctx, "Do you want to choose a different version?", true)
		if err != nil {
			return TargetVersion{}, err
		}
		if !again {
			return TargetVersion{}, prompt.ErrAborted
		}
	}
}
