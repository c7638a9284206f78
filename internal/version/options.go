package version

import "github.com/tsukumogami/g4install/internal/progress"

// Option configures a Resolver.
type Option func(*Resolver)

// WithCandidateCount sets how many of the newest releases are offered.
// Non-positive values are ignored.
func WithCandidateCount(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.candidates = n
		}
	}
}

// WithWorkspace points local inference at the workspace root. Without it
// the resolver only knows remote releases.
func WithWorkspace(root string) Option {
	return func(r *Resolver) {
		r.localRoot = root
	}
}

// WithRemoteOnly skips local inference even when the workspace holds a
// source tree.
func WithRemoteOnly() Option {
	return func(r *Resolver) {
		r.remoteOnly = true
	}
}

// WithSpinner shows s while release tags are fetched and archives are
// checked.
func WithSpinner(s *progress.Spinner) Option {
	return func(r *Resolver) {
		r.spinner = s
	}
}
