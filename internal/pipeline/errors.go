package pipeline

import (
	"errors"
	"net/http"

	"github.com/tsukumogami/g4install/internal/acquire"
	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/version"
)

// Kind classifies a run failure.
type Kind int

const (
	KindGeneral Kind = iota
	KindUnsupportedPlatform
	KindVersionNotFound
	KindNetwork
	KindCommand
	KindAborted
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "unsupported-platform"
	case KindVersionNotFound:
		return "version-not-found"
	case KindNetwork:
		return "network"
	case KindCommand:
		return "command-failed"
	case KindAborted:
		return "aborted"
	default:
		return "general"
	}
}

// Classify maps err onto the failure taxonomy. Operator aborts win over
// everything else, so an abort during a retry prompt is still an abort.
func Classify(err error) Kind {
	if errors.Is(err, prompt.ErrAborted) {
		return KindAborted
	}
	if errors.Is(err, platform.ErrUnsupported) {
		return KindUnsupportedPlatform
	}

	var dlErr *acquire.DownloadError
	if errors.As(err, &dlErr) {
		if dlErr.StatusCode == http.StatusNotFound {
			return KindVersionNotFound
		}
		return KindNetwork
	}
	var cmdErr *shell.CommandError
	if errors.As(err, &cmdErr) {
		return KindCommand
	}
	var resErr *version.ResolverError
	if errors.As(err, &resErr) {
		switch {
		case resErr.Type == version.ErrTypeNotFound, resErr.Type == version.ErrTypeValidation:
			return KindVersionNotFound
		case resErr.Type.IsNetwork():
			return KindNetwork
		}
	}
	return KindGeneral
}
