package main

import (
	"os"

	"github.com/tsukumogami/g4install/internal/pipeline"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitUnsupportedPlatform indicates the host cannot run the installer
	ExitUnsupportedPlatform = 3

	// ExitVersionNotFound indicates the release does not exist or is malformed
	ExitVersionNotFound = 4

	// ExitNetwork indicates a network error
	ExitNetwork = 5

	// ExitCommandFailed indicates an external command such as make failed
	ExitCommandFailed = 6

	// ExitAborted indicates the operator chose to stop
	ExitAborted = 9
)

// exitCodeFor maps an error to its exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch pipeline.Classify(err) {
	case pipeline.KindAborted:
		return ExitAborted
	case pipeline.KindUnsupportedPlatform:
		return ExitUnsupportedPlatform
	case pipeline.KindVersionNotFound:
		return ExitVersionNotFound
	case pipeline.KindNetwork:
		return ExitNetwork
	case pipeline.KindCommand:
		return ExitCommandFailed
	default:
		return ExitGeneral
	}
}

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
