package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsukumogami/g4install/internal/shell"
)

// MissingToolsError reports build tools that are not on PATH.
type MissingToolsError struct {
	Tools []string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("required build tools not found: %s", strings.Join(e.Tools, ", "))
}

// Suggestion implements errmsg.Suggester.
func (e *MissingToolsError) Suggestion() string {
	return "Install the packages listed by 'g4install packages' and re-run"
}

// Preflight is the result of checking the toolchain.
type Preflight struct {
	MissingRequired []string
	MissingOptional []string
}

// CheckToolchain looks for the tools the build needs. ccmake is only
// required when configuration is done by hand. Qt and OpenGL are optional:
// Geant4 builds without them but loses its viewers.
func CheckToolchain(ctx context.Context, runner shell.Runner, needCCMake bool) Preflight {
	var p Preflight
	required := []string{"cmake", "make"}
	if needCCMake {
		required = append(required, "ccmake")
	}
	for _, tool := range required {
		if _, err := runner.LookPath(tool); err != nil {
			p.MissingRequired = append(p.MissingRequired, tool)
		}
	}

	if _, err := runner.LookPath("qmake"); err != nil {
		p.MissingOptional = append(p.MissingOptional, "Qt5 (qmake)")
	}
	if _, err := runner.Run(ctx, shell.Line("ldconfig -p | grep libGL")); err != nil {
		p.MissingOptional = append(p.MissingOptional, "OpenGL (libGL)")
	}
	return p
}
