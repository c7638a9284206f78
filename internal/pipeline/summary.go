package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/verify"
)

// RenderSummary writes the end-of-run table.
func RenderSummary(w io.Writer, s *Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Geant4 installation summary")
	t.AppendRow(table.Row{"Host", describe(s.Identity)})
	t.AppendRow(table.Row{"Release", s.Version.Tag()})
	if s.Workspace != nil {
		t.AppendRow(table.Row{"Source", s.Workspace.SourceDir()})
		t.AppendRow(table.Row{"Install prefix", s.Workspace.InstallPath()})
	}
	if s.Packages != nil {
		t.AppendRow(table.Row{"Packages", fmt.Sprintf("%d installed with %s", len(s.Packages.Packages), s.Packages.Command)})
	} else {
		t.AppendRow(table.Row{"Packages", "skipped"})
	}
	if s.Acquired != nil {
		t.AppendRow(table.Row{"Archive", s.Acquired.Archive})
		t.AppendRow(table.Row{"Build directory", s.Acquired.BuildDir})
	}
	if s.Built != nil {
		t.AppendRow(table.Row{"Configured with", s.Built.Configured})
		t.AppendRow(table.Row{"Cores", s.Built.Cores})
	}
	if r := s.Report; r != nil {
		reported := r.Version
		if reported == "" {
			reported = "unknown"
		}
		t.AppendRow(table.Row{"geant4-config", reported})
		t.AppendRow(table.Row{"Shell alias", aliasState(r)})
		t.AppendRow(table.Row{"Example B1", smokeState(r)})
		if len(r.Warnings) > 0 {
			t.AppendFooter(table.Row{"Warnings", strings.Join(r.Warnings, "\n")})
		}
	}
	t.AppendRow(table.Row{"Run ID", s.RunID})
	t.Render()
}

func describe(id platform.DistroIdentity) string {
	if id.WSL {
		return fmt.Sprintf("%s (%s, WSL)", id.DisplayName(), id.Family())
	}
	return fmt.Sprintf("%s (%s)", id.DisplayName(), id.Family())
}

func aliasState(r *verify.Report) string {
	if r.AliasLine == "" {
		return "not written"
	}
	if !r.AliasPresent {
		return "failed: could not write " + r.RCFile
	}
	if r.AliasAdded {
		return "added to " + r.RCFile
	}
	return "already in " + r.RCFile
}

func smokeState(r *verify.Report) string {
	if r.Smoke == verify.SmokeFailed {
		return "failed: " + r.SmokeMessage
	}
	return string(r.Smoke)
}
