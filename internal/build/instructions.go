package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/ui"
)

var guideTemplate = template.Must(template.New("guide").Parse(`[INSTRUCTIONS]
1. ccmake starts with an empty cache.
   - Press 'c' to run the first configure pass.
   - Press 'e' to dismiss the output screen.

2. Use the arrow keys to select CMAKE_INSTALL_PREFIX and press Enter.
   Replace the value with:
       {{.InstallPath}}
   Press Enter again. The entry should no longer read /usr/local.

3. Switch these options ON (Enter toggles a boolean):
{{- range .Toggles}}
   - {{.}}
{{- end}}
   Other options can stay at their defaults.

4. Press 'c' again to configure with your changes.
   - Repeat until the 'g' (generate) option appears at the bottom.

5. Press 'g' to generate the Makefiles. ccmake exits afterwards.

6. Return to this terminal and press Enter to continue the build.
`))

// RenderGuide returns the configuration guide for installPath.
func RenderGuide(installPath string) (string, error) {
	var buf bytes.Buffer
	err := guideTemplate.Execute(&buf, struct {
		InstallPath string
		Toggles     []string
	}{installPath, Toggles})
	if err != nil {
		return "", fmt.Errorf("failed to render configuration guide: %w", err)
	}
	return buf.String(), nil
}

// WriteGuide writes the configuration guide to path.
func WriteGuide(path, installPath string) error {
	text, err := RenderGuide(installPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Viewer shows the configuration guide. It tries the desktop opener first,
// then a pager, then prints the guide inline; showing it never fails.
type Viewer struct {
	Runner  shell.Runner
	Console *ui.Console
	WSL     bool
}

// Show displays the file at path.
func (v *Viewer) Show(ctx context.Context, path string) {
	dir, name := filepath.Dir(path), filepath.Base(path)

	opener := shell.Cmd("xdg-open", name).In(dir)
	via := "xdg-open"
	if v.WSL {
		opener = shell.Cmd("powershell.exe", "Start-Process", name).In(dir)
		via = "Windows default app via WSL"
	}
	if _, err := v.Runner.LookPath(opener.Name); err == nil {
		if _, err := v.Runner.Run(ctx, opener); err == nil {
			v.Console.Infof("Opened instructions using %s.", via)
			return
		}
	}

	v.Console.Warn("GUI open failed. Falling back to terminal display.")
	if _, err := v.Runner.LookPath("less"); err == nil {
		if err := v.Runner.RunInteractive(ctx, shell.Cmd("less", name).In(dir)); err == nil {
			return
		}
	}

	f, err := os.Open(path)
	if err != nil {
		v.Console.Warnf("Could not read %s: %v", path, err)
		return
	}
	defer f.Close()
	if _, err := io.Copy(v.Console.Writer(), f); err != nil {
		v.Console.Warnf("Could not display %s: %v", path, err)
	}
}
