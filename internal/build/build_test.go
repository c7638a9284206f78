package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/g4install/internal/deps"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/testutil"
	"github.com/tsukumogami/g4install/internal/ui"
	"github.com/tsukumogami/g4install/internal/version"
	"github.com/tsukumogami/g4install/internal/workspace"
)

var allTools = map[string]string{
	"cmake":    "/usr/bin/cmake",
	"ccmake":   "/usr/bin/ccmake",
	"make":     "/usr/bin/make",
	"qmake":    "/usr/bin/qmake",
	"xdg-open": "/usr/bin/xdg-open",
	"less":     "/usr/bin/less",
}

// line renders a call the way it was typed: shell lines as their script,
// everything else as the command string.
func line(c testutil.Call) string {
	if len(c.Cmd.Args) == 2 && c.Cmd.Args[0] == "-c" {
		return c.Cmd.Args[1]
	}
	return c.Cmd.String()
}

func lines(r *testutil.FakeRunner) []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = line(c)
	}
	return out
}

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(filepath.Join(t.TempDir(), "Geant4"), version.MustParse("11.3.2"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(ws.BuildDir(), 0755))
	return ws
}

func newStage(mode prompt.RunMode, runner *testutil.FakeRunner, answers ...string) (*Stage, *prompt.ScriptedPrompter, *bytes.Buffer) {
	var out bytes.Buffer
	p := &prompt.ScriptedPrompter{Answers: answers}
	session := prompt.NewSession(mode, p, ui.NewConsole(&out, ui.Options{}), log.NewNoop())
	return &Stage{Session: session, Runner: runner, Logger: log.NewNoop()}, p, &out
}

func TestRun_Interactive(t *testing.T) {
	ws := newWorkspace(t)
	pkgs, ok := deps.PlanFor(platform.FamilyDebian, ws.Version, "6.8.0-45-generic")
	require.True(t, ok)

	runner := &testutil.FakeRunner{Paths: allTools}
	s, p, out := newStage(prompt.Interactive, runner, "", "", "abc", "0", "8")

	res, err := s.Run(context.Background(), Plan{Workspace: ws, Packages: &pkgs})
	require.NoError(t, err)
	assert.Equal(t, &Result{Cores: 8, Configured: "ccmake"}, res)

	assert.Equal(t, []string{
		pkgs.CommandLine(),
		"ldconfig -p | grep libGL",
		"xdg-open geant4_install_instructions.txt",
		"ccmake ../geant4-v11.3.2",
		"make -j8",
		"sudo make install",
	}, lines(runner))

	for _, c := range runner.Calls[2:] {
		assert.Equal(t, ws.BuildDir(), c.Cmd.Dir, line(c))
	}
	assert.True(t, runner.Calls[0].Interactive)
	assert.True(t, runner.Calls[3].Interactive, "ccmake needs the terminal")

	assert.Equal(t, []string{
		"Press Enter to open CMake configuration...",
		"Press Enter after completing CMake configuration to continue...",
		"Enter the number of CPU cores for compilation: ",
		"Enter the number of CPU cores for compilation: ",
		"Enter the number of CPU cores for compilation: ",
	}, p.Questions)
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Invalid input. Try again.")))

	guide, err := os.ReadFile(ws.InstructionsPath())
	require.NoError(t, err)
	assert.Contains(t, string(guide), ws.InstallPath())
	assert.Contains(t, out.String(), "[SUCCESS] Geant4 installed successfully.")
}

func TestRun_CoresFromFlag(t *testing.T) {
	runner := &testutil.FakeRunner{Paths: allTools}
	s, p, _ := newStage(prompt.Interactive, runner, "", "")

	res, err := s.Run(context.Background(), Plan{Workspace: newWorkspace(t), Cores: 16})
	require.NoError(t, err)
	assert.Equal(t, 16, res.Cores)
	assert.Len(t, p.Questions, 2)
	assert.Contains(t, lines(runner), "make -j16")
}

func TestRun_NonInteractiveConfiguresHeadless(t *testing.T) {
	ws := newWorkspace(t)
	runner := &testutil.FakeRunner{Paths: map[string]string{"cmake": "/usr/bin/cmake", "make": "/usr/bin/make"}}
	s, _, out := newStage(prompt.NonInteractive, runner)

	res, err := s.Run(context.Background(), Plan{Workspace: ws, DefaultCores: 4})
	require.NoError(t, err)
	assert.Equal(t, &Result{Cores: 4, Configured: "cmake"}, res)

	assert.Equal(t, []string{
		"ldconfig -p | grep libGL",
		"cmake -S " + ws.SourceDir() + " -B " + ws.BuildDir() +
			" -DCMAKE_INSTALL_PREFIX:STRING=" + ws.InstallPath() +
			" -DGEANT4_INSTALL_DATA:BOOL=ON -DGEANT4_USE_OPENGL_X11:BOOL=ON" +
			" -DGEANT4_USE_QT:BOOL=ON -DGEANT4_USE_RAYTRACER_X11:BOOL=ON",
		"make -j4",
		"sudo make install",
	}, lines(runner))
	assert.NoFileExists(t, ws.InstructionsPath())
	assert.Contains(t, out.String(), "Missing dependencies: Qt5 (qmake)")
	assert.Contains(t, out.String(), "Continuing despite missing dependencies.")
}

func TestRun_NonInteractiveNeedsCores(t *testing.T) {
	runner := &testutil.FakeRunner{Paths: allTools}
	s, _, _ := newStage(prompt.NonInteractive, runner)

	_, err := s.Run(context.Background(), Plan{Workspace: newWorkspace(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--cores")
	assert.NotContains(t, lines(runner), "sudo make install")
}

func TestRun_AbortOnMissingOptional(t *testing.T) {
	runner := &testutil.FakeRunner{
		Paths: map[string]string{"cmake": "x", "ccmake": "x", "make": "x"},
		Handler: func(c testutil.Call) ([]byte, error) {
			if line(c) == "ldconfig -p | grep libGL" {
				return nil, &shell.CommandError{Cmd: line(c), ExitCode: 1}
			}
			return nil, nil
		},
	}
	s, _, out := newStage(prompt.Interactive, runner, "a")

	_, err := s.Run(context.Background(), Plan{Workspace: newWorkspace(t)})
	assert.ErrorIs(t, err, prompt.ErrAborted)
	assert.Contains(t, out.String(), "Missing dependencies: Qt5 (qmake), OpenGL (libGL)")
	assert.Equal(t, []string{"ldconfig -p | grep libGL"}, lines(runner))
}

func TestRun_MissingRequiredTool(t *testing.T) {
	runner := &testutil.FakeRunner{Paths: map[string]string{"make": "/usr/bin/make", "qmake": "/usr/bin/qmake"}}
	s, _, _ := newStage(prompt.Interactive, runner)

	_, err := s.Run(context.Background(), Plan{Workspace: newWorkspace(t)})
	var missing *MissingToolsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"cmake", "ccmake"}, missing.Tools)
}

func TestRun_CompileFailureStops(t *testing.T) {
	runner := &testutil.FakeRunner{
		Paths: allTools,
		Handler: func(c testutil.Call) ([]byte, error) {
			if c.Cmd.Name == "make" && !c.Cmd.Sudo {
				return nil, &shell.CommandError{Cmd: c.Cmd.String(), ExitCode: 2, Output: "make: *** [all] Error 2"}
			}
			return nil, nil
		},
	}
	s, _, out := newStage(prompt.Interactive, runner, "", "", "2")

	_, err := s.Run(context.Background(), Plan{Workspace: newWorkspace(t)})
	var cmdErr *shell.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.NotContains(t, lines(runner), "sudo make install")
	assert.Contains(t, out.String(), "Compiling Geant4 failed")
}

func TestRun_PackageInstallFailure(t *testing.T) {
	ws := newWorkspace(t)
	pkgs, _ := deps.PlanFor(platform.FamilyArch, ws.Version, "")
	runner := &testutil.FakeRunner{
		Paths: allTools,
		Handler: func(c testutil.Call) ([]byte, error) {
			if line(c) == pkgs.CommandLine() {
				return nil, &shell.CommandError{Cmd: line(c), ExitCode: 1}
			}
			return nil, nil
		},
	}
	s, _, _ := newStage(prompt.AssumeYes, runner)

	_, err := s.Run(context.Background(), Plan{Workspace: ws, Packages: &pkgs, Cores: 2})
	var cmdErr *shell.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Len(t, runner.Calls, 1)
}

func TestViewer_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		wsl       bool
		paths     map[string]string
		fail      map[string]bool
		wantCalls []string
		wantOut   string
	}{
		{
			name:      "xdg-open",
			paths:     allTools,
			wantCalls: []string{"xdg-open guide.txt"},
			wantOut:   "Opened instructions using xdg-open.",
		},
		{
			name:      "wsl",
			wsl:       true,
			paths:     map[string]string{"powershell.exe": "/mnt/c/powershell.exe"},
			wantCalls: []string{"powershell.exe Start-Process guide.txt"},
			wantOut:   "Opened instructions using Windows default app via WSL.",
		},
		{
			name:      "opener fails, pager used",
			paths:     allTools,
			fail:      map[string]bool{"xdg-open": true},
			wantCalls: []string{"xdg-open guide.txt", "less guide.txt"},
			wantOut:   "GUI open failed. Falling back to terminal display.",
		},
		{
			name:      "nothing available, printed inline",
			paths:     map[string]string{},
			wantCalls: []string{},
			wantOut:   "step one",
		},
		{
			name:      "pager fails, printed inline",
			paths:     allTools,
			fail:      map[string]bool{"xdg-open": true, "less": true},
			wantCalls: []string{"xdg-open guide.txt", "less guide.txt"},
			wantOut:   "step two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guide.txt")
			require.NoError(t, os.WriteFile(path, []byte("step one\nstep two\n"), 0644))

			runner := &testutil.FakeRunner{
				Paths: tt.paths,
				Handler: func(c testutil.Call) ([]byte, error) {
					if tt.fail[c.Cmd.Name] {
						return nil, errors.New("exit status 1")
					}
					return nil, nil
				},
			}
			var out bytes.Buffer
			v := &Viewer{Runner: runner, Console: ui.NewConsole(&out, ui.Options{}), WSL: tt.wsl}
			v.Show(context.Background(), path)

			assert.Equal(t, tt.wantCalls, lines(runner))
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func TestRenderGuide(t *testing.T) {
	text, err := RenderGuide("/home/me/Geant4/geant4-v11.3.2-install")
	require.NoError(t, err)
	assert.Contains(t, text, "[INSTRUCTIONS]")
	assert.Contains(t, text, "CMAKE_INSTALL_PREFIX")
	assert.Contains(t, text, "       /home/me/Geant4/geant4-v11.3.2-install\n")
	for _, toggle := range Toggles {
		assert.Contains(t, text, "   - "+toggle+"\n")
	}
	assert.Contains(t, text, "Press 'g'")
}

func TestCMake_ConfigureCommand(t *testing.T) {
	c := NewCMake("/w/src", "/w/build", "/w/install")
	c.DefineBool("GEANT4_USE_QT", false)
	c.Define("CMAKE_BUILD_TYPE", "Release")

	cmd := c.ConfigureCommand()
	assert.Equal(t, "cmake", cmd.Name)
	assert.Equal(t, "/w/build", cmd.Dir)
	assert.Equal(t, []string{
		"-S", "/w/src", "-B", "/w/build",
		"-DCMAKE_BUILD_TYPE:STRING=Release",
		"-DCMAKE_INSTALL_PREFIX:STRING=/w/install",
		"-DGEANT4_INSTALL_DATA:BOOL=ON",
		"-DGEANT4_USE_OPENGL_X11:BOOL=ON",
		"-DGEANT4_USE_QT:BOOL=OFF",
		"-DGEANT4_USE_RAYTRACER_X11:BOOL=ON",
	}, cmd.Args)
}
