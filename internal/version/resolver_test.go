package version

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/ui"
)

type staticSource struct {
	versions []string
	err      error
	calls    int
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) ListVersions(context.Context) ([]TargetVersion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]TargetVersion, 0, len(s.versions))
	for _, v := range s.versions {
		out = append(out, MustParse(v))
	}
	return out, nil
}

// archiveServer answers HEAD requests with 200 for the published releases.
type archiveServer struct {
	*httptest.Server
	mu     sync.Mutex
	probed []string
}

func newArchiveServer(t *testing.T, published ...string) *archiveServer {
	t.Helper()
	ok := make(map[string]bool)
	for _, p := range published {
		ok["/v"+p+"/geant4-v"+p+".tar.gz"] = true
	}
	s := &archiveServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		s.mu.Lock()
		s.probed = append(s.probed, r.URL.Path)
		s.mu.Unlock()
		if ok[r.URL.Path] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *archiveServer) prober() *ArchiveProber {
	return NewArchiveProber(s.Client(), func(release string) string {
		return s.URL + "/v" + release + "/geant4-v" + release + ".tar.gz"
	})
}

func newSession(mode prompt.RunMode, answers ...string) (*prompt.Session, *prompt.ScriptedPrompter, *bytes.Buffer) {
	var out bytes.Buffer
	p := &prompt.ScriptedPrompter{Answers: answers}
	return prompt.NewSession(mode, p, ui.NewConsole(&out, ui.Options{}), log.NewNoop()), p, &out
}

func TestResolve_RemoteSelection(t *testing.T) {
	src := &staticSource{versions: []string{"10.7.4", "11.2", "11.3.2", "11.2.2", "11.3.1", "11.3.0", "9.6"}}
	archives := newArchiveServer(t, "11.3.1")
	session, p, out := newSession(prompt.Interactive, "9", "2")

	v, err := New(src, archives.prober(), session).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.1", v.String())

	menu := out.String()
	assert.Contains(t, menu, "[1] v11.3.2")
	assert.Contains(t, menu, "[5] v11.2")
	assert.NotContains(t, menu, "v10.7.4", "only the newest five are offered")
	assert.Equal(t, "Choose a version to install (1-5): ", p.Questions[0])
	assert.Len(t, p.Questions, 2)
}

func TestResolve_SpinnerCoversNetworkCalls(t *testing.T) {
	orig := progress.IsTerminalFunc
	progress.IsTerminalFunc = func(int) bool { return false }
	t.Cleanup(func() { progress.IsTerminalFunc = orig })

	src := &staticSource{versions: []string{"11.3.2", "11.3.1"}}
	archives := newArchiveServer(t, "11.3.2")
	session, _, _ := newSession(prompt.NonInteractive)
	var spin bytes.Buffer

	v, err := New(src, archives.prober(), session, WithSpinner(progress.NewSpinner(&spin))).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Equal(t, "Fetching release tags from static\nWaiting for v11.3.2 archive headers\n", spin.String())
}

func TestResolve_UnpublishedOffersReselection(t *testing.T) {
	src := &staticSource{versions: []string{"11.4", "11.3.2"}}
	archives := newArchiveServer(t, "11.3.2")
	session, p, out := newSession(prompt.Interactive, "1", "", "2")

	v, err := New(src, archives.prober(), session).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Contains(t, out.String(), "Could not find source tarball for v11.4.")
	assert.Contains(t, p.Questions, "Do you want to choose a different version? [Y/n]: ")
}

func TestResolve_UnpublishedDeclined(t *testing.T) {
	src := &staticSource{versions: []string{"11.4"}}
	archives := newArchiveServer(t)
	session, _, _ := newSession(prompt.Interactive, "1", "n")

	_, err := New(src, archives.prober(), session).Resolve(context.Background(), "")
	assert.ErrorIs(t, err, prompt.ErrAborted)
}

func TestResolve_NonInteractivePicksNewestPublished(t *testing.T) {
	src := &staticSource{versions: []string{"11.4", "11.3.2", "11.3.1"}}
	archives := newArchiveServer(t, "11.3.2", "11.3.1")
	session, p, _ := newSession(prompt.NonInteractive)

	v, err := New(src, archives.prober(), session).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Empty(t, p.Questions)
	assert.Equal(t, []string{"/v11.4/geant4-v11.4.tar.gz", "/v11.3.2/geant4-v11.3.2.tar.gz"}, archives.probed)
}

func TestResolve_NonInteractiveNothingPublished(t *testing.T) {
	src := &staticSource{versions: []string{"11.5", "11.4"}}
	archives := newArchiveServer(t)
	session, _, _ := newSession(prompt.NonInteractive)

	_, err := New(src, archives.prober(), session).Resolve(context.Background(), "")
	var resErr *ResolverError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ErrTypeNotFound, resErr.Type)
}

func TestResolve_NoCandidates(t *testing.T) {
	session, _, _ := newSession(prompt.Interactive)

	_, err := New(&staticSource{}, newArchiveServer(t).prober(), session).Resolve(context.Background(), "")
	var resErr *ResolverError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ErrTypeNotFound, resErr.Type)
	assert.Contains(t, resErr.Message, "could not detect")
}

func TestResolve_SourceNetworkError(t *testing.T) {
	netErr := &ResolverError{Type: ErrTypeConnection, Source: "gitlab", Message: "failed to fetch tag listing"}
	session, _, _ := newSession(prompt.Interactive)

	_, err := New(&staticSource{err: netErr}, newArchiveServer(t).prober(), session).Resolve(context.Background(), "")
	assert.ErrorIs(t, err, netErr)
}

func TestResolve_Hint(t *testing.T) {
	archives := newArchiveServer(t, "11.2")
	src := &staticSource{}
	session, p, _ := newSession(prompt.Interactive)
	r := New(src, archives.prober(), session)

	v, err := r.Resolve(context.Background(), "v11.2")
	require.NoError(t, err)
	assert.Equal(t, "11.2", v.String())
	assert.Zero(t, src.calls, "an explicit version never lists tags")
	assert.Empty(t, p.Questions)

	_, err = r.Resolve(context.Background(), "11.9.9")
	var resErr *ResolverError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ErrTypeNotFound, resErr.Type)

	_, err = r.Resolve(context.Background(), "latest")
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ErrTypeValidation, resErr.Type)
}

// sourceTree creates a non-empty source directory under root.
func sourceTree(t *testing.T, root, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name, "CMakeLists.txt"), []byte("project(Geant4)\n"), 0644))
}

func TestResolve_LocalTreeNeedsNoNetwork(t *testing.T) {
	root := t.TempDir()
	sourceTree(t, root, "geant4-v11.3.2")
	require.NoError(t, os.Mkdir(filepath.Join(root, "geant4-v11.3.2-build"), 0755))

	src := &staticSource{versions: []string{"11.3.2", "11.2"}}
	archives := newArchiveServer(t, "11.3.2")
	session, p, out := newSession(prompt.Interactive, "")

	v, err := New(src, archives.prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Zero(t, src.calls)
	assert.Empty(t, archives.probed)
	assert.Equal(t, []string{"Found existing source tree geant4-v11.3.2. Resume with it? [Y/n]: "}, p.Questions)
	assert.Contains(t, out.String(), "Resuming with existing source tree")
}

func TestResolve_LocalTreeAutoResumes(t *testing.T) {
	for _, mode := range []prompt.RunMode{prompt.AssumeYes, prompt.NonInteractive} {
		t.Run(mode.String(), func(t *testing.T) {
			root := t.TempDir()
			sourceTree(t, root, "geant4-v11.3.2")
			src := &staticSource{err: errors.New("network must not be used")}
			session, p, _ := newSession(mode)

			v, err := New(src, newArchiveServer(t).prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, "11.3.2", v.String())
			assert.Zero(t, src.calls)
			assert.Empty(t, p.Questions)
		})
	}
}

func TestResolve_DeclinedLocalTreeFallsBackToRemote(t *testing.T) {
	root := t.TempDir()
	sourceTree(t, root, "geant4-v11.2")
	src := &staticSource{versions: []string{"11.3.2", "11.2"}}
	session, p, _ := newSession(prompt.Interactive, "n", "1")

	v, err := New(src, newArchiveServer(t, "11.3.2").prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Equal(t, 1, src.calls)
	assert.Len(t, p.Questions, 2)
}

func TestResolve_RemoteOnlyIgnoresLocalTree(t *testing.T) {
	root := t.TempDir()
	sourceTree(t, root, "geant4-v11.2")
	src := &staticSource{versions: []string{"11.3.2"}}
	session, _, _ := newSession(prompt.NonInteractive)

	v, err := New(src, newArchiveServer(t, "11.3.2").prober(), session, WithWorkspace(root), WithRemoteOnly()).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Equal(t, 1, src.calls)
}

func TestResolve_LocalWarnsOnHeaderMismatch(t *testing.T) {
	root := t.TempDir()
	inc := filepath.Join(root, "geant4-v11.3.2", "source", "global", "management", "include")
	require.NoError(t, os.MkdirAll(inc, 0755))
	header := strings.Replace(sampleHeader, "G4VERSION_PATCH 2", "G4VERSION_PATCH 1", 1)
	require.NoError(t, os.WriteFile(filepath.Join(inc, VersionHeaderName), []byte(header), 0644))

	session, _, out := newSession(prompt.NonInteractive)
	v, err := New(&staticSource{}, newArchiveServer(t).prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Contains(t, out.String(), "declares version 11.3.1")
}

func TestResolve_ChoosesAmongLocalTrees(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"geant4-v11.2", "geant4-v11.3.2"} {
		sourceTree(t, root, d)
	}
	session, p, _ := newSession(prompt.Interactive, "2")

	v, err := New(&staticSource{}, newArchiveServer(t).prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.2", v.String())
	assert.Equal(t, []string{"Choose a source tree to resume (1-2): "}, p.Questions)
}

func TestResolve_EmptyWorkspaceFallsBackToRemote(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "geant4-v11.2"), 0755))
	src := &staticSource{versions: []string{"11.3.2"}}
	session, _, _ := newSession(prompt.NonInteractive)

	v, err := New(src, newArchiveServer(t, "11.3.2").prober(), session, WithWorkspace(root)).Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "11.3.2", v.String())
	assert.Equal(t, 1, src.calls)
}

func TestCandidates_CountOption(t *testing.T) {
	src := &staticSource{versions: []string{"11.0", "11.1", "11.2", "11.3"}}
	session, _, _ := newSession(prompt.Interactive)

	got, err := New(src, nil, session, WithCandidateCount(2)).Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"11.3", "11.2"}, Strings(got))

	got, err = New(src, nil, session, WithCandidateCount(0)).Candidates(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}
