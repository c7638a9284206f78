package testutil

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/tsukumogami/g4install/internal/config"
	"github.com/tsukumogami/g4install/internal/shell"
)

// NewTestConfig creates a config rooted in a temporary workspace.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &config.Config{
		WorkspaceRoot:  filepath.Join(tmpDir, "Geant4"),
		ConfigDir:      filepath.Join(tmpDir, "config"),
		ConfigFile:     filepath.Join(tmpDir, "config", "config.toml"),
		TagsURL:        config.DefaultTagsURL,
		ArchiveBaseURL: config.DefaultArchiveBaseURL,
		GitHubRepo:     config.DefaultGitHubRepo,
		APITimeout:     config.DefaultAPITimeout,
	}
	if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	return cfg
}

// Call records one command seen by FakeRunner.
type Call struct {
	Cmd         shell.Command
	Interactive bool
}

// FakeRunner records commands instead of running them. Handler, when set,
// decides the outcome of each call; the default succeeds with no output.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []Call
	Handler func(c Call) ([]byte, error)
	// Paths lists executables LookPath finds, mapped to their location.
	Paths map[string]string
}

func (f *FakeRunner) record(c Call) ([]byte, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	h := f.Handler
	f.mu.Unlock()
	if h == nil {
		return nil, nil
	}
	return h(c)
}

// Run implements shell.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd shell.Command) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.record(Call{Cmd: cmd})
}

// RunInteractive implements shell.Runner.
func (f *FakeRunner) RunInteractive(ctx context.Context, cmd shell.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := f.record(Call{Cmd: cmd, Interactive: true})
	return err
}

// LookPath implements shell.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &fs.PathError{Op: "lookpath", Path: name, Err: fs.ErrNotExist}
}

// Commands returns the recorded commands rendered as strings.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Cmd.String()
	}
	return out
}

// Snapshot maps every path under root (relative, slash-separated) to its
// mode and, for regular files, a content hash.
type Snapshot map[string]string

// TakeSnapshot walks root. A missing root yields an empty snapshot.
func TakeSnapshot(t *testing.T, root string) Snapshot {
	t.Helper()
	snap := make(Snapshot)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		rel, _ := filepath.Rel(root, path)
		info, err := d.Info()
		if err != nil {
			return err
		}
		entry := info.Mode().String()
		if info.Mode().IsRegular() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			sum := sha256.Sum256(data)
			entry += " " + hex.EncodeToString(sum[:]) + " " + info.ModTime().UTC().String()
		}
		snap[filepath.ToSlash(rel)] = entry
		return nil
	})
	if err != nil {
		t.Fatalf("failed to snapshot %s: %v", root, err)
	}
	return snap
}

// TarGz builds an in-memory .tar.gz. Keys ending in "/" are directories;
// other keys are regular files with the given content.
func TarGz(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hdr := &tar.Header{Name: name, Mode: 0644, Typeflag: tar.TypeReg, Size: int64(len(entries[name]))}
		if strings.HasSuffix(name, "/") {
			hdr = &tar.Header{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(entries[name])); err != nil {
				t.Fatalf("failed to write tar entry: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip: %v", err)
	}
	return buf.Bytes()
}
