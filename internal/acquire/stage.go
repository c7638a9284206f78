// Package acquire downloads and unpacks a Geant4 release into the
// workspace and prepares its build directory.
//
// Each artifact is checked before it is touched. Existing state is only
// replaced after the operator picks the fresh option at a checkpoint;
// choosing Abort returns prompt.ErrAborted with the disk left as found.
package acquire

import (
	"context"
	"fmt"
	"os"

	"github.com/tsukumogami/g4install/internal/log"
	"github.com/tsukumogami/g4install/internal/progress"
	"github.com/tsukumogami/g4install/internal/prompt"
	"github.com/tsukumogami/g4install/internal/shell"
	"github.com/tsukumogami/g4install/internal/workspace"
)

// Outcome records what one artifact went through.
type Outcome string

const (
	Created  Outcome = "created"
	Reused   Outcome = "reused"
	Replaced Outcome = "replaced"
)

// Result summarizes an acquisition.
type Result struct {
	Archive  Outcome
	Source   Outcome
	BuildDir Outcome
}

// Stage runs the acquisition for one workspace.
type Stage struct {
	Session    *prompt.Session
	Runner     shell.Runner
	Downloader *Downloader
	// ArchiveURL maps a release string such as "11.3.2" to its archive URL.
	ArchiveURL func(release string) string
	// Spinner, when set, runs while the archive is unpacked.
	Spinner *progress.Spinner
	Logger  log.Logger
}

// Acquire makes the archive, the extracted source tree and the build
// directory of ws exist, in that order.
func (s *Stage) Acquire(ctx context.Context, ws *workspace.Workspace) (*Result, error) {
	logger := log.OrDefault(s.Logger)
	if err := ws.EnsureWritable(ctx, s.Session, s.Runner); err != nil {
		return nil, err
	}
	if err := ws.EnsureRoot(); err != nil {
		return nil, err
	}

	res := &Result{}
	var err error
	if res.Archive, err = s.archive(ctx, ws); err != nil {
		return nil, err
	}
	if res.Source, err = s.source(ws); err != nil {
		return nil, err
	}
	if res.BuildDir, err = s.buildDir(ctx, ws); err != nil {
		return nil, err
	}
	logger.Debug("acquisition complete",
		"archive", res.Archive, "source", res.Source, "build", res.BuildDir)
	return res, nil
}

func (s *Stage) archive(ctx context.Context, ws *workspace.Workspace) (Outcome, error) {
	path := ws.ArchivePath()
	outcome := Created
	if workspace.Exists(path) {
		d, err := s.Session.Decide(ctx, prompt.ArchiveDecision(ws.ArchiveName()))
		if err != nil {
			return "", err
		}
		switch d {
		case prompt.Abort:
			return "", prompt.ErrAborted
		case prompt.ResumeExisting:
			s.Session.Console.Infof("Using existing %s.", ws.ArchiveName())
			return Reused, nil
		}
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", path, err)
		}
		outcome = Replaced
	}

	url := s.ArchiveURL(ws.Version.String())
	s.Session.Console.Infof("Downloading Geant4 %s from %s", ws.Version.Tag(), url)
	if err := s.Downloader.Download(ctx, url, path); err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		s.Session.Console.Successf("Downloaded %s (%s).", ws.ArchiveName(), progress.FormatBytes(info.Size()))
	} else {
		s.Session.Console.Successf("Downloaded %s.", ws.ArchiveName())
	}
	return outcome, nil
}

func (s *Stage) source(ws *workspace.Workspace) (Outcome, error) {
	dir := ws.SourceDir()
	empty, err := workspace.IsEmptyDir(dir)
	if err != nil {
		return "", err
	}
	if !empty {
		s.Session.Console.Infof("Source directory %s already exists, skipping extraction.", ws.Name())
		return Reused, nil
	}

	s.Session.Console.Infof("Extracting %s...", ws.ArchiveName())
	s.Spinner.Start("Unpacking " + ws.ArchiveName())
	err = Extract(ws.ArchivePath(), dir, 1)
	s.Spinner.Stop("")
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", ws.ArchiveName(), err)
	}
	s.Session.Console.Successf("Extracted into %s.", ws.Name())
	return Created, nil
}

func (s *Stage) buildDir(ctx context.Context, ws *workspace.Workspace) (Outcome, error) {
	dir := ws.BuildDir()
	empty, err := workspace.IsEmptyDir(dir)
	if err != nil {
		return "", err
	}
	if empty {
		existed := workspace.Exists(dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create build directory: %w", err)
		}
		if existed {
			return Reused, nil
		}
		return Created, nil
	}

	d, err := s.Session.Decide(ctx, prompt.BuildDirDecision(ws.BuildDirName()))
	if err != nil {
		return "", err
	}
	switch d {
	case prompt.Abort:
		return "", prompt.ErrAborted
	case prompt.ResumeExisting:
		s.Session.Console.Infof("Keeping contents of %s.", ws.BuildDirName())
		return Reused, nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear build directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create build directory: %w", err)
	}
	s.Session.Console.Infof("Cleared %s.", ws.BuildDirName())
	return Replaced, nil
}
