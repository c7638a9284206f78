// Package platform detects the host operating system and classifies the
// Linux distribution into a package-manager family.
package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/tsukumogami/g4install/internal/log"
)

// OSFamily is the coarse operating-system classification.
type OSFamily string

const (
	OSLinux       OSFamily = "linux"
	OSWindows     OSFamily = "windows"
	OSUnsupported OSFamily = "unsupported"
)

// Descriptor sources, in probe order.
const (
	SourceLSBRelease = "lsb_release"
	SourceOSRelease  = "os-release"
	SourceUnknown    = "unknown"
)

// ErrUnsupported is returned when the host cannot run the installer:
// native Windows or a non-Linux OS.
var ErrUnsupported = errors.New("unsupported platform")

// DistroIdentity is the result of probing the host. It is produced once per
// run and read-only afterwards.
type DistroIdentity struct {
	OS            OSFamily
	GOOS          string
	Descriptor    string // free text, used only for family classification
	Source        string // which probe produced Descriptor
	KernelRelease string
	WSL           bool
}

// Family classifies the descriptor.
func (d DistroIdentity) Family() DistroFamily {
	return Classify(d.Descriptor)
}

// DisplayName is the one-line host name shown to the operator: the
// Description field of lsb_release output, else the first non-empty line
// of Descriptor.
func (d DistroIdentity) DisplayName() string {
	lines := strings.Split(d.Descriptor, "\n")
	for _, line := range lines {
		if key, value, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(key) == "Description" {
			if v := strings.TrimSpace(value); v != "" {
				return v
			}
		}
	}
	for _, line := range lines {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return d.Descriptor
}

// CheckSupported returns an error wrapping ErrUnsupported unless the host is
// Linux (including WSL).
func (d DistroIdentity) CheckSupported() error {
	switch d.OS {
	case OSLinux:
		return nil
	case OSWindows:
		return fmt.Errorf("%w: native Windows is not supported, run the installer inside WSL", ErrUnsupported)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, d.GOOS)
	}
}

// Prober inspects the running host. Fields are overridable for tests.
type Prober struct {
	GOOS          string
	OSReleasePath string
	Timeout       time.Duration

	// RunCommand runs a probe utility and returns its stdout.
	RunCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

	// KernelRelease returns the kernel release string (uname -r).
	KernelRelease func() (string, error)

	Logger log.Logger
}

// NewProber returns a Prober wired to the real host.
func NewProber(logger log.Logger) *Prober {
	return &Prober{
		GOOS:          runtime.GOOS,
		OSReleasePath: "/etc/os-release",
		Timeout:       5 * time.Second,
		RunCommand:    runProbeCommand,
		KernelRelease: kernelRelease,
		Logger:        log.OrDefault(logger),
	}
}

func runProbeCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Detect classifies the host. It never fails: missing detail degrades to
// the "unknown" descriptor.
func (p *Prober) Detect(ctx context.Context) DistroIdentity {
	logger := log.OrDefault(p.Logger)
	id := DistroIdentity{GOOS: p.GOOS, Source: SourceUnknown, Descriptor: "unknown"}

	if p.KernelRelease != nil {
		release, err := p.KernelRelease()
		if err != nil {
			logger.Debug("uname failed", "error", err)
		}
		id.KernelRelease = release
	}

	switch p.GOOS {
	case "linux":
		id.OS = OSLinux
		id.WSL = IsWSLKernel(id.KernelRelease)
		id.Descriptor, id.Source = p.linuxDescriptor(ctx)
	case "windows":
		id.OS = OSWindows
		id.Descriptor = "Windows"
		id.Source = SourceUnknown
	default:
		id.OS = OSUnsupported
		id.Descriptor = "Unsupported OS: " + p.GOOS
	}

	logger.Info("host detected", "os", id.OS, "source", id.Source, "wsl", id.WSL, "kernel", id.KernelRelease)
	return id
}

func (p *Prober) linuxDescriptor(ctx context.Context) (string, string) {
	logger := log.OrDefault(p.Logger)

	if p.RunCommand != nil {
		probeCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		out, err := p.RunCommand(probeCtx, "lsb_release", "-a")
		if err == nil && strings.TrimSpace(string(out)) != "" {
			return strings.TrimSpace(string(out)), SourceLSBRelease
		}
		logger.Debug("lsb_release unavailable", "error", err)
	}

	if p.OSReleasePath != "" {
		release, err := ParseOSRelease(p.OSReleasePath)
		if err == nil {
			if d := release.Descriptor(); d != "" {
				return d, SourceOSRelease
			}
		}
		logger.Debug("os-release unavailable", "path", p.OSReleasePath, "error", err)
	}

	return "unknown", SourceUnknown
}

// IsWSLKernel reports whether a kernel release string belongs to the
// Windows Subsystem for Linux.
func IsWSLKernel(release string) bool {
	return strings.Contains(strings.ToLower(release), "microsoft")
}
