package platform

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsukumogami/g4install/internal/log"
)

func fakeProber(goos, kernel string, lsbOut string, lsbErr error, osRelease string) (*Prober, *[]string) {
	var calls []string
	return &Prober{
		GOOS:          goos,
		OSReleasePath: osRelease,
		RunCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			calls = append(calls, name)
			return []byte(lsbOut), lsbErr
		},
		KernelRelease: func() (string, error) { return kernel, nil },
		Logger:        log.NewNoop(),
	}, &calls
}

func TestDetect_PrefersLSBRelease(t *testing.T) {
	p, calls := fakeProber("linux", "6.5.0-14-generic",
		"Distributor ID:\tUbuntu\nDescription:\tUbuntu 22.04.3 LTS\n", nil,
		filepath.Join("testdata", "os-release", "fedora"))

	id := p.Detect(context.Background())

	assert.Equal(t, OSLinux, id.OS)
	assert.Equal(t, SourceLSBRelease, id.Source)
	assert.Equal(t, FamilyDebian, id.Family())
	assert.False(t, id.WSL)
	assert.Equal(t, []string{"lsb_release"}, *calls)
	assert.NoError(t, id.CheckSupported())
	assert.Contains(t, id.Descriptor, "Distributor ID:")
	assert.Equal(t, "Ubuntu 22.04.3 LTS", id.DisplayName())
}

func TestDetect_FallsBackToOSRelease(t *testing.T) {
	p, _ := fakeProber("linux", "6.8.9-arch1-1", "", errors.New("exec: not found"),
		filepath.Join("testdata", "os-release", "arch"))

	id := p.Detect(context.Background())

	assert.Equal(t, SourceOSRelease, id.Source)
	assert.Equal(t, FamilyArch, id.Family())
}

func TestDetect_UnknownWhenAllProbesFail(t *testing.T) {
	p, _ := fakeProber("linux", "", "", errors.New("exec: not found"), "/nonexistent/os-release")

	id := p.Detect(context.Background())

	assert.Equal(t, OSLinux, id.OS)
	assert.Equal(t, SourceUnknown, id.Source)
	assert.Equal(t, "unknown", id.Descriptor)
	assert.Equal(t, FamilyUnrecognized, id.Family())
	assert.NoError(t, id.CheckSupported())
}

func TestDetect_WSL(t *testing.T) {
	p, _ := fakeProber("linux", "5.15.133.1-microsoft-standard-WSL2", "Description:\tUbuntu 22.04", nil, "")

	id := p.Detect(context.Background())

	assert.True(t, id.WSL)
	assert.NoError(t, id.CheckSupported())
}

func TestDetect_NativeWindowsIsUnsupported(t *testing.T) {
	p, calls := fakeProber("windows", "", "", nil, "")

	id := p.Detect(context.Background())

	assert.Equal(t, OSWindows, id.OS)
	assert.Empty(t, *calls, "no linux probes should run on windows")
	err := id.CheckSupported()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Contains(t, err.Error(), "WSL")
}

func TestDetect_OtherOSIsUnsupported(t *testing.T) {
	p, _ := fakeProber("darwin", "23.1.0", "", nil, "")

	id := p.Detect(context.Background())

	assert.Equal(t, OSUnsupported, id.OS)
	assert.ErrorIs(t, id.CheckSupported(), ErrUnsupported)
}

func TestIsWSLKernel(t *testing.T) {
	assert.True(t, IsWSLKernel("4.4.0-19041-Microsoft"))
	assert.True(t, IsWSLKernel("5.15.90.1-microsoft-standard-WSL2"))
	assert.False(t, IsWSLKernel("6.6.1-arch1-1"))
	assert.False(t, IsWSLKernel(""))
}

func TestDistroIdentity_DisplayName(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		want       string
	}{
		{"lsb_release output", "No LSB modules are available.\nDistributor ID:\tDebian\nDescription:\tDebian GNU/Linux 12 (bookworm)\nRelease:\t12\nCodename:\tbookworm", "Debian GNU/Linux 12 (bookworm)"},
		{"os-release descriptor", "Fedora Linux 40 (Workstation Edition) fedora", "Fedora Linux 40 (Workstation Edition) fedora"},
		{"empty description", "Distributor ID:\tArch\nDescription:\t\n", "Distributor ID:\tArch"},
		{"unknown", "unknown", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DistroIdentity{Descriptor: tt.descriptor}.DisplayName())
		})
	}
}
