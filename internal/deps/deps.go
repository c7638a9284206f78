// Package deps maps a distribution family and Geant4 release to the system
// packages required to build it and the command that installs them.
//
// The mapping is configuration data embedded from packages.toml. Families
// missing from the table are unsupported; nothing is guessed for them.
package deps

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/version"
)

//go:embed packages.toml
var packagesTOML string

// PackageSet is an ordered list of package names. Order is kept as written
// in the table so the install command text is reproducible.
type PackageSet []string

// String joins the packages with spaces.
func (s PackageSet) String() string { return strings.Join(s, " ") }

// Table is the decoded package table.
type Table struct {
	Families map[string]FamilyEntry         `toml:"families"`
	Addons   map[string]map[string][]string `toml:"addons"`
}

// FamilyEntry holds the base list and install command for one family.
type FamilyEntry struct {
	Install         string            `toml:"install"`
	Packages        []string          `toml:"packages"`
	InstallOverride []InstallOverride `toml:"install_override"`
}

// InstallOverride replaces the install command when the kernel release
// starts with KernelPrefix.
type InstallOverride struct {
	KernelPrefix string `toml:"kernel_prefix"`
	Install      string `toml:"install"`
}

// Parse decodes and validates a package table. Every known family must
// have an install command and a non-empty base list.
func Parse(data string) (*Table, error) {
	var t Table
	md, err := toml.Decode(data, &t)
	if err != nil {
		return nil, fmt.Errorf("failed to parse package table: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in package table: %v", undecoded)
	}

	for _, f := range platform.KnownFamilies() {
		entry, ok := t.Families[string(f)]
		if !ok {
			return nil, fmt.Errorf("package table has no entry for %s", f)
		}
		if entry.Install == "" || len(entry.Packages) == 0 {
			return nil, fmt.Errorf("package table entry for %s is incomplete", f)
		}
	}
	for series, byFamily := range t.Addons {
		if _, err := version.Parse(series); err != nil {
			return nil, fmt.Errorf("addon key %q is not a release series", series)
		}
		for family := range byFamily {
			if _, ok := t.Families[family]; !ok {
				return nil, fmt.Errorf("addon %s names unknown family %q", series, family)
			}
		}
	}
	return &t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// DefaultTable returns the embedded table. It panics if the embedded data
// is invalid, which the package tests rule out.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(packagesTOML)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Resolve returns the base list for family followed by the addon for the
// release series of v. Unrecognized families return (nil, false).
func (t *Table) Resolve(family platform.DistroFamily, v version.TargetVersion) (PackageSet, bool) {
	entry, ok := t.Families[string(family)]
	if !ok {
		return nil, false
	}
	addon := t.Addons[v.Series()][string(family)]

	set := make(PackageSet, 0, len(entry.Packages)+len(addon))
	set = append(set, entry.Packages...)
	set = append(set, addon...)
	return set, true
}

// InstallCommand returns the install command prefix for family. The first
// override whose prefix matches kernelRelease wins.
func (t *Table) InstallCommand(family platform.DistroFamily, kernelRelease string) (string, bool) {
	entry, ok := t.Families[string(family)]
	if !ok {
		return "", false
	}
	for _, o := range entry.InstallOverride {
		if strings.HasPrefix(kernelRelease, o.KernelPrefix) {
			return o.Install, true
		}
	}
	return entry.Install, true
}

// Resolve looks up packages in the embedded table.
func Resolve(family platform.DistroFamily, v version.TargetVersion) (PackageSet, bool) {
	return DefaultTable().Resolve(family, v)
}

// InstallCommand looks up the install command in the embedded table.
func InstallCommand(family platform.DistroFamily, kernelRelease string) (string, bool) {
	return DefaultTable().InstallCommand(family, kernelRelease)
}

// Plan is a resolved install: what to install and how.
type Plan struct {
	Family   platform.DistroFamily
	Packages PackageSet
	Command  string
}

// PlanFor resolves packages and the install command together.
func PlanFor(family platform.DistroFamily, v version.TargetVersion, kernelRelease string) (Plan, bool) {
	pkgs, ok := Resolve(family, v)
	if !ok {
		return Plan{Family: family}, false
	}
	cmd, _ := InstallCommand(family, kernelRelease)
	return Plan{Family: family, Packages: pkgs, Command: cmd}, true
}

// CommandLine is the full shell command, e.g.
// "sudo apt update && sudo apt install -y cmake ...".
func (p Plan) CommandLine() string {
	return p.Command + " " + p.Packages.String()
}
