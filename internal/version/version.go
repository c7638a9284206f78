// Package version resolves which Geant4 release to install: from an explicit
// hint, from an existing workspace, or from the upstream tag listing.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// releasePattern accepts "11.3.2", "v11.3.2" and two-component tags such as "11.2".
var releasePattern = regexp.MustCompile(`^v?(\d+)\.(\d+)(?:\.(\d+))?$`)

// TargetVersion identifies a Geant4 release. The zero value is "no version".
//
// Comparison uses all three numeric components; String keeps the text the
// release was tagged with, so v11.2 stays "11.2" in archive and directory
// names even though its patch component is zero.
type TargetVersion struct {
	raw string
	sv  *semver.Version
}

// Parse validates a release string. A leading "v" is accepted.
func Parse(s string) (TargetVersion, error) {
	s = strings.TrimSpace(s)
	if !releasePattern.MatchString(s) {
		return TargetVersion{}, &ResolverError{
			Type:    ErrTypeValidation,
			Source:  "input",
			Message: fmt.Sprintf("invalid version %q", s),
		}
	}
	raw := strings.TrimPrefix(s, "v")
	sv, err := semver.NewVersion(raw)
	if err != nil {
		return TargetVersion{}, &ResolverError{
			Type:    ErrTypeValidation,
			Source:  "input",
			Message: fmt.Sprintf("invalid version %q", s),
			Err:     err,
		}
	}
	return TargetVersion{raw: raw, sv: sv}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) TargetVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromParts builds a three-component version.
func FromParts(major, minor, patch uint64) TargetVersion {
	return MustParse(fmt.Sprintf("%d.%d.%d", major, minor, patch))
}

// IsZero reports whether no version has been selected.
func (v TargetVersion) IsZero() bool { return v.sv == nil }

func (v TargetVersion) Major() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Major()
}

func (v TargetVersion) Minor() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Minor()
}

func (v TargetVersion) Patch() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Patch()
}

// Series returns "major.minor", the key of the package addon table.
func (v TargetVersion) Series() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// String returns the release as tagged, without the leading "v".
func (v TargetVersion) String() string { return v.raw }

// Tag returns the upstream tag name, e.g. "v11.3.2".
func (v TargetVersion) Tag() string { return "v" + v.raw }

// Compare orders by numeric components. Versions that are numerically equal
// but spelled differently ("11.2" and "11.2.0") order the longer spelling
// first so sorting is deterministic.
func (v TargetVersion) Compare(o TargetVersion) int {
	switch {
	case v.sv == nil && o.sv == nil:
		return 0
	case v.sv == nil:
		return -1
	case o.sv == nil:
		return 1
	}
	if c := v.sv.Compare(o.sv); c != 0 {
		return c
	}
	switch {
	case len(v.raw) > len(o.raw):
		return 1
	case len(v.raw) < len(o.raw):
		return -1
	}
	return 0
}

// Equal reports whether both versions were tagged identically.
func (v TargetVersion) Equal(o TargetVersion) bool { return v.raw == o.raw }
