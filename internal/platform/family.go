package platform

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DistroFamily is the package-manager family a distribution belongs to.
// It selects the package table and install-command template.
type DistroFamily string

const (
	FamilyArch         DistroFamily = "arch"
	FamilyDebian       DistroFamily = "debian"
	FamilyOpenSUSE     DistroFamily = "opensuse"
	FamilyRHEL         DistroFamily = "rhel"
	FamilyFedora       DistroFamily = "fedora"
	FamilyUnrecognized DistroFamily = "unrecognized"
)

// familyKeywords is matched in order against the lower-cased descriptor;
// the first hit wins. Rocky reports ID_LIKE="rhel centos fedora", so rhel
// must be checked before fedora.
var familyKeywords = []struct {
	family   DistroFamily
	keywords []string
}{
	{FamilyArch, []string{"arch"}},
	{FamilyDebian, []string{"ubuntu", "debian", "mint"}},
	{FamilyOpenSUSE, []string{"opensuse"}},
	{FamilyRHEL, []string{"rocky", "rhel"}},
	{FamilyFedora, []string{"fedora"}},
}

// KnownFamilies lists every family with a package table, in table order.
func KnownFamilies() []DistroFamily {
	families := make([]DistroFamily, 0, len(familyKeywords))
	for _, fk := range familyKeywords {
		families = append(families, fk.family)
	}
	return families
}

// Classify maps a free-text distribution descriptor to a family by keyword.
// Anything without a known keyword is FamilyUnrecognized.
func Classify(descriptor string) DistroFamily {
	lower := strings.ToLower(descriptor)
	for _, fk := range familyKeywords {
		for _, kw := range fk.keywords {
			if strings.Contains(lower, kw) {
				return fk.family
			}
		}
	}
	return FamilyUnrecognized
}

// ParseFamily accepts either a family name or any descriptor Classify
// understands (e.g. "Ubuntu 22.04").
func ParseFamily(s string) (DistroFamily, error) {
	for _, f := range KnownFamilies() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	if f := Classify(s); f != FamilyUnrecognized {
		return f, nil
	}
	return FamilyUnrecognized, fmt.Errorf("unrecognized distribution %q (known families: %s)", s, familyList())
}

func familyList() string {
	names := make([]string, 0, len(familyKeywords))
	for _, f := range KnownFamilies() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// OSRelease contains the fields of /etc/os-release used for classification.
type OSRelease struct {
	ID         string   // e.g. "ubuntu"
	IDLike     []string // e.g. ["debian"]
	Name       string   // e.g. "Ubuntu"
	PrettyName string   // e.g. "Ubuntu 22.04.3 LTS"
	VersionID  string   // e.g. "22.04"
}

// ParseOSRelease parses the /etc/os-release file format.
func ParseOSRelease(path string) (*OSRelease, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	release := &OSRelease{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)

		switch key {
		case "ID":
			release.ID = value
		case "ID_LIKE":
			release.IDLike = strings.Fields(value)
		case "NAME":
			release.Name = value
		case "PRETTY_NAME":
			release.PrettyName = value
		case "VERSION_ID":
			release.VersionID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return release, nil
}

// Descriptor renders the identifying fields as one line. URLs and other
// free-form keys are left out so they cannot trip the keyword classifier.
func (r *OSRelease) Descriptor() string {
	parts := []string{}
	if r.PrettyName != "" {
		parts = append(parts, r.PrettyName)
	} else if r.Name != "" {
		parts = append(parts, r.Name)
	}
	if r.ID != "" {
		parts = append(parts, "ID="+r.ID)
	}
	if len(r.IDLike) > 0 {
		parts = append(parts, "ID_LIKE="+strings.Join(r.IDLike, " "))
	}
	return strings.Join(parts, " ")
}
