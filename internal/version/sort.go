package version

import (
	"regexp"
	"sort"
)

// tagToken finds release tags in free text. The optional suffix group
// catches pre-release tags such as v11.3.beta, which are dropped.
var tagToken = regexp.MustCompile(`\bv(\d+\.\d+(?:\.\d+)?)([.\-]?[A-Za-z][\w.\-]*)?`)

// ExtractVersions returns every release tag mentioned in text, in order of
// first appearance, without duplicates.
func ExtractVersions(text string) []TargetVersion {
	var out []TargetVersion
	seen := make(map[string]bool)
	for _, m := range tagToken.FindAllStringSubmatch(text, -1) {
		if m[2] != "" || seen[m[1]] {
			continue
		}
		v, err := Parse(m[1])
		if err != nil {
			continue
		}
		seen[m[1]] = true
		out = append(out, v)
	}
	return out
}

// SortDescending returns a deduplicated copy of versions, newest first.
// Ordering is numeric per component, so 11.10 sorts before 11.2.
func SortDescending(versions []TargetVersion) []TargetVersion {
	result := make([]TargetVersion, 0, len(versions))
	seen := make(map[string]bool, len(versions))
	for _, v := range versions {
		if v.IsZero() || seen[v.raw] {
			continue
		}
		seen[v.raw] = true
		result = append(result, v)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Compare(result[j]) > 0
	})
	return result
}

// Strings renders versions for display and logging.
func Strings(versions []TargetVersion) []string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.String()
	}
	return out
}
