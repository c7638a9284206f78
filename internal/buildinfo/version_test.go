package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevVersion(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		expected string
	}{
		{"no vcs info", nil, "dev"},
		{"long revision truncated", []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}}, "dev-0123456789ab"},
		{"short revision", []debug.BuildSetting{{Key: "vcs.revision", Value: "beef"}}, "dev-beef"},
		{
			"dirty tree",
			[]debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			},
			"dev-0123456789ab-dirty",
		},
		{
			"clean tree",
			[]debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "false"},
			},
			"dev-0123456789ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := devVersion(&debug.BuildInfo{Settings: tt.settings})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "g4install/"), ua)
	assert.NotEqual(t, "g4install/", ua)
}
