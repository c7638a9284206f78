// Package userconfig manages persistent operator preferences stored in
// $XDG_CONFIG_HOME/g4install/config.toml and edited with `g4install config`.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tsukumogami/g4install/internal/config"
)

// Tag sources accepted by tag_source.
const (
	TagSourceGitLab = "gitlab"
	TagSourceGitHub = "github"
)

// Smoke test policies accepted by smoke_test.
const (
	SmokeTestAsk    = "ask"
	SmokeTestAlways = "always"
	SmokeTestNever  = "never"
)

// DefaultCandidateCount is how many remote releases are offered for selection.
const DefaultCandidateCount = 5

// Config represents user-configurable settings. Command-line flags take
// precedence over every value here.
type Config struct {
	// TagSource selects where release tags are listed from.
	TagSource string `toml:"tag_source"`

	// DefaultCores is used instead of prompting when positive.
	DefaultCores int `toml:"default_cores"`

	// RCFile is the shell start-up file receiving the alias. Empty means ~/.bashrc.
	RCFile string `toml:"rc_file,omitempty"`

	// SmokeTest controls whether the B1 example is built after install.
	SmokeTest string `toml:"smoke_test"`

	// CandidateCount bounds the release selection menu.
	CandidateCount int `toml:"candidate_count"`

	// Secrets holds tokens by name. The environment takes precedence; see
	// package secrets.
	Secrets map[string]string `toml:"secrets,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TagSource:      TagSourceGitLab,
		SmokeTest:      SmokeTestAsk,
		CandidateCount: DefaultCandidateCount,
	}
}

// Load reads the config file named by the environment. A missing file
// yields defaults; only unreadable or malformed files are errors.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil
	}
	return loadFromPath(cfg.ConfigFile)
}

func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := userCfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return userCfg, nil
}

// Save writes the configuration to the config file named by the environment.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes through a temp file and rename so a crash never leaves
// a truncated config behind.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.TagSource {
	case TagSourceGitLab, TagSourceGitHub:
	default:
		return fmt.Errorf("tag_source must be %q or %q, got %q", TagSourceGitLab, TagSourceGitHub, c.TagSource)
	}
	switch c.SmokeTest {
	case SmokeTestAsk, SmokeTestAlways, SmokeTestNever:
	default:
		return fmt.Errorf("smoke_test must be ask, always or never, got %q", c.SmokeTest)
	}
	if c.DefaultCores < 0 {
		return fmt.Errorf("default_cores must not be negative")
	}
	if c.CandidateCount < 1 || c.CandidateCount > 20 {
		return fmt.Errorf("candidate_count must be between 1 and 20")
	}
	return nil
}

// Get returns the value of a config key as a string.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "tag_source":
		return c.TagSource, true
	case "default_cores":
		return strconv.Itoa(c.DefaultCores), true
	case "rc_file":
		return c.RCFile, true
	case "smoke_test":
		return c.SmokeTest, true
	case "candidate_count":
		return strconv.Itoa(c.CandidateCount), true
	default:
		return "", false
	}
}

// Set updates a config value from its string form. The receiver is left
// unchanged when the value is rejected.
func (c *Config) Set(key, value string) error {
	next := *c
	switch strings.ToLower(key) {
	case "tag_source":
		next.TagSource = strings.ToLower(value)
	case "default_cores":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for default_cores: must be a whole number")
		}
		next.DefaultCores = n
	case "rc_file":
		next.RCFile = value
	case "smoke_test":
		next.SmokeTest = strings.ToLower(value)
	case "candidate_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for candidate_count: must be a whole number")
		}
		next.CandidateCount = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := next.validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// AvailableKeys returns all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		"tag_source":      "Where release tags are listed from (gitlab/github)",
		"default_cores":   "Parallel make jobs; 0 prompts each run",
		"rc_file":         "Shell start-up file for the version alias (default ~/.bashrc)",
		"smoke_test":      "Build and run example B1 after install (ask/always/never)",
		"candidate_count": "Number of releases offered for selection (1-20)",
	}
}

// SortedKeys returns AvailableKeys in lexical order for stable listings.
func SortedKeys() []string {
	keys := make([]string, 0, len(AvailableKeys()))
	for k := range AvailableKeys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
