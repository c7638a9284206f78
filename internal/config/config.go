package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// EnvWorkspace overrides the workspace root (default <cwd>/Geant4).
	EnvWorkspace = "G4INSTALL_WORKSPACE"

	// EnvConfigHome overrides the directory holding config.toml.
	EnvConfigHome = "G4INSTALL_CONFIG_HOME"

	// EnvAPITimeout configures the timeout for tag listing and probe requests.
	EnvAPITimeout = "G4INSTALL_API_TIMEOUT"

	// EnvTagsURL overrides the upstream tag listing page.
	EnvTagsURL = "G4INSTALL_TAGS_URL"

	// EnvArchiveBaseURL overrides the base of source archive URLs.
	EnvArchiveBaseURL = "G4INSTALL_ARCHIVE_URL"

	// EnvGitHubRepo overrides the owner/name of the GitHub mirror.
	EnvGitHubRepo = "G4INSTALL_GITHUB_REPO"

	// DefaultAPITimeout is the default timeout for remote requests.
	DefaultAPITimeout = 30 * time.Second

	// DefaultTagsURL lists upstream release tags.
	DefaultTagsURL = "https://gitlab.cern.ch/geant4/geant4/-/tags"

	// DefaultArchiveBaseURL is joined with v{version}/geant4-v{version}.tar.gz.
	DefaultArchiveBaseURL = "https://gitlab.cern.ch/geant4/geant4/-/archive"

	// DefaultGitHubRepo is the read-only GitHub mirror of the upstream repository.
	DefaultGitHubRepo = "Geant4/geant4"

	// WorkspaceDirName is created under the invocation directory.
	WorkspaceDirName = "Geant4"
)

// GetAPITimeout returns the timeout configured by G4INSTALL_API_TIMEOUT,
// clamped to 1s..10m. Unset or malformed values yield DefaultAPITimeout.
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n",
			EnvAPITimeout, duration)
		return time.Second
	}
	if duration > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n",
			EnvAPITimeout, duration)
		return 10 * time.Minute
	}

	return duration
}

// Config holds the resolved locations and endpoints for a run.
type Config struct {
	WorkspaceRoot  string // $G4INSTALL_WORKSPACE or <cwd>/Geant4
	ConfigDir      string // $G4INSTALL_CONFIG_HOME or $XDG_CONFIG_HOME/g4install
	ConfigFile     string // <ConfigDir>/config.toml
	TagsURL        string
	ArchiveBaseURL string
	GitHubRepo     string
	APITimeout     time.Duration
}

// DefaultConfig resolves configuration from the environment and the
// current working directory.
func DefaultConfig() (*Config, error) {
	root := os.Getenv(EnvWorkspace)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = filepath.Join(cwd, WorkspaceDirName)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	configDir, err := configDir()
	if err != nil {
		return nil, err
	}

	return &Config{
		WorkspaceRoot:  root,
		ConfigDir:      configDir,
		ConfigFile:     filepath.Join(configDir, "config.toml"),
		TagsURL:        envOr(EnvTagsURL, DefaultTagsURL),
		ArchiveBaseURL: strings.TrimRight(envOr(EnvArchiveBaseURL, DefaultArchiveBaseURL), "/"),
		GitHubRepo:     envOr(EnvGitHubRepo, DefaultGitHubRepo),
		APITimeout:     GetAPITimeout(),
	}, nil
}

func configDir() (string, error) {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "g4install"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "g4install"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ArchiveURL returns the source archive URL for a release written as it
// appears in the tag (e.g. "11.2" or "11.3.2").
func (c *Config) ArchiveURL(release string) string {
	return fmt.Sprintf("%s/v%s/geant4-v%s.tar.gz", c.ArchiveBaseURL, release, release)
}

// GitHubOwnerRepo splits GitHubRepo into owner and name.
func (c *Config) GitHubOwnerRepo() (owner, repo string, err error) {
	parts := strings.Split(c.GitHubRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository %q: want owner/name", c.GitHubRepo)
	}
	return parts[0], parts[1], nil
}
