// Package secrets resolves tokens such as github_token. The environment
// wins over the [secrets] table of config.toml; the table in specs.go
// lists every accepted name and its variables.
package secrets

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tsukumogami/g4install/internal/userconfig"
)

// ConfigSource is the Source reported for values read from config.toml.
const ConfigSource = "config.toml"

// KeyInfo describes a registered secret.
type KeyInfo struct {
	Name    string
	EnvVars []string
	Desc    string
}

var (
	loadOnce sync.Once
	loaded   *userconfig.Config
	loadErr  error
)

func stored(name string) string {
	loadOnce.Do(func() {
		loaded, loadErr = userconfig.Load()
	})
	if loadErr != nil || loaded == nil {
		return ""
	}
	return loaded.Secrets[name]
}

// ResetConfig forgets the cached config.toml so the next lookup reads it
// again. Tests use it after pointing G4INSTALL_CONFIG_HOME elsewhere.
func ResetConfig() {
	loadOnce = sync.Once{}
	loaded, loadErr = nil, nil
}

// Lookup returns the value of secret name and where it came from: the
// environment variable that held it, or ConfigSource. An empty source with
// a nil error means the secret is known but unset.
func Lookup(name string) (value, source string, err error) {
	spec, ok := knownKeys[name]
	if !ok {
		return "", "", fmt.Errorf("unknown secret key: %q", name)
	}
	for _, env := range spec.EnvVars {
		if v := os.Getenv(env); v != "" {
			return v, env, nil
		}
	}
	if v := stored(name); v != "" {
		return v, ConfigSource, nil
	}
	return "", "", nil
}

// Get returns the value of secret name, or an error telling the operator
// how to provide it.
func Get(name string) (string, error) {
	value, source, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if source == "" {
		return "", fmt.Errorf("%s not configured. Set the %s environment variable, or add %s to [secrets] in config.toml",
			name, strings.Join(knownKeys[name].EnvVars, " or "), name)
	}
	return value, nil
}

// Describe reports where secret name is set without revealing it, e.g.
// "set (GH_TOKEN)" or "(unset)".
func Describe(name string) string {
	_, source, err := Lookup(name)
	if err != nil || source == "" {
		return "(unset)"
	}
	return "set (" + source + ")"
}

// KnownKeys returns every registered secret, sorted by name.
func KnownKeys() []KeyInfo {
	keys := make([]KeyInfo, 0, len(knownKeys))
	for name, spec := range knownKeys {
		keys = append(keys, KeyInfo{Name: name, EnvVars: spec.EnvVars, Desc: spec.Desc})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}
