package userconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TagSource != TagSourceGitLab {
		t.Errorf("TagSource = %q, want gitlab", cfg.TagSource)
	}
	if cfg.SmokeTest != SmokeTestAsk {
		t.Errorf("SmokeTest = %q, want ask", cfg.SmokeTest)
	}
	if cfg.CandidateCount != DefaultCandidateCount {
		t.Errorf("CandidateCount = %d, want %d", cfg.CandidateCount, DefaultCandidateCount)
	}
	if cfg.DefaultCores != 0 {
		t.Errorf("DefaultCores = %d, want 0", cfg.DefaultCores)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TagSource != TagSourceGitLab {
		t.Error("expected defaults when file missing")
	}
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "tag_source = \"github\"\ndefault_cores = 8\nsmoke_test = \"never\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TagSource != TagSourceGitHub {
		t.Errorf("TagSource = %q", cfg.TagSource)
	}
	if cfg.DefaultCores != 8 {
		t.Errorf("DefaultCores = %d", cfg.DefaultCores)
	}
	if cfg.SmokeTest != SmokeTestNever {
		t.Errorf("SmokeTest = %q", cfg.SmokeTest)
	}
	if cfg.CandidateCount != DefaultCandidateCount {
		t.Errorf("CandidateCount = %d, want default", cfg.CandidateCount)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "this is not valid toml [[["},
		{"unknown tag source", "tag_source = \"sourceforge\"\n"},
		{"negative cores", "default_cores = -2\n"},
		{"candidate count out of range", "candidate_count = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			if _, err := loadFromPath(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.DefaultCores = 12
	cfg.RCFile = "/home/op/.zshrc"
	if err := cfg.saveToPath(path); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded.DefaultCores != 12 || loaded.RCFile != "/home/op/.zshrc" {
		t.Errorf("unexpected config after save/load: %+v", loaded)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLoadAndSaveWithConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("G4INSTALL_CONFIG_HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.TagSource = TagSourceGitHub
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "config.toml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.TagSource != TagSourceGitHub {
		t.Errorf("TagSource = %q, want github", loaded.TagSource)
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"tag_source", "GitHub", "github"},
		{"default_cores", "16", "16"},
		{"rc_file", "/tmp/rc", "/tmp/rc"},
		{"smoke_test", "always", "always"},
		{"candidate_count", "10", "10"},
		{"DEFAULT_CORES", "4", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got, ok := cfg.Get(tt.key)
			if !ok {
				t.Fatal("Get() returned false")
			}
			if got != tt.want {
				t.Errorf("Get() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"tag_source", "bitbucket"},
		{"default_cores", "many"},
		{"default_cores", "-1"},
		{"smoke_test", "sometimes"},
		{"candidate_count", "50"},
		{"telemetry", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			before := *cfg
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Fatal("expected error")
			}
			if !reflect.DeepEqual(*cfg, before) {
				t.Errorf("config modified on rejected Set: %+v", cfg)
			}
		})
	}
}

func TestGetUnknownKey(t *testing.T) {
	if _, ok := DefaultConfig().Get("nope"); ok {
		t.Error("expected unknown key to return false")
	}
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys()
	if len(keys) != len(AvailableKeys()) {
		t.Fatalf("SortedKeys() returned %d keys", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}
