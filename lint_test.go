package main_test

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestGoFmt(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode: skipping gofmt")
	}
	cmd := exec.Command("gofmt", "-l", "cmd", "internal", "test")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		t.Fatalf("gofmt failed to run: %v\nOutput:\n%s", err, out.String())
	}
	if out.Len() > 0 {
		t.Errorf("gofmt found unformatted files:\n%s", out.String())
	}
}

func TestGoModTidy(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode: skipping go mod tidy")
	}
	rungo(t, "mod", "tidy", "-diff")
}

func TestGoVet(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode: skipping go vet")
	}
	rungo(t, "vet", "./...")
}

// TestLoggingGoesThroughInternalLog keeps the standard "log" package out of
// everything but internal/log, so log levels set by the CLI flags apply.
func TestLoggingGoesThroughInternalLog(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode: skipping go list")
	}
	out := rungo(t, "list", "-f", `{{.ImportPath}}{{range .Imports}} {{.}}{{end}}`, "./...")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasSuffix(fields[0], "/internal/log") {
			continue
		}
		for _, imp := range fields[1:] {
			if imp == "log" {
				t.Errorf("%s imports the standard log package; use internal/log", fields[0])
			}
		}
	}
}

func rungo(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command("go", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ee := (*exec.ExitError)(nil); errors.As(err, &ee) && len(ee.Stderr) > 0 {
			t.Fatalf("%v: %v\n%s", cmd, err, ee.Stderr)
		}
		t.Fatalf("%v: %v\n%s", cmd, err, output)
	}
	return string(output)
}
