package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PlainTags(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{})

	c.Info("probing host")
	c.Successf("installed %s", "11.3.2")
	c.Warn("viewer failed")
	c.Error("make failed")
	c.Action("install packages manually")
	c.Println("  [1] v11.3.2")

	want := strings.Join([]string{
		"[INFO] probing host",
		"[SUCCESS] installed 11.3.2",
		"[WARNING] viewer failed",
		"[ERROR] make failed",
		"[ACTION REQUIRED] install packages manually",
		"  [1] v11.3.2",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestConsole_QuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{Quiet: true})

	c.Info("hidden")
	c.Success("hidden")
	c.Warnf("shown %d", 1)

	assert.Equal(t, "[WARNING] shown 1\n", buf.String())
}

func TestConsole_ColorKeepsMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{Color: true})

	c.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "[ERROR]")
	assert.True(t, strings.HasSuffix(out, " boom\n"), out)
}

func TestDiscard(t *testing.T) {
	c := Discard()
	c.Info("nothing")
	assert.NotNil(t, c.Writer())
}
