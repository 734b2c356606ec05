package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	root := rootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "warelay dev") {
		t.Errorf("got %q", buf.String())
	}
}

func TestConfigCheckCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warelay.yaml")
	if err := os.WriteFile(path, []byte("store:\n  backend: memory\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	root := rootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"--env-file", filepath.Join(dir, "none.env"), "-c", path, "config", "check"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "Configuration OK") {
		t.Errorf("got %q", buf.String())
	}
}

func TestStartCmd_RejectsArgs(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"start", "extra"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unexpected argument")
	}
}
