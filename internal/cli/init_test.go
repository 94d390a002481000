package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Errorf("init execute: %v", err)
		}
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "swagger2hooks configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})
	captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Errorf("forced init: %v", err)
		}
	})
	data, _ := os.ReadFile(path)
	if string(data) == "x" {
		t.Fatalf("expected --force to overwrite the file")
	}
}

func TestInit_SampleConfigParses(t *testing.T) {
	// Every documented key, uncommented, must be accepted by the loader.
	var b strings.Builder
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		rest, ok := strings.CutPrefix(line, "# ")
		if !ok {
			continue
		}
		if key, _, found := strings.Cut(rest, ": "); found && !strings.Contains(key, " ") {
			b.WriteString(rest)
			b.WriteString("\n")
		}
	}
	path := filepath.Join(t.TempDir(), "all.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample keys rejected: %v\n%s", err, b.String())
	}
	if cfg.Layout().String() != "unified" {
		t.Fatalf("sample leaves createFolders false, got %s", cfg.Layout())
	}
}
