package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/swagger2hooks/internal/compose"
)

// captureConfig runs the root command with args and returns the resolved
// generate config without running generation.
func captureConfig(t *testing.T, args ...string) (*GenerateConfig, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestGenerateConfigFromFlags(t *testing.T) {
	captured, err := captureConfig(t,
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--create-folders",
		"--folder-structure", "Distributed",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--endpoint-keys", "numbered",
		"--concurrency", "4",
		"--http-client-import", "~/http",
		"--request-helper-import", "~/request",
		"--query-import", "react-query",
		"--dry-run",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	want := &GenerateConfig{
		Input:               "spec.yaml",
		Out:                 "./build",
		CreateFolders:       true,
		FolderStructure:     "distributed",
		IncludeTags:         []string{"foo", "bar"},
		ExcludeTags:         []string{"baz"},
		EndpointKeys:        "numbered",
		Concurrency:         4,
		HTTPClientImport:    "~/http",
		RequestHelperImport: "~/request",
		QueryImport:         "react-query",
		DryRun:              true,
		Force:               true,
		Verbose:             true,
	}
	if diff := cmp.Diff(want, captured); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if captured.Layout() != compose.Distributed {
		t.Errorf("expected distributed layout")
	}
}

func TestGenerateConfigDefaults(t *testing.T) {
	captured, err := captureConfig(t, "generate", "--input", "spec.json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Out != "src/api" || captured.EndpointKeys != "collapse" {
		t.Errorf("unexpected defaults: out=%q keys=%q", captured.Out, captured.EndpointKeys)
	}
	if captured.QueryImport != "@tanstack/react-query" || captured.HTTPClientImport != "@/lib/httpClient" {
		t.Errorf("unexpected import defaults: %+v", captured)
	}
	if captured.Layout() != compose.Unified {
		t.Errorf("expected unified layout by default")
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
createFolders: true
folderStructure: distributed
includeTags:
  - cfgFoo
excludeTags: cfgBar
endpoint_keys: numbered
concurrency: 2
queryImport: cfg-query
dryRun: true
force: false
verbose: true
`) + "\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	captured, err := captureConfig(t,
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--concurrency", "1",
		"--dry-run=false",
		"--force",
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if captured.Layout() != compose.Distributed {
		t.Errorf("layout: want distributed from config")
	}
	if diff := cmp.Diff([]string{"flagTag"}, captured.IncludeTags); diff != "" {
		t.Errorf("include tags (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cfgBar"}, captured.ExcludeTags); diff != "" {
		t.Errorf("exclude tags (-want +got):\n%s", diff)
	}
	if captured.EndpointKeys != "numbered" {
		t.Errorf("endpoint keys: got %q", captured.EndpointKeys)
	}
	if captured.Concurrency != 1 {
		t.Errorf("concurrency: want flag value 1, got %d", captured.Concurrency)
	}
	if captured.QueryImport != "cfg-query" {
		t.Errorf("query import: got %q", captured.QueryImport)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("unknown: value\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := captureConfig(t, "--config", configPath, "generate", "--input", "spec.yaml")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"generate"}, "--input is required"},
		{"empty out", []string{"generate", "--input", "a.json", "--out", " "}, "--out is required"},
		{"bad keys", []string{"generate", "--input", "a.json", "--endpoint-keys", "hashed"}, `unsupported --endpoint-keys "hashed" (allowed: collapse, numbered)`},
		{"negative concurrency", []string{"generate", "--input", "a.json", "--concurrency=-1"}, "--concurrency must be at least 0"},
		{"overlap", []string{"generate", "--input", "a.json", "--include-tags", "a,b", "--exclude-tags", "b"}, "include/exclude tags overlap: b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			captured, err := captureConfig(t, tc.args...)
			if captured != nil {
				t.Fatalf("runner should not be reached")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestConfigValueHelpers(t *testing.T) {
	t.Parallel()
	if got, err := valueAsStringSlice("a, b,,c"); err != nil || !cmp.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("csv: got %v, %v", got, err)
	}
	if _, err := valueAsBool("maybe"); err == nil {
		t.Errorf("expected invalid boolean error")
	}
	if got, err := valueAsInt(3); err != nil || got != 3 {
		t.Errorf("int: got %d, %v", got, err)
	}
	if _, err := valueAsInt(1.5); err == nil {
		t.Errorf("expected non-integer error")
	}
	if got := normalizeKey(" HTTP-Client_Import "); got != "httpclientimport" {
		t.Errorf("normalizeKey: got %q", got)
	}
}
