package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not mention target: %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[detection]") {
		t.Fatalf("sample missing detection section: %q", string(data))
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	out, err := executeCommand(t, "config", "show", "-c", missing)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[paths]") || !strings.Contains(out, "[detection]") {
		t.Fatalf("unexpected config output: %q", out)
	}
}

func TestConfigValidateWithoutFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	out, err := executeCommand(t, "config", "validate", "-c", missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "defaults are valid") {
		t.Fatalf("unexpected output: %q", out)
	}
}
