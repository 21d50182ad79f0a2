package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Config path: "+env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Threshold: 0.75")
}

func TestConfigValidateRejectsBadThreshold(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Matching.Threshold = 1.5
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, env.configPath, "config", "validate")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, err.Error(), "matching.threshold")
}
