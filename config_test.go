package strata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MergeThreshold != defaultMergeThreshold {
		t.Fatalf("MergeThreshold = %d, want %d", cfg.MergeThreshold, defaultMergeThreshold)
	}
	if !cfg.EnableStemming {
		t.Fatal("EnableStemming = false, want true")
	}
	if cfg.BuildDir != "./data" {
		t.Fatalf("BuildDir = %q, want ./data", cfg.BuildDir)
	}
}

func TestConfigApplyOverridesMergeThreshold(t *testing.T) {
	original := defaultMergeThreshold
	t.Cleanup(func() { defaultMergeThreshold = original })

	cfg := Config{MergeThreshold: 123}
	cfg.Apply()
	if defaultMergeThreshold != 123 {
		t.Fatalf("defaultMergeThreshold = %d, want 123", defaultMergeThreshold)
	}
}

func TestConfigApplyIgnoresZeroMergeThreshold(t *testing.T) {
	original := defaultMergeThreshold
	t.Cleanup(func() { defaultMergeThreshold = original })
	defaultMergeThreshold = 999

	Config{MergeThreshold: 0}.Apply()
	if defaultMergeThreshold != 999 {
		t.Fatalf("defaultMergeThreshold = %d, want unchanged 999", defaultMergeThreshold)
	}
}

func TestConfigApplyOverridesMPHBuildIntensity(t *testing.T) {
	original := mphBuildIntensity
	t.Cleanup(func() { mphBuildIntensity = original })

	Config{MPHBuildIntensity: 7}.Apply()
	if mphBuildIntensity != 7 {
		t.Fatalf("mphBuildIntensity = %d, want 7", mphBuildIntensity)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")
	if err := os.WriteFile(path, []byte("merge_threshold: 500\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MergeThreshold != 500 {
		t.Fatalf("MergeThreshold = %d, want 500", cfg.MergeThreshold)
	}
	// enable_stemming was omitted from the YAML, so DefaultConfig's value
	// must survive the overlay.
	if !cfg.EnableStemming {
		t.Fatal("EnableStemming = false, want true (default preserved)")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
