package strata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning knobs exposed to callers that don't want to
// construct a DatabaseBuilder by hand: the merge threshold posting-list
// operations use, the MPH build intensity, whether stemming is on, and the
// database directory "strata build" writes when --out is not given.
type Config struct {
	MergeThreshold    int    `yaml:"merge_threshold"`
	MPHBuildIntensity int    `yaml:"mph_build_intensity"`
	EnableStemming    bool   `yaml:"enable_stemming"`
	BuildDir          string `yaml:"build_dir"`
}

// DefaultConfig returns the configuration used when no YAML file is
// present, matching the constants this package otherwise falls back to.
func DefaultConfig() Config {
	return Config{
		MergeThreshold:    defaultMergeThreshold,
		MPHBuildIntensity: mphBuildIntensity,
		EnableStemming:    true,
		BuildDir:          "./data",
	}
}

// Apply installs c's tunables as the package-level defaults used wherever a
// caller doesn't explicitly override them (posting-list Merge's scalar-
// fallback threshold, and BuildMPH's displacement-probe ceiling). It does
// not affect databases already built or loaded.
func (c Config) Apply() {
	if c.MergeThreshold > 0 {
		defaultMergeThreshold = c.MergeThreshold
	}
	if c.MPHBuildIntensity > 0 {
		mphBuildIntensity = c.MPHBuildIntensity
	}
}

// LoadConfig reads and parses a YAML config file at path, starting from
// DefaultConfig so an omitted field keeps its default rather than zeroing
// out.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("strata: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("strata: parsing config %s: %w", path, err)
	}
	return cfg, nil
}
