package main

import (
	"testing"

	"github.com/gyeh/zedigen/internal/exitcode"
	"github.com/gyeh/zedigen/internal/generator"
)

func TestParseAnomalyTypes(t *testing.T) {
	got, err := parseAnomalyTypes([]string{"DuplicateClaim=1", "MissingField=0.25"})
	if err != nil {
		t.Fatal(err)
	}
	if got["DuplicateClaim"] != 1 || got["MissingField"] != 0.25 {
		t.Errorf("got %v", got)
	}

	for _, bad := range []string{"DuplicateClaim", "=0.5", "MissingField=high"} {
		if _, err := parseAnomalyTypes([]string{bad}); err == nil {
			t.Errorf("parseAnomalyTypes(%q): expected error", bad)
		}
	}
}

func TestKindExitCode(t *testing.T) {
	tests := map[generator.Kind]int{
		generator.KindConfig:        exitcode.ConfigError,
		generator.KindValidation:    exitcode.ValidationError,
		generator.KindSerialization: exitcode.SerializationError,
		generator.KindIO:            exitcode.IOError,
		generator.KindGeneration:    exitcode.GenerationError,
		"":                          exitcode.GenerationError,
	}
	for k, want := range tests {
		if got := kindExitCode(k); got != want {
			t.Errorf("kindExitCode(%q) = %d, want %d", k, got, want)
		}
	}
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	path := t.TempDir() + "/c.yaml"
	c := cfg
	c.ClaimCount = 50
	c.Format = "json"
	if err := c.SaveToFile(path); err != nil {
		t.Fatal(err)
	}

	if err := generateCmd.ParseFlags([]string{"--config", path, "--count", "7", "--anomaly-type", "DuplicateClaim=1"}); err != nil {
		t.Fatal(err)
	}
	got, err := resolveConfig(generateCmd)
	if err != nil {
		t.Fatal(err)
	}
	if got.ClaimCount != 7 {
		t.Errorf("count = %d, want flag value 7", got.ClaimCount)
	}
	if got.Format != "json" {
		t.Errorf("format = %q, want file value json", got.Format)
	}
	if got.AnomalyTypeRates["DuplicateClaim"] != 1 {
		t.Errorf("type rates = %v", got.AnomalyTypeRates)
	}
	if got.Seed != nil {
		t.Errorf("seed set without flag: %v", *got.Seed)
	}
}
