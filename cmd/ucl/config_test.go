package main

import (
	"testing"

	"github.com/jacoelho/ucl/emit"
)

func TestParseConfigBasic(t *testing.T) {
	cfg, exitResult := parseConfig([]string{"ucl", "-format", "yaml", "file.conf"})
	if exitResult != nil {
		t.Fatalf("unexpected exit result: %s", exitResult.Message)
	}
	if cfg.Format != emit.YAML {
		t.Fatalf("Format = %v, want YAML", cfg.Format)
	}
	if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "file.conf" {
		t.Fatalf("Inputs = %v", cfg.Inputs)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("Concurrency = %d, want default 4", cfg.Concurrency)
	}
}

func TestParseConfigNoInputFiles(t *testing.T) {
	_, exitResult := parseConfig([]string{"ucl"})
	if exitResult == nil || exitResult.ExitCode == 0 {
		t.Fatal("expected a non-zero exit result when no input files are given")
	}
}

func TestParseConfigBadFormat(t *testing.T) {
	_, exitResult := parseConfig([]string{"ucl", "-format", "xml", "file.conf"})
	if exitResult == nil || exitResult.ExitCode == 0 {
		t.Fatal("expected a non-zero exit result for an unknown format")
	}
}

func TestParseFormatAliases(t *testing.T) {
	cases := map[string]emit.Format{
		"json":         emit.JSON,
		"compact_json": emit.JSONCompact,
		"compact":      emit.JSONCompact,
		"config":       emit.Config,
		"nginx":        emit.Config,
		"yaml":         emit.YAML,
		"yml":          emit.YAML,
	}
	for input, want := range cases {
		got, err := parseFormat(input)
		if err != nil {
			t.Errorf("parseFormat(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("parseFormat(%q) = %v, want %v", input, got, want)
		}
	}
}
