package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/quadsim/internal/config"
	"github.com/san-kum/quadsim/internal/dynamo"
)

func newFlightCmd(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	envFile = filepath.Join(t.TempDir(), "missing.env")
	cmd := &cobra.Command{Use: "test"}
	addFlightFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	return cmd
}

func TestResolveConfigPresetAndFlags(t *testing.T) {
	cmd := newFlightCmd(t, map[string]string{"preset": "drop", "time": "2"})

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "drop" {
		t.Errorf("expected drop preset, got %s", cfg.Name)
	}
	if cfg.Duration != 2 {
		t.Errorf("flag should override preset duration, got %f", cfg.Duration)
	}
	if cfg.Init.Position[2] != 10 {
		t.Errorf("preset start height lost: %v", cfg.Init.Position)
	}
	if cfg.TickPeriod != config.DefaultTickPeriod {
		t.Errorf("unchanged flag must not override, tick=%f", cfg.TickPeriod)
	}
}

func TestResolveConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv(config.EnvMass, "0.5")
	t.Setenv(config.EnvDuration, "4")
	cmd := newFlightCmd(t, map[string]string{"mass": "0.3"})

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Quad.Mass != 0.3 {
		t.Errorf("expected flag mass 0.3, got %f", cfg.Quad.Mass)
	}
	if cfg.Duration != 4 {
		t.Errorf("expected env duration 4, got %f", cfg.Duration)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight.yaml")
	if err := os.WriteFile(path, []byte("name: custom\nduration: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := newFlightCmd(t, map[string]string{"config": path, "script": "inputs.yaml"})

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "custom" || cfg.Duration != 7 {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if cfg.Input.Mode != config.InputScript || cfg.Input.Script != "inputs.yaml" {
		t.Errorf("script flag not applied: %+v", cfg.Input)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	cmd := newFlightCmd(t, map[string]string{"preset": "barrel-roll"})
	if _, err := resolveConfig(cmd); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}
