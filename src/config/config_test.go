package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, expected nil", err)
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"unknown policy", func(cfg *Config) { cfg.Policy = "elevator-magic" }},
		{"zero floors", func(cfg *Config) { cfg.Floors = 0 }},
		{"negative floors", func(cfg *Config) { cfg.Floors = -3 }},
		{"no elevators", func(cfg *Config) { cfg.Elevators = 0 }},
		{"zero capacity", func(cfg *Config) { cfg.Capacity = 0 }},
		{"zero step", func(cfg *Config) { cfg.Step = 0 }},
		{"negative speed multiplier", func(cfg *Config) { cfg.SpeedMultiplier = -1 }},
		{"zero acceleration", func(cfg *Config) { cfg.Acceleration = 0 }},
		{"initial floor out of range", func(cfg *Config) { cfg.InitialFloors = []int{cfg.Floors + 1} }},
		{"too many initial floors", func(cfg *Config) { cfg.InitialFloors = []int{1, 1, 1} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elevsim.yaml")
	content := "floors: 5\nelevators: 1\npolicy: SSTF\nstep: 250ms\ninitialFloors: [3]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned %v", err)
	}
	if cfg.Floors != 5 || cfg.Elevators != 1 || cfg.Policy != "sstf" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Step != 250*time.Millisecond {
		t.Errorf("Step = %v, expected 250ms", cfg.Step)
	}
	if cfg.InitialFloor(0) != 3 || cfg.InitialFloor(1) != 1 {
		t.Errorf("InitialFloor returned %d, %d", cfg.InitialFloor(0), cfg.InitialFloor(1))
	}
	if cfg.Capacity != Capacity {
		t.Errorf("Capacity = %d, expected default %d", cfg.Capacity, Capacity)
	}
}

func TestInitialFloorSpread(t *testing.T) {
	cfg := Default()
	cfg.Floors, cfg.Elevators = 10, 3
	cfg.InitialFloors = []int{6}
	cfg.Spread = true

	want := []int{6, 4, 7}
	for id, floor := range want {
		if got := cfg.InitialFloor(id); got != floor {
			t.Errorf("InitialFloor(%d) = %d, expected %d", id, got, floor)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned %v", err)
	}

	cfg.Spread = false
	if got := cfg.InitialFloor(2); got != 1 {
		t.Errorf("InitialFloor(2) without spread = %d, expected 1", got)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elevsim.yaml")
	if err := os.WriteFile(path, []byte("floorz: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an unknown field")
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "ELEVSIM_POLICY=fcfs\nELEVSIM_FLOORS=12\nELEVSIM_DOOR_OPEN=1s\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ELEVSIM_FLOORS", "7")

	cfg := Default()
	if err := ApplyEnv(&cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv() returned %v", err)
	}
	if cfg.Policy != "fcfs" {
		t.Errorf("Policy = %q, expected fcfs", cfg.Policy)
	}
	if cfg.Floors != 7 {
		t.Errorf("Floors = %d, expected the process environment to win with 7", cfg.Floors)
	}
	if cfg.DoorOpen != time.Second {
		t.Errorf("DoorOpen = %v, expected 1s", cfg.DoorOpen)
	}
}

func TestApplyEnvMissingFileAndBadValue(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(&cfg, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("ApplyEnv() with missing file returned %v", err)
	}

	t.Setenv("ELEVSIM_CAPACITY", "lots")
	if err := ApplyEnv(&cfg, ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ApplyEnv() = %v, expected ErrInvalidConfig", err)
	}
}
