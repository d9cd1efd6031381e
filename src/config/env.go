package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvPrefix = "ELEVSIM_"

// ApplyEnv overrides cfg with ELEVSIM_* entries from envFile and the process
// environment. The process environment wins. A missing envFile is ignored.
func ApplyEnv(cfg *Config, envFile string) error {
	values := map[string]string{}
	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", envFile, err)
		}
		for key, value := range fileValues {
			values[key] = value
		}
	}
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			values[key] = value
		}
	}

	for key, value := range values {
		name, ok := strings.CutPrefix(key, EnvPrefix)
		if !ok {
			continue
		}
		if err := setField(cfg, name, value); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err)
		}
	}
	return nil
}

func setField(cfg *Config, name, value string) error {
	var err error
	switch name {
	case "POLICY":
		cfg.Policy = strings.ToLower(value)
	case "FLOORS":
		cfg.Floors, err = strconv.Atoi(value)
	case "ELEVATORS":
		cfg.Elevators, err = strconv.Atoi(value)
	case "CAPACITY":
		cfg.Capacity, err = strconv.Atoi(value)
	case "STEP":
		cfg.Step, err = time.ParseDuration(value)
	case "SPEED":
		cfg.SpeedMultiplier, err = strconv.ParseFloat(value, 64)
	case "DOOR_OPEN":
		cfg.DoorOpen, err = time.ParseDuration(value)
	case "PATIENCE":
		cfg.Patience, err = time.ParseDuration(value)
	case "SPREAD":
		cfg.Spread, err = strconv.ParseBool(value)
	case "DATASET":
		cfg.Dataset = value
	case "SEED":
		cfg.Seed, err = strconv.ParseInt(value, 10, 64)
	case "RENDER_ADDR":
		cfg.RenderAddr = value
	case "LOG_FILE":
		cfg.LogFile = value
	case "DEBUG":
		cfg.Debug, err = strconv.ParseBool(value)
	}
	return err
}
