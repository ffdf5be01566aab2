package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvMass          = "QUADSIM_MASS"
	EnvGravity       = "QUADSIM_GRAVITY"
	EnvThrustCoeff   = "QUADSIM_THRUST_COEFFICIENT"
	EnvTickPeriod    = "QUADSIM_TICK_PERIOD"
	EnvDuration      = "QUADSIM_DURATION"
	EnvUnitsPerMeter = "QUADSIM_UNITS_PER_METER"
)

// LoadEnvFiles loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load env file %s", p)
		}
	}
	return nil
}

// ApplyEnv overrides config fields from QUADSIM_* variables.
func (c *Config) ApplyEnv() error {
	fields := []struct {
		key string
		dst *float64
	}{
		{EnvMass, &c.Quad.Mass},
		{EnvGravity, &c.Quad.Gravity},
		{EnvThrustCoeff, &c.Quad.ThrustCoefficient},
		{EnvTickPeriod, &c.TickPeriod},
		{EnvDuration, &c.Duration},
		{EnvUnitsPerMeter, &c.UnitsPerMeter},
	}
	for _, f := range fields {
		raw, ok := os.LookupEnv(f.key)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(err, "%s", f.key)
		}
		*f.dst = v
	}
	return nil
}
