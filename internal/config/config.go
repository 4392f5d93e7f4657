// internal/config/config.go
//
// Game tunables for a word-rain match.
// Sources, applied in order:
//   1. Default(): the stock tuning.
//   2. LoadFile(path): optional YAML overlay (only keys present in the file change).
//   3. ApplyEnv(): optional env var overlay (MAX_TIME, GREEN_PROB, ...).
//
// A Config is treated as immutable once a session has been created with it.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MultiplierProb holds the spawn probabilities for double and triple tiles.
// Tpl+Dbl must not exceed 1.
type MultiplierProb struct {
	Dbl float64 `yaml:"dbl" json:"dbl"`
	Tpl float64 `yaml:"tpl" json:"tpl"`
}

// Config is the full set of match tunables.
type Config struct {
	MaxTime        float64         `yaml:"max_time" json:"maxTime"`       // seconds
	StartScore     float64         `yaml:"start_score" json:"startScore"` // score at match start
	RackMax        int             `yaml:"rack_max" json:"rackMax"`       // rack capacity
	MultiplierProb MultiplierProb  `yaml:"multiplier_prob" json:"multiplierProb"`
	GreenProb      float64         `yaml:"green_prob" json:"greenProb"`
	SpawnEvery     float64         `yaml:"spawn_every" json:"spawnEvery"` // ms between spawn attempts
	MaxOnScreen    int             `yaml:"max_on_screen" json:"maxOnScreen"`
	SpeedMin       float64         `yaml:"speed_min" json:"speedMin"` // px/s at 600px canvas height
	SpeedMax       float64         `yaml:"speed_max" json:"speedMax"`
	MultSpeed      map[int]float64 `yaml:"mult_speed" json:"multSpeed"` // multiplier -> fall speed scalar
	TileSize       float64         `yaml:"tile_size" json:"tileSize"`
}

// Default returns the stock tuning.
func Default() *Config {
	return &Config{
		MaxTime:    150,
		StartScore: 0,
		RackMax:    7,
		MultiplierProb: MultiplierProb{
			Dbl: 0.10,
			Tpl: 0.04,
		},
		GreenProb:   0.05,
		SpawnEvery:  900,
		MaxOnScreen: 7,
		SpeedMin:    160,
		SpeedMax:    340,
		MultSpeed: map[int]float64{
			1: 1,
			2: 1.35,
			3: 1.6,
		},
		TileSize: 72,
	}
}

// SpeedScale returns the fall-speed scalar for a multiplier, 1 if unset.
func (c *Config) SpeedScale(mult int) float64 {
	if s, ok := c.MultSpeed[mult]; ok && s > 0 {
		return s
	}
	return 1
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MaxTime <= 0:
		return errors.New("config: max_time must be positive")
	case c.RackMax <= 0:
		return errors.New("config: rack_max must be positive")
	case c.MaxOnScreen <= 0:
		return errors.New("config: max_on_screen must be positive")
	case c.SpawnEvery < 0:
		return errors.New("config: spawn_every must not be negative")
	case c.TileSize <= 0:
		return errors.New("config: tile_size must be positive")
	case c.SpeedMin < 0 || c.SpeedMin > c.SpeedMax:
		return fmt.Errorf("config: speed range [%g, %g] is invalid", c.SpeedMin, c.SpeedMax)
	}
	for name, p := range map[string]float64{
		"multiplier_prob.dbl": c.MultiplierProb.Dbl,
		"multiplier_prob.tpl": c.MultiplierProb.Tpl,
		"green_prob":          c.GreenProb,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config: %s must be within [0, 1], got %g", name, p)
		}
	}
	if c.MultiplierProb.Dbl+c.MultiplierProb.Tpl > 1 {
		return errors.New("config: multiplier_prob.dbl + multiplier_prob.tpl must not exceed 1")
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays any game tunables set in the environment.
// Unparseable values are reported, not ignored.
func (c *Config) ApplyEnv() error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"MAX_TIME", &c.MaxTime},
		{"START_SCORE", &c.StartScore},
		{"MULT_PROB_DBL", &c.MultiplierProb.Dbl},
		{"MULT_PROB_TPL", &c.MultiplierProb.Tpl},
		{"GREEN_PROB", &c.GreenProb},
		{"SPAWN_EVERY", &c.SpawnEvery},
		{"SPEED_MIN", &c.SpeedMin},
		{"SPEED_MAX", &c.SpeedMax},
		{"TILE_SIZE", &c.TileSize},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("env %s: %w", f.key, err)
		}
		*f.dst = n
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RACK_MAX", &c.RackMax},
		{"MAX_ON_SCREEN", &c.MaxOnScreen},
	}
	for _, f := range ints {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", f.key, err)
		}
		*f.dst = n
	}
	return nil
}

// Load builds a Config from defaults, an optional YAML file, and the environment,
// then validates it.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
