// Package config handles YAML configuration parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"plantsim/internal/core"
	"plantsim/internal/gen"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	AssetType string         `yaml:"asset_type"` // e.g. "conveyor_belt", "ball_mill"
	OutputDir string         `yaml:"output_dir"`
	Sensors   []SensorConfig `yaml:"sensors"`
}

// SensorConfig defines one sensor instance. Exactly one parameter section
// must be present, and it must match the declared type.
type SensorConfig struct {
	ID          string        `yaml:"id"`
	Type        string        `yaml:"type"`
	Enabled     bool          `yaml:"enabled"`
	OutputFile  string        `yaml:"output_file,omitempty"`
	Interval    time.Duration `yaml:"interval"`
	RunDuration time.Duration `yaml:"run_duration,omitempty"`
	Seed        int64         `yaml:"seed,omitempty"`

	Thermal     *gen.ThermalParams     `yaml:"thermal,omitempty"`
	Pressure    *gen.PressureParams    `yaml:"pressure,omitempty"`
	Harmonic    *gen.HarmonicParams    `yaml:"harmonic,omitempty"`
	Heat        *gen.HeatParams        `yaml:"heat,omitempty"`
	Inductive   *gen.InductiveParams   `yaml:"inductive,omitempty"`
	Ultrasonic  *gen.UltrasonicParams  `yaml:"ultrasonic,omitempty"`
	Idler       *gen.IdlerParams       `yaml:"idler,omitempty"`
	TouchSwitch *gen.TouchSwitchParams `yaml:"touchswitch,omitempty"`
	Encoder     *gen.EncoderParams     `yaml:"encoder,omitempty"`
	LoadCell    *gen.LoadCellParams    `yaml:"loadcell,omitempty"`
}

// FileName returns the CSV file name for this sensor, defaulting to
// "<id>_data.csv" when output_file is not set.
func (s *SensorConfig) FileName() string {
	if s.OutputFile != "" {
		return s.OutputFile
	}
	return s.ID + "_data.csv"
}

type paramsSection struct {
	name     string
	present  bool
	validate func() error
}

func (s *SensorConfig) sections() []paramsSection {
	return []paramsSection{
		{"thermal", s.Thermal != nil, func() error { return s.Thermal.Validate() }},
		{"pressure", s.Pressure != nil, func() error { return s.Pressure.Validate() }},
		{"harmonic", s.Harmonic != nil, func() error { return s.Harmonic.Validate() }},
		{"heat", s.Heat != nil, func() error { return s.Heat.Validate() }},
		{"inductive", s.Inductive != nil, func() error { return s.Inductive.Validate() }},
		{"ultrasonic", s.Ultrasonic != nil, func() error { return s.Ultrasonic.Validate() }},
		{"idler", s.Idler != nil, func() error { return s.Idler.Validate() }},
		{"touchswitch", s.TouchSwitch != nil, func() error { return s.TouchSwitch.Validate() }},
		{"encoder", s.Encoder != nil, func() error { return s.Encoder.Validate() }},
		{"loadcell", s.LoadCell != nil, func() error { return s.LoadCell.Validate() }},
	}
}

// Validate checks the sensor definition without building a generator.
func (s *SensorConfig) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("sensor id is required")
	}
	if s.Interval <= 0 {
		return fmt.Errorf("sensor %q: interval %v must be positive", s.ID, s.Interval)
	}
	if s.RunDuration < 0 {
		return fmt.Errorf("sensor %q: run_duration must not be negative", s.ID)
	}

	var match *paramsSection
	for _, sec := range s.sections() {
		sec := sec
		if !sec.present {
			continue
		}
		if match != nil {
			return fmt.Errorf("sensor %q: both %q and %q sections present, want exactly one", s.ID, match.name, sec.name)
		}
		match = &sec
	}
	if match == nil {
		return fmt.Errorf("sensor %q: no parameter section for type %q", s.ID, s.Type)
	}
	if match.name != s.Type {
		return fmt.Errorf("sensor %q: type %q does not match the %q parameter section", s.ID, s.Type, match.name)
	}
	if err := match.validate(); err != nil {
		return fmt.Errorf("sensor %q: %w", s.ID, err)
	}
	return nil
}

// Build validates the sensor definition and constructs its generator.
func (s *SensorConfig) Build() (core.Generator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Type {
	case "thermal":
		return gen.NewThermal(s.ID, s.Interval, s.Seed, *s.Thermal), nil
	case "pressure":
		return gen.NewPressureCycle(s.ID, s.Interval, *s.Pressure), nil
	case "harmonic":
		return gen.NewHarmonic(s.ID, s.Interval, *s.Harmonic), nil
	case "heat":
		return gen.NewHeatDetect(s.ID, s.Interval, s.Seed, *s.Heat), nil
	case "inductive":
		return gen.NewInductive(s.ID, s.Interval, s.Seed, *s.Inductive), nil
	case "ultrasonic":
		return gen.NewUltrasonic(s.ID, s.Interval, s.Seed, *s.Ultrasonic), nil
	case "idler":
		return gen.NewSmartIdler(s.ID, s.Interval, s.Seed, *s.Idler), nil
	case "touchswitch":
		return gen.NewTouchSwitch(s.ID, s.Interval, s.Seed, *s.TouchSwitch), nil
	case "encoder":
		return gen.NewEncoder(s.ID, s.Interval, s.Seed, *s.Encoder), nil
	case "loadcell":
		return gen.NewLoadCell(s.ID, s.Interval, s.Seed, *s.LoadCell), nil
	default:
		return nil, fmt.Errorf("sensor %q: unknown type %q", s.ID, s.Type)
	}
}

// Validate checks the whole configuration, including per-sensor sections.
func (c *Config) Validate() error {
	if len(c.Sensors) == 0 {
		return fmt.Errorf("no sensors configured")
	}
	seen := make(map[string]bool, len(c.Sensors))
	owners := make(map[string]string, len(c.Sensors))
	for i := range c.Sensors {
		s := &c.Sensors[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate sensor id %q", s.ID)
		}
		seen[s.ID] = true

		// Two enabled sensors appending to one file would interleave
		// rows under a single header.
		if !s.Enabled {
			continue
		}
		if owner, ok := owners[s.FileName()]; ok {
			return fmt.Errorf("sensors %q and %q write to the same output file %q", owner, s.ID, s.FileName())
		}
		owners[s.FileName()] = s.ID
	}
	return nil
}

// Enabled returns the sensors that should be started.
func (c *Config) Enabled() []SensorConfig {
	var out []SensorConfig
	for _, s := range c.Sensors {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Load reads, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}
