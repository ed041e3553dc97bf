package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration file (~/.config/fakequant/config.yaml).
// All numeric fields are pointers so we can distinguish "not set" from zero
// values.
type Config struct {
	Scale      *float64 `yaml:"scale"`
	ZeroPoint  *int64   `yaml:"zero_point"`
	QuantMin   *int64   `yaml:"quant_min"`
	QuantMax   *int64   `yaml:"quant_max"`
	QuantDelay *int64   `yaml:"quant_delay"`

	Steps *int64 `yaml:"steps"`
	Seed  *int64 `yaml:"seed"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fakequant", "config.yaml")
}

// applyQuantConfig applies config file defaults to the quantization flags
// when the corresponding CLI flag was not explicitly set.
func applyQuantConfig(c *cli.Command, cfg Config) {
	if cfg.Scale != nil && !c.IsSet("scale") && !c.IsSet("s") {
		scale = *cfg.Scale
	}
	if cfg.ZeroPoint != nil && !c.IsSet("zero-point") && !c.IsSet("zero_point") && !c.IsSet("zp") {
		zeroPoint = *cfg.ZeroPoint
	}
	if cfg.QuantMin != nil && !c.IsSet("quant-min") && !c.IsSet("quant_min") && !c.IsSet("qmin") {
		quantMin = *cfg.QuantMin
	}
	if cfg.QuantMax != nil && !c.IsSet("quant-max") && !c.IsSet("quant_max") && !c.IsSet("qmax") {
		quantMax = *cfg.QuantMax
	}
	if cfg.QuantDelay != nil && !c.IsSet("quant-delay") && !c.IsSet("quant_delay") && !c.IsSet("delay") {
		quantDelay = *cfg.QuantDelay
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyRunConfig applies config file defaults to run command variables.
func applyRunConfig(c *cli.Command, cfg Config, steps, seed *int64) {
	applyQuantConfig(c, cfg)
	if cfg.Steps != nil && !c.IsSet("steps") {
		*steps = *cfg.Steps
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		*seed = *cfg.Seed
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyQuantConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
