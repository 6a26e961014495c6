package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// config is the optional gemv configuration file
// (~/.config/gemv/config.yaml). All value fields are pointers so "not set"
// is distinguishable from zero.
type config struct {
	Alpha *float64 `yaml:"alpha"`
	Beta  *float64 `yaml:"beta"`
	Seed  *int64   `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogDir    string `yaml:"log_dir"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gemv", "config.yaml")
}

// loadConfig reads the config file. Returns a zero config if the file
// doesn't exist or can't be parsed.
func loadConfig() config {
	return loadConfigFrom(configPath())
}

func loadConfigFrom(path string) config {
	if path == "" {
		return config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}
	}
	return cfg
}

// applyConfig applies config file defaults when the corresponding CLI flag
// was not explicitly set.
func applyConfig(c *cli.Command, cfg config) {
	if cfg.Alpha != nil && !c.IsSet("alpha") {
		alpha = *cfg.Alpha
	}
	if cfg.Beta != nil && !c.IsSet("beta") {
		beta = *cfg.Beta
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	if cfg.LogDir != "" && !c.IsSet("log-dir") {
		logDir = cfg.LogDir
	}
}
