package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration file (~/.config/x3f-go/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	// CameraTable is an extra camera table merged over the built-in one.
	CameraTable string `yaml:"camera_table"`
	Workers     *int   `yaml:"workers"`
	LogLevel    string `yaml:"log_level"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "x3f-go", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
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

// applyReconstructConfig applies config file defaults to reconstruct
// command variables when the corresponding flag was not explicitly set.
func applyReconstructConfig(c *cli.Command, cfg Config, cameraTable *string, workers *int) {
	if cfg.CameraTable != "" && !c.IsSet("camera-table") {
		*cameraTable = cfg.CameraTable
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
}
