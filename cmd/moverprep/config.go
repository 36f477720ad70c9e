package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// config holds the prep run settings. Values may come from a TOML file, with
// command-line flags taking precedence.
type config struct {
	CSVDir     string  `toml:"csv_dir"`
	ImageDir   string  `toml:"image_dir"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	TrainSplit float64 `toml:"train_split"`
	ValSplit   float64 `toml:"val_split"`
	BatchSize  int     `toml:"batch_size"`
	Seed       int64   `toml:"seed"`
	Plot       string  `toml:"plot"`
}

func defaultConfig() config {
	return config{
		Width:      30,
		Height:     30,
		TrainSplit: 0.7,
		ValSplit:   0.3,
		BatchSize:  4,
	}
}

// loadConfig overlays the TOML file at path onto cfg.
func loadConfig(path string, cfg *config) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	if c.CSVDir == "" {
		return fmt.Errorf("csv directory is required (--csv-dir or csv_dir in config)")
	}
	if c.ImageDir == "" {
		return fmt.Errorf("image directory is required (--image-dir or image_dir in config)")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image dimensions must be positive, got %dx%d", c.Height, c.Width)
	}
	return nil
}
