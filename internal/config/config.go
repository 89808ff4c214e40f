package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	ResetUs int    `yaml:"reset_us"` // latch idle, usually >= 280
}

type Config struct {
	Driver  string `yaml:"driver"` // "spi" | "nrz" | "sim"
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Invert  bool   `yaml:"invert"`
	FPS     int    `yaml:"fps"`
	Pattern string `yaml:"pattern"` // "sweep" | "rainbow" | "heart"
	Addr    string `yaml:"addr"`    // preview server listen address

	XFlipOddRows bool `yaml:"x_flip_odd_rows"`
	YMirror      bool `yaml:"y_mirror"`

	SPI SPI `yaml:"spi,omitempty"`
}

// Default matches the 5x5 board wiring.
func Default() *Config {
	return &Config{
		Driver:       "sim",
		Width:        5,
		Height:       5,
		FPS:          30,
		Pattern:      "rainbow",
		Addr:         ":8080",
		XFlipOddRows: true,
		YMirror:      true,
		SPI: SPI{
			Dev:     "/dev/spidev0.0",
			ResetUs: 300,
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
