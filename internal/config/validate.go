package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateSilence(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFilter() error {
	if math.IsNaN(c.Filter.Threshold) || math.IsInf(c.Filter.Threshold, 0) {
		return errors.New("filter.threshold must be a finite number")
	}
	if c.Filter.Threshold < 0 {
		return errors.New("filter.threshold must be non-negative")
	}
	return nil
}

func (c *Config) validateSilence() error {
	if c.Silence.DefaultSampleRate <= 0 {
		return errors.New("silence.default_sample_rate must be positive")
	}
	if c.Silence.DefaultChannelLayout == "" {
		return errors.New("silence.default_channel_layout must be set")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.Extension == "" {
		return errors.New("media.extension must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
