package config

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSheet(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateModalities(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSheet() error {
	if utf8.RuneCountInString(c.Sheet.Delimiter) != 1 {
		return fmt.Errorf("sheet.delimiter must be a single character, got %q", c.Sheet.Delimiter)
	}
	switch c.Sheet.Granularity {
	case GranularityMonth, GranularityYear, GranularityNone:
	default:
		return fmt.Errorf("sheet.granularity must be one of month, year, none; got %q", c.Sheet.Granularity)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.TimeoutSeconds <= 0 {
		return errors.New("engine.timeout_seconds must be positive")
	}
	if c.Engine.Profile != "basic" && c.Engine.Profile != "clean" {
		return fmt.Errorf("engine.profile must be basic or clean, got %q", c.Engine.Profile)
	}
	return nil
}

func (c *Config) validateModalities() error {
	if len(c.Modalities) == 0 {
		return errors.New("modalities must list at least one allowed modality")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
