package config

import (
	"errors"
	"fmt"
	"math"

	"voicedecoder/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Model {
	case "small", "medium", "large":
	default:
		return fmt.Errorf("transcription.model must be one of small, medium, large (got %q)", c.Transcription.Model)
	}
	threshold := c.Transcription.SilenceThreshold
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return errors.New("transcription.silence_threshold must be a positive number of seconds")
	}
	if c.Transcription.Language != "" {
		if language.ToISO2(c.Transcription.Language) == "" {
			return fmt.Errorf("transcription.language %q is not a recognized language", c.Transcription.Language)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
