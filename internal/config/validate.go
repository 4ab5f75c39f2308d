package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateProviders()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ErrorRetryDays > c.Workflow.RetryDays {
		return fmt.Errorf("workflow.error_retry_days (%d) must not exceed workflow.retry_days (%d)",
			c.Workflow.ErrorRetryDays, c.Workflow.RetryDays)
	}
	return nil
}

func (c *Config) validateProviders() error {
	type named struct {
		name string
		p    Provider
	}
	providers := []named{
		{"musicbrainz", c.Providers.MusicBrainz},
		{"deezer", c.Providers.Deezer},
		{"audiodb", c.Providers.AudioDB},
		{"itunes", c.Providers.ITunes},
	}
	anyEnabled := false
	for _, entry := range providers {
		if !entry.p.Enabled {
			continue
		}
		anyEnabled = true
		if strings.TrimSpace(entry.p.BaseURL) == "" {
			return fmt.Errorf("providers.%s.base_url must be set", entry.name)
		}
	}
	if !anyEnabled {
		return errors.New("at least one provider must be enabled")
	}
	if c.Providers.AudioDB.Enabled && strings.TrimSpace(c.Providers.AudioDB.APIKey) == "" {
		return errors.New("providers.audiodb.api_key is required when audiodb is enabled")
	}
	return nil
}
