package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if _, err := language.Parse(c.Library.Locale); err != nil {
		return fmt.Errorf("library.locale %q is not a valid BCP 47 tag: %w", c.Library.Locale, err)
	}
	return nil
}

func (c *Config) validateSearch() error {
	parsed, err := url.Parse(c.Search.BaseURL)
	if err != nil {
		return fmt.Errorf("search.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("search.base_url must use http or https, got %q", c.Search.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("search.base_url must include a host, got %q", c.Search.BaseURL)
	}
	if c.Search.ResultLimit > 100 {
		return errors.New("search.result_limit must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.TimeoutSeconds > 300 {
		return errors.New("resolver.timeout_seconds must not exceed 300")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers > 64 {
		return errors.New("pipeline.workers must be between 1 and 64")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
