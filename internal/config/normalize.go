package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeSearch()
	c.normalizeResolver()
	if err := c.normalizeLookupCache(); err != nil {
		return err
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = defaultPipelineWorkers
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	c.Library.Locale = strings.TrimSpace(c.Library.Locale)
	if c.Library.Locale == "" {
		c.Library.Locale = defaultLocale
	}
	c.Library.UnknownArtist = strings.TrimSpace(c.Library.UnknownArtist)
}

func (c *Config) normalizeSearch() {
	c.Search.BaseURL = strings.TrimSpace(c.Search.BaseURL)
	if value, ok := os.LookupEnv("NCMPLAY_SEARCH_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Search.BaseURL = strings.TrimSpace(value)
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	c.Search.BaseURL = strings.TrimRight(c.Search.BaseURL, "/")
	c.Search.UserAgent = strings.TrimSpace(c.Search.UserAgent)
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = defaultSearchUserAgent
	}
	if c.Search.ResultLimit <= 0 {
		c.Search.ResultLimit = defaultSearchResultLimit
	}
}

func (c *Config) normalizeResolver() {
	if c.Resolver.TimeoutSeconds <= 0 {
		c.Resolver.TimeoutSeconds = defaultResolverTimeoutSecond
	}
}

func (c *Config) normalizeLookupCache() error {
	if strings.TrimSpace(c.LookupCache.Path) == "" {
		c.LookupCache.Path = defaultLookupCachePath()
	}
	var err error
	if c.LookupCache.Path, err = expandPath(c.LookupCache.Path); err != nil {
		return fmt.Errorf("lookup_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
