package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ncmplay/internal/config"
	"ncmplay/internal/library"
	"ncmplay/internal/logging"
	"ncmplay/internal/lookupcache"
	"ncmplay/internal/netease"
	"ncmplay/internal/resolver"
	"ncmplay/internal/tagstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// newSearcher builds the search client, wrapped in the lookup cache when it
// is enabled. The returned cleanup must always be called.
func (c *commandContext) newSearcher(ctx context.Context) (netease.Searcher, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, func() {}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, func() {}, err
	}

	client, err := netease.New(cfg.Search.BaseURL, cfg.Search.UserAgent)
	if err != nil {
		return nil, func() {}, fmt.Errorf("search client: %w", err)
	}
	if !cfg.LookupCache.Enabled {
		return client, func() {}, nil
	}

	store, err := lookupcache.Open(ctx, cfg.LookupCache.Path)
	if err != nil {
		logging.WarnWithContext(logger, "lookup cache unavailable", "lookup_cache_unavailable",
			logging.Error(err),
			logging.String("path", cfg.LookupCache.Path),
			logging.Alert("cache_fallback"),
			logging.String(logging.FieldErrorHint, "delete the cache file or disable lookup_cache"),
			logging.String(logging.FieldImpact, "lookups go to the network"),
		)
		return client, func() {}, nil
	}
	return lookupcache.Wrap(client, store, logger), func() { _ = store.Close() }, nil
}

func (c *commandContext) newResolver(ctx context.Context) (*resolver.Resolver, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, func() {}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, func() {}, err
	}
	if !cfg.Resolver.Enabled {
		return resolver.NewFromConfig(cfg, nil, logger), func() {}, nil
	}
	searcher, cleanup, err := c.newSearcher(ctx)
	if err != nil {
		return nil, cleanup, err
	}
	return resolver.NewFromConfig(cfg, searcher, logger), cleanup, nil
}

func (c *commandContext) tagReader() library.TagReader {
	cfg, _ := c.ensureConfig()
	unknown := config.UnknownArtistForLocale("")
	if cfg != nil {
		unknown = cfg.UnknownArtistLabel()
	}
	return func(path string) (tagstore.Tags, error) {
		return tagstore.ReadWithDefaults(path, unknown)
	}
}

func (c *commandContext) loadPlaylist(opts ...library.PlaylistOption) (*library.Playlist, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.loadPlaylistFrom(cfg.Paths.OutputDir, opts...)
}

// loadPlaylistFrom reads dir into a playlist. Unreadable files are logged
// and left out.
func (c *commandContext) loadPlaylistFrom(dir string, opts ...library.PlaylistOption) (*library.Playlist, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	tracks, loadErr := library.LoadDirectory(dir, c.tagReader())
	if loadErr != nil {
		logging.WarnWithContext(logger, "some library files could not be read", "library_load_partial",
			logging.Error(loadErr),
			logging.String("output_dir", dir),
			logging.String(logging.FieldErrorHint, "re-convert or remove the listed files"),
			logging.String(logging.FieldImpact, "files are missing from the library"),
		)
	}
	playlist := library.NewPlaylist(opts...)
	for _, t := range tracks {
		playlist.Add(t)
	}
	return playlist, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
