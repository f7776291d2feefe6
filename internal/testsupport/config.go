package testsupport

import (
	"path/filepath"
	"testing"

	"ncmplay/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.LookupCache.Path = filepath.Join(base, "cache", "lookup.db")
	cfgVal.Search.BaseURL = "http://127.0.0.1:0"
	cfgVal.Resolver.TimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSearchBaseURL points the search client at a test server.
func WithSearchBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.BaseURL = url
	}
}

// WithLookupCache enables the SQLite lookup cache inside the temp directory.
func WithLookupCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LookupCache.Enabled = true
	}
}

// WithResolverDisabled turns off online metadata resolution.
func WithResolverDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.Enabled = false
	}
}

// WithTaggedLyrics enables lyric lookups for fully tagged files.
func WithTaggedLyrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.TaggedLyrics = true
	}
}

// WithWorkers overrides the pipeline worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
