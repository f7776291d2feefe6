package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Library controls how tracks are presented once converted.
type Library struct {
	Locale        string `toml:"locale"`
	UnknownArtist string `toml:"unknown_artist"`
}

// Search contains configuration for the song search service.
type Search struct {
	BaseURL     string `toml:"base_url"`
	UserAgent   string `toml:"user_agent"`
	ResultLimit int    `toml:"result_limit"`
}

// Resolver toggles online metadata resolution.
type Resolver struct {
	Enabled        bool `toml:"enabled"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
	// TaggedLyrics fetches lyrics by music id for files whose title and
	// artist are already known. Off by default: complete files cause no lookup.
	TaggedLyrics bool `toml:"tagged_lyrics"`
}

// LookupCache configures the optional SQLite cache for search and lyric lookups.
type LookupCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Pipeline bounds concurrent conversion work.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ncmplay.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Library     Library     `toml:"library"`
	Search      Search      `toml:"search"`
	Resolver    Resolver    `toml:"resolver"`
	LookupCache LookupCache `toml:"lookup_cache"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ncmplay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories. The lookup cache
// directory is only created when the cache is enabled.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.LookupCache.Enabled && strings.TrimSpace(c.LookupCache.Path) != "" {
		dir := filepath.Dir(c.LookupCache.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create lookup cache directory %q: %w", dir, err)
		}
	}
	return nil
}

// UnknownArtistLabel returns the placeholder shown for tracks without an
// artist tag. An explicit library.unknown_artist wins over the locale.
func (c *Config) UnknownArtistLabel() string {
	if label := strings.TrimSpace(c.Library.UnknownArtist); label != "" {
		return label
	}
	return UnknownArtistForLocale(c.Library.Locale)
}

var unknownArtistLocales = []language.Tag{
	language.SimplifiedChinese,
	language.English,
	language.TraditionalChinese,
	language.Japanese,
}

var unknownArtistLabels = []string{
	"未知艺术家",
	"Unknown Artist",
	"未知藝術家",
	"不明なアーティスト",
}

var unknownArtistMatcher = language.NewMatcher(unknownArtistLocales)

// UnknownArtistForLocale picks the closest supported placeholder for a BCP 47
// locale. Unparseable or unmatched locales fall back to Simplified Chinese.
func UnknownArtistForLocale(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return unknownArtistLabels[0]
	}
	_, idx, confidence := unknownArtistMatcher.Match(tag)
	if confidence == language.No {
		return unknownArtistLabels[0]
	}
	return unknownArtistLabels[idx]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultLookupCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "ncmplay", "lookup.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/ncmplay/lookup.db"
	}
	return filepath.Join(home, ".cache", "ncmplay", "lookup.db")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
