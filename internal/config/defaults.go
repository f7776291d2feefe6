package config

const (
	defaultConfigPath            = "~/.config/ncmplay/config.toml"
	defaultOutputDir             = "./output"
	defaultLogDir                = "~/.local/share/ncmplay/logs"
	defaultLocale                = "zh-CN"
	defaultSearchBaseURL         = "https://music.163.com"
	defaultSearchUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) ncmplay/dev"
	defaultSearchResultLimit     = 1
	defaultResolverTimeoutSecond = 10
	defaultPipelineWorkers       = 2
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Library: Library{
			Locale: defaultLocale,
		},
		Search: Search{
			BaseURL:     defaultSearchBaseURL,
			UserAgent:   defaultSearchUserAgent,
			ResultLimit: defaultSearchResultLimit,
		},
		Resolver: Resolver{
			Enabled:        true,
			TimeoutSeconds: defaultResolverTimeoutSecond,
		},
		LookupCache: LookupCache{
			Path: defaultLookupCachePath(),
		},
		Pipeline: Pipeline{
			Workers: defaultPipelineWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
