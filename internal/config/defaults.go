package config

const (
	defaultConfigPath            = "/config/config.toml"
	defaultDoubanAPIBaseURL      = "https://frodo.douban.com/api/v2"
	defaultDoubanSuggestURL      = "https://movie.douban.com/j/subject_suggest"
	defaultDoubanRequestTimeout  = 30
	defaultExcludeDirs           = "Season,Music,Unknown"
	defaultExcludedFilenames     = "season.nfo,video1.nfo"
	defaultExcludedSubdirKeyword = "Season,Music,Unknown,backdrops"
	defaultRPCPath               = "/transmission/rpc"
	defaultSessionRetries        = 2
	defaultRPCRequestTimeout     = 30
	defaultLedgerFile            = "/config/processed_nfo_files.txt"
	defaultStateDir              = "/config/state"
	defaultLogDir                = "/config/logs"
	defaultMinDelaySeconds       = 15
	defaultMaxDelaySeconds       = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 10
	defaultLogMaxBackups         = 5
	defaultNotifyRequestTimeout  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Douban: Douban{
			APIBaseURL:     defaultDoubanAPIBaseURL,
			SuggestURL:     defaultDoubanSuggestURL,
			RequestTimeout: defaultDoubanRequestTimeout,
		},
		NFO: NFO{
			ExcludeDirs:            defaultExcludeDirs,
			ExcludedFilenames:      defaultExcludedFilenames,
			ExcludedSubdirKeywords: defaultExcludedSubdirKeyword,
		},
		DownloadMgmt: DownloadMgmt{
			RPCPath:        defaultRPCPath,
			SessionRetries: defaultSessionRetries,
			RequestTimeout: defaultRPCRequestTimeout,
		},
		Paths: Paths{
			LedgerFile: defaultLedgerFile,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Throttle: Throttle{
			MinDelaySeconds: defaultMinDelaySeconds,
			MaxDelaySeconds: defaultMaxDelaySeconds,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
	}
}
