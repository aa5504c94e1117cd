package config

const (
	defaultConfigPath        = "~/.config/reabatch/config.toml"
	defaultTempDir           = "~/.local/share/reabatch/tmp"
	defaultLogDir            = "~/.local/share/reabatch/logs"
	defaultFreshInstanceFlag = "-newinst"
	defaultBatchFlag         = "-batchconvert"
	defaultOutputBuffer      = 256
	defaultOutputDirName     = "processed"
	defaultUnmatchedDirName  = "_unmatched"
	defaultOutputFormat      = "wav"
	defaultPeakDB            = -1.0
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultNtfyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir: defaultTempDir,
			LogDir:  defaultLogDir,
		},
		Reaper: Reaper{
			FreshInstanceFlag: defaultFreshInstanceFlag,
			BatchFlag:         defaultBatchFlag,
			OutputBuffer:      defaultOutputBuffer,
		},
		Audio: Audio{
			OutputDirName:    defaultOutputDirName,
			UnmatchedDirName: defaultUnmatchedDirName,
		},
		Output: Output{
			Format: defaultOutputFormat,
			PeakDB: defaultPeakDB,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
