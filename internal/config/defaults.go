package config

const (
	defaultConfigPath          = "~/.config/nropster/config.toml"
	defaultWorkDir             = "~/.local/share/nropster/work"
	defaultDestinationDir      = "~/Movies/nropster"
	defaultEditedDir           = "~/Movies/nropster/edited"
	defaultLogDir              = "~/.local/share/nropster/logs"
	defaultDeviceUsername      = "tivo"
	defaultDevicePageSize      = 50
	defaultDeviceTimeout       = 30
	defaultDecoderCommand      = "tivodecode"
	defaultTranscoderCommand   = "ffmpeg"
	defaultTranscoderExtension = "dv"
	defaultPollInterval        = 5
	defaultFetchPacing         = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultNotifyTimeout       = 10

	// HandoffPoll makes the transcode lane discover fetched items only on
	// its next scan.
	HandoffPoll = "poll"
	// HandoffSignal wakes the transcode lane as soon as an item is fetched.
	HandoffSignal = "signal"
)

// Token placeholders substituted into decoder and transcoder argument templates.
const (
	TokenInput  = "{input}"
	TokenOutput = "{output}"
	TokenMAK    = "{mak}"
)

func defaultDecoderArgs() []string {
	return []string{"--mak", TokenMAK, "-o", TokenOutput, "-"}
}

func defaultTranscoderArgs() []string {
	return []string{
		"-y", "-an",
		"-i", TokenInput,
		"-threads", "2",
		"-vf", "crop=iw:ih-4:0:4",
		"-target", "ntsc-dv",
		TokenOutput,
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:        defaultWorkDir,
			DestinationDir: defaultDestinationDir,
			EditedDir:      defaultEditedDir,
			LogDir:         defaultLogDir,
		},
		Device: Device{
			Username:       defaultDeviceUsername,
			InsecureTLS:    true,
			PageSize:       defaultDevicePageSize,
			RequestTimeout: defaultDeviceTimeout,
		},
		Decoder: Decoder{
			Command: defaultDecoderCommand,
			Args:    defaultDecoderArgs(),
		},
		Transcoder: Transcoder{
			Command:   defaultTranscoderCommand,
			Args:      defaultTranscoderArgs(),
			Extension: defaultTranscoderExtension,
		},
		Workflow: Workflow{
			PollInterval: defaultPollInterval,
			FetchPacing:  defaultFetchPacing,
			Handoff:      HandoffSignal,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}
