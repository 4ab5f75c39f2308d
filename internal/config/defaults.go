package config

const (
	defaultLibraryDir = "~/.local/share/fermata"
	defaultLogDir     = "~/.local/share/fermata/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultIdlePollSeconds    = 10
	defaultPausePollSeconds   = 1
	defaultStopTimeoutSeconds = 5
	defaultRetryDays          = 30
	defaultErrorRetryDays     = 7

	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultDeezerBaseURL      = "https://api.deezer.com"
	defaultAudioDBBaseURL     = "https://www.theaudiodb.com/api/v1/json"
	defaultITunesBaseURL      = "https://itunes.apple.com"

	// TheAudioDB ships a public test key; real deployments supply their own.
	defaultAudioDBAPIKey = "2"

	defaultUserAgent = "fermata/dev (https://github.com/fermata-music/fermata)"

	// MusicBrainz requires at most one call per second; the rest are spaced
	// conservatively below their published limits.
	defaultMusicBrainzPacingMS = 1100
	defaultDeezerPacingMS      = 1000
	defaultAudioDBPacingMS     = 2000
	defaultITunesPacingMS      = 3500
	defaultITunesLookupMS      = 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			IdlePollSeconds:    defaultIdlePollSeconds,
			PausePollSeconds:   defaultPausePollSeconds,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
			RetryDays:          defaultRetryDays,
			ErrorRetryDays:     defaultErrorRetryDays,
		},
		Providers: Providers{
			MusicBrainz: Provider{
				Enabled:   true,
				BaseURL:   defaultMusicBrainzBaseURL,
				UserAgent: defaultUserAgent,
				PacingMS:  defaultMusicBrainzPacingMS,
			},
			Deezer: Provider{
				Enabled:   true,
				BaseURL:   defaultDeezerBaseURL,
				UserAgent: defaultUserAgent,
				PacingMS:  defaultDeezerPacingMS,
			},
			AudioDB: Provider{
				Enabled:   true,
				BaseURL:   defaultAudioDBBaseURL,
				APIKey:    defaultAudioDBAPIKey,
				UserAgent: defaultUserAgent,
				PacingMS:  defaultAudioDBPacingMS,
			},
			ITunes: Provider{
				Enabled:        true,
				BaseURL:        defaultITunesBaseURL,
				UserAgent:      defaultUserAgent,
				PacingMS:       defaultITunesPacingMS,
				LookupPacingMS: defaultITunesLookupMS,
			},
		},
	}
}
