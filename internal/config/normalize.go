package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeWorkflow()
	c.normalizeProviders()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.IdlePollSeconds <= 0 {
		c.Workflow.IdlePollSeconds = defaultIdlePollSeconds
	}
	if c.Workflow.PausePollSeconds <= 0 {
		c.Workflow.PausePollSeconds = defaultPausePollSeconds
	}
	if c.Workflow.StopTimeoutSeconds <= 0 {
		c.Workflow.StopTimeoutSeconds = defaultStopTimeoutSeconds
	}
	if c.Workflow.RetryDays <= 0 {
		c.Workflow.RetryDays = defaultRetryDays
	}
	if c.Workflow.ErrorRetryDays <= 0 {
		c.Workflow.ErrorRetryDays = defaultErrorRetryDays
	}
}

func (c *Config) normalizeProviders() {
	normalizeProvider(&c.Providers.MusicBrainz, defaultMusicBrainzBaseURL, defaultMusicBrainzPacingMS)
	normalizeProvider(&c.Providers.Deezer, defaultDeezerBaseURL, defaultDeezerPacingMS)
	normalizeProvider(&c.Providers.AudioDB, defaultAudioDBBaseURL, defaultAudioDBPacingMS)
	normalizeProvider(&c.Providers.ITunes, defaultITunesBaseURL, defaultITunesPacingMS)
	if strings.TrimSpace(c.Providers.AudioDB.APIKey) == "" {
		c.Providers.AudioDB.APIKey = defaultAudioDBAPIKey
	}
	if c.Providers.ITunes.LookupPacingMS <= 0 {
		c.Providers.ITunes.LookupPacingMS = defaultITunesLookupMS
	}
}

func normalizeProvider(p *Provider, baseURL string, pacingMS int) {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if strings.TrimSpace(p.UserAgent) == "" {
		p.UserAgent = defaultUserAgent
	}
	if p.PacingMS <= 0 {
		p.PacingMS = pacingMS
	}
}
