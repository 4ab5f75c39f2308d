package testsupport

import (
	"path/filepath"
	"testing"

	"fermata/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// All providers are enabled with tight pacing so worker tests run fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workflow.IdlePollSeconds = 1
	cfg.Workflow.PausePollSeconds = 1
	for _, provider := range []*config.Provider{
		&cfg.Providers.MusicBrainz,
		&cfg.Providers.Deezer,
		&cfg.Providers.AudioDB,
		&cfg.Providers.ITunes,
	} {
		provider.Enabled = true
		provider.PacingMS = 1
		provider.LookupPacingMS = 1
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithProviderBaseURL points one provider at a test server.
func WithProviderBaseURL(name, baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		switch name {
		case "musicbrainz":
			cfg.Providers.MusicBrainz.BaseURL = baseURL
		case "deezer":
			cfg.Providers.Deezer.BaseURL = baseURL
		case "audiodb":
			cfg.Providers.AudioDB.BaseURL = baseURL
		case "itunes":
			cfg.Providers.ITunes.BaseURL = baseURL
		}
	}
}

// WithOnlyProvider disables every provider except the named one.
func WithOnlyProvider(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Providers.MusicBrainz.Enabled = name == "musicbrainz"
		cfg.Providers.Deezer.Enabled = name == "deezer"
		cfg.Providers.AudioDB.Enabled = name == "audiodb"
		cfg.Providers.ITunes.Enabled = name == "itunes"
	}
}
