package enrich

import (
	"fmt"

	"fermata/internal/config"
	"fermata/internal/library"
	"fermata/internal/providers"
	"fermata/internal/providers/audiodb"
	"fermata/internal/providers/deezer"
	"fermata/internal/providers/itunes"
	"fermata/internal/providers/musicbrainz"
)

// buildSources constructs the enabled provider clients from config, in
// the stable library.AllProviders order.
func buildSources(cfg *config.Config) ([]providers.Provider, error) {
	var sources []providers.Provider
	for _, name := range library.AllProviders {
		block, enabled := providerBlock(cfg, name)
		if !enabled {
			continue
		}
		var (
			source providers.Provider
			err    error
		)
		switch name {
		case library.ProviderMusicBrainz:
			source, err = musicbrainz.New(block)
		case library.ProviderDeezer:
			source, err = deezer.New(block)
		case library.ProviderAudioDB:
			source, err = audiodb.New(block)
		case library.ProviderITunes:
			source, err = itunes.New(block)
		}
		if err != nil {
			return nil, fmt.Errorf("build %s provider: %w", name, err)
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func providerBlock(cfg *config.Config, name library.Provider) (config.Provider, bool) {
	switch name {
	case library.ProviderMusicBrainz:
		return cfg.Providers.MusicBrainz, cfg.Providers.MusicBrainz.Enabled
	case library.ProviderDeezer:
		return cfg.Providers.Deezer, cfg.Providers.Deezer.Enabled
	case library.ProviderAudioDB:
		return cfg.Providers.AudioDB, cfg.Providers.AudioDB.Enabled
	case library.ProviderITunes:
		return cfg.Providers.ITunes, cfg.Providers.ITunes.Enabled
	}
	return config.Provider{}, false
}
