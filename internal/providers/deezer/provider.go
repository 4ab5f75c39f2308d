package deezer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fermata/internal/config"
	"fermata/internal/match"
	"fermata/internal/providers"
	"fermata/internal/ratelimit"
)

const providerName = "deezer"

// Provider adapts the Deezer client to the enrichment capability surface.
// Selection walks results in Deezer's ranking order and takes the first
// candidate that clears the name threshold.
type Provider struct {
	client *Client
	gate   *ratelimit.Gate
	pacing time.Duration
}

var _ providers.Provider = (*Provider)(nil)

// New builds the Deezer provider from its config block.
func New(cfg config.Provider, opts ...Option) (*Provider, error) {
	client, err := NewClient(cfg.BaseURL, cfg.UserAgent, opts...)
	if err != nil {
		return nil, providers.Wrap(providers.ErrConfiguration, providerName, "new", "", err)
	}
	pacing := time.Duration(cfg.PacingMS) * time.Millisecond
	return &Provider{
		client: client,
		gate:   ratelimit.New(pacing),
		pacing: pacing,
	}, nil
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) SearchPacing() time.Duration { return p.pacing }

func (p *Provider) SearchArtist(ctx context.Context, name string) (*providers.Candidate, error) {
	const operation = "search artist"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchArtists(ctx, name)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(name, result.Name) {
			continue
		}
		return &providers.Candidate{
			ID:       formatID(result.ID),
			Name:     result.Name,
			ThumbURL: result.Picture,
		}, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, name, nil)
}

func (p *Provider) SearchAlbum(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search album"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchAlbums(ctx, artistName, title)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(title, result.Title) || !match.Matches(artistName, result.Artist.Name) {
			continue
		}
		return &providers.Candidate{
			ID:         formatID(result.ID),
			Name:       result.Title,
			ArtistID:   formatID(result.Artist.ID),
			ArtistName: result.Artist.Name,
			ThumbURL:   result.Cover,
		}, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
}

func (p *Provider) SearchTrack(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search track"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchTracks(ctx, artistName, title)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(title, result.Title) || !match.Matches(artistName, result.Artist.Name) {
			continue
		}
		return &providers.Candidate{
			ID:           formatID(result.ID),
			Name:         result.Title,
			ArtistID:     formatID(result.Artist.ID),
			ArtistName:   result.Artist.Name,
			AlbumID:      formatID(result.Album.ID),
			AlbumName:    result.Album.Title,
			DurationSecs: result.DurationSecs,
			Explicit:     result.ExplicitLyrics,
			ThumbURL:     result.Album.Cover,
		}, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
}

// ArtistFields contributes the artist image.
func (p *Provider) ArtistFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"thumb_url": c.ThumbURL,
	}
}

// AlbumFields contributes the cover image.
func (p *Provider) AlbumFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"thumb_url": c.ThumbURL,
	}
}

// TrackFields contributes duration and the explicit flag.
func (p *Provider) TrackFields(c *providers.Candidate) map[string]any {
	fields := map[string]any{
		"duration_secs": c.DurationSecs,
		"thumb_url":     c.ThumbURL,
	}
	if c.Explicit {
		fields["explicit"] = 1
	}
	return fields
}

// ParentID returns the Deezer artist ID carried on child candidates.
func (p *Provider) ParentID(c *providers.Candidate) string { return c.ArtistID }

func (p *Provider) acquire(ctx context.Context, operation string) error {
	if err := p.gate.Acquire(ctx); err != nil {
		return providers.Wrap(providers.ErrTransient, providerName, operation, "pacing wait", err)
	}
	return nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	if errors.Is(err, providers.ErrRateLimited) {
		p.gate.Penalize(ctx)
	}
	return err
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
