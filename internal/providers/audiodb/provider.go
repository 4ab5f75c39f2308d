package audiodb

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

const providerName = "audiodb"

// Provider adapts TheAudioDB client to the enrichment capability surface.
// TheAudioDB is the richest descriptive source, contributing style, mood,
// biography, and artwork fields the other providers lack.
type Provider struct {
	client *Client
	gate   *ratelimit.Gate
	pacing time.Duration
}

var _ providers.Provider = (*Provider)(nil)

// New builds the TheAudioDB provider from its config block.
func New(cfg config.Provider, opts ...Option) (*Provider, error) {
	client, err := NewClient(cfg.BaseURL, cfg.APIKey, cfg.UserAgent, opts...)
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
			ID:        result.ID,
			Name:      result.Name,
			Genre:     result.Genre,
			Style:     result.Style,
			Mood:      result.Mood,
			Biography: result.Biography,
			Year:      parseInt(result.FormedYear),
			ThumbURL:  result.Thumb,
			BannerURL: result.Banner,
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
		if !match.Matches(title, result.Title) || !match.Matches(artistName, result.ArtistName) {
			continue
		}
		return &providers.Candidate{
			ID:          result.ID,
			Name:        result.Title,
			ArtistID:    result.ArtistID,
			ArtistName:  result.ArtistName,
			Year:        parseInt(result.Year),
			Genre:       result.Genre,
			Style:       result.Style,
			Mood:        result.Mood,
			Label:       result.Label,
			Description: result.Description,
			ThumbURL:    result.Thumb,
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
		if !match.Matches(title, result.Title) || !match.Matches(artistName, result.ArtistName) {
			continue
		}
		return &providers.Candidate{
			ID:           result.ID,
			Name:         result.Title,
			ArtistID:     result.ArtistID,
			ArtistName:   result.ArtistName,
			AlbumID:      result.AlbumID,
			AlbumName:    result.AlbumName,
			DurationSecs: parseInt(result.DurationMS) / 1000,
			Genre:        result.Genre,
			Mood:         result.Mood,
			ThumbURL:     result.Thumb,
		}, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
}

// ArtistFields contributes the full descriptive set.
func (p *Provider) ArtistFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"genre":       c.Genre,
		"style":       c.Style,
		"mood":        c.Mood,
		"biography":   c.Biography,
		"formed_year": c.Year,
		"thumb_url":   c.ThumbURL,
		"banner_url":  c.BannerURL,
	}
}

// AlbumFields contributes year, descriptive tags, label, and artwork.
func (p *Provider) AlbumFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"year":        c.Year,
		"genre":       c.Genre,
		"style":       c.Style,
		"mood":        c.Mood,
		"label":       c.Label,
		"description": c.Description,
		"thumb_url":   c.ThumbURL,
	}
}

// TrackFields contributes duration, genre, and artwork.
func (p *Provider) TrackFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"duration_secs": c.DurationSecs,
		"genre":         c.Genre,
		"thumb_url":     c.ThumbURL,
	}
}

// ParentID returns TheAudioDB artist ID carried on child candidates.
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

// parseInt tolerates TheAudioDB's string-typed numeric fields.
func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
