package itunes

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

const providerName = "itunes"

// Provider adapts the iTunes client to the enrichment capability surface.
// Search and lookup calls are paced independently: searches are scarce,
// lookups are cheap, so batch work runs on the lookup gate.
type Provider struct {
	client       *Client
	searchGate   *ratelimit.Gate
	lookupGate   *ratelimit.Gate
	searchPacing time.Duration
	lookupPacing time.Duration
}

var (
	_ providers.Provider      = (*Provider)(nil)
	_ providers.BatchProvider = (*Provider)(nil)
	_ providers.IDValidator   = (*Provider)(nil)
)

// New builds the iTunes provider from its config block.
func New(cfg config.Provider, opts ...Option) (*Provider, error) {
	client, err := NewClient(cfg.BaseURL, cfg.UserAgent, opts...)
	if err != nil {
		return nil, providers.Wrap(providers.ErrConfiguration, providerName, "new", "", err)
	}
	searchPacing := time.Duration(cfg.PacingMS) * time.Millisecond
	lookupPacing := time.Duration(cfg.LookupPacingMS) * time.Millisecond
	return &Provider{
		client:       client,
		searchGate:   ratelimit.New(searchPacing),
		lookupGate:   ratelimit.New(lookupPacing),
		searchPacing: searchPacing,
		lookupPacing: lookupPacing,
	}, nil
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) SearchPacing() time.Duration { return p.searchPacing }

// LookupPacing reports the spacing for batch lookup calls.
func (p *Provider) LookupPacing() time.Duration { return p.lookupPacing }

// ValidID reports whether an ID belongs to the iTunes numeric namespace.
// Stored parent IDs can be contaminated by foreign formats when another
// source corrected the same column family, so batch lookups check first.
func (p *Provider) ValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseInt(id, 10, 64)
	return err == nil
}

func (p *Provider) SearchArtist(ctx context.Context, name string) (*providers.Candidate, error) {
	const operation = "search artist"
	if err := p.acquire(ctx, p.searchGate, operation); err != nil {
		return nil, err
	}
	results, err := p.client.Search(ctx, name, entityArtist)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(name, result.ArtistName) {
			continue
		}
		return &providers.Candidate{
			ID:    formatID(result.ArtistID),
			Name:  result.ArtistName,
			Genre: result.PrimaryGenreName,
		}, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, name, nil)
}

func (p *Provider) SearchAlbum(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search album"
	if err := p.acquire(ctx, p.searchGate, operation); err != nil {
		return nil, err
	}
	results, err := p.client.Search(ctx, artistName+" "+title, entityAlbum)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(title, result.CollectionName) || !match.Matches(artistName, result.ArtistName) {
			continue
		}
		return albumCandidate(result), nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
}

func (p *Provider) SearchTrack(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search track"
	if err := p.acquire(ctx, p.searchGate, operation); err != nil {
		return nil, err
	}
	results, err := p.client.Search(ctx, artistName+" "+title, entitySong)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	for i := range results {
		result := &results[i]
		if !match.Matches(title, result.TrackName) || !match.Matches(artistName, result.ArtistName) {
			continue
		}
		return trackCandidate(result), nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
}

// ArtistDiscography lists the albums under an iTunes artist ID via one
// lookup call. The ID must be pre-validated with ValidID.
func (p *Provider) ArtistDiscography(ctx context.Context, artistID string) ([]providers.Candidate, error) {
	const operation = "lookup discography"
	if !p.ValidID(artistID) {
		return nil, providers.Wrap(providers.ErrDataIntegrity, providerName, operation, "non-numeric artist id "+artistID, nil)
	}
	if err := p.acquire(ctx, p.lookupGate, operation); err != nil {
		return nil, err
	}
	results, err := p.client.Lookup(ctx, artistID, entityAlbum)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	var candidates []providers.Candidate
	for i := range results {
		result := &results[i]
		if result.WrapperType != "collection" {
			continue
		}
		candidates = append(candidates, *albumCandidate(result))
	}
	return candidates, nil
}

// AlbumTracks lists the tracks under an iTunes collection ID via one
// lookup call.
func (p *Provider) AlbumTracks(ctx context.Context, albumID string) ([]providers.Candidate, error) {
	const operation = "lookup tracks"
	if !p.ValidID(albumID) {
		return nil, providers.Wrap(providers.ErrDataIntegrity, providerName, operation, "non-numeric album id "+albumID, nil)
	}
	if err := p.acquire(ctx, p.lookupGate, operation); err != nil {
		return nil, err
	}
	results, err := p.client.Lookup(ctx, albumID, entitySong)
	if err != nil {
		return nil, p.classify(ctx, err)
	}
	var candidates []providers.Candidate
	for i := range results {
		result := &results[i]
		if result.WrapperType != "track" {
			continue
		}
		candidates = append(candidates, *trackCandidate(result))
	}
	return candidates, nil
}

// ArtistFields contributes the primary genre.
func (p *Provider) ArtistFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"genre": c.Genre,
	}
}

// AlbumFields contributes year, genre, and artwork.
func (p *Provider) AlbumFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"year":      c.Year,
		"genre":     c.Genre,
		"thumb_url": c.ThumbURL,
	}
}

// TrackFields contributes track number, duration, explicitness, genre,
// and artwork.
func (p *Provider) TrackFields(c *providers.Candidate) map[string]any {
	fields := map[string]any{
		"track_no":      c.TrackNo,
		"duration_secs": c.DurationSecs,
		"genre":         c.Genre,
		"thumb_url":     c.ThumbURL,
	}
	if c.Explicit {
		fields["explicit"] = 1
	}
	return fields
}

// ParentID returns the iTunes artist ID carried on child candidates.
func (p *Provider) ParentID(c *providers.Candidate) string { return c.ArtistID }

func (p *Provider) acquire(ctx context.Context, gate *ratelimit.Gate, operation string) error {
	if err := gate.Acquire(ctx); err != nil {
		return providers.Wrap(providers.ErrTransient, providerName, operation, "pacing wait", err)
	}
	return nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	if errors.Is(err, providers.ErrRateLimited) {
		p.searchGate.Penalize(ctx)
	}
	return err
}

func albumCandidate(result *Result) *providers.Candidate {
	return &providers.Candidate{
		ID:         formatID(result.CollectionID),
		Name:       result.CollectionName,
		ArtistID:   formatID(result.ArtistID),
		ArtistName: result.ArtistName,
		Year:       yearOf(result.ReleaseDate),
		Genre:      result.PrimaryGenreName,
		ThumbURL:   result.ArtworkURL100,
	}
}

func trackCandidate(result *Result) *providers.Candidate {
	return &providers.Candidate{
		ID:           formatID(result.TrackID),
		Name:         result.TrackName,
		ArtistID:     formatID(result.ArtistID),
		ArtistName:   result.ArtistName,
		AlbumID:      formatID(result.CollectionID),
		AlbumName:    result.CollectionName,
		TrackNo:      result.TrackNumber,
		DurationSecs: result.TrackTimeMillis / 1000,
		Explicit:     result.TrackExplicitness == "explicit",
		Genre:        result.PrimaryGenreName,
		ThumbURL:     result.ArtworkURL100,
	}
}

// yearOf extracts the year from an iTunes release date ("2001-03-12T08:00:00Z").
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
