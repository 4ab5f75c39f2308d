package musicbrainz

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

const providerName = "musicbrainz"

// Provider adapts the ws/2 client to the enrichment capability surface.
// Candidate acceptance uses the blended confidence score rather than the
// plain name threshold.
type Provider struct {
	client *Client
	gate   *ratelimit.Gate
	pacing time.Duration
}

var _ providers.Provider = (*Provider)(nil)

// New builds the MusicBrainz provider from its config block.
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

// SearchPacing reports the configured minimum spacing between searches.
func (p *Provider) SearchPacing() time.Duration { return p.pacing }

// SearchArtist returns the highest-confidence artist match, or ErrNoMatch
// when nothing clears the acceptance bar.
func (p *Provider) SearchArtist(ctx context.Context, name string) (*providers.Candidate, error) {
	const operation = "search artist"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchArtists(ctx, name)
	if err != nil {
		return nil, p.classify(ctx, err)
	}

	var best *providers.Candidate
	var bestConfidence float64
	for i := range results {
		result := &results[i]
		confidence := artistConfidence(name, result.Name, result.Score)
		if match.Normalize(name) == match.Normalize(result.Name) {
			return artistCandidate(result, confidence), nil
		}
		if best == nil || confidence > bestConfidence {
			best = artistCandidate(result, confidence)
			bestConfidence = confidence
		}
	}
	if best == nil || !acceptable(name, best.Name, bestConfidence) {
		return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, name, nil)
	}
	return best, nil
}

// SearchAlbum matches a release group scoped to the artist name. Agreement
// between the release group's artist credit and the expected artist adds a
// confidence bonus.
func (p *Provider) SearchAlbum(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search release group"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchReleaseGroups(ctx, artistName, title)
	if err != nil {
		return nil, p.classify(ctx, err)
	}

	var best *providers.Candidate
	var bestConfidence float64
	for i := range results {
		result := &results[i]
		agrees := creditAgrees(result.ArtistCredit, artistName)
		confidence := childConfidence(title, result.Title, result.Score, agrees)
		if match.Normalize(title) == match.Normalize(result.Title) && agrees {
			return releaseGroupCandidate(result, confidence), nil
		}
		if best == nil || confidence > bestConfidence {
			best = releaseGroupCandidate(result, confidence)
			bestConfidence = confidence
		}
	}
	if best == nil || !acceptable(title, best.Name, bestConfidence) {
		return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
	}
	return best, nil
}

// SearchTrack matches a recording scoped to the artist name.
func (p *Provider) SearchTrack(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	const operation = "search recording"
	if err := p.acquire(ctx, operation); err != nil {
		return nil, err
	}
	results, err := p.client.SearchRecordings(ctx, artistName, title)
	if err != nil {
		return nil, p.classify(ctx, err)
	}

	var best *providers.Candidate
	var bestConfidence float64
	for i := range results {
		result := &results[i]
		agrees := creditAgrees(result.ArtistCredit, artistName)
		confidence := childConfidence(title, result.Title, result.Score, agrees)
		if match.Normalize(title) == match.Normalize(result.Title) && agrees {
			return recordingCandidate(result, confidence), nil
		}
		if best == nil || confidence > bestConfidence {
			best = recordingCandidate(result, confidence)
			bestConfidence = confidence
		}
	}
	if best == nil || !acceptable(title, best.Name, bestConfidence) {
		return nil, providers.Wrap(providers.ErrNoMatch, providerName, operation, title, nil)
	}
	return best, nil
}

// ArtistFields contributes genre and formation year.
func (p *Provider) ArtistFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"genre":       c.Genre,
		"formed_year": c.Year,
	}
}

// AlbumFields contributes the first release year.
func (p *Provider) AlbumFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"year": c.Year,
	}
}

// TrackFields contributes the recording duration.
func (p *Provider) TrackFields(c *providers.Candidate) map[string]any {
	return map[string]any{
		"duration_secs": c.DurationSecs,
	}
}

// ParentID returns the credited artist's MBID on child candidates.
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

func creditAgrees(credits []ArtistCredit, artistName string) bool {
	for _, credit := range credits {
		if match.Matches(artistName, credit.Artist.Name) || match.Matches(artistName, credit.Name) {
			return true
		}
	}
	return false
}

func artistCandidate(result *ArtistResult, confidence float64) *providers.Candidate {
	candidate := &providers.Candidate{
		ID:    result.ID,
		Name:  result.Name,
		Score: confidence,
		Year:  yearOf(result.LifeSpan.Begin),
	}
	if len(result.Tags) > 0 {
		top := result.Tags[0]
		for _, tag := range result.Tags[1:] {
			if tag.Count > top.Count {
				top = tag
			}
		}
		candidate.Genre = top.Name
	}
	return candidate
}

func releaseGroupCandidate(result *ReleaseGroupResult, confidence float64) *providers.Candidate {
	candidate := &providers.Candidate{
		ID:    result.ID,
		Name:  result.Title,
		Score: confidence,
		Year:  yearOf(result.FirstReleaseDate),
	}
	if len(result.ArtistCredit) > 0 {
		candidate.ArtistID = result.ArtistCredit[0].Artist.ID
		candidate.ArtistName = result.ArtistCredit[0].Artist.Name
	}
	return candidate
}

func recordingCandidate(result *RecordingResult, confidence float64) *providers.Candidate {
	candidate := &providers.Candidate{
		ID:           result.ID,
		Name:         result.Title,
		Score:        confidence,
		DurationSecs: result.LengthMS / 1000,
	}
	if len(result.ArtistCredit) > 0 {
		candidate.ArtistID = result.ArtistCredit[0].Artist.ID
		candidate.ArtistName = result.ArtistCredit[0].Artist.Name
	}
	return candidate
}

// yearOf extracts the leading year from a ws/2 partial date ("1993-02-22",
// "1993-02", or "1993").
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
