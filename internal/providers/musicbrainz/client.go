// Package musicbrainz queries the MusicBrainz ws/2 API. Searches use
// Lucene field queries and carry the server's own relevance score, which
// feeds the acceptance confidence blend.
package musicbrainz

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fermata/internal/providers"
)

const searchLimit = "5"

// ArtistResult is a single ws/2 artist search match.
type ArtistResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Type     string `json:"type"`
	LifeSpan struct {
		Begin string `json:"begin"`
	} `json:"life-span"`
	Tags []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"tags"`
}

// ArtistCredit names a contributing artist on a release group or recording.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

// ReleaseGroupResult is a single ws/2 release-group search match.
type ReleaseGroupResult struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Score            int            `json:"score"`
	PrimaryType      string         `json:"primary-type"`
	FirstReleaseDate string         `json:"first-release-date"`
	ArtistCredit     []ArtistCredit `json:"artist-credit"`
}

// RecordingResult is a single ws/2 recording search match.
type RecordingResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Score        int            `json:"score"`
	LengthMS     int            `json:"length"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
}

type artistSearchResponse struct {
	Artists []ArtistResult `json:"artists"`
}

type releaseGroupSearchResponse struct {
	ReleaseGroups []ReleaseGroupResult `json:"release-groups"`
}

type recordingSearchResponse struct {
	Recordings []RecordingResult `json:"recordings"`
}

// Client provides access to the MusicBrainz ws/2 search endpoints.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a ws/2 client. MusicBrainz requires an identifying
// User-Agent on every request.
func NewClient(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchArtists runs an artist field query.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]ArtistResult, error) {
	var payload artistSearchResponse
	query := `artist:` + luceneQuote(name)
	if err := c.search(ctx, "/artist", query, "search artist", &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// SearchReleaseGroups runs a release-group query scoped to an artist.
func (c *Client) SearchReleaseGroups(ctx context.Context, artistName, title string) ([]ReleaseGroupResult, error) {
	var payload releaseGroupSearchResponse
	query := `releasegroup:` + luceneQuote(title) + ` AND artist:` + luceneQuote(artistName)
	if err := c.search(ctx, "/release-group", query, "search release group", &payload); err != nil {
		return nil, err
	}
	return payload.ReleaseGroups, nil
}

// SearchRecordings runs a recording query scoped to an artist.
func (c *Client) SearchRecordings(ctx context.Context, artistName, title string) ([]RecordingResult, error) {
	var payload recordingSearchResponse
	query := `recording:` + luceneQuote(title) + ` AND artist:` + luceneQuote(artistName)
	if err := c.search(ctx, "/recording", query, "search recording", &payload); err != nil {
		return nil, err
	}
	return payload.Recordings, nil
}

func (c *Client) search(ctx context.Context, path, query, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return providers.Wrap(providers.ErrConfiguration, providerName, operation, "parse url", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	params.Set("limit", searchLimit)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return providers.Wrap(providers.ErrTransient, providerName, operation, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	return providers.DoJSON(c.httpClient, req, providerName, operation, out)
}

// luceneQuote wraps a value in a quoted Lucene phrase, escaping embedded
// quotes and backslashes.
func luceneQuote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}
