// Package deezer queries the public Deezer REST API. No API key is
// required; results arrive in a data[] envelope ordered by Deezer's own
// ranking.
package deezer

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

// ArtistResult is one /search/artist entry.
type ArtistResult struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture_medium"`
	NbFan   int    `json:"nb_fan"`
}

// AlbumResult is one /search/album entry.
type AlbumResult struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Cover  string `json:"cover_medium"`
	Artist struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

// TrackResult is one /search/track entry.
type TrackResult struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	DurationSecs   int    `json:"duration"`
	ExplicitLyrics bool   `json:"explicit_lyrics"`
	Artist         struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Cover string `json:"cover_medium"`
	} `json:"album"`
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

// Client provides access to the Deezer search endpoints.
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

// NewClient creates a Deezer API client.
func NewClient(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("deezer base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// quoteTerm wraps a search term for Deezer's advanced query syntax. The
// API has no escape for embedded double quotes, so they are dropped to
// keep the term boundaries intact.
func quoteTerm(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, "") + `"`
}

// SearchArtists queries /search/artist.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]ArtistResult, error) {
	var payload envelope[ArtistResult]
	query := `artist:` + quoteTerm(name)
	if err := c.search(ctx, "/search/artist", query, "search artist", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// SearchAlbums queries /search/album with an advanced artist+album query.
func (c *Client) SearchAlbums(ctx context.Context, artistName, title string) ([]AlbumResult, error) {
	var payload envelope[AlbumResult]
	query := `artist:` + quoteTerm(artistName) + ` album:` + quoteTerm(title)
	if err := c.search(ctx, "/search/album", query, "search album", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// SearchTracks queries /search/track with an advanced artist+track query.
func (c *Client) SearchTracks(ctx context.Context, artistName, title string) ([]TrackResult, error) {
	var payload envelope[TrackResult]
	query := `artist:` + quoteTerm(artistName) + ` track:` + quoteTerm(title)
	if err := c.search(ctx, "/search/track", query, "search track", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) search(ctx context.Context, path, query, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return providers.Wrap(providers.ErrConfiguration, providerName, operation, "parse url", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", searchLimit)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return providers.Wrap(providers.ErrTransient, providerName, operation, "build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return providers.DoJSON(c.httpClient, req, providerName, operation, out)
}
