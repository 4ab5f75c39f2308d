// Package audiodb queries TheAudioDB JSON API. The API key is a path
// segment; the free tier key is "2". Empty result sets arrive as a JSON
// null in place of the array.
package audiodb

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fermata/internal/providers"
)

// ArtistResult is one search.php artist entry.
type ArtistResult struct {
	ID         string `json:"idArtist"`
	Name       string `json:"strArtist"`
	Genre      string `json:"strGenre"`
	Style      string `json:"strStyle"`
	Mood       string `json:"strMood"`
	Biography  string `json:"strBiographyEN"`
	FormedYear string `json:"intFormedYear"`
	Thumb      string `json:"strArtistThumb"`
	Banner     string `json:"strArtistBanner"`
}

// AlbumResult is one searchalbum.php entry.
type AlbumResult struct {
	ID          string `json:"idAlbum"`
	ArtistID    string `json:"idArtist"`
	Title       string `json:"strAlbum"`
	ArtistName  string `json:"strArtist"`
	Year        string `json:"intYearReleased"`
	Genre       string `json:"strGenre"`
	Style       string `json:"strStyle"`
	Mood        string `json:"strMood"`
	Label       string `json:"strLabel"`
	Description string `json:"strDescriptionEN"`
	Thumb       string `json:"strAlbumThumb"`
}

// TrackResult is one searchtrack.php entry.
type TrackResult struct {
	ID         string `json:"idTrack"`
	AlbumID    string `json:"idAlbum"`
	ArtistID   string `json:"idArtist"`
	Title      string `json:"strTrack"`
	ArtistName string `json:"strArtist"`
	AlbumName  string `json:"strAlbum"`
	DurationMS string `json:"intDuration"`
	Genre      string `json:"strGenre"`
	Mood       string `json:"strMood"`
	Thumb      string `json:"strTrackThumb"`
}

type artistSearchResponse struct {
	Artists []ArtistResult `json:"artists"`
}

type albumSearchResponse struct {
	Albums []AlbumResult `json:"album"`
}

type trackSearchResponse struct {
	Tracks []TrackResult `json:"track"`
}

// Client provides access to TheAudioDB search endpoints.
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a TheAudioDB client.
func NewClient(baseURL, apiKey, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("audiodb base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("audiodb api key required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchArtists queries search.php by artist name.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]ArtistResult, error) {
	var payload artistSearchResponse
	params := url.Values{}
	params.Set("s", name)
	if err := c.get(ctx, "/search.php", params, "search artist", &payload); err != nil {
		return nil, err
	}
	return payload.Artists, nil
}

// SearchAlbums queries searchalbum.php by artist and album name.
func (c *Client) SearchAlbums(ctx context.Context, artistName, title string) ([]AlbumResult, error) {
	var payload albumSearchResponse
	params := url.Values{}
	params.Set("s", artistName)
	params.Set("a", title)
	if err := c.get(ctx, "/searchalbum.php", params, "search album", &payload); err != nil {
		return nil, err
	}
	return payload.Albums, nil
}

// SearchTracks queries searchtrack.php by artist and track name.
func (c *Client) SearchTracks(ctx context.Context, artistName, title string) ([]TrackResult, error) {
	var payload trackSearchResponse
	params := url.Values{}
	params.Set("s", artistName)
	params.Set("t", title)
	if err := c.get(ctx, "/searchtrack.php", params, "search track", &payload); err != nil {
		return nil, err
	}
	return payload.Tracks, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string, out any) error {
	endpoint, err := url.Parse(c.baseURL + "/" + c.apiKey + path)
	if err != nil {
		return providers.Wrap(providers.ErrConfiguration, providerName, operation, "parse url", err)
	}
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
