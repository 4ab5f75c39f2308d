// Package itunes queries the iTunes Search API. Search calls are heavily
// throttled upstream, so the provider leans on the lookup endpoint: one
// matched parent ID resolves a whole discography or track listing in a
// single cheap call.
package itunes

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fermata/internal/providers"
)

const (
	searchLimit = "5"
	lookupLimit = "200"

	entityArtist = "musicArtist"
	entityAlbum  = "album"
	entitySong   = "song"
)

// Result is one iTunes search or lookup entry. The API flattens artists,
// collections, and tracks into a single shape distinguished by wrapperType.
type Result struct {
	WrapperType       string `json:"wrapperType"`
	ArtistID          int64  `json:"artistId"`
	ArtistName        string `json:"artistName"`
	CollectionID      int64  `json:"collectionId"`
	CollectionName    string `json:"collectionName"`
	TrackID           int64  `json:"trackId"`
	TrackName         string `json:"trackName"`
	TrackNumber       int    `json:"trackNumber"`
	TrackTimeMillis   int    `json:"trackTimeMillis"`
	TrackExplicitness string `json:"trackExplicitness"`
	PrimaryGenreName  string `json:"primaryGenreName"`
	ReleaseDate       string `json:"releaseDate"`
	ArtworkURL100     string `json:"artworkUrl100"`
}

type searchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Client provides access to the iTunes search and lookup endpoints.
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

// NewClient creates an iTunes Search API client.
func NewClient(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("itunes base url required")
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

// Search queries /search for the given entity type.
func (c *Client) Search(ctx context.Context, term, entity string) ([]Result, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", entity)
	params.Set("limit", searchLimit)
	return c.get(ctx, "/search", params, "search "+entity)
}

// Lookup queries /lookup by ID, returning the looked-up entity followed by
// its children of the requested entity type.
func (c *Client) Lookup(ctx context.Context, id, entity string) ([]Result, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("entity", entity)
	params.Set("limit", lookupLimit)
	return c.get(ctx, "/lookup", params, "lookup "+entity)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string) ([]Result, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, providers.Wrap(providers.ErrConfiguration, providerName, operation, "parse url", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, providers.Wrap(providers.ErrTransient, providerName, operation, "build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var payload searchResponse
	if err := providers.DoJSON(c.httpClient, req, providerName, operation, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
