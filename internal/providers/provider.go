package providers

import (
	"context"
	"time"
)

// Provider is the capability surface a metadata source exposes to an
// enrichment worker. Search methods return the best acceptable candidate or
// an ErrNoMatch-tagged error when nothing clears the name threshold.
type Provider interface {
	// Name returns the provider's stable identifier, matching its
	// library.Provider column family.
	Name() string

	SearchArtist(ctx context.Context, name string) (*Candidate, error)
	SearchAlbum(ctx context.Context, artistName, title string) (*Candidate, error)
	SearchTrack(ctx context.Context, artistName, title string) (*Candidate, error)

	// ArtistFields, AlbumFields, and TrackFields map a candidate into the
	// backfill columns this provider contributes for that entity kind.
	ArtistFields(c *Candidate) map[string]any
	AlbumFields(c *Candidate) map[string]any
	TrackFields(c *Candidate) map[string]any

	// ParentID returns the provider's parent reference carried on a child
	// candidate (the artist ID on albums and tracks), empty when the
	// provider does not report one.
	ParentID(c *Candidate) string

	// SearchPacing is the minimum spacing between search calls.
	SearchPacing() time.Duration
}

// BatchProvider is implemented by sources that can resolve a matched
// parent's entire child listing with one cheap lookup call.
type BatchProvider interface {
	Provider

	// ArtistDiscography lists the albums under a provider artist ID.
	ArtistDiscography(ctx context.Context, artistID string) ([]Candidate, error)
	// AlbumTracks lists the tracks under a provider album ID.
	AlbumTracks(ctx context.Context, albumID string) ([]Candidate, error)
	// LookupPacing is the minimum spacing between lookup calls, typically
	// much tighter than search pacing.
	LookupPacing() time.Duration
}

// IDValidator is implemented by providers whose stored parent IDs can be
// contaminated by foreign formats and must be checked before use.
type IDValidator interface {
	ValidID(id string) bool
}
