package providers

// Candidate is one search or lookup result in provider-neutral form. It is
// never persisted directly; the owning provider maps it into a backfill
// field set per entity kind.
type Candidate struct {
	// ID is the provider-native identifier of the matched entity.
	ID string
	// Name is the candidate's display name or title as the provider
	// reports it.
	Name string

	// ArtistID and ArtistName describe the parent artist on album and
	// track candidates, when the provider includes them.
	ArtistID   string
	ArtistName string
	// AlbumID and AlbumName describe the parent album on track candidates.
	AlbumID   string
	AlbumName string

	// Score is the provider's own relevance score when the API reports
	// one, on a 0-100 scale. Zero when the provider has no scoring.
	Score float64

	TrackNo      int
	DurationSecs int
	Year         int
	Genre        string
	Style        string
	Mood         string
	Label        string
	Biography    string
	Description  string
	ThumbURL     string
	BannerURL    string
	BPM          int
	Explicit     bool
}
