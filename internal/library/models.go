package library

import (
	"strings"
	"time"
)

// Provider identifies a metadata source. Provider values parameterize the
// per-provider column families on each entity table.
type Provider string

const (
	ProviderMusicBrainz Provider = "musicbrainz"
	ProviderDeezer      Provider = "deezer"
	ProviderAudioDB     Provider = "audiodb"
	ProviderITunes      Provider = "itunes"
)

// AllProviders lists every supported provider in a stable order.
var AllProviders = []Provider{
	ProviderMusicBrainz,
	ProviderDeezer,
	ProviderAudioDB,
	ProviderITunes,
}

var providerSet = func() map[Provider]struct{} {
	set := make(map[Provider]struct{}, len(AllProviders))
	for _, p := range AllProviders {
		set[p] = struct{}{}
	}
	return set
}()

// ParseProvider resolves a provider name, reporting whether it is known.
func ParseProvider(value string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(value)))
	_, ok := providerSet[p]
	return p, ok
}

// Valid reports whether the provider is one of the supported sources.
func (p Provider) Valid() bool {
	_, ok := providerSet[p]
	return ok
}

func (p Provider) idColumn() string        { return string(p) + "_id" }
func (p Provider) statusColumn() string    { return string(p) + "_status" }
func (p Provider) attemptedColumn() string { return string(p) + "_attempted_at" }

// MatchStatus is the per-provider lifecycle state of an entity. A NULL
// column means the entity has never been attempted for that provider.
type MatchStatus string

const (
	StatusMatched  MatchStatus = "matched"
	StatusNotFound MatchStatus = "not_found"
	StatusError    MatchStatus = "error"
)

// ParseStatus resolves a stored status value.
func ParseStatus(value string) (MatchStatus, bool) {
	switch MatchStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusMatched:
		return StatusMatched, true
	case StatusNotFound:
		return StatusNotFound, true
	case StatusError:
		return StatusError, true
	}
	return "", false
}

// Kind distinguishes the shapes of work a provider worker can pull.
type Kind string

const (
	KindArtist Kind = "artist"
	KindAlbum  Kind = "album"
	KindTrack  Kind = "track"
	// KindAlbumBatch resolves all of a matched artist's pending albums
	// from one discography call.
	KindAlbumBatch Kind = "album_batch"
	// KindTrackBatch resolves all of a matched album's pending tracks
	// from one track-listing call.
	KindTrackBatch Kind = "track_batch"
)

// WorkItem is one unit of enrichment work, constructed per polling cycle
// and discarded after processing.
type WorkItem struct {
	Kind     Kind
	EntityID int64
	// Name is the artist name, album title, or track title to search for.
	Name string
	// ArtistName carries the parent artist name for album and track items.
	ArtistName string
	// ParentProviderID is the provider ID previously stored on the parent
	// entity, used for cross-validation and correction.
	ParentProviderID string
	// TrackNo is the local track number when known (track items only).
	TrackNo int
}

// Artist is a library artist row.
type Artist struct {
	ID         int64
	Name       string
	SortName   string
	Genre      string
	Style      string
	Mood       string
	Biography  string
	FormedYear int
	ThumbURL   string
	BannerURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Matches    map[Provider]MatchInfo
}

// Album is a library album row.
type Album struct {
	ID          int64
	ArtistID    int64
	Title       string
	Year        int
	Genre       string
	Style       string
	Mood        string
	Label       string
	Description string
	ThumbURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Matches     map[Provider]MatchInfo
}

// Track is a library track row.
type Track struct {
	ID           int64
	AlbumID      int64
	ArtistID     int64
	Title        string
	TrackNo      int
	DurationSecs int
	Genre        string
	BPM          int
	Explicit     bool
	ThumbURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Matches      map[Provider]MatchInfo
}

// MatchInfo is one provider's recorded state on an entity.
type MatchInfo struct {
	ProviderID  string
	Status      MatchStatus
	AttemptedAt time.Time
}

// Attempted reports whether the provider has ever processed the entity.
func (m MatchInfo) Attempted() bool {
	return m.Status != ""
}

// ChildRow is a pending child used by the batch cascade: matched locally
// against a parent's full provider listing without further API calls.
type ChildRow struct {
	ID      int64
	Name    string
	TrackNo int
}

// Progress summarizes enrichment completion for one entity kind.
type Progress struct {
	Matched int64
	Total   int64
}

// Percent returns matched/total as a percentage, 100 for an empty set.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return 100 * float64(p.Matched) / float64(p.Total)
}
