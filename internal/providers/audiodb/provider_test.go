package audiodb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fermata/internal/config"
	"fermata/internal/providers"
)

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := New(config.Provider{BaseURL: server.URL, APIKey: "2", PacingMS: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return provider
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(config.Provider{BaseURL: "https://example.test"})
	if !errors.Is(err, providers.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchArtistMapsDescriptiveFields(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/search.php" {
			t.Errorf("unexpected path %q; api key must be a path segment", r.URL.Path)
		}
		if r.URL.Query().Get("s") != "Massive Attack" {
			t.Errorf("query s = %q", r.URL.Query().Get("s"))
		}
		w.Write([]byte(`{"artists":[{
            "idArtist":"111239","strArtist":"Massive Attack",
            "strGenre":"Trip-Hop","strStyle":"Electronic","strMood":"Dark",
            "strBiographyEN":"Bristol collective.","intFormedYear":"1988",
            "strArtistThumb":"https://img/thumb.jpg","strArtistBanner":"https://img/banner.jpg"
        }]}`))
	}))

	candidate, err := provider.SearchArtist(context.Background(), "Massive Attack")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	fields := provider.ArtistFields(candidate)
	want := map[string]any{
		"genre":       "Trip-Hop",
		"style":       "Electronic",
		"mood":        "Dark",
		"biography":   "Bristol collective.",
		"formed_year": 1988,
		"thumb_url":   "https://img/thumb.jpg",
		"banner_url":  "https://img/banner.jpg",
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("field %q = %v, want %v", key, fields[key], value)
		}
	}
}

func TestSearchArtistNullArrayIsNoMatch(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// TheAudioDB returns a JSON null instead of an empty array.
		w.Write([]byte(`{"artists":null}`))
	}))

	_, err := provider.SearchArtist(context.Background(), "Nobody")
	if !errors.Is(err, providers.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSearchAlbumParentID(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/searchalbum.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"album":[{
            "idAlbum":"2115888","idArtist":"111239","strAlbum":"Mezzanine",
            "strArtist":"Massive Attack","intYearReleased":"1998",
            "strGenre":"Trip-Hop","strLabel":"Virgin"
        }]}`))
	}))

	candidate, err := provider.SearchAlbum(context.Background(), "Massive Attack", "Mezzanine")
	if err != nil {
		t.Fatalf("SearchAlbum: %v", err)
	}
	if provider.ParentID(candidate) != "111239" {
		t.Fatalf("parent id = %q", provider.ParentID(candidate))
	}
	if fields := provider.AlbumFields(candidate); fields["year"] != 1998 || fields["label"] != "Virgin" {
		t.Fatalf("album fields = %v", fields)
	}
}

func TestSearchTrackDurationFromMillis(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"track":[{
            "idTrack":"32795","idAlbum":"2115888","idArtist":"111239",
            "strTrack":"Teardrop","strArtist":"Massive Attack","strAlbum":"Mezzanine",
            "intDuration":"330000"
        }]}`))
	}))

	candidate, err := provider.SearchTrack(context.Background(), "Massive Attack", "Teardrop")
	if err != nil {
		t.Fatalf("SearchTrack: %v", err)
	}
	if candidate.DurationSecs != 330 {
		t.Fatalf("duration = %d, want 330", candidate.DurationSecs)
	}
}
