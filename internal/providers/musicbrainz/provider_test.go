package musicbrainz

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

	provider, err := New(config.Provider{
		BaseURL:   server.URL,
		UserAgent: "fermata-test/1.0",
		PacingMS:  1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return provider
}

func TestSearchArtistExactNameShortCircuits(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artist" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "fermata-test/1.0" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(`{"artists":[
            {"id":"wrong","name":"Daft Funk Tribute","score":100},
            {"id":"056e4f3e","name":"Daft Punk","score":41,
             "life-span":{"begin":"1993"},
             "tags":[{"name":"electronic","count":12},{"name":"house","count":7}]}
        ]}`))
	}))

	candidate, err := provider.SearchArtist(context.Background(), "Daft Punk")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if candidate.ID != "056e4f3e" {
		t.Fatalf("picked %q; exact name equality must beat a higher server score", candidate.ID)
	}
	if candidate.Genre != "electronic" {
		t.Fatalf("genre = %q, want highest-count tag", candidate.Genre)
	}
	if candidate.Year != 1993 {
		t.Fatalf("formed year = %d", candidate.Year)
	}
}

func TestSearchArtistBelowConfidenceIsNoMatch(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists":[{"id":"x","name":"Completely Different","score":30}]}`))
	}))

	_, err := provider.SearchArtist(context.Background(), "Slipknot")
	if !errors.Is(err, providers.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSearchAlbumArtistAgreementBonus(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release-group" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"release-groups":[
            {"id":"rg1","title":"Discovery","score":78,"first-release-date":"2001-03-12",
             "artist-credit":[{"name":"Daft Punk","artist":{"id":"056e4f3e","name":"Daft Punk"}}]}
        ]}`))
	}))

	candidate, err := provider.SearchAlbum(context.Background(), "Daft Punk", "Discovery")
	if err != nil {
		t.Fatalf("SearchAlbum: %v", err)
	}
	if candidate.ID != "rg1" || candidate.Year != 2001 {
		t.Fatalf("candidate = %+v", candidate)
	}
	if provider.ParentID(candidate) != "056e4f3e" {
		t.Fatalf("parent id = %q", provider.ParentID(candidate))
	}
}

func TestSearchTrackMapsDuration(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"recordings":[
            {"id":"rec1","title":"One More Time","score":95,"length":320357,
             "artist-credit":[{"name":"Daft Punk","artist":{"id":"056e4f3e","name":"Daft Punk"}}]}
        ]}`))
	}))

	candidate, err := provider.SearchTrack(context.Background(), "Daft Punk", "One More Time")
	if err != nil {
		t.Fatalf("SearchTrack: %v", err)
	}
	if candidate.DurationSecs != 320 {
		t.Fatalf("duration = %d, want 320", candidate.DurationSecs)
	}
	fields := provider.TrackFields(candidate)
	if fields["duration_secs"] != 320 {
		t.Fatalf("track fields = %v", fields)
	}
}

func TestSearchArtistServerErrorIsTransient(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := provider.SearchArtist(context.Background(), "Radiohead")
	if !errors.Is(err, providers.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestConfidenceWeights(t *testing.T) {
	// Identical names at full server score hit 100 on both blends.
	if got := artistConfidence("Radiohead", "Radiohead", 100); got != 100 {
		t.Fatalf("artist confidence = %v", got)
	}
	if got := childConfidence("Kid A", "Kid A", 100, true); got != 100 {
		t.Fatalf("child confidence = %v", got)
	}
	// Without agreement the child blend tops out at 80.
	if got := childConfidence("Kid A", "Kid A", 100, false); got != 80 {
		t.Fatalf("child confidence without agreement = %v", got)
	}
	if acceptable("Slipknot", "Slayer", 42) {
		t.Fatal("low confidence dissimilar names must not be acceptable")
	}
	if !acceptable("The Beatles", "Beatles", 0) {
		t.Fatal("normalized equality must short-circuit acceptance")
	}
}

func TestLuceneQuote(t *testing.T) {
	if got := luceneQuote(`Guns N' "Roses"`); got != `"Guns N' \"Roses\""` {
		t.Fatalf("luceneQuote = %s", got)
	}
}
