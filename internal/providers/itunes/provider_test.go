package itunes

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
		BaseURL:        server.URL,
		PacingMS:       1,
		LookupPacingMS: 1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return provider
}

func TestValidID(t *testing.T) {
	provider := &Provider{}
	cases := []struct {
		id   string
		want bool
	}{
		{"5468295", true},
		{"0", true},
		{"", false},
		{"056e4f3e-aaaa", false}, // MusicBrainz UUID contamination
		{"12x4", false},
	}
	for _, tc := range cases {
		if got := provider.ValidID(tc.id); got != tc.want {
			t.Errorf("ValidID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestSearchArtist(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("media") != "music" || q.Get("entity") != "musicArtist" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"resultCount":1,"results":[
            {"wrapperType":"artist","artistId":5468295,"artistName":"Daft Punk","primaryGenreName":"Electronic"}
        ]}`))
	}))

	candidate, err := provider.SearchArtist(context.Background(), "Daft Punk")
	if err != nil {
		t.Fatalf("SearchArtist: %v", err)
	}
	if candidate.ID != "5468295" || candidate.Genre != "Electronic" {
		t.Fatalf("candidate = %+v", candidate)
	}
}

func TestArtistDiscographySkipsArtistWrapper(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "5468295" {
			t.Errorf("id = %q", r.URL.Query().Get("id"))
		}
		w.Write([]byte(`{"resultCount":3,"results":[
            {"wrapperType":"artist","artistId":5468295,"artistName":"Daft Punk"},
            {"wrapperType":"collection","collectionId":697194953,"collectionName":"Random Access Memories",
             "artistId":5468295,"artistName":"Daft Punk","releaseDate":"2013-05-17T07:00:00Z",
             "primaryGenreName":"Electronic","artworkUrl100":"https://img/ram.jpg"},
            {"wrapperType":"collection","collectionId":302127,"collectionName":"Discovery",
             "artistId":5468295,"artistName":"Daft Punk","releaseDate":"2001-03-12T08:00:00Z"}
        ]}`))
	}))

	albums, err := provider.ArtistDiscography(context.Background(), "5468295")
	if err != nil {
		t.Fatalf("ArtistDiscography: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(albums))
	}
	if albums[0].ID != "697194953" || albums[0].Year != 2013 {
		t.Fatalf("albums[0] = %+v", albums[0])
	}
}

func TestArtistDiscographyRejectsContaminatedID(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("lookup must not be called with an invalid id")
	}))

	_, err := provider.ArtistDiscography(context.Background(), "056e4f3e-0e3f-4a2a")
	if !errors.Is(err, providers.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestAlbumTracksMapping(t *testing.T) {
	provider := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount":2,"results":[
            {"wrapperType":"collection","collectionId":302127,"collectionName":"Discovery"},
            {"wrapperType":"track","trackId":3135556,"trackName":"One More Time","trackNumber":1,
             "trackTimeMillis":320357,"trackExplicitness":"notExplicit","collectionId":302127,
             "artistId":5468295,"primaryGenreName":"Electronic"}
        ]}`))
	}))

	tracks, err := provider.AlbumTracks(context.Background(), "302127")
	if err != nil {
		t.Fatalf("AlbumTracks: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	track := tracks[0]
	if track.TrackNo != 1 || track.DurationSecs != 320 || track.Explicit {
		t.Fatalf("track = %+v", track)
	}
	fields := provider.TrackFields(&track)
	if fields["track_no"] != 1 {
		t.Fatalf("track fields = %v", fields)
	}
	if _, ok := fields["explicit"]; ok {
		t.Fatal("non-explicit track must not write the explicit flag")
	}
}
