package testsupport

import (
	"context"
	"testing"

	"fermata/internal/config"
	"fermata/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedArtist inserts an artist row and fails the test on error.
func SeedArtist(t testing.TB, store *library.Store, name string) *library.Artist {
	t.Helper()

	artist, err := store.AddArtist(context.Background(), name)
	if err != nil {
		t.Fatalf("store.AddArtist(%q): %v", name, err)
	}
	return artist
}

// SeedAlbum inserts an album row under the given artist.
func SeedAlbum(t testing.TB, store *library.Store, artistID int64, title string, year int) *library.Album {
	t.Helper()

	album, err := store.AddAlbum(context.Background(), artistID, title, year)
	if err != nil {
		t.Fatalf("store.AddAlbum(%q): %v", title, err)
	}
	return album
}

// SeedTrack inserts a track row under the given album.
func SeedTrack(t testing.TB, store *library.Store, albumID int64, title string, trackNo int) *library.Track {
	t.Helper()

	track, err := store.AddTrack(context.Background(), albumID, title, trackNo)
	if err != nil {
		t.Fatalf("store.AddTrack(%q): %v", title, err)
	}
	return track
}
