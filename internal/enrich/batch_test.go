package enrich

import (
	"context"
	"testing"
	"time"

	"fermata/internal/library"
	"fermata/internal/providers"
	"fermata/internal/testsupport"
)

// batchStub extends stubSource with lookup listings keyed by parent ID.
type batchStub struct {
	*stubSource
	discographies map[string][]providers.Candidate
	trackListings map[string][]providers.Candidate
	lookupErr     error
}

func newBatchStub() *batchStub {
	inner := newStubSource()
	inner.name = "itunes"
	return &batchStub{
		stubSource:    inner,
		discographies: make(map[string][]providers.Candidate),
		trackListings: make(map[string][]providers.Candidate),
	}
}

func (b *batchStub) LookupPacing() time.Duration { return 0 }

func (b *batchStub) ArtistDiscography(ctx context.Context, artistID string) ([]providers.Candidate, error) {
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	return b.discographies[artistID], nil
}

func (b *batchStub) AlbumTracks(ctx context.Context, albumID string) ([]providers.Candidate, error) {
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	return b.trackListings[albumID], nil
}

func seedMatchedArtist(t *testing.T, store *library.Store, name, providerID string) *library.Artist {
	t.Helper()
	artist := testsupport.SeedArtist(t, store, name)
	if err := store.UpdateMatchedFields(context.Background(), library.ProviderITunes, library.KindArtist, artist.ID, providerID, nil); err != nil {
		t.Fatalf("seed matched artist: %v", err)
	}
	return artist
}

func TestBatchCascadeMatchesAndNotFound(t *testing.T) {
	source := newBatchStub()
	source.discographies["5468295"] = []providers.Candidate{
		{ID: "302127", Name: "Discovery", ArtistID: "5468295", Year: 2001},
		{ID: "697194953", Name: "Random Access Memories", ArtistID: "5468295", Year: 2013},
	}
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := seedMatchedArtist(t, store, "Daft Punk", "5468295")
	discovery := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 0)
	bootleg := testsupport.SeedAlbum(t, store, artist.ID, "Bootleg Sessions", 0)

	item, err := worker.nextItem(ctx)
	if err != nil || item == nil || item.Kind != library.KindAlbumBatch {
		t.Fatalf("nextItem = %+v, %v; want album batch", item, err)
	}
	worker.processBatch(ctx, worker.logger, item)

	gotDiscovery, err := store.GetAlbum(ctx, discovery.ID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	info := gotDiscovery.Matches[library.ProviderITunes]
	if info.Status != library.StatusMatched || info.ProviderID != "302127" {
		t.Fatalf("discovery match = %+v", info)
	}
	if gotDiscovery.Year != 2001 {
		t.Fatalf("discovery year = %d; batch matches must backfill too", gotDiscovery.Year)
	}

	gotBootleg, err := store.GetAlbum(ctx, bootleg.ID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if gotBootleg.Matches[library.ProviderITunes].Status != library.StatusNotFound {
		t.Fatalf("bootleg status = %q, want not_found", gotBootleg.Matches[library.ProviderITunes].Status)
	}

	stats := worker.Snapshot().Stats
	if stats.Matched != 1 || stats.NotFound != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestBatchFetchFailureSweepsChildren(t *testing.T) {
	source := newBatchStub()
	source.lookupErr = providers.Wrap(providers.ErrTransient, "itunes", "lookup discography", "status 503", nil)
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := seedMatchedArtist(t, store, "Daft Punk", "5468295")
	first := testsupport.SeedAlbum(t, store, artist.ID, "Homework", 1997)
	second := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 2001)

	item, err := worker.nextItem(ctx)
	if err != nil || item == nil || item.Kind != library.KindAlbumBatch {
		t.Fatalf("nextItem = %+v, %v", item, err)
	}
	worker.processBatch(ctx, worker.logger, item)

	for _, id := range []int64{first.ID, second.ID} {
		album, err := store.GetAlbum(ctx, id)
		if err != nil {
			t.Fatalf("GetAlbum: %v", err)
		}
		if album.Matches[library.ProviderITunes].Status != library.StatusError {
			t.Fatalf("album %d status = %q, want error", id, album.Matches[library.ProviderITunes].Status)
		}
	}
	if worker.Snapshot().Stats.Errors != 2 {
		t.Fatalf("stats = %+v", worker.Snapshot().Stats)
	}
	// The batch does not reselect: children now hold terminal statuses.
	item, err = worker.nextItem(ctx)
	if err != nil || item != nil {
		t.Fatalf("expected empty backlog, got %+v err %v", item, err)
	}
}

func TestTrackBatchPrefersTrackNumberAgreement(t *testing.T) {
	source := newBatchStub()
	source.trackListings["302127"] = []providers.Candidate{
		{ID: "t1", Name: "Face to Face", TrackNo: 1},
		{ID: "t2", Name: "Face to Face", TrackNo: 11},
	}
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := seedMatchedArtist(t, store, "Daft Punk", "5468295")
	album := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 2001)
	if err := store.UpdateMatchedFields(ctx, library.ProviderITunes, library.KindAlbum, album.ID, "302127", nil); err != nil {
		t.Fatalf("seed matched album: %v", err)
	}
	track := testsupport.SeedTrack(t, store, album.ID, "Face to Face", 11)

	item, err := worker.nextItem(ctx)
	if err != nil || item == nil || item.Kind != library.KindTrackBatch {
		t.Fatalf("nextItem = %+v, %v; want track batch", item, err)
	}
	worker.processBatch(ctx, worker.logger, item)

	got, err := store.GetTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if got.Matches[library.ProviderITunes].ProviderID != "t2" {
		t.Fatalf("track matched %q; track number agreement must win over listing order",
			got.Matches[library.ProviderITunes].ProviderID)
	}
}

func TestTrackBatchNameOnlyFallback(t *testing.T) {
	source := newBatchStub()
	source.trackListings["302127"] = []providers.Candidate{
		{ID: "t9", Name: "Veridis Quo", TrackNo: 12},
	}
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := seedMatchedArtist(t, store, "Daft Punk", "5468295")
	album := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 2001)
	if err := store.UpdateMatchedFields(ctx, library.ProviderITunes, library.KindAlbum, album.ID, "302127", nil); err != nil {
		t.Fatalf("seed matched album: %v", err)
	}
	// Local numbering disagrees with the provider listing.
	track := testsupport.SeedTrack(t, store, album.ID, "Veridis Quo", 3)

	item, err := worker.nextItem(ctx)
	if err != nil || item == nil {
		t.Fatalf("nextItem = %+v, %v", item, err)
	}
	worker.processBatch(ctx, worker.logger, item)

	got, err := store.GetTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if got.Matches[library.ProviderITunes].ProviderID != "t9" {
		t.Fatalf("track match = %+v", got.Matches[library.ProviderITunes])
	}
}
