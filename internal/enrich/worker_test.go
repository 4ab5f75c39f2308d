package enrich

import (
	"context"
	"testing"

	"fermata/internal/library"
	"fermata/internal/logging"
	"fermata/internal/providers"
	"fermata/internal/testsupport"
	"time"
)

// stubSource is a deterministic in-memory provider for worker tests.
type stubSource struct {
	name        string
	artists     map[string]*providers.Candidate
	albums      map[string]*providers.Candidate
	tracks      map[string]*providers.Candidate
	searchErr   error
	artistCalls int
}

func newStubSource() *stubSource {
	return &stubSource{
		name:    "deezer",
		artists: make(map[string]*providers.Candidate),
		albums:  make(map[string]*providers.Candidate),
		tracks:  make(map[string]*providers.Candidate),
	}
}

func (s *stubSource) Name() string                { return s.name }
func (s *stubSource) SearchPacing() time.Duration { return 0 }

func (s *stubSource) SearchArtist(ctx context.Context, name string) (*providers.Candidate, error) {
	s.artistCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if c, ok := s.artists[name]; ok {
		return c, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, s.name, "search artist", name, nil)
}

func (s *stubSource) SearchAlbum(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if c, ok := s.albums[artistName+"|"+title]; ok {
		return c, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, s.name, "search album", title, nil)
}

func (s *stubSource) SearchTrack(ctx context.Context, artistName, title string) (*providers.Candidate, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if c, ok := s.tracks[artistName+"|"+title]; ok {
		return c, nil
	}
	return nil, providers.Wrap(providers.ErrNoMatch, s.name, "search track", title, nil)
}

func (s *stubSource) ArtistFields(c *providers.Candidate) map[string]any {
	return map[string]any{"genre": c.Genre, "thumb_url": c.ThumbURL}
}

func (s *stubSource) AlbumFields(c *providers.Candidate) map[string]any {
	return map[string]any{"year": c.Year, "thumb_url": c.ThumbURL}
}

func (s *stubSource) TrackFields(c *providers.Candidate) map[string]any {
	return map[string]any{"duration_secs": c.DurationSecs}
}

func (s *stubSource) ParentID(c *providers.Candidate) string { return c.ArtistID }

func newTestWorker(t *testing.T, source providers.Provider) (*Worker, *library.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return NewWorker(cfg, store, source, logging.NewNop()), store
}

// drain processes items until the backlog is empty, bounded to avoid a
// runaway loop on selection bugs.
func drain(t *testing.T, w *Worker) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		item, err := w.nextItem(ctx)
		if err != nil {
			t.Fatalf("nextItem: %v", err)
		}
		if item == nil {
			return
		}
		switch item.Kind {
		case library.KindAlbumBatch, library.KindTrackBatch:
			w.processBatch(ctx, w.logger, item)
		default:
			w.processItem(ctx, w.logger, item)
		}
	}
	t.Fatal("backlog did not drain within 50 cycles")
}

func TestWorkerEndToEnd(t *testing.T) {
	source := newStubSource()
	source.artists["Daft Punk"] = &providers.Candidate{ID: "27", Name: "Daft Punk", Genre: "Electronic"}
	source.albums["Daft Punk|Discovery"] = &providers.Candidate{
		ID: "302127", Name: "Discovery", ArtistID: "27", Year: 2001,
	}
	source.tracks["Daft Punk|One More Time"] = &providers.Candidate{
		ID: "3135556", Name: "One More Time", ArtistID: "27", DurationSecs: 320,
	}

	worker, store := newTestWorker(t, source)
	ctx := context.Background()
	artist := testsupport.SeedArtist(t, store, "Daft Punk")
	album := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 0)
	track := testsupport.SeedTrack(t, store, album.ID, "One More Time", 1)
	testsupport.SeedTrack(t, store, album.ID, "Unreleased Demo", 2)

	drain(t, worker)

	gotArtist, err := store.GetArtist(ctx, artist.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if gotArtist.Matches[library.ProviderDeezer].ProviderID != "27" {
		t.Fatalf("artist match = %+v", gotArtist.Matches[library.ProviderDeezer])
	}
	if gotArtist.Genre != "Electronic" {
		t.Fatalf("artist genre = %q", gotArtist.Genre)
	}

	gotAlbum, err := store.GetAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if gotAlbum.Matches[library.ProviderDeezer].Status != library.StatusMatched || gotAlbum.Year != 2001 {
		t.Fatalf("album = %+v", gotAlbum)
	}

	gotTrack, err := store.GetTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if gotTrack.DurationSecs != 320 {
		t.Fatalf("track duration = %d", gotTrack.DurationSecs)
	}

	stats := worker.Snapshot().Stats
	if stats.Matched != 3 || stats.NotFound != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	// Backlog drained: nothing further to select.
	item, err := worker.nextItem(ctx)
	if err != nil || item != nil {
		t.Fatalf("expected empty backlog, got %+v err %v", item, err)
	}
}

func TestWorkerSelectionOrderArtistsFirst(t *testing.T) {
	source := newStubSource()
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := testsupport.SeedArtist(t, store, "Radiohead")
	album := testsupport.SeedAlbum(t, store, artist.ID, "OK Computer", 1997)
	testsupport.SeedTrack(t, store, album.ID, "Airbag", 1)

	item, err := worker.nextItem(ctx)
	if err != nil {
		t.Fatalf("nextItem: %v", err)
	}
	if item == nil || item.Kind != library.KindArtist {
		t.Fatalf("first item = %+v, want artist", item)
	}
}

func TestWorkerParentCorrection(t *testing.T) {
	source := newStubSource()
	source.albums["Daft Punk|Discovery"] = &providers.Candidate{
		ID: "302127", Name: "Discovery", ArtistID: "27",
	}
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := testsupport.SeedArtist(t, store, "Daft Punk")
	album := testsupport.SeedAlbum(t, store, artist.ID, "Discovery", 2001)
	// Artist was previously matched to a stale ID.
	if err := store.UpdateMatchedFields(ctx, library.ProviderDeezer, library.KindArtist, artist.ID, "999", nil); err != nil {
		t.Fatalf("seed artist match: %v", err)
	}

	item, err := worker.nextItem(ctx)
	if err != nil || item == nil || item.Kind != library.KindAlbum {
		t.Fatalf("nextItem = %+v, %v", item, err)
	}
	if item.ParentProviderID != "999" {
		t.Fatalf("item parent id = %q", item.ParentProviderID)
	}
	worker.processItem(ctx, worker.logger, item)

	gotArtist, err := store.GetArtist(ctx, artist.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if gotArtist.Matches[library.ProviderDeezer].ProviderID != "27" {
		t.Fatalf("parent id = %q, want corrected 27", gotArtist.Matches[library.ProviderDeezer].ProviderID)
	}
	gotAlbum, err := store.GetAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetAlbum: %v", err)
	}
	if gotAlbum.Matches[library.ProviderDeezer].ProviderID != "302127" {
		t.Fatalf("album id = %q", gotAlbum.Matches[library.ProviderDeezer].ProviderID)
	}
}

func TestWorkerTransientFailureMarksError(t *testing.T) {
	source := newStubSource()
	source.searchErr = providers.Wrap(providers.ErrTransient, "deezer", "search artist", "status 503", nil)
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := testsupport.SeedArtist(t, store, "Portishead")
	item, err := worker.nextItem(ctx)
	if err != nil || item == nil {
		t.Fatalf("nextItem = %+v, %v", item, err)
	}
	worker.processItem(ctx, worker.logger, item)

	got, err := store.GetArtist(ctx, artist.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	if got.Matches[library.ProviderDeezer].Status != library.StatusError {
		t.Fatalf("status = %q", got.Matches[library.ProviderDeezer].Status)
	}
	if worker.Snapshot().Stats.Errors != 1 {
		t.Fatalf("stats = %+v", worker.Snapshot().Stats)
	}
}

// validatingStub layers an ID namespace check over stubSource.
type validatingStub struct {
	*stubSource
}

func (v *validatingStub) ValidID(id string) bool {
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return id != ""
}

func TestWorkerRejectsInvalidCandidateID(t *testing.T) {
	inner := newStubSource()
	inner.name = "itunes"
	inner.artists["Daft Punk"] = &providers.Candidate{ID: "056e4f3e-uuid", Name: "Daft Punk"}
	source := &validatingStub{stubSource: inner}
	worker, store := newTestWorker(t, source)
	ctx := context.Background()

	artist := testsupport.SeedArtist(t, store, "Daft Punk")
	item, err := worker.nextItem(ctx)
	if err != nil || item == nil {
		t.Fatalf("nextItem = %+v, %v", item, err)
	}
	worker.processItem(ctx, worker.logger, item)

	got, err := store.GetArtist(ctx, artist.ID)
	if err != nil {
		t.Fatalf("GetArtist: %v", err)
	}
	info := got.Matches[library.ProviderITunes]
	if info.Status != library.StatusError {
		t.Fatalf("status = %q, want error", info.Status)
	}
	if info.ProviderID != "" {
		t.Fatalf("contaminated id must never be stored, got %q", info.ProviderID)
	}
}

func TestWorkerStartIsIdempotent(t *testing.T) {
	source := newStubSource()
	worker, _ := newTestWorker(t, source)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx) // logged no-op
	if !worker.Running() {
		t.Fatal("worker should be running")
	}
	worker.Stop()
	if worker.Running() {
		t.Fatal("worker should have stopped")
	}
	// Stopping again is harmless.
	worker.Stop()
}

func TestWorkerPauseBlocksSelection(t *testing.T) {
	source := newStubSource()
	source.artists["Daft Punk"] = &providers.Candidate{ID: "27", Name: "Daft Punk"}
	worker, store := newTestWorker(t, source)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Pause()
	worker.Start(ctx)
	testsupport.SeedArtist(t, store, "Daft Punk")

	// Paused worker must not touch the backlog.
	time.Sleep(100 * time.Millisecond)
	if !worker.Snapshot().Paused {
		t.Fatal("snapshot should report paused")
	}
	worker.Stop()
	if source.artistCalls != 0 {
		t.Fatalf("paused worker made %d searches", source.artistCalls)
	}
}
