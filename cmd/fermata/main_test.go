package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"fermata/internal/enrich"
	"fermata/internal/library"
	"fermata/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[providers.musicbrainz]") {
		t.Fatalf("sample config missing provider section:\n%s", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestWorkerState(t *testing.T) {
	cases := []struct {
		status enrich.WorkerStatus
		want   string
	}{
		{enrich.WorkerStatus{Running: false}, "stopped"},
		{enrich.WorkerStatus{Running: true, Paused: true}, "paused"},
		{enrich.WorkerStatus{Running: true, Idle: true}, "idle"},
		{enrich.WorkerStatus{Running: true}, "running"},
	}
	for _, tc := range cases {
		if got := workerState(tc.status); got != tc.want {
			t.Errorf("workerState(%+v) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	progress := map[library.Kind]library.Progress{
		library.KindArtist: {Matched: 2, Total: 3},
		library.KindTrack:  {Matched: 0, Total: 10},
	}
	got := formatProgress(progress)
	want := "artist 2/3, track 0/10"
	if got != want {
		t.Fatalf("formatProgress = %q, want %q", got, want)
	}
	if formatProgress(nil) != "-" {
		t.Fatal("empty progress should render as dash")
	}
}

func TestFormatCurrent(t *testing.T) {
	album := &library.WorkItem{Kind: library.KindAlbum, Name: "OK Computer", ArtistName: "Radiohead"}
	if got := formatCurrent(album); got != "album: OK Computer (Radiohead)" {
		t.Fatalf("formatCurrent(album) = %q", got)
	}
	artist := &library.WorkItem{Kind: library.KindArtist, Name: "Radiohead", ArtistName: "Radiohead"}
	if got := formatCurrent(artist); got != "artist: Radiohead" {
		t.Fatalf("formatCurrent(artist) = %q", got)
	}
	if formatCurrent(nil) != "-" {
		t.Fatal("nil item should render as dash")
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := parseID("0"); err == nil {
		t.Fatal("expected error for zero id")
	}
	id, err := parseID(" 42 ")
	if err != nil || id != 42 {
		t.Fatalf("parseID(\" 42 \") = %d, %v", id, err)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(251); got != "4:11" {
		t.Fatalf("formatDuration(251) = %q", got)
	}
	if formatDuration(0) != "-" {
		t.Fatal("zero duration should render as dash")
	}
}

func TestSummarizeMatches(t *testing.T) {
	matches := map[library.Provider]library.MatchInfo{
		library.ProviderDeezer:      {Status: library.StatusMatched, ProviderID: "27"},
		library.ProviderMusicBrainz: {Status: library.StatusNotFound},
	}
	got := summarizeMatches(matches)
	if got != "musicbrainz:not_found deezer:matched" {
		t.Fatalf("summarizeMatches = %q", got)
	}
	if summarizeMatches(nil) != "-" {
		t.Fatal("no matches should render as dash")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{
		{title: "ID", numeric: true},
		{title: "Name"},
		{title: "Matches"},
	}, [][]string{
		{"1", "Radiohead", "deezer:matched"},
		{"2", "Boards of Canada"},
	})

	for _, want := range []string{"ID", "Name", "Matches", "Radiohead", "Boards of Canada"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in rendered table:\n%s", want, out)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) < 5 {
		t.Fatalf("expected bordered table with header and two rows:\n%s", out)
	}
}

func TestRenderTableEmptyColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestLockDaemonRefusedWhileHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	held := flock.New(cfg.LockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("acquire competing lock: %v", err)
	}
	defer held.Unlock()

	if _, err := lockDaemon(cfg); err == nil {
		t.Fatal("expected refusal while daemon lock is held")
	}
}

func TestLockDaemonAcquiresAndReleases(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	release, err := lockDaemon(cfg)
	if err != nil {
		t.Fatalf("lockDaemon: %v", err)
	}
	release()

	release, err = lockDaemon(cfg)
	if err != nil {
		t.Fatalf("lockDaemon after release: %v", err)
	}
	release()
}
