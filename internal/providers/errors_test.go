package providers

import (
	"errors"
	"testing"

	"fermata/internal/library"
)

func TestWrapPreservesMarker(t *testing.T) {
	underlying := errors.New("connection reset")
	err := Wrap(ErrTransient, "deezer", "search artist", "request failed", underlying)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient marker, got %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "itunes", "lookup", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want library.MatchStatus
	}{
		{"no match", Wrap(ErrNoMatch, "audiodb", "search artist", "below threshold", nil), library.StatusNotFound},
		{"transient", Wrap(ErrTransient, "deezer", "search album", "status 503", nil), library.StatusError},
		{"rate limited", Wrap(ErrRateLimited, "musicbrainz", "search", "", nil), library.StatusError},
		{"integrity", Wrap(ErrDataIntegrity, "itunes", "lookup", "non-numeric id", nil), library.StatusError},
		{"plain", errors.New("boom"), library.StatusError},
	}
	for _, tc := range cases {
		if got := FailureStatus(tc.err); got != tc.want {
			t.Errorf("%s: FailureStatus = %q, want %q", tc.name, got, tc.want)
		}
	}
}
