package providers

import (
	"errors"
	"fmt"
	"strings"

	"fermata/internal/library"
)

var (
	// ErrNoMatch marks a search that completed but produced no acceptable
	// candidate. Persisted as not_found with the long retry window.
	ErrNoMatch = errors.New("no match")
	// ErrTransient marks network trouble, timeouts, and provider 5xx
	// responses. Persisted as error with the short retry window.
	ErrTransient = errors.New("transient failure")
	// ErrRateLimited marks a 429 after the pacing gate already waited.
	ErrRateLimited = errors.New("rate limited")
	// ErrDataIntegrity marks a response the provider served successfully
	// but whose content cannot be trusted, e.g. an ID from the wrong
	// catalog namespace.
	ErrDataIntegrity = errors.New("data integrity")
	// ErrConfiguration marks a client that cannot operate at all, such as
	// a missing API key.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error carrying provider and operation context while tagging
// it with a marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, provider, operation, message string, err error) error {
	detail := buildDetail(provider, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a processing error to the terminal status a worker
// should persist for the item.
func FailureStatus(err error) library.MatchStatus {
	if errors.Is(err, ErrNoMatch) {
		return library.StatusNotFound
	}
	return library.StatusError
}

func buildDetail(provider, operation, message string) string {
	parts := make([]string, 0, 3)
	if provider = strings.TrimSpace(provider); provider != "" {
		parts = append(parts, provider)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "provider failure"
	}
	return strings.Join(parts, ": ")
}
