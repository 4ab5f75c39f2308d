package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DoJSON executes a prepared request and decodes the JSON body into out,
// classifying failures with the sentinel taxonomy: transport errors and
// non-2xx statuses are transient, a 429 is rate limited. Callers remain
// responsible for pacing before the call.
func DoJSON(client *http.Client, req *http.Request, provider, operation string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return Wrap(ErrTransient, provider, operation, "execute request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Wrap(ErrRateLimited, provider, operation, "provider throttled the request", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Wrap(ErrTransient, provider, operation, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Wrap(ErrTransient, provider, operation, "decode response", err)
	}
	return nil
}
