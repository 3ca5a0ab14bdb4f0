// Package clients holds the HTTP clients for the collaborator services the
// aggregation endpoints depend on. Every call forwards the caller's
// access-token cookie and maps non-success responses to an UpstreamError so
// failures are never mistaken for empty results.
package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/apierrs"
	"github.com/samuelvnimwegen/DistributedSystemsAPI/internal/auth"
)

const requestTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// doGet performs an authenticated GET and decodes a 200 response into out.
func doGet(ctx context.Context, client *http.Client, service, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})

	resp, err := client.Do(req)
	if err != nil {
		return apierrs.Upstream(service, 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apierrs.Upstream(service, resp.StatusCode, readErrorMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apierrs.Upstream(service, resp.StatusCode, "invalid response body: "+err.Error())
	}
	return nil
}

// readErrorMessage extracts the error field of a JSON error body, falling
// back to the raw body.
func readErrorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(raw)
}
