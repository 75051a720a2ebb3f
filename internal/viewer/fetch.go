package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// fetchTimeout bounds one snapshot request.
const fetchTimeout = 10 * time.Second

// For testing: allow overriding the HTTP client.
var httpClient = &http.Client{Timeout: fetchTimeout}

// fetchResult is one poll's outcome.
type fetchResult struct {
	Snapshot    syncproto.Snapshot
	ETag        string
	NotModified bool
}

// fetchSnapshot GETs the snapshot at url. A non-empty etag is sent as
// If-None-Match; a 304 reply comes back as NotModified.
func fetchSnapshot(ctx context.Context, url, etag, userAgent string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fetchResult{}, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		return fetchResult{ETag: etag, NotModified: true}, nil
	default:
		return fetchResult{}, fmt.Errorf("sync endpoint returned %d", resp.StatusCode)
	}

	var snap syncproto.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fetchResult{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return fetchResult{Snapshot: snap, ETag: resp.Header.Get("ETag")}, nil
}
