package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lectern-app/lectern/internal/domain"
)

// HTTPRemote pushes progress snapshots to an account-bound HTTP backend.
// It implements domain.RemoteStore. The backend owns merge semantics;
// this client only delivers records.
type HTTPRemote struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPRemote creates a remote client for the given endpoint. The token
// identifies the user session; without one there is no remote store to
// push to, so callers should not construct a remote at all.
func NewHTTPRemote(endpoint, token string) *HTTPRemote {
	return &HTTPRemote{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// pushPayload is the wire format for a progress push.
type pushPayload struct {
	Documents []domain.DocumentProgress `json:"documents"`
	Stats     domain.Stats              `json:"stats"`
	PushedAt  time.Time                 `json:"pushed_at"`
}

// Push delivers the given records. Any non-2xx response is an error; the
// syncer treats all errors as transient.
func (r *HTTPRemote) Push(ctx context.Context, docs []domain.DocumentProgress, stats domain.Stats) error {
	body, err := json.Marshal(pushPayload{
		Documents: docs,
		Stats:     stats,
		PushedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSyncUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: remote returned %s", domain.ErrSyncUnavailable, resp.Status)
	}
	return nil
}
