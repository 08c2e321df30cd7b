package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/example/expense-tracker/internal/metrics"
)

// ErrMalformedResponse marks a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("realtime database: malformed response")

// ErrNotConfigured is returned when no database URL was configured.
var ErrNotConfigured = errors.New("realtime database: missing database URL")

// RemoteError is a non-2xx answer from the realtime database.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("realtime database %s: %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("realtime database %s: %d", e.Op, e.Status)
}

// Unauthorized reports whether the store rejected the ID token.
func (e *RemoteError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NetworkError means the request could not complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("realtime database %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RealtimeDatabase is a REST client for path-addressed JSON documents,
// authorized per request with the caller's ID token (the auth query parameter).
type RealtimeDatabase struct {
	baseURL    string
	httpClient *http.Client
}

// NewRealtimeDatabase creates a client for the database at baseURL,
// e.g. https://<project>-default-rtdb.firebaseio.com.
func NewRealtimeDatabase(baseURL string, timeout time.Duration) *RealtimeDatabase {
	return &RealtimeDatabase{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// userPath builds users/{uid}/{segments...}.json with every segment escaped.
func userPath(userID string, segments ...string) string {
	parts := []string{"users", url.PathEscape(userID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return "/" + strings.Join(parts, "/") + ".json"
}

// do issues one request. A nil in skips the body; a nil out discards the response.
func (d *RealtimeDatabase) do(ctx context.Context, op, method, path, idToken string, in, out interface{}) (err error) {
	if d.baseURL == "" {
		return ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		metrics.ObserveRemote("rtdb", op, time.Since(start), err != nil)
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(payload)
	}

	endpoint := d.baseURL + path + "?auth=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := d.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var er struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &er)
		return &RemoteError{Op: op, Status: res.StatusCode, Message: er.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "%s: %v", op, err)
	}
	return nil
}
