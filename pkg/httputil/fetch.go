package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/svg2png/pkg/buildinfo"
)

// ErrTooLarge is returned when a response body exceeds Fetcher.MaxBytes.
var ErrTooLarge = errors.New("response too large")

// Fetcher downloads SVG documents over HTTP(S).
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // optional
	MaxBytes int64

	Attempts int
	Delay    time.Duration
}

// NewFetcher creates a fetcher with a 30s client timeout, a 10 MiB limit
// and three attempts starting at a one second delay. c may be nil.
func NewFetcher(c *Cache) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Cache:    c,
		MaxBytes: 10 << 20,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch returns the body at rawURL. A fresh cached copy is used as is; a
// stale one is revalidated with If-None-Match or If-Modified-Since.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, fmt.Errorf("not an http(s) URL: %q", rawURL)
	}

	key := "svg:" + rawURL
	var stale *Entry
	if f.Cache != nil {
		e, fresh, err := f.Cache.Get(key)
		if fresh {
			return e.Body, nil
		}
		if errors.Is(err, ErrExpired) {
			stale = e
		}
	}

	var entry *Entry
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		e, err := f.get(ctx, rawURL, stale)
		entry = e
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		_ = f.Cache.Set(key, entry)
	}
	return entry.Body, nil
}

// get performs one GET. With a revalidatable stale entry the request is
// conditional, and a 304 returns that entry re-stamped.
func (f *Fetcher) get(ctx context.Context, rawURL string, stale *Entry) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/svg+xml, text/xml;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if stale.revalidatable() {
		if stale.ETag != "" {
			req.Header.Set("If-None-Match", stale.ETag)
		}
		if stale.LastModified != "" {
			req.Header.Set("If-Modified-Since", stale.LastModified)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && stale.revalidatable():
		renewed := *stale
		renewed.FetchedAt = time.Now()
		return &renewed, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{
			Err:   fmt.Errorf("GET %s: %s", rawURL, resp.Status),
			After: retryAfter(resp.Header, time.Now()),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if int64(len(body)) > limit {
		return nil, ErrTooLarge
	}
	return &Entry{
		URL:          rawURL,
		ContentType:  resp.Header.Get("Content-Type"),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Body:         body,
		FetchedAt:    time.Now(),
	}, nil
}
