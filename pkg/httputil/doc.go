// Package httputil fetches remote SVG documents for intake.
//
// # Overview
//
//   - [Fetcher]: GET with a size limit, retries and an optional cache
//   - [Cache]: file-based cache of fetched bodies
//   - [Retry]: retry with exponential backoff
//
// # Caching
//
// [Cache] stores fetched bodies under ~/.cache/svg2png/http/ with a TTL, so
// converting the same URL repeatedly does not hit the network. Once an entry
// is stale it is revalidated with its ETag or Last-Modified value, and a 304
// renews it without a download:
//
//	c, err := httputil.NewCache("", time.Hour)
//	f := httputil.NewFetcher(c)
//	body, err := f.Fetch(ctx, "https://example.com/logo.svg")
//
// # Retry
//
// Network errors, 5xx responses and 429 responses are retried up to three
// times with a doubling delay, waiting longer when the server sends
// Retry-After. Other 4xx responses fail immediately.
package httputil
