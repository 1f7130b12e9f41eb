package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] together with an entry older than
// the TTL. The entry's validators can still be used to revalidate it.
var ErrExpired = errors.New("cache entry expired")

// Cache keeps fetched bodies as JSON files named by the SHA-256 of the key.
type Cache struct {
	dir string
	ttl time.Duration
}

// Entry is one cached response with the validators needed to revalidate it.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Body         []byte    `json:"body"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// revalidatable reports whether a conditional request can be made for e.
func (e *Entry) revalidatable() bool {
	return e != nil && (e.ETag != "" || e.LastModified != "")
}

// NewCache creates a cache in dir with entries living ttl (zero: forever).
// An empty dir means ~/.cache/svg2png/http.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "svg2png", "http")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

func (c *Cache) Dir() string { return c.dir }

// Get looks up key:
//   - (entry, true, nil): fresh
//   - (nil, false, nil): absent or unreadable
//   - (entry, false, ErrExpired): stale
func (c *Cache) Get(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e Entry
	if json.Unmarshal(data, &e) != nil {
		return nil, false, nil
	}
	if c.ttl > 0 && time.Since(e.FetchedAt) > c.ttl {
		return &e, false, ErrExpired
	}
	return &e, true, nil
}

// Set stores e under key. A zero FetchedAt is stamped with the current time.
func (c *Cache) Set(key string, e *Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, ".fetch-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.keyPath(key))
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
