package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// keyVersion is bumped whenever identical inputs may rasterize differently,
// which orphans every older artifact.
const keyVersion = 1

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// ArtifactKey returns the key for a PNG rendered from markup with the given hash.
	ArtifactKey(svgHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the rendering inputs that change the PNG bytes.
type ArtifactKeyOpts struct {
	Engine  string
	Scale   float64
	Quality float64
}

// DefaultKeyer produces unscoped keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the markup hash together with the options.
func (DefaultKeyer) ArtifactKey(svgHash string, opts ArtifactKeyOpts) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\x00%s\x00%s\x00%g\x00%g", keyVersion, svgHash, opts.Engine, opts.Scale, opts.Quality)
	return "artifact:" + hex.EncodeToString(h.Sum(nil))
}

// ScopedKeyer prefixes another keyer's keys so several deployments can
// share one Redis without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "svg2png:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(svgHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(svgHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
