package convert

import (
	"strings"

	"github.com/matzehuels/svg2png/pkg/errors"
)

// Mode selects how the PNG is delivered.
type Mode string

const (
	// ModeDownload saves the PNG through a raster.Saver.
	ModeDownload Mode = "download"

	// ModeDataURI returns the PNG as a Base64 data URI.
	ModeDataURI Mode = "data-uri"
)

// Modes lists the valid modes.
var Modes = []Mode{ModeDownload, ModeDataURI}

// ParseMode parses a mode name. "base64" is accepted as an alias of data-uri.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "download", "file", "":
		return ModeDownload, nil
	case "data-uri", "datauri", "base64":
		return ModeDataURI, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown mode %q (must be download or data-uri)", s)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDownload || m == ModeDataURI
}

func (m Mode) String() string {
	return string(m)
}
