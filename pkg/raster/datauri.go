package raster

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MIMEType is the media type of every artifact produced by this package.
const MIMEType = "image/png"

const dataURIPrefix = "data:" + MIMEType + ";base64,"

// EncodeDataURI returns a "data:image/png;base64,..." URI for png.
// An empty input yields an empty string.
func EncodeDataURI(png []byte) string {
	if len(png) == 0 {
		return ""
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURI reverses EncodeDataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	payload, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a base64 PNG data URI")
	}
	return base64.StdEncoding.DecodeString(payload)
}
