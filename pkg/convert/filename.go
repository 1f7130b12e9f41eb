package convert

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/svg2png/pkg/errors"
)

// DefaultFilename is the download name used by both UI actions.
const DefaultFilename = "converted-image.png"

// NormalizeFilename turns a user-typed output name (the CLI -o flag) into a
// download name: blank means DefaultFilename, and a missing .png extension
// is appended. The result is validated as a plain basename. The orchestrator
// never calls it; savers receive the request's filename as given.
func NormalizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFilename, nil
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}
	if err := errors.ValidateFilename(name); err != nil {
		return "", err
	}
	return name, nil
}

// FilenameFor derives a download name from a source file name:
// "icons/logo.svg" becomes "logo.png".
func FilenameFor(source string) string {
	base := filepath.Base(strings.TrimSpace(source))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return DefaultFilename
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
