package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Saver hands a finished PNG to the user under filename.
// For the CLI that is a file on disk; for the HTTP server it is an
// attachment response.
type Saver interface {
	Save(ctx context.Context, filename string, png []byte) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, filename string, png []byte) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, filename string, png []byte) error {
	return f(ctx, filename, png)
}

// DirSaver writes PNGs into Dir. An empty Dir means the working directory.
type DirSaver struct {
	Dir string
}

// Save writes png to Dir/filename atomically (temp file, then rename).
// Only the base name of filename is used.
func (s DirSaver) Save(ctx context.Context, filename string, png []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("save: no file name in %q", filename)
	}
	target := filepath.Join(dir, base)
	tmp, err := os.CreateTemp(dir, ".svg2png-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
