package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the PNG and remote SVG caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached PNG renders and fetched SVGs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.BackendRedis {
				markWarn.printf("Redis cache entries expire on their own and are not cleared")
			}

			dirs, err := cacheDirs(cfg)
			if err != nil {
				return err
			}

			total := 0
			for _, dir := range dirs {
				n, err := clearDir(dir)
				if err != nil {
					return err
				}
				total += n
			}

			if total == 0 {
				markInfo.printf("Cache is empty")
				return nil
			}
			markOK.printf("Cleared %d cached entries", total)
			for _, dir := range dirs {
				printDetail("Directory: %s", dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dirs, err := cacheDirs(cfg)
			if err != nil {
				return err
			}
			for _, dir := range dirs {
				fmt.Println(dir)
			}
			return nil
		},
	}
}

// cacheDirs returns the cache root plus cfg.Cache.Dir when it lies outside it.
func cacheDirs(cfg *config.Config) ([]string, error) {
	root, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	dirs := []string{root}
	if d := cfg.Cache.Dir; d != "" && !within(root, d) {
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// clearDir empties dir, keeping dir itself, and returns how many files went.
// Unreadable entries are skipped. A missing dir is not an error.
func clearDir(dir string) (int, error) {
	var files, subdirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil, path == dir:
		case d.IsDir():
			subdirs = append(subdirs, path)
		default:
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if os.Remove(f) == nil {
			removed++
		}
	}
	// WalkDir visits parents first, so reverse order removes children first.
	for i := len(subdirs) - 1; i >= 0; i-- {
		os.Remove(subdirs[i])
	}
	return removed, nil
}
