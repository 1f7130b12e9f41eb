package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/pkg/buildinfo"
	"github.com/matzehuels/svg2png/pkg/cache"
	"github.com/matzehuels/svg2png/pkg/config"
	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/dispatch"
	"github.com/matzehuels/svg2png/pkg/httputil"
	"github.com/matzehuels/svg2png/pkg/intake"
	"github.com/matzehuels/svg2png/pkg/observability"
	"github.com/matzehuels/svg2png/pkg/raster"
	"github.com/matzehuels/svg2png/pkg/session"
	"github.com/matzehuels/svg2png/pkg/svgdoc"
)

const (
	// appName is the application name used for directories and display.
	appName = "svg2png"

	// httpCacheTTL is how long fetched remote SVGs are reused.
	httpCacheTTL = time.Hour
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// Main runs the command line in args and returns the process exit code:
// 130 after an interrupt, 1 for any other failure.
func Main(ctx context.Context, args []string, stderr io.Writer) int {
	c := New(stderr, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(stderr, err)
	return 1
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "svg2png converts SVG files to PNG images",
		Long:          `svg2png converts SVG files to PNG, either as a file download or as a Base64 data URI you can paste into HTML or CSS. It runs as a CLI or serves a small web page.`,
		Version:       buildinfo.Current(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.Logger.GetLevel() <= log.DebugLevel {
				hooks := newLogHooks(c.Logger)
				observability.SetConvertHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log conversion, cache and HTTP events")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/svg2png/config.toml)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.downloadCommand())
	root.AddCommand(c.base64Command())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.enginesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Component Factories
// =============================================================================

// engineOpts are the rasterization flags shared by several commands.
type engineOpts struct {
	engine  string
	browser bool
	noCache bool
}

func (o *engineOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.engine, "engine", "", "rasterization engine: auto, oksvg, rsvg-convert, inkscape, browser")
	cmd.Flags().BoolVar(&o.browser, "browser", false, "enable the headless Chromium engine (downloads a browser on first use)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the PNG cache")
}

// pipeline bundles the components a conversion command needs.
type pipeline struct {
	doc          *svgdoc.Document
	chain        *raster.Chain
	cache        cache.Cache
	orchestrator *convert.Orchestrator
}

func (p *pipeline) Close() error {
	p.chain.Close()
	p.cache.Close()
	return p.doc.Close()
}

// newPipeline wires engines, cache, staging document and orchestrator from
// config with flag overrides.
func (c *CLI) newPipeline(ctx context.Context, cfg *config.Config, opts engineOpts) (*pipeline, error) {
	name := cfg.Raster.Engine
	if opts.engine != "" {
		name = opts.engine
	}
	chain, err := raster.DefaultChain(name, cfg.Raster.Browser || opts.browser || name == raster.EngineBrowser)
	if err != nil {
		return nil, err
	}

	artifacts, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		artifacts = cache.NewNullCache()
	}

	doc, err := svgdoc.NewDocument(cfg.Raster.StagingDir)
	if err != nil {
		chain.Close()
		artifacts.Close()
		return nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
	}
	engine := raster.NewCachedEngine(chain, artifacts, keyer)

	orch := convert.NewOrchestrator(raster.NewRasterizer(engine), doc, c.Logger)
	orch.Scale = cfg.Convert.Scale
	orch.Timeout = cfg.Convert.Timeout.Duration

	return &pipeline{doc: doc, chain: chain, cache: artifacts, orchestrator: orch}, nil
}

// newCache opens the artifact cache selected by config.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = filepath.Join(d, "png")
	}
	return cache.NewFileCache(dir)
}

// newStore opens the session store selected by config.
func newStore(ctx context.Context, cfg *config.Config) (session.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Session.Backend {
	case config.BackendRedis:
		s, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendMongo:
		s, err := session.NewMongoStore(ctx, session.MongoConfig{
			URI:      cfg.Session.MongoURI,
			Database: cfg.Session.MongoDatabase,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return s.Close(context.Background()) }, nil
	case config.BackendFile:
		s, err := session.NewFileStore(cfg.Session.Dir)
		return s, noop, err
	}
	return session.NewMemoryStore(), noop, nil
}

// cliSession opens the store holding the CLI's single selection and returns
// the session ID to use. A memory backend makes no sense across invocations,
// so it is promoted to the file store.
func cliSession(ctx context.Context, cfg *config.Config) (session.Store, string, func() error, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis, config.BackendMongo:
		store, closer, err := newStore(ctx, cfg)
		return store, session.CLIID, closer, err
	}
	cs, err := session.NewCLIStoreAt(cfg.Session.Dir)
	if err != nil {
		return nil, "", nil, err
	}
	return cs, cs.ID(), func() error { return nil }, nil
}

// newLoader creates an intake loader that can also fetch URLs.
func (c *CLI) newLoader(cfg *config.Config, store session.Store) *intake.Loader {
	l := intake.NewLoader(store, c.Logger)
	l.MaxBytes = cfg.Convert.MaxFileBytes
	l.TTL = cfg.Session.TTL.Duration

	var httpCache *httputil.Cache
	if dir, err := cacheDir(); err == nil {
		httpCache, _ = httputil.NewCache(filepath.Join(dir, "http"), httpCacheTTL)
	}
	l.Fetcher = httputil.NewFetcher(httpCache)
	return l
}

// newDispatcher binds the two actions to store and orchestrator.
func (c *CLI) newDispatcher(store session.Store, orch *convert.Orchestrator) *dispatch.Dispatcher {
	return dispatch.New(store, orch, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/svg2png/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
