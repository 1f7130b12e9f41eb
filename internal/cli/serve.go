package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2png/internal/server"
	"github.com/matzehuels/svg2png/pkg/session"
)

// cleanupInterval is how often expired sessions are purged while serving.
const cleanupInterval = 10 * time.Minute

// serveOpts holds flags for the serve command.
type serveOpts struct {
	engineOpts
	addr string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web converter",
		Long: `Serve a single page with a file input and two buttons: "Download PNG" saves
the selected SVG as converted-image.png, "Get Base64" shows a data URI link
and a preview image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.engineOpts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	p, err := c.newPipeline(ctx, cfg, opts.engineOpts)
	if err != nil {
		return err
	}
	defer p.Close()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	go purgeSessions(ctx, store, cleanupInterval)

	srv := server.New(server.Config{
		Store:        store,
		Loader:       c.newLoader(cfg, store),
		Dispatcher:   c.newDispatcher(store, p.orchestrator),
		Logger:       c.Logger,
		CookieName:   cfg.Server.CookieName,
		SessionTTL:   cfg.Session.TTL.Duration,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	})

	c.Logger.Info("engines ready", "engines", p.chain.AvailableNames(), "sessions", cfg.Session.Backend)
	return srv.ListenAndServe(ctx, addr)
}

// purgeSessions removes expired sessions every interval until ctx ends.
func purgeSessions(ctx context.Context, store session.Store, interval time.Duration) {
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}
