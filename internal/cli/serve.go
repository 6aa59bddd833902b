package cli

import (
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/prooftower/pkg/notify"
	"github.com/matzehuels/prooftower/pkg/observability"
	"github.com/matzehuels/prooftower/pkg/server"
	"github.com/matzehuels/prooftower/pkg/session"
	"github.com/matzehuels/prooftower/pkg/viewer"
	"github.com/matzehuels/prooftower/pkg/watch"
)

// sessionSweep is how often expired views are dropped.
const sessionSweep = time.Minute

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	root      string
	watch     string
	notifyURL string
	noMetrics bool
}

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve proof and model views over HTTP",
		Long: `Serve proof and model views to a browser front-end.

Uploads go to POST /api/proofs and POST /api/models. With --root, views can
also be opened from files below that directory (?path=). --watch does the
same and also reopens views whenever their files change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.root, "root", "", "directory views may be opened from")
	cmd.Flags().StringVarP(&opts.watch, "watch", "w", "", "like --root, and reopen views when their files change")
	cmd.Flags().StringVar(&opts.notifyURL, "notify-url", "", "websocket endpoint for highlight and repair requests")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	notifyURL := cfg.Server.NotifyURL
	if opts.notifyURL != "" {
		notifyURL = opts.notifyURL
	}
	root := opts.root
	if opts.watch != "" {
		if root != "" && root != opts.watch {
			printWarning("--watch %s replaces --root %s", opts.watch, root)
		}
		root = opts.watch
	}
	if root != "" {
		// Watch events and resolved uploads must name files the same way.
		if root, err = filepath.Abs(root); err != nil {
			return err
		}
	}

	store := session.NewMemoryStore()
	sopts := server.Options{
		Store:      store,
		SessionTTL: cfg.Server.SessionTTL.Duration,
		View: viewer.Options{
			Layout:   cfg.LayoutOptions(),
			Magic:    cfg.Magic.Enabled,
			Duration: cfg.TransitionDuration(),
		},
		Root:   root,
		Logger: c.Logger,
	}

	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetPipelineHooks(hooks)
		observability.SetViewHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		observability.SetNotifyHooks(hooks)
		defer observability.Reset()
		sopts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	if notifyURL != "" {
		client, err := notify.New(notifyURL, notify.Options{Logger: c.Logger})
		if err != nil {
			return err
		}
		defer client.Close()
		sopts.Notifier = client
	}

	srv := server.New(sopts)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.RunCleanup(ctx, sessionSweep)
		return nil
	})
	if opts.watch != "" {
		w, err := watch.New([]string{root}, func(paths []string) {
			srv.Reload(ctx, paths)
		}, watch.Options{Match: isViewFile, Logger: c.Logger})
		if err != nil {
			return err
		}
		defer w.Close()
		g.Go(func() error {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		printSuccess("Serving on %s", addr)
		if root != "" {
			printDetail("Root: %s", root)
		}
		return srv.ListenAndServe(ctx, addr)
	})

	return g.Wait()
}

// isViewFile accepts traces, models and mappers.
func isViewFile(path string) bool {
	switch filepath.Ext(path) {
	case ".xml", ".graphml", ".json":
		return true
	}
	return false
}
