package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flexdock/internal/metrics"
	"github.com/matzehuels/flexdock/internal/server"
	"github.com/matzehuels/flexdock/internal/watch"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr         string
	watch        bool
	width        int
	height       int
	direction    string
	templatePath string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a layout session over HTTP",
		Long: `Serve a layout session over HTTP.

The shell reports viewport sizes with POST /viewport and layout edits with
POST /edit; GET /snapshot returns the layout to draw. With --watch the
template file is reloaded whenever it changes on disk. Prometheus metrics
are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				opts.watch = c.cfg.Server.Watch
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the template file when it changes")
	cmd.Flags().IntVar(&opts.width, "width", 1700, "initial viewport width")
	cmd.Flags().IntVar(&opts.height, "height", defaultViewportHeight, "initial viewport height")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "narrowing direction: merge, stack (default from config)")
	cmd.Flags().StringVarP(&opts.templatePath, "template", "t", "", "template file (default from config, else built-in)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.New(reg).Install()

	sess, err := c.newSession(opts.templatePath, opts.direction)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.Start(ctx, opts.width, opts.height); err != nil {
		return err
	}

	var w *watch.Watcher
	if opts.watch {
		if w, err = c.newWatcher(sess, opts.templatePath); err != nil {
			return err
		}
	}

	rc := c.newCache(false)
	defer rc.Close()
	srv := server.New(sess, server.Options{Logger: c.Logger, Gatherer: reg, Cache: rc})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, opts.addr)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}

// newWatcher watches the session's template file. The built-in template
// has no file to watch.
func (c *CLI) newWatcher(sess *session.Session, path string) (*watch.Watcher, error) {
	if path == "" {
		path = c.cfg.Session.Template
	}
	if path == "" {
		return nil, fmt.Errorf("--watch needs a template file (--template or session.template in the config)")
	}
	return watch.New(path, func(t *layout.Tree) error {
		return sess.ReloadTemplate(context.Background(), t, 0)
	}, c.Logger)
}
