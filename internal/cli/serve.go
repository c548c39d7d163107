package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/trickstertwo/xscope"
	"github.com/trickstertwo/xscope/logxconcern"
	"github.com/trickstertwo/xscope/metrics"
	"github.com/trickstertwo/xscope/xscopehttp"
)

// ServeOptions configures the admin server.
type ServeOptions struct {
	Addr       string
	ConfigFile string
}

func newServeCommand() *cobra.Command {
	var opts ServeOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve level administration under /admin and metrics under /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return Serve(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "configuration document for a dedicated concern (default: the process default concern)")
	return cmd
}

// ServeConcern picks the concern the server administers: a fresh one
// configured from opts.ConfigFile, or the process default.
func ServeConcern(ctx context.Context, opts ServeOptions) (xscope.Concern, error) {
	if opts.ConfigFile == "" {
		return xscope.ConcernFrom(ctx), nil
	}
	c := logxconcern.New("serve")
	if err := c.ConfigureFile(opts.ConfigFile); err != nil {
		return nil, err
	}
	return c, nil
}

// NewRouter mounts the level admin under /admin, scoped to c, and the
// registry's metrics under /metrics. Repository-backed concerns feed
// xscope_log_events_total.
func NewRouter(c xscope.Concern, reg *prometheus.Registry) (http.Handler, error) {
	obs, err := metrics.NewObserver(reg)
	if err != nil {
		return nil, err
	}
	if rc, ok := c.(logxconcern.RepositoryConcern); ok {
		obs.Attach(rc.Repository())
	}

	r := chi.NewRouter()
	r.Use(xscopehttp.Middleware(func(*http.Request) xscope.Concern { return c }))
	r.Mount("/admin", xscopehttp.NewLevelHandler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, nil
}

// Serve runs the admin server until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	c, err := ServeConcern(ctx, opts)
	if err != nil {
		return err
	}
	ctx = xscope.WithConcern(ctx, c)
	log := xscope.Named(ctx, "xscope/serve")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	h, err := NewRouter(c, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	log.Info().Str("addr", opts.Addr).Str("concern", xscope.TypeName(c)).Msg("admin server started")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
			return err
		}
		log.Info().Msg("admin server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("admin server failed")
		}
		return err
	}
}
