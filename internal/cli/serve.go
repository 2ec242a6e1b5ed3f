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

	"github.com/spf13/cobra"

	adapthttp "periodtracker/internal/adapter/http"
	"periodtracker/internal/app"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr   string
	WebDir string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and the web app",
		Long: `Serve the JSON API under /api and the single-page app from the web
directory. Clients can follow store changes on /api/events.

Examples:
  periodtracker serve
  periodtracker serve --addr :9000 --web ./web`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&opts.WebDir, "web", "", "web app directory (overrides server.web_dir)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	addr := opts.cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	webDir := opts.cfg.Server.WebDir
	if opts.WebDir != "" {
		webDir = opts.WebDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	days, closeStore, err := opts.openDayLog()
	if err != nil {
		return err
	}
	defer closeStore()
	days.Load(ctx)

	h := adapthttp.New(days, app.NewCalendarService(days), opts.logger, webDir).Handler()
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so open event streams return on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	opts.logger.Info("listening", "addr", addr, "storage", opts.cfg.Storage.Driver, "web_dir", webDir)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitFailure, "server failed", err)
	case <-ctx.Done():
	}

	opts.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	return nil
}
