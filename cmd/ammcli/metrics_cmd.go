package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// newServeMetricsCmd mirrors chidi150c-coinbase's main.go: an
// http.ServeMux with a health check and promhttp.Handler() on /metrics,
// served in the foreground until SIGINT/SIGTERM. pkg/engine registers its
// collectors in its own package init(), so importing it here is enough to
// make them visible.
func newServeMetricsCmd(opts *globalOpts) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics for commands processed by this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok\n"))
			})
			mux.Handle("/metrics", promhttp.Handler())

			srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.ErrOrStderr(), "serving metrics on :%d/metrics\n", port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
				defer shutdownCancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 9464, "metrics listen port")
	return cmd
}
