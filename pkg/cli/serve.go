package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 2 * time.Minute

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = deps.Config.AppPort
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, deps, fmt.Sprintf(":%d", port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (defaults to APP_PORT)")

	return cmd
}

func serve(ctx context.Context, deps *Dependencies, addr string) error {
	e := deps.App.Server()

	errs := make(chan error, 1)
	go func() {
		errs <- e.Start(addr)
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down | addr: %v", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// A recording still running is uploaded before the process exits
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warnf("cannot shut down server | error: %v", err)
	}
	return deps.App.Shutdown(shutdownCtx)
}
