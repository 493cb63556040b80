package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/router"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand registers the serve cli command.
var ServeCommand = cli.Command{
	Name:   "serve",
	Usage:  "Starts the HTTP API",
	Action: serveAction,
}

func serveAction(ctx *cli.Context) error {
	s, err := setup(true)
	if err != nil {
		return err
	}
	defer s.close()

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: router.New(s.cfg, s.logger, s.store, s.sync, s.loader),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "error", err)
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
