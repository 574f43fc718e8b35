package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"ledger/internal/platform/config"
	"ledger/internal/platform/httpserver"
	"ledger/internal/platform/logger"
)

// main wires configuration, infrastructure, and the ledger services, then
// runs the ops server and background scheduler until a signal arrives.
func main() {
	cfg, err := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("ledger stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close(log)

	a, err := buildApp(ctx, cfg, in, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpserver.New(cfg.Server.Addr, httpserver.Router(in.Checks()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting ledger ops server", "addr", cfg.Server.Addr, "backend", in.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.scheduler.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
