package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(log.ComponentApp, cfg)
	cli.EnsureSessionSecret(logger, cfg)

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", sl.Err(err))
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldBackend, cfg.DataBackend, sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", sl.Err(err))
		}
	}()

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL,
		session.WithCookieName(cfg.SessionCookie),
		session.WithSecureCookie(cfg.SessionSecureCookie))
	if err != nil {
		logger.Error("Failed to initialize sessions", sl.Err(err))
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Accounts:           services.NewAccountService(res.Users),
		Expenses:           services.NewExpenseService(res.Expenses, res.Publisher),
		Sessions:           sessions,
		Ready:              res.Ready,
		Logger:             logger,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", sl.Err(err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"events", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
