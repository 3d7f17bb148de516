package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diewo77/kinz/auth"
	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/policy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and keep the remote mirror in sync",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("serve")
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Sessions of users removed since they signed in are rejected.
	auth.SetUserVerifier(func(_ context.Context, uid string) bool {
		_, err := rt.store.User(uid)
		return err == nil
	})

	if rt.syncer != nil {
		go func() {
			outcomes, err := rt.syncer.Run(ctx)
			if err != nil {
				log.Error().Err(err).Msg("remote subscriptions failed")
			}
			logOutcomes(outcomes)
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(policy.NewRouterConfig(rt.store, rt.syncerOrNil())),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Bool("remote", cfg.Remote.Enabled).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
