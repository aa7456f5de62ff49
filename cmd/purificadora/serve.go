package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/purificadora/inventario/internal/api"
	"github.com/purificadora/inventario/internal/files"
	"github.com/purificadora/inventario/internal/storage"
	"github.com/purificadora/inventario/internal/web"
)

const shutdownTimeout = 5 * time.Second

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, st, err := a.openDatabase()
	if err != nil {
		a.log.Errorw("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	// The server still starts when initialization fails; requests will
	// surface whatever is missing.
	if err := a.bootstrap(ctx, database, st); err != nil {
		a.log.Errorw("startup initialization incomplete", "error", err)
	}

	secret := a.cfg.SessionSecret
	if secret == "" {
		if secret, err = st.SessionSecret(ctx); err != nil {
			a.log.Errorw("failed to load session secret", "error", err)
			return err
		}
	}

	disk, err := storage.NewDisk(a.cfg.UploadDir)
	if err != nil {
		return err
	}
	registry := files.NewRegistry(st, disk, a.log)

	router := api.NewRouter(st, registry, a.log, api.Options{
		SessionSecret:  secret,
		SessionTTL:     a.cfg.SessionTTL,
		SecureCookies:  a.cfg.SecureCookies,
		AdminCode:      a.cfg.AdminCode,
		MaxUploadBytes: a.cfg.MaxUploadBytes(),
		AllowedOrigins: a.cfg.AllowedOrigins,
		Development:    a.cfg.Development(),
	})
	webRouter, err := web.NewRouter(st, disk, secret, a.log)
	if err != nil {
		a.log.Errorw("failed to set up web router", "error", err)
		return fmt.Errorf("setting up web router: %w", err)
	}
	// API routes take priority, web routes handle the rest.
	router.Mount("/", webRouter)

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Infow("server started", "addr", a.cfg.Addr, "uploads", disk.Dir(), "env", a.cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Infow("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Errorw("server forced to shutdown", "error", err)
			return err
		}
		return nil
	})

	err = g.Wait()
	a.log.Infow("server stopped, closing database")
	return err
}
