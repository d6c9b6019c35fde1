package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmcleod/adminshell/api"
	"github.com/jmcleod/adminshell/config"
	"github.com/jmcleod/adminshell/directory"
	"github.com/jmcleod/adminshell/route"
	"github.com/jmcleod/adminshell/web"
)

func newServerCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the admin shell server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cmd, cfg)
		},
	}
	cmd.Flags().String("listen", ":8080", "Address to listen on")
	cmd.Flags().String("tls-cert", "", "Path to TLS certificate file")
	cmd.Flags().String("tls-key", "", "Path to TLS key file")
	cmd.Flags().String("auth-mode", config.AuthSimulated, "Credential check (simulated or accounts)")
	bindFlags(v, cmd.Flags(), map[string]string{
		"listen":    config.KeyListen,
		"tls-cert":  config.KeyTLSCert,
		"tls-key":   config.KeyTLSKey,
		"auth-mode": config.KeyAuthMode,
	})
	return cmd
}

func runServer(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	app, err := wireApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer app.Close()
	logger := app.logger

	// The route table is fixed at startup; a bad table refuses to serve.
	table := route.DefaultTable()

	gw, err := app.gateway()
	if err != nil {
		return fmt.Errorf("failed to set up %s authentication: %w", cfg.AuthMode, err)
	}

	dir := app.directory()
	if err := seedDirectory(ctx, dir, cfg, logger); err != nil {
		return err
	}

	renderer, err := web.New(web.WithLocale(cfg.Locale))
	if err != nil {
		return err
	}

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithIdleTimeout(cfg.IdleTimeout),
	}
	if cfg.CookieSecret != "" {
		opts = append(opts, api.WithCookieSecret([]byte(cfg.CookieSecret)))
	}
	a, err := api.New(table, gw, dir, renderer, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           serverHandler(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if cfg.TLSEnabled() {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("failed to load TLS key pair: %w", err)
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan error, 1)
	go func() {
		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("server failed: %w", err)
			return
		}
		done <- nil
	}()

	printBanner(cmd.OutOrStdout())
	logger.Info("server started",
		slog.String("listen", cfg.Listen),
		slog.Bool("tls", cfg.TLSEnabled()),
		slog.String("storage", cfg.Storage),
		slog.String("auth_mode", cfg.AuthMode),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-done:
		return err
	}
}

// serverHandler wraps the shell with request logging, panic recovery and
// the health probe.
func serverHandler(a *api.API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Mount("/", a.Handler())
	return r
}

// seedDirectory loads the configured seed file, or the demo data into an
// empty directory when seed.demo is set.
func seedDirectory(ctx context.Context, dir *directory.Directory, cfg config.Config, logger *slog.Logger) error {
	if cfg.SeedFile != "" {
		seed, err := directory.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := dir.Apply(ctx, seed); err != nil {
			return fmt.Errorf("failed to apply seed file: %w", err)
		}
		logger.Info("directory seeded", slog.String("file", cfg.SeedFile), slog.Int("users", len(seed.Users)))
		return nil
	}
	if !cfg.SeedDemo {
		return nil
	}
	empty, err := dir.Empty()
	if err != nil {
		return fmt.Errorf("failed to inspect directory: %w", err)
	}
	if !empty {
		return nil
	}
	if err := dir.Apply(ctx, directory.DemoSeed()); err != nil {
		return fmt.Errorf("failed to apply demo data: %w", err)
	}
	logger.Info("directory seeded with demo data")
	return nil
}
