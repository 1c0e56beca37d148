package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/poegate/poegate"
	"github.com/poegate/poegate/config"
	"github.com/poegate/poegate/httpapi"
	"github.com/poegate/poegate/poe"
	"github.com/poegate/poegate/session"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
		if cfg.Debug && !debug {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		log := slog.Default()

		provider := poe.New(cfg.PoeAPIKey, poe.WithTimeout(cfg.Timeout()))
		store := session.NewStore(cfg.SessionExpiry(), session.WithLogger(log))
		client := poegate.NewClient(provider,
			poegate.WithClaudeCompatible(cfg.ClaudeCompatible),
			poegate.WithMaxFileSize(cfg.MaxFileSizeMB),
			poegate.WithLogger(log),
		)
		if cfg.ClaudeCompatible {
			log.Info("claude compatibility mode enabled")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go session.NewSweeper(store, session.DefaultSweepInterval).Run(ctx)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: httpapi.New(client, store, cfg, log).Handler(),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", "addr", cfg.ListenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
