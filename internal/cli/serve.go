package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohmanhakim/title-fetcher/internal/httpapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the title fetching HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go runCacheJanitor(ctx, a.cache, cfg.CacheTTL(), logger)

		gin.SetMode(gin.ReleaseMode)
		handler := httpapi.NewHTTPHandler(a.orchestrator, logger)
		srv := &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           httpapi.NewRouter(handler, logger, a.registry),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errChan := make(chan error, 1)
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", cfg.ListenAddr()))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			logger.Error("Server error", zap.Error(err))
			return err
		case <-ctx.Done():
			logger.Info("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (default :8080)")
}
