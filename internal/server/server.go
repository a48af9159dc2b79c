// internal/server/server.go
//
// HTTP server helper with timeouts taken from config.
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// Zero values fall back to 10 s, 15 s, and 60 s respectively.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/config"
)

// New constructs an *http.Server from the HTTP config block.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       orDefault(cfg.ReadTimeout, 10*time.Second),
		ReadHeaderTimeout: orDefault(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout:      orDefault(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 60*time.Second),
	}
}

// Run serves until ctx ends, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zap.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
