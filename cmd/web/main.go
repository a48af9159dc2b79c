// cmd/web/main.go
//
// coursehost – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Boot shared collaborators via internal/app (config, logger, DB,
//     course repository, host cache, resolver, session store).
//
//  2. Build the chi router (internal/routing):
//
//     • security headers             – every response
//     • /healthz, /metrics           – before tenant resolution
//     • session → tenant middleware  – per-request *tenant.Context
//     • ForceHTTPS / RejectExternal  – when enabled in config
//
//  3. Serve with config-driven timeouts until SIGINT or SIGTERM, then shut
//     down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yanizio/coursehost/internal/app"
	"github.com/yanizio/coursehost/internal/routing"
	"github.com/yanizio/coursehost/internal/server"
	"github.com/yanizio/coursehost/internal/session"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("coursehost: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Boot ────────────────────────────────────────────────────────
	//
	a, err := app.New(ctx, app.Options{Tee: runningInTTY(), Sessions: true})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config

	//
	// ── 2.  Router ──────────────────────────────────────────────────────
	//
	handler := routing.NewRouter(routing.Deps{
		Resolver: a.Resolver,
		Courses:  a.Courses,
		Sessions: a.Sessions,
		Cookie: session.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.TTL,
		},
		Health:         a.DB.PingContext,
		ForceHTTPS:     cfg.HTTP.ForceHTTPS,
		RejectExternal: cfg.Tenant.RejectExternal,
		Log:            a.Log,
	})

	//
	// ── 3.  Serve ───────────────────────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(cfg.HTTP, handler)); err != nil {
		a.Log.Error("http server", zap.Error(err))
		return err
	}
	return nil
}
