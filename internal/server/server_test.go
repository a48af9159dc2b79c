package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yanizio/coursehost/internal/config"
)

func TestNewDefaults(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: ":0", WriteTimeout: 3 * time.Second}, http.NotFoundHandler())

	if srv.ReadTimeout != 10*time.Second {
		t.Fatalf("ReadTimeout = %v, want 10s", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 3*time.Second {
		t.Fatalf("WriteTimeout = %v, want configured 3s", srv.WriteTimeout)
	}
	if srv.IdleTimeout != 60*time.Second {
		t.Fatalf("IdleTimeout = %v, want 60s", srv.IdleTimeout)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := New(config.HTTP{ListenAddr: "127.0.0.1:0"}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
