package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_MissingConfig(t *testing.T) {
	t.Setenv("COURSEHOST_ROOT", t.TempDir())
	t.Setenv("VAULT_ADDR", "")

	a, err := New(context.Background(), Options{})
	if err == nil {
		t.Fatalf("New succeeded without conf/global.yaml")
	}
	if a != nil {
		t.Fatalf("New returned an App alongside error %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := "database:\n  dsn: \"u:p@tcp(db:3306)/app\"\nsite:\n  backend_match: fuzzy\n"
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("COURSEHOST_ROOT", root)
	t.Setenv("VAULT_ADDR", "")

	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatalf("New accepted backend_match: fuzzy")
	}
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	a := &App{}
	for i := 1; i <= 3; i++ {
		i := i
		a.closers = append(a.closers, func() error {
			order = append(order, i)
			if i == 2 {
				return errors.New("pool busy")
			}
			return nil
		})
	}

	err := a.Close()
	if err == nil || err.Error() != "pool busy" {
		t.Fatalf("Close err = %v, want pool busy", err)
	}
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Fatalf("close order = %v, want [3 2 1]", order)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	var nilApp *App
	if err := nilApp.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
