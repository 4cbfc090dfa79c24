package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/config"
)

func TestAppRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.AuditDBPath = filepath.Join(t.TempDir(), "audit", "runs.db")
	logger := zerolog.Nop()

	application, err := New(cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("app did not stop")
	}
}

func TestAppFailsOnBadAuditPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	cfg := config.Default()
	cfg.AuditDBPath = filepath.Join(blocker, "runs.db")
	logger := zerolog.Nop()

	if _, err := New(cfg, &logger); err == nil {
		t.Fatalf("expected error for audit path under a file")
	}
}
