package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	applog "workboard/internal/log"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug", applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Errorf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Error("debug level not enabled")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	// Missing file is ignored.
	LoadEnvFile(applog.Discard())

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("WORKBOARD_TEST_KEY=from-env-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORKBOARD_TEST_KEY", "")
	os.Unsetenv("WORKBOARD_TEST_KEY")
	LoadEnvFile(applog.Discard())
	if got := os.Getenv("WORKBOARD_TEST_KEY"); got != "from-env-file" {
		t.Errorf("WORKBOARD_TEST_KEY = %q", got)
	}
}

func TestGracefulShutdownCancel(t *testing.T) {
	ctx, cancel := GracefulShutdown(applog.Discard())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}

func TestRunWithTimeout(t *testing.T) {
	err := RunWithTimeout(applog.Discard(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if err := RunWithTimeout(applog.Discard(), time.Second, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
