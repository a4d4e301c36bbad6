package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copilot.yaml")
	if err := os.WriteFile(path, []byte("alerts:\n  muted: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { got <- c })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	for {
		if err := os.WriteFile(path, []byte("alerts:\n  muted: true\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-got:
			// A truncate-then-write can surface an empty file first.
			if !c.Alerts.Muted {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch() returned %v", err)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed within 5s")
		}
	}
}

func TestWatch_IgnoresInvalidAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copilot.yaml")
	if err := os.WriteFile(path, []byte("monitor: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { got <- c })
	}()
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("monitor: {}\n"), 0o600)
	// Replace atomically so the watcher never sees a half-written file.
	tmp := filepath.Join(dir, "copilot.yaml.tmp")
	_ = os.WriteFile(tmp, []byte("log:\n  level: chatty\n"), 0o600)
	_ = os.Rename(tmp, path)

	select {
	case c := <-got:
		t.Fatalf("unexpected reload: %+v", c)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() returned %v", err)
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "copilot.yaml")
	if err := Watch(context.Background(), path, func(*Config) {}); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}
