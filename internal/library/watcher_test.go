package library

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout
// elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_ReloadOnWrite(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var reloads atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, root, 50*time.Millisecond, logger, func() { reloads.Add(1) })
	}()

	// Give the watcher a moment to install.
	time.Sleep(100 * time.Millisecond)

	write(t, root, "rails/SKILL.md", "---\nname: rails\ndescription: x\n---\n")

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "expected a reload after file write")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var reloads atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watch(ctx, root, 200*time.Millisecond, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	// A burst of writes within the debounce window.
	for i := 0; i < 5; i++ {
		write(t, root, "a/SKILL.md", "---\nname: a\ndescription: x\n---\n")
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "expected a reload after burst")

	// Settled: a short wait should not produce a second reload.
	time.Sleep(400 * time.Millisecond)
	if n := reloads.Load(); n > 2 {
		t.Errorf("reloads = %d, want the burst coalesced", n)
	}
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var reloads atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watch(ctx, root, 50*time.Millisecond, logger, func() { reloads.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(root+"/data.json", []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if reloads.Load() != 0 {
		t.Errorf("non-markdown write should not reload, got %d", reloads.Load())
	}
}
