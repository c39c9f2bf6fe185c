package component

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan SoftwareComponent, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zaptest.NewLogger(t), func(c SoftwareComponent) {
			changes <- c
		})
	}()

	// The watcher registers asynchronously, so keep writing until it notices.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)

	for {
		select {
		case c := <-changes:
			if c.Version != "2" {
				t.Fatalf("expected reloaded version 2, got %q", c.Version)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-ticker.C:
			if err := os.WriteFile(path, []byte("name: svc\nversion: \"2\"\n"), 0o600); err != nil {
				t.Fatalf("rewrite definition: %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload")
		}
	}
}

func TestWatchReloadsAfterAtomicRename(t *testing.T) {
	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1\"\n")
	dir := filepath.Dir(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan SoftwareComponent, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zaptest.NewLogger(t), func(c SoftwareComponent) {
			changes <- c
		})
	}()

	// Two consecutive renames: the second proves the watch survives the
	// replaced inode.
	for _, version := range []string{"2", "3"} {
		if !saveUntilReloaded(t, dir, path, version, changes) {
			t.Fatalf("atomic save of version %s never reloaded", version)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

// saveUntilReloaded replaces path via write-then-rename until the watcher
// reports the requested version.
func saveUntilReloaded(t *testing.T, dir, path, version string, changes <-chan SoftwareComponent) bool {
	t.Helper()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)

	for {
		select {
		case c := <-changes:
			if c.Version == version {
				return true
			}
		case <-ticker.C:
			tmp, err := os.CreateTemp(dir, ".svc-*.tmp")
			if err != nil {
				t.Fatalf("create temp file: %v", err)
			}
			if _, err := tmp.WriteString("name: svc\nversion: \"" + version + "\"\n"); err != nil {
				t.Fatalf("write temp file: %v", err)
			}
			if err := tmp.Close(); err != nil {
				t.Fatalf("close temp file: %v", err)
			}
			if err := os.Rename(tmp.Name(), path); err != nil {
				t.Fatalf("rename over definition: %v", err)
			}
		case <-deadline:
			return false
		}
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1\"\n")
	sibling := filepath.Join(filepath.Dir(path), "other.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zaptest.NewLogger(t), func(SoftwareComponent) {
			called <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(sibling, []byte("name: other\nversion: \"9\"\n"), 0o600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	select {
	case <-called:
		t.Fatalf("onChange must not run for other files in the directory")
	default:
	}
}

func TestWatchKeepsPreviousOnInvalidDefinition(t *testing.T) {
	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zaptest.NewLogger(t), func(SoftwareComponent) {
			called <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("name: svc\n"), 0o600); err != nil {
		t.Fatalf("rewrite definition: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	select {
	case <-called:
		t.Fatalf("onChange must not run for an invalid definition")
	default:
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent", "here.yaml"), zaptest.NewLogger(t), func(SoftwareComponent) {})
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
