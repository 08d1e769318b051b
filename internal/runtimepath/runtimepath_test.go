package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got == "" {
		t.Fatal("Dir() returned empty path")
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/screenline-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketAndLockPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if !strings.HasSuffix(socket, "/screenline.sock") {
		t.Fatalf("SocketPath() = %q, missing suffix", socket)
	}

	lock, err := LockPath()
	if err != nil {
		t.Fatalf("LockPath() error: %v", err)
	}
	if !strings.HasSuffix(lock, "/screenline.lock") {
		t.Fatalf("LockPath() = %q, missing suffix", lock)
	}
}

func TestAcquireLock_SecondHolderFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screenline.lock")

	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock() error: %v", err)
	}

	_, err = AcquireLock(path)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("pid %d", os.Getpid())) {
		t.Fatalf("expected holder pid in %q", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	second, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	second.Release()
}

func TestReleaseNilLock(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
