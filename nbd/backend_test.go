package nbd

import (
	"errors"
	"syscall"
	"testing"
)

func TestBaseBackendDefaults(t *testing.T) {
	var b BaseBackend

	if err := b.ReadAt(0, make([]byte, 4)); !errors.Is(err, syscall.EPERM) {
		t.Fatalf("ReadAt default = %v, want EPERM", err)
	}
	if err := b.WriteAt(0, make([]byte, 4)); !errors.Is(err, syscall.EPERM) {
		t.Fatalf("WriteAt default = %v, want EPERM", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush default = %v, want nil", err)
	}
	if err := b.Trim(0, 16); err != nil {
		t.Fatalf("Trim default = %v, want nil", err)
	}
	b.Unmount() // must not panic
}

func TestErrnoOf(t *testing.T) {
	if got := errnoOf(nil, int(syscall.EIO)); got != 0 {
		t.Fatalf("errnoOf(nil) = %d, want 0", got)
	}
	if got := errnoOf(syscall.EROFS, int(syscall.EIO)); got != int(syscall.EROFS) {
		t.Fatalf("errnoOf(EROFS) = %d, want %d", got, syscall.EROFS)
	}
	if got := errnoOf(errors.New("boom"), int(syscall.EIO)); got != int(syscall.EIO) {
		t.Fatalf("errnoOf(plain error) = %d, want EIO", got)
	}
}
