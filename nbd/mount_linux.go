//go:build linux

package nbd

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Mount binds backend to the NBD device node at path and serves kernel
// requests against it until the device is cleanly unmounted.
//
// onReady is invoked once device configuration has completed and the
// socket pair is ready, but before the kernel-facing worker attaches to
// it; it receives a *Device the embedder can use (from any goroutine, at
// any later point up to Mount returning) to request an unmount or change
// the kernel's request timeout. Mount does not return until the device is
// unmounted and the worker has been joined, or until a fatal error occurs.
func Mount(backend Backend, path string, onReady func(*Device) error, opts ...Option) error {
	cfg := mountConfig{log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	blockSize := backend.BlockSize()
	if blockSize < 512 || blockSize&(blockSize-1) != 0 {
		panic(fmt.Sprintf("nbd: block size %d must be a power of two of at least 512", blockSize))
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("nbd: open %s: %w", path, err)
	}
	defer file.Close()

	if err := ioctlSetBlkSize(file, blockSize); err != nil {
		return fmt.Errorf("nbd: ioctl NBD_SET_BLKSIZE: %w", err)
	}
	if err := ioctlSetSizeBlocks(file, backend.Blocks()); err != nil {
		return fmt.Errorf("nbd: ioctl NBD_SET_SIZE_BLOCKS: %w", err)
	}
	// Clean slate: a prior user of this device node may have left a socket
	// registered. Failure here just means there was nothing to clear.
	_ = ioctlClearSock(file)

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("nbd: socketpair: %w", err)
	}
	userConn := os.NewFile(uintptr(fds[0]), "nbd-userspace")
	kernelFile := os.NewFile(uintptr(fds[1]), "nbd-kernel")
	defer userConn.Close()

	dup, err := unix.Dup(int(file.Fd()))
	if err != nil {
		kernelFile.Close()
		return fmt.Errorf("nbd: duplicating device fd for Device handle: %w", err)
	}
	device := &Device{file: os.NewFile(uintptr(dup), path)}
	defer device.file.Close()

	cfg.metrics.dm().mountStarted()
	defer cfg.metrics.dm().mountStopped()

	if onReady != nil {
		if err := onReady(device); err != nil {
			kernelFile.Close()
			return fmt.Errorf("nbd: onReady: %w", err)
		}
	}

	group := new(errgroup.Group)
	group.Go(func() error {
		defer kernelFile.Close()

		if err := ioctlSetSockFd(file, int(kernelFile.Fd())); err != nil {
			return fmt.Errorf("nbd: ioctl NBD_SET_SOCK: %w", err)
		}

		// Older kernels lack NBD_SET_FLAGS; ignore failures here per the
		// driver's best-effort capability negotiation contract.
		if err := ioctlSetFlags(file, sendFlush|sendTrim); err != nil {
			cfg.log.Debug("nbd: ioctl NBD_SET_FLAGS unsupported", "error", err)
		}

		// Blocks until the device is disconnected.
		doItErr := ioctlDoIt(file)

		if err := ioctlClearSock(file); err != nil {
			cfg.log.Debug("nbd: ioctl NBD_CLEAR_SOCK after do_it", "error", err)
		}
		if err := ioctlClearQue(file); err != nil {
			cfg.log.Debug("nbd: ioctl NBD_CLEAR_QUE after do_it", "error", err)
		}

		return doItErr
	})

	serveErr := serve(userConn, backend, cfg.log, cfg.metrics.dm())
	userConn.Close()

	workerErr := group.Wait()

	if serveErr != nil || workerErr != nil {
		// Force the kernel side down; the error we return below is
		// authoritative, this is just cleanup.
		_ = ioctlDisconnect(file)
	}

	if serveErr != nil {
		return serveErr
	}
	return workerErr
}
