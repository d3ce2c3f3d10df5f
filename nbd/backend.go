package nbd

import "syscall"

// Backend is the capability set an embedder implements to define a virtual
// volume's contents. All methods are invoked serially from the request
// loop driving a single mount; a Backend need not be safe for concurrent
// use across mounts, and within a single mount it never sees overlapping
// calls.
type Backend interface {
	// ReadAt fills p with len(p) bytes starting at off.
	ReadAt(off int64, p []byte) error
	// WriteAt stores p at off.
	WriteAt(off int64, p []byte) error
	// Flush commits any backend-internal write caching.
	Flush() error
	// Trim discards length bytes starting at off. The backend may treat
	// this as a no-op; the kernel does not require the range to actually
	// become unavailable.
	Trim(off int64, length uint32) error
	// Unmount is called exactly once, iff the kernel sends a Disconnect
	// command before the request loop sees EOF.
	Unmount()
	// BlockSize returns the logical block size in bytes. It is queried
	// once at mount time; must be a power of two, at least 512 and at
	// most the host page size.
	BlockSize() uint32
	// Blocks returns the number of logical blocks; the exposed volume
	// size is BlockSize() * Blocks().
	Blocks() uint64
}

// BaseBackend supplies the NBD driver's documented defaults for Backend
// methods an embedder doesn't care to implement: reads and writes refuse
// with EPERM, flush and trim succeed as no-ops, and unmount does nothing.
// Embed it in a concrete backend and override only the methods that matter,
// mirroring the default trait methods of the original implementation this
// driver is modeled on.
type BaseBackend struct{}

// ReadAt refuses with EPERM by default.
func (BaseBackend) ReadAt(off int64, p []byte) error { return syscall.EPERM }

// WriteAt refuses with EPERM by default.
func (BaseBackend) WriteAt(off int64, p []byte) error { return syscall.EPERM }

// Flush is a no-op by default.
func (BaseBackend) Flush() error { return nil }

// Trim is a no-op by default.
func (BaseBackend) Trim(off int64, length uint32) error { return nil }

// Unmount does nothing by default.
func (BaseBackend) Unmount() {}
