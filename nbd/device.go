package nbd

import (
	"os"
	"time"
)

// Device is handed to the embedder's onReady callback when a mount starts.
// It owns a duplicated file descriptor for the NBD device node and is valid
// until the enclosing Mount call returns; it may be moved to another
// goroutine (for example a signal handler) and used from there at any
// point during the mount's lifetime.
type Device struct {
	file *os.File
}

// SetTimeout sets the kernel's per-request socket timeout for this device.
// A zero duration clears any previously configured timeout.
func (d *Device) SetTimeout(timeout time.Duration) error {
	return ioctlSetTimeout(d.file, uint64(timeout/time.Second))
}

// Unmount issues a forced disconnect against the device node. This
// unblocks the worker's do_it call, which causes the kernel to close its
// end of the socket pair, which in turn causes the request loop's next
// read to observe EOF and return cleanly.
func (d *Device) Unmount() error {
	return ioctlDisconnect(d.file)
}
