package nbd

import (
	"errors"
	"fmt"
	"syscall"
)

// ProtocolError reports a violation of the NBD wire contract: a short read,
// an invalid magic, or a command kind outside the documented enum. These
// indicate the kernel and this driver have diverged on the ABI and are
// never recoverable within the mount; Mount returns them without attempting
// to continue serving requests.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("nbd: protocol violation: %s", e.msg)
}

// ErrUnsupportedPlatform is returned by every exported entry point that
// drives the kernel NBD ioctls on a GOOS other than linux.
var ErrUnsupportedPlatform = fmt.Errorf("nbd: not supported on this platform")

// errnoOf extracts a raw OS errno from err if it carries one (for example a
// *fs.PathError wrapping a syscall.Errno), otherwise it returns fallback.
// This is how backend errors are translated into the reply's error field
// per the driver's error-handling contract: an errno-bearing error is
// forwarded verbatim, anything else becomes EIO.
func errnoOf(err error, fallback int) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return fallback
}
