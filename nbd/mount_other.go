//go:build !linux

package nbd

// Mount always fails on platforms without a Linux NBD kernel module. The
// signature matches the Linux build so embedding applications compile
// everywhere; only the behavior differs.
func Mount(backend Backend, path string, onReady func(*Device) error, opts ...Option) error {
	return ErrUnsupportedPlatform
}
