//go:build !linux

package nbd

import "os"

// On non-Linux platforms there is no NBD kernel module to drive; every
// ioctl wrapper reports ErrUnsupportedPlatform instead of failing to
// compile, so embedding applications can still build (and run their
// non-Linux code paths) on darwin/windows/etc.

func ioctlSetSockFd(f *os.File, sockFd int) error    { return ErrUnsupportedPlatform }
func ioctlSetBlkSize(f *os.File, blockSize uint32) error { return ErrUnsupportedPlatform }
func ioctlDoIt(f *os.File) error                     { return ErrUnsupportedPlatform }
func ioctlClearSock(f *os.File) error                { return ErrUnsupportedPlatform }
func ioctlClearQue(f *os.File) error                 { return ErrUnsupportedPlatform }
func ioctlSetSizeBlocks(f *os.File, blocks uint64) error { return ErrUnsupportedPlatform }
func ioctlDisconnect(f *os.File) error                { return ErrUnsupportedPlatform }
func ioctlSetTimeout(f *os.File, seconds uint64) error { return ErrUnsupportedPlatform }
func ioctlSetFlags(f *os.File, flags uint64) error    { return ErrUnsupportedPlatform }
