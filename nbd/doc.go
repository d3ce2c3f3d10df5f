// Package nbd mounts application-defined block devices on Linux by driving
// the kernel's Network Block Device (NBD) module.
//
// A caller implements Backend and calls Mount with the path to an NBD
// device node (conventionally /dev/nbd0). Mount programs the device's
// geometry, attaches a socket pair to the kernel, and then translates
// every kernel request into a call on Backend until the device is
// unmounted.
package nbd
