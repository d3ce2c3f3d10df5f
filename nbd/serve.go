package nbd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"syscall"
	"time"
)

// serve runs the userspace side of the NBD request loop against rw, which
// stands in for the kernel-facing end of the socket pair (U in spec
// terms). It dispatches every request to backend and returns when rw
// reaches EOF (normal, kernel-initiated teardown), after handling a
// Disconnect command, or when it encounters a fatal I/O error or protocol
// violation.
//
// serve has no dependency on ioctls or a real NBD device node, so it can
// be driven directly in tests over net.Pipe or an in-memory buffer.
func serve(rw io.ReadWriter, backend Backend, log *slog.Logger, metrics *driverMetrics) error {
	if log == nil {
		log = slog.Default()
	}

	header := make([]byte, requestSize)
	var scratch []byte

	for {
		n, err := io.ReadFull(rw, header)
		if err != nil {
			if errors.Is(err, io.EOF) && n == 0 {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return &ProtocolError{fmt.Sprintf("short read: got %d of %d request bytes", n, requestSize)}
			}
			return fmt.Errorf("nbd: reading request: %w", err)
		}

		req, err := decodeRequest(header)
		if err != nil {
			return err
		}

		rep := replyFor(req)
		start := time.Now()

		switch req.kind {
		case CommandRead:
			scratch = growScratch(scratch, int(req.length))
			err := backend.ReadAt(int64(req.offset), scratch[:req.length])
			if err != nil {
				rep.setErrno(errnoOf(err, int(syscall.EIO)))
				log.Warn("nbd: backend read failed", "offset", req.offset, "length", req.length, "error", err)
			}
			if _, err := rw.Write(rep.encode()); err != nil {
				return fmt.Errorf("nbd: writing reply: %w", err)
			}
			if _, err := rw.Write(scratch[:req.length]); err != nil {
				return fmt.Errorf("nbd: writing read payload: %w", err)
			}
			metrics.observe(CommandRead, rep.errno, time.Since(start))

		case CommandWrite:
			scratch = growScratch(scratch, int(req.length))
			if _, err := io.ReadFull(rw, scratch[:req.length]); err != nil {
				return fmt.Errorf("nbd: reading write payload: %w", err)
			}
			if err := backend.WriteAt(int64(req.offset), scratch[:req.length]); err != nil {
				rep.setErrno(errnoOf(err, int(syscall.EIO)))
				log.Warn("nbd: backend write failed", "offset", req.offset, "length", req.length, "error", err)
			}
			if _, err := rw.Write(rep.encode()); err != nil {
				return fmt.Errorf("nbd: writing reply: %w", err)
			}
			metrics.observe(CommandWrite, rep.errno, time.Since(start))

		case CommandFlush:
			if err := backend.Flush(); err != nil {
				rep.setErrno(errnoOf(err, int(syscall.EIO)))
				log.Warn("nbd: backend flush failed", "error", err)
			}
			if _, err := rw.Write(rep.encode()); err != nil {
				return fmt.Errorf("nbd: writing reply: %w", err)
			}
			metrics.observe(CommandFlush, rep.errno, time.Since(start))

		case CommandTrim:
			if err := backend.Trim(int64(req.offset), req.length); err != nil {
				rep.setErrno(errnoOf(err, int(syscall.EIO)))
				log.Warn("nbd: backend trim failed", "error", err)
			}
			if _, err := rw.Write(rep.encode()); err != nil {
				return fmt.Errorf("nbd: writing reply: %w", err)
			}
			metrics.observe(CommandTrim, rep.errno, time.Since(start))

		case CommandDisconnect:
			log.Info("nbd: kernel requested disconnect")
			backend.Unmount()
			metrics.observe(CommandDisconnect, 0, time.Since(start))
			return nil

		default:
			return &ProtocolError{fmt.Sprintf("unknown command kind in request handle=%x", req.handle)}
		}
	}
}

// growScratch returns a slice of at least n bytes backed by buf, growing it
// when necessary but never shrinking it during a mount's lifetime. Reads
// and writes share this one buffer.
func growScratch(buf []byte, n int) []byte {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]byte, n)
}
