package nbd

import (
	"encoding/binary"
	"fmt"
)

// Wire-level magic numbers. These are fixed by the kernel NBD ABI and must
// not change.
const (
	requestMagic = 0x25609513
	replyMagic   = 0x66446698
)

// NBD command codes, as delivered by the kernel on the request socket.
const (
	cmdRead  = 0
	cmdWrite = 1
	cmdDisc  = 2
	cmdFlush = 3
	cmdTrim  = 4
)

// Capability flag bits understood by NBD_SET_FLAGS. Only sendFlush and
// sendTrim are ever passed to the kernel by this driver; the rest are named
// here for completeness with the wider NBD flag vocabulary.
const (
	flagHasFlags  = 1 << 0
	flagReadOnly  = 1 << 1
	sendFlush     = 1 << 2
	flagSendFUA   = 1 << 3
	flagRotational = 1 << 4
	sendTrim      = 1 << 5
)

// requestSize is the number of bytes NBD actually puts on the wire for a
// request header: magic, kind, handle, offset, length. Implementations that
// mirror the kernel's C struct in memory often carry four bytes of trailing
// padding that is never transmitted; this driver never materializes that
// padding, so requestSize is just the sum of the wire fields.
const requestSize = 4 + 4 + 8 + 8 + 4

// replySize is the fixed size of an NBD reply header.
const replySize = 4 + 4 + 8

// Command identifies the operation a request asks the backend to perform.
type Command int

const (
	// CommandRead asks the backend to fill a buffer from the volume.
	CommandRead Command = iota
	// CommandWrite asks the backend to store a buffer into the volume.
	CommandWrite
	// CommandFlush asks the backend to commit any cached writes.
	CommandFlush
	// CommandTrim asks the backend to discard a byte range.
	CommandTrim
	// CommandDisconnect signals a clean kernel-initiated unmount.
	CommandDisconnect
	// CommandUnknown is any kind value outside the documented enum. The
	// kernel never legitimately sends one; seeing it means the driver and
	// the kernel have diverged on the wire protocol.
	CommandUnknown
)

func (c Command) String() string {
	switch c {
	case CommandRead:
		return "read"
	case CommandWrite:
		return "write"
	case CommandFlush:
		return "flush"
	case CommandTrim:
		return "trim"
	case CommandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

func commandFromKind(kind uint32) Command {
	switch kind {
	case cmdRead:
		return CommandRead
	case cmdWrite:
		return CommandWrite
	case cmdDisc:
		return CommandDisconnect
	case cmdFlush:
		return CommandFlush
	case cmdTrim:
		return CommandTrim
	default:
		return CommandUnknown
	}
}

// request is the decoded form of a 28-byte NBD request frame.
type request struct {
	kind   Command
	handle [8]byte
	offset uint64
	length uint32
}

// decodeRequest parses exactly requestSize bytes of wire data. It returns a
// *ProtocolError if the magic does not match; callers must treat that as
// fatal per the NBD ABI contract, not as a retryable I/O error.
func decodeRequest(buf []byte) (request, error) {
	if len(buf) != requestSize {
		return request{}, fmt.Errorf("nbd: decodeRequest: expected %d bytes, got %d", requestSize, len(buf))
	}

	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != requestMagic {
		return request{}, &ProtocolError{fmt.Sprintf("invalid request magic 0x%08x", magic)}
	}

	var r request
	r.kind = commandFromKind(binary.BigEndian.Uint32(buf[4:8]))
	copy(r.handle[:], buf[8:16])
	r.offset = binary.BigEndian.Uint64(buf[16:24])
	r.length = binary.BigEndian.Uint32(buf[24:28])
	return r, nil
}

// reply is the in-memory form of a 16-byte NBD reply frame.
type reply struct {
	errno  uint32
	handle [8]byte
}

// replyFor builds a zero-error reply frame paired to req; its handle is
// copied from the request verbatim.
func replyFor(req request) reply {
	return reply{handle: req.handle}
}

// setErrno stores the reply's errno field; errno 0 means success.
func (r *reply) setErrno(errno int) {
	r.errno = uint32(errno)
}

// encode serializes the reply into a fresh requestSize-independent 16-byte
// buffer, big-endian, per the NBD wire format.
func (r reply) encode() []byte {
	buf := make([]byte, replySize)
	binary.BigEndian.PutUint32(buf[0:4], replyMagic)
	binary.BigEndian.PutUint32(buf[4:8], r.errno)
	copy(buf[8:16], r.handle[:])
	return buf
}
