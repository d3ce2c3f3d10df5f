package nbd

import (
	"encoding/binary"
	"testing"
)

func buildRequestBytes(kind uint32, handle uint64, offset uint64, length uint32) []byte {
	buf := make([]byte, requestSize)
	binary.BigEndian.PutUint32(buf[0:4], requestMagic)
	binary.BigEndian.PutUint32(buf[4:8], kind)
	binary.BigEndian.PutUint64(buf[8:16], handle)
	binary.BigEndian.PutUint64(buf[16:24], offset)
	binary.BigEndian.PutUint32(buf[24:28], length)
	return buf
}

func TestDecodeRequestRoundTrip(t *testing.T) {
	buf := buildRequestBytes(cmdRead, 0x0102030405060708, 4096, 2048)

	req, err := decodeRequest(buf)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if req.kind != CommandRead {
		t.Fatalf("kind = %v, want CommandRead", req.kind)
	}
	if req.offset != 4096 {
		t.Fatalf("offset = %d, want 4096", req.offset)
	}
	if req.length != 2048 {
		t.Fatalf("length = %d, want 2048", req.length)
	}

	var wantHandle [8]byte
	binary.BigEndian.PutUint64(wantHandle[:], 0x0102030405060708)
	if req.handle != wantHandle {
		t.Fatalf("handle = %x, want %x", req.handle, wantHandle)
	}
}

func TestDecodeRequestInvalidMagic(t *testing.T) {
	buf := buildRequestBytes(cmdRead, 1, 0, 0)
	binary.BigEndian.PutUint32(buf[0:4], 0xdeadbeef)

	_, err := decodeRequest(buf)
	var perr *ProtocolError
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
	if !asProtocolError(err, &perr) {
		t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
	}
}

func TestDecodeRequestWrongLength(t *testing.T) {
	if _, err := decodeRequest(make([]byte, requestSize-1)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestCommandFromKindUnknown(t *testing.T) {
	if commandFromKind(99) != CommandUnknown {
		t.Fatal("expected unrecognized kind to map to CommandUnknown")
	}
}

func TestReplyEncode(t *testing.T) {
	req, err := decodeRequest(buildRequestBytes(cmdWrite, 0xaabbccddeeff0011, 0, 16))
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}

	rep := replyFor(req)
	rep.setErrno(30)
	buf := rep.encode()

	if len(buf) != replySize {
		t.Fatalf("encoded reply length = %d, want %d", len(buf), replySize)
	}
	if magic := binary.BigEndian.Uint32(buf[0:4]); magic != replyMagic {
		t.Fatalf("reply magic = 0x%x, want 0x%x", magic, replyMagic)
	}
	if errno := binary.BigEndian.Uint32(buf[4:8]); errno != 30 {
		t.Fatalf("reply errno = %d, want 30", errno)
	}
	if string(buf[8:16]) != string(req.handle[:]) {
		t.Fatalf("reply handle = %x, want %x", buf[8:16], req.handle)
	}
}

// asProtocolError is a small helper so tests read naturally; errors.As
// would work here too but this avoids importing errors just for this.
func asProtocolError(err error, target **ProtocolError) bool {
	if pe, ok := err.(*ProtocolError); ok {
		*target = pe
		return true
	}
	return false
}
