package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("krate: corrupt record")
	magic4     = [...]byte{'K', 'R', 'A', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record envelope for backends that only store raw bytes per key:
//
//	magic(4) | ver(1) | modified(i64 be, unix millis) | vlen(u32 be) | payload(vlen)
//
// Trailing bytes after the payload are rejected as corruption.
func EncodeRecord(modified time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(modified.UnixMilli()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeRecord(b []byte) (modified time.Time, payload []byte, err error) {
	const hdr = 4 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}

	off := 5

	millis := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return time.Time{}, nil, ErrCorrupt
	}

	return time.UnixMilli(millis), b[off : off+vlen], nil
}

// DecodeModified reads only the modified timestamp from an envelope.
// Listing paths use it to skip payload handling.
func DecodeModified(b []byte) (time.Time, error) {
	const hdr = 4 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return time.Time{}, ErrCorrupt
	}
	millis := int64(binary.BigEndian.Uint64(b[5:13]))
	return time.UnixMilli(millis), nil
}
