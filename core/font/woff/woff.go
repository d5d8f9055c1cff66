package woff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"

	"github.com/npillmayer/kernstyle/core"
)

// Container is the kind of container a font binary is packaged in.
type Container int

// Known containers
const (
	Plain      Container = iota // TrueType / OpenType, uncompressed
	WOFF                        // WOFF 1.0
	WOFF2                       // WOFF 2.0
	Collection                  // TrueType collection
)

func (c Container) String() string {
	switch c {
	case WOFF:
		return "WOFF"
	case WOFF2:
		return "WOFF2"
	case Collection:
		return "TTC"
	}
	return "sfnt"
}

var signatures = []struct {
	magic [4]byte
	kind  Container
}{
	{[4]byte{0x77, 0x4f, 0x46, 0x32}, WOFF2}, // wOF2
	{[4]byte{0x77, 0x4f, 0x46, 0x46}, WOFF},  // wOFF
	{[4]byte{0x74, 0x74, 0x63, 0x66}, Collection},
}

// Detect checks the signature at the start of a font binary.
// All four signature bytes have to match, each at its own offset.
func Detect(b []byte) Container {
	if len(b) < 4 {
		return Plain
	}
	for _, sig := range signatures {
		if bytes.Equal(b[:4], sig.magic[:]) {
			return sig.kind
		}
	}
	return Plain
}

// IsCompressed is a predicate: is font binary b wrapped in a compressed
// container?
func IsCompressed(b []byte) bool {
	c := Detect(b)
	return c == WOFF || c == WOFF2
}

// Unwrap returns the uncompressed sfnt binary for b. If b is not packaged in
// a compressed container, it is returned unchanged.
// Failures are reported as *core.DecompressionError.
func Unwrap(b []byte) ([]byte, error) {
	c := Detect(b)
	var out []byte
	var err error
	switch c {
	case WOFF:
		out, err = unwrapWOFF(b)
	case WOFF2:
		out, err = unwrapWOFF2(b)
	default:
		return b, nil
	}
	if err != nil {
		tracer().Errorf("cannot unwrap %s container: %v", c, err)
		return nil, &core.DecompressionError{Container: c.String(), Err: err}
	}
	tracer().Debugf("unwrapped %s container: %d bytes → %d bytes", c, len(b), len(out))
	return out, nil
}

var errTruncated = errors.New("truncated font data")

// --- Assembling sfnt binaries ----------------------------------------------

type sfntTable struct {
	tag  uint32
	data []byte
}

// buildSFNT writes an sfnt table directory followed by the table data.
func buildSFNT(flavor uint32, tables []sfntTable) []byte {
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })
	n := len(tables)
	size := 12 + 16*n
	for _, t := range tables {
		size += pad4(len(t.data))
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out[0:], flavor)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	searchRange, entrySelector := 1, 0
	for searchRange*2 <= n {
		searchRange *= 2
		entrySelector++
	}
	binary.BigEndian.PutUint16(out[6:], uint16(searchRange*16))
	binary.BigEndian.PutUint16(out[8:], uint16(entrySelector))
	binary.BigEndian.PutUint16(out[10:], uint16(n*16-searchRange*16))
	offset := 12 + 16*n
	for i, t := range tables {
		rec := out[12+16*i:]
		binary.BigEndian.PutUint32(rec[0:], t.tag)
		binary.BigEndian.PutUint32(rec[4:], checksum(t.data))
		binary.BigEndian.PutUint32(rec[8:], uint32(offset))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.data)))
		copy(out[offset:], t.data)
		offset += pad4(len(t.data))
	}
	return out
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var last [4]byte
		copy(last[:], b)
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

func tagString(tag uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], tag)
	return string(b[:])
}

func makeTag(s string) uint32 {
	return binary.BigEndian.Uint32([]byte(s))
}
