/*
Package fonttest creates font binaries for tests.

Go Regular carries no kerning at all. KernedFont rebuilds it with a
synthetic table 'kern' (format 0) holding exactly the pairs a test asks
for, so tests run against the real parser instead of a mock.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fonttest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Pair is a kerning pair between two code-points, in design units.
type Pair struct {
	Left, Right rune
	Value       int16
}

type table struct {
	tag  string
	data []byte
}

// splitTables splits an sfnt binary into its tables, in directory order.
func splitTables(b []byte) ([]table, uint32, error) {
	if len(b) < 12 {
		return nil, 0, errors.New("font binary too short")
	}
	version := binary.BigEndian.Uint32(b)
	n := int(binary.BigEndian.Uint16(b[4:]))
	if len(b) < 12+16*n {
		return nil, 0, errors.New("truncated table directory")
	}
	tables := make([]table, 0, n)
	for i := 0; i < n; i++ {
		rec := b[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		if int(off+length) > len(b) {
			return nil, 0, fmt.Errorf("table %q out of bounds", rec[:4])
		}
		tables = append(tables, table{tag: string(rec[:4]), data: b[off : off+length]})
	}
	return tables, version, nil
}

// assemble builds an sfnt binary from a list of tables. Tables are sorted by
// tag, as sfnt insists on.
func assemble(version uint32, tables []table) []byte {
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })
	n := len(tables)
	var out bytes.Buffer
	hdr := make([]byte, 12)
	binary.BigEndian.PutUint32(hdr, version)
	binary.BigEndian.PutUint16(hdr[4:], uint16(n))
	sr, es := 1, 0
	for sr*2 <= n {
		sr *= 2
		es++
	}
	binary.BigEndian.PutUint16(hdr[6:], uint16(sr*16))
	binary.BigEndian.PutUint16(hdr[8:], uint16(es))
	binary.BigEndian.PutUint16(hdr[10:], uint16(n*16-sr*16))
	out.Write(hdr)
	offset := uint32(12 + 16*n)
	for _, t := range tables {
		rec := make([]byte, 16)
		copy(rec, t.tag)
		binary.BigEndian.PutUint32(rec[4:], checksum(t.data))
		binary.BigEndian.PutUint32(rec[8:], offset)
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.data)))
		out.Write(rec)
		offset += uint32(pad4(len(t.data)))
	}
	for _, t := range tables {
		out.Write(t.data)
		out.Write(make([]byte, pad4(len(t.data))-len(t.data)))
	}
	return out.Bytes()
}

// KernedFont returns Go Regular with a 'kern' table containing pairs.
// Tables 'kern' and 'GPOS' of the base font are dropped, so the pairs given
// are the only kerning information of the result.
func KernedFont(pairs ...Pair) ([]byte, error) {
	return WithKernPairs(goregular.TTF, pairs...)
}

// WithKernPairs rebuilds font binary base with a 'kern' table containing pairs.
func WithKernPairs(base []byte, pairs ...Pair) ([]byte, error) {
	f, err := sfnt.Parse(base)
	if err != nil {
		return nil, err
	}
	var buf sfnt.Buffer
	type gpair struct {
		l, r sfnt.GlyphIndex
		v    int16
	}
	gpairs := make([]gpair, 0, len(pairs))
	for _, p := range pairs {
		l, err := f.GlyphIndex(&buf, p.Left)
		if err != nil || l == 0 {
			return nil, fmt.Errorf("no glyph for %q", p.Left)
		}
		r, err := f.GlyphIndex(&buf, p.Right)
		if err != nil || r == 0 {
			return nil, fmt.Errorf("no glyph for %q", p.Right)
		}
		gpairs = append(gpairs, gpair{l, r, p.Value})
	}
	sort.Slice(gpairs, func(i, j int) bool {
		if gpairs[i].l != gpairs[j].l {
			return gpairs[i].l < gpairs[j].l
		}
		return gpairs[i].r < gpairs[j].r
	})
	n := len(gpairs)
	kern := make([]byte, 4+6+8+6*n)
	binary.BigEndian.PutUint16(kern[0:], 0) // version
	binary.BigEndian.PutUint16(kern[2:], 1) // nTables
	binary.BigEndian.PutUint16(kern[4:], 0) // sub-table version
	binary.BigEndian.PutUint16(kern[6:], uint16(6+8+6*n))
	kern[8], kern[9] = 0, 0x01 // format 0, horizontal
	binary.BigEndian.PutUint16(kern[10:], uint16(n))
	sr, es := 1, 0
	for sr*2 <= n {
		sr *= 2
		es++
	}
	binary.BigEndian.PutUint16(kern[12:], uint16(sr*6))
	binary.BigEndian.PutUint16(kern[14:], uint16(es))
	binary.BigEndian.PutUint16(kern[16:], uint16(n*6-sr*6))
	for i, p := range gpairs {
		rec := kern[18+6*i:]
		binary.BigEndian.PutUint16(rec[0:], uint16(p.l))
		binary.BigEndian.PutUint16(rec[2:], uint16(p.r))
		binary.BigEndian.PutUint16(rec[4:], uint16(p.v))
	}
	tables, version, err := splitTables(base)
	if err != nil {
		return nil, err
	}
	kept := tables[:0]
	for _, t := range tables {
		if t.tag == "kern" || t.tag == "GPOS" {
			continue
		}
		kept = append(kept, t)
	}
	kept = append(kept, table{tag: "kern", data: kern})
	return assemble(version, kept), nil
}

// WrapWOFF packs an sfnt binary into a WOFF 1.0 container, zlib-compressing
// every table.
func WrapWOFF(sfntBinary []byte) ([]byte, error) {
	tables, version, err := splitTables(sfntBinary)
	if err != nil {
		return nil, err
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })
	n := len(tables)
	compressed := make([][]byte, n)
	for i, t := range tables {
		var z bytes.Buffer
		w := zlib.NewWriter(&z)
		if _, err := w.Write(t.data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		compressed[i] = z.Bytes()
		if len(compressed[i]) >= len(t.data) {
			compressed[i] = t.data // stored uncompressed
		}
	}
	hdr := make([]byte, 44)
	copy(hdr, "wOFF")
	binary.BigEndian.PutUint32(hdr[4:], version)
	binary.BigEndian.PutUint16(hdr[12:], uint16(n))
	dir := make([]byte, 20*n)
	offset := uint32(44 + 20*n)
	var body bytes.Buffer
	for i, t := range tables {
		rec := dir[20*i:]
		copy(rec, t.tag)
		binary.BigEndian.PutUint32(rec[4:], offset)
		binary.BigEndian.PutUint32(rec[8:], uint32(len(compressed[i])))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(t.data)))
		binary.BigEndian.PutUint32(rec[16:], checksum(t.data))
		body.Write(compressed[i])
		body.Write(make([]byte, pad4(len(compressed[i]))-len(compressed[i])))
		offset += uint32(pad4(len(compressed[i])))
	}
	binary.BigEndian.PutUint32(hdr[8:], offset) // total length
	var out bytes.Buffer
	out.Write(hdr)
	out.Write(dir)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// WrapWOFF2 packs an sfnt binary into a WOFF 2.0 container.
//
// Tables 'glyf', 'loca' and 'hmtx' are stored transformed. Outlines are not
// carried over: the transformed 'glyf' describes numGlyphs empty glyphs, and
// 'hmtx' keeps advance widths only. The table stream is a valid brotli stream
// made of uncompressed meta-blocks.
func WrapWOFF2(sfntBinary []byte) ([]byte, error) {
	tables, version, err := splitTables(sfntBinary)
	if err != nil {
		return nil, err
	}
	byTag := make(map[string][]byte, len(tables))
	for _, t := range tables {
		byTag[t.tag] = t.data
	}
	head, hhea, maxp, hmtx := byTag["head"], byTag["hhea"], byTag["maxp"], byTag["hmtx"]
	if len(head) < 54 || len(hhea) < 36 || len(maxp) < 6 || byTag["glyf"] == nil || byTag["loca"] == nil {
		return nil, errors.New("WOFF2 test container needs a TrueType font")
	}
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	numHMetrics := int(binary.BigEndian.Uint16(hhea[34:]))
	if len(hmtx) < 4*numHMetrics {
		return nil, errors.New("'hmtx' shorter than 'hhea' announces")
	}
	// 'loca' has to follow 'glyf'
	sort.Slice(tables, func(i, j int) bool { return woff2Order(tables[i].tag) < woff2Order(tables[j].tag) })
	var dir, stream bytes.Buffer
	for _, t := range tables {
		switch t.tag {
		case "glyf":
			data := emptyGlyfTransform(numGlyphs, binary.BigEndian.Uint16(head[50:]))
			dir.WriteByte(10) // known index, transform version 0
			dir.Write(base128(uint32(len(t.data))))
			dir.Write(base128(uint32(len(data))))
			stream.Write(data)
		case "loca":
			dir.WriteByte(11)
			dir.Write(base128(uint32(len(t.data))))
			dir.Write(base128(0))
		case "hmtx":
			data := []byte{0x03} // no lsb arrays
			for i := 0; i < numHMetrics; i++ {
				data = append(data, hmtx[4*i:4*i+2]...)
			}
			dir.WriteByte(3 | 1<<6)
			dir.Write(base128(uint32(len(t.data))))
			dir.Write(base128(uint32(len(data))))
			stream.Write(data)
		default:
			dir.WriteByte(63)
			dir.WriteString(t.tag)
			dir.Write(base128(uint32(len(t.data))))
			stream.Write(t.data)
		}
	}
	compressed := storedBrotli(stream.Bytes())
	sfntSize := 12 + 16*len(tables)
	for _, t := range tables {
		sfntSize += pad4(len(t.data))
	}
	total := 48 + dir.Len() + pad4(len(compressed))
	hdr := make([]byte, 48)
	copy(hdr, "wOF2")
	binary.BigEndian.PutUint32(hdr[4:], version)
	binary.BigEndian.PutUint32(hdr[8:], uint32(total))
	binary.BigEndian.PutUint16(hdr[12:], uint16(len(tables)))
	binary.BigEndian.PutUint32(hdr[16:], uint32(sfntSize))
	binary.BigEndian.PutUint32(hdr[20:], uint32(len(compressed)))
	binary.BigEndian.PutUint16(hdr[24:], 1) // major version
	out := make([]byte, 0, total)
	out = append(out, hdr...)
	out = append(out, dir.Bytes()...)
	out = append(out, compressed...)
	return append(out, make([]byte, total-len(out))...), nil
}

func woff2Order(tag string) string {
	if tag == "loca" {
		return "glyf\x00"
	}
	return tag
}

// emptyGlyfTransform is a transformed 'glyf' table of n glyphs without
// contours: a zero contour count per glyph and an empty bbox bitmap.
func emptyGlyfTransform(n int, indexFormat uint16) []byte {
	nContours := 2 * n
	bbox := 4 * ((n + 31) / 32)
	data := make([]byte, 36+nContours+bbox)
	binary.BigEndian.PutUint16(data[4:], uint16(n))
	binary.BigEndian.PutUint16(data[6:], indexFormat)
	binary.BigEndian.PutUint32(data[8:], uint32(nContours))
	binary.BigEndian.PutUint32(data[28:], uint32(bbox))
	return data
}

func base128(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

// storedBrotli wraps data into a brotli stream of uncompressed meta-blocks.
// There is no brotli encoder in the dependency set, and a test container
// does not need compression to exercise the decoder.
func storedBrotli(data []byte) []byte {
	var w bitWriter
	w.write(1, 1) // WBITS = 17 + 5
	w.write(5, 3)
	for len(data) > 0 {
		n := len(data)
		if n > 1<<16 {
			n = 1 << 16
		}
		w.write(0, 1) // ISLAST
		w.write(0, 2) // MNIBBLES = 4
		w.write(uint64(n-1), 16)
		w.write(1, 1) // ISUNCOMPRESSED
		w.align()
		w.buf = append(w.buf, data[:n]...)
		data = data[n:]
	}
	w.write(1, 1) // ISLAST
	w.write(1, 1) // ISLASTEMPTY
	w.align()
	return w.buf
}

// bitWriter packs bits LSB first, as brotli reads them.
type bitWriter struct {
	buf []byte
	acc uint64
	n   uint
}

func (w *bitWriter) write(v uint64, bits uint) {
	w.acc |= v << w.n
	w.n += bits
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.n -= 8
	}
}

func (w *bitWriter) align() {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc, w.n = 0, 0
	}
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		var w [4]byte
		copy(w[:], b[i:])
		sum += binary.BigEndian.Uint32(w[:])
	}
	return sum
}
