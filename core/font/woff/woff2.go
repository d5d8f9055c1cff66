package woff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dsnet/compress/brotli"
)

const woff2HeaderSize = 48

// WOFF2 'known table' tags, indexed by the lower 6 bits of a table's flags.
var woff2KnownTags = []string{
	"cmap", "head", "hhea", "hmtx",
	"maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca",
	"prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern",
	"LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS",
	"GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL",
	"SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar",
	"fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar",
	"mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat",
	"Gloc", "Feat", "Sill",
}

type woff2Entry struct {
	tag             uint32
	origLength      uint32
	transformed     bool
	transformLength uint32
}

// streamLength is the number of bytes the table occupies in the
// decompressed stream.
func (e woff2Entry) streamLength() uint32 {
	if e.transformed {
		return e.transformLength
	}
	return e.origLength
}

var (
	tagGlyf = makeTag("glyf")
	tagLoca = makeTag("loca")
	tagHmtx = makeTag("hmtx")
	tagHhea = makeTag("hhea")
	tagMaxp = makeTag("maxp")
)

func unwrapWOFF2(b []byte) ([]byte, error) {
	if len(b) < woff2HeaderSize {
		return nil, errTruncated
	}
	flavor := binary.BigEndian.Uint32(b[4:])
	if tagString(flavor) == "ttcf" {
		return nil, errors.New("WOFF2 font collections are not supported")
	}
	if length := binary.BigEndian.Uint32(b[8:]); int(length) != len(b) {
		return nil, fmt.Errorf("WOFF2 header announces %d bytes, have %d", length, len(b))
	}
	numTables := int(binary.BigEndian.Uint16(b[12:]))
	if numTables == 0 {
		return nil, errors.New("WOFF2 container without tables")
	}
	totalSfntSize := binary.BigEndian.Uint32(b[16:])
	totalCompressedSize := binary.BigEndian.Uint32(b[20:])
	r := &reader{b: b, pos: woff2HeaderSize}
	entries := make([]woff2Entry, 0, numTables)
	var streamSize uint64
	for i := 0; i < numTables; i++ {
		e, err := r.tableEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		streamSize += uint64(e.streamLength())
	}
	if uint64(r.pos)+uint64(totalCompressedSize) > uint64(len(b)) {
		return nil, errTruncated
	}
	compressed := b[r.pos : r.pos+int(totalCompressedSize)]
	stream, err := decompress(compressed, streamSize)
	if err != nil {
		return nil, err
	}
	tables := make(map[uint32][]byte, numTables)
	order := make([]uint32, 0, numTables)
	var offset uint64
	for _, e := range entries {
		n := uint64(e.streamLength())
		tables[e.tag] = stream[offset : offset+n]
		order = append(order, e.tag)
		offset += n
	}
	out := make([]sfntTable, 0, numTables)
	for i, tag := range order {
		e := entries[i]
		data := tables[tag]
		if e.transformed {
			switch tag {
			case tagGlyf:
				data, err = emptyGlyf()
			case tagLoca:
				data, err = emptyLoca(tables[tagGlyf], entries)
			case tagHmtx:
				data, err = untransformHmtx(data, tables[tagHhea], tables[tagMaxp])
			default:
				err = fmt.Errorf("unknown transform for table %q", tagString(tag))
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, sfntTable{tag: tag, data: data})
	}
	sfnt := buildSFNT(flavor, out)
	tracer().Debugf("WOFF2: %d tables, announced sfnt size %d, rebuilt %d", numTables, totalSfntSize, len(sfnt))
	return sfnt, nil
}

func decompress(data []byte, expected uint64) ([]byte, error) {
	br, err := brotli.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	defer br.Close()
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, io.LimitReader(br, int64(expected)+1)); err != nil {
		return nil, fmt.Errorf("brotli: %w", err)
	}
	if uint64(buf.Len()) != expected {
		return nil, fmt.Errorf("brotli stream has %d bytes, table directory announces %d", buf.Len(), expected)
	}
	return buf.Bytes(), nil
}

// --- Table transforms ------------------------------------------------------

func emptyGlyf() ([]byte, error) {
	return make([]byte, 4), nil
}

// emptyLoca creates a 'loca' table pointing every glyph to an empty
// outline. The transformed 'glyf' header tells the glyph count and the
// index format.
func emptyLoca(glyf []byte, entries []woff2Entry) ([]byte, error) {
	for _, e := range entries {
		if e.tag == tagGlyf && !e.transformed {
			return nil, errors.New("transformed 'loca' requires transformed 'glyf'")
		}
	}
	if len(glyf) < 8 {
		return nil, errors.New("transformed 'glyf' header truncated")
	}
	numGlyphs := int(binary.BigEndian.Uint16(glyf[4:]))
	indexFormat := binary.BigEndian.Uint16(glyf[6:])
	size := 2
	if indexFormat != 0 {
		size = 4
	}
	return make([]byte, (numGlyphs+1)*size), nil
}

// untransformHmtx restores an 'hmtx' table from its WOFF2 transform.
// Left side bearings omitted from the stream would have to be taken from
// glyph bounding boxes; as outlines are dropped, they are set to 0.
func untransformHmtx(data, hhea, maxp []byte) ([]byte, error) {
	if len(hhea) < 36 || len(maxp) < 6 {
		return nil, errors.New("transformed 'hmtx' requires 'hhea' and 'maxp'")
	}
	numHMetrics := int(binary.BigEndian.Uint16(hhea[34:]))
	numGlyphs := int(binary.BigEndian.Uint16(maxp[4:]))
	if numHMetrics == 0 || numHMetrics > numGlyphs {
		return nil, errors.New("inconsistent 'hhea' metrics count")
	}
	if len(data) < 1+2*numHMetrics {
		return nil, errTruncated
	}
	flags := data[0]
	advances := data[1 : 1+2*numHMetrics]
	rest := data[1+2*numHMetrics:]
	var lsbs, monoLsbs []byte
	if flags&0x01 == 0 {
		if len(rest) < 2*numHMetrics {
			return nil, errTruncated
		}
		lsbs, rest = rest[:2*numHMetrics], rest[2*numHMetrics:]
	}
	if flags&0x02 == 0 {
		n := 2 * (numGlyphs - numHMetrics)
		if len(rest) < n {
			return nil, errTruncated
		}
		monoLsbs = rest[:n]
	}
	out := make([]byte, 4*numHMetrics+2*(numGlyphs-numHMetrics))
	for i := 0; i < numHMetrics; i++ {
		copy(out[4*i:], advances[2*i:2*i+2])
		if lsbs != nil {
			copy(out[4*i+2:], lsbs[2*i:2*i+2])
		}
	}
	if monoLsbs != nil {
		copy(out[4*numHMetrics:], monoLsbs)
	}
	return out, nil
}

// --- Reading the table directory -------------------------------------------

type reader struct {
	b   []byte
	pos int
}

func (r *reader) u8() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, errTruncated
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, errTruncated
	}
	v := binary.BigEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

// base128 reads a UIntBase128 value: big-endian groups of 7 bits, at most
// 5 bytes, no leading zeros.
func (r *reader) base128() (uint32, error) {
	var acc uint32
	for i := 0; i < 5; i++ {
		d, err := r.u8()
		if err != nil {
			return 0, err
		}
		if i == 0 && d == 0x80 {
			return 0, errors.New("UIntBase128 with leading zeros")
		}
		if acc&0xFE000000 != 0 {
			return 0, errors.New("UIntBase128 overflow")
		}
		acc = acc<<7 | uint32(d&0x7F)
		if d&0x80 == 0 {
			return acc, nil
		}
	}
	return 0, errors.New("UIntBase128 exceeds 5 bytes")
}

func (r *reader) tableEntry() (woff2Entry, error) {
	var e woff2Entry
	flags, err := r.u8()
	if err != nil {
		return e, err
	}
	if idx := int(flags & 0x3F); idx == 63 {
		if e.tag, err = r.u32(); err != nil {
			return e, err
		}
	} else if idx < len(woff2KnownTags) {
		e.tag = makeTag(woff2KnownTags[idx])
	} else {
		return e, fmt.Errorf("invalid WOFF2 known-table index %d", idx)
	}
	if e.origLength, err = r.base128(); err != nil {
		return e, err
	}
	version := (flags >> 6) & 0x03
	if e.tag == tagGlyf || e.tag == tagLoca {
		e.transformed = version == 0 // version 3 is the null transform
	} else {
		e.transformed = version != 0
	}
	if e.transformed {
		if e.transformLength, err = r.base128(); err != nil {
			return e, err
		}
	}
	return e, nil
}
