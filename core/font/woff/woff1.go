package woff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

const woffHeaderSize = 44

// unwrapWOFF unpacks a WOFF 1.0 container. Every table is stored either
// zlib-compressed or, if compression did not pay off, verbatim.
func unwrapWOFF(b []byte) ([]byte, error) {
	if len(b) < woffHeaderSize {
		return nil, errTruncated
	}
	flavor := binary.BigEndian.Uint32(b[4:])
	if length := binary.BigEndian.Uint32(b[8:]); int(length) != len(b) {
		return nil, fmt.Errorf("WOFF header announces %d bytes, have %d", length, len(b))
	}
	numTables := int(binary.BigEndian.Uint16(b[12:]))
	if numTables == 0 {
		return nil, fmt.Errorf("WOFF container without tables")
	}
	dir := b[woffHeaderSize:]
	if len(dir) < 20*numTables {
		return nil, errTruncated
	}
	tables := make([]sfntTable, 0, numTables)
	for i := 0; i < numTables; i++ {
		rec := dir[20*i:]
		tag := binary.BigEndian.Uint32(rec[0:])
		offset := binary.BigEndian.Uint32(rec[4:])
		compLength := binary.BigEndian.Uint32(rec[8:])
		origLength := binary.BigEndian.Uint32(rec[12:])
		if uint64(offset)+uint64(compLength) > uint64(len(b)) {
			return nil, fmt.Errorf("table %q exceeds container", tagString(tag))
		}
		data := b[offset : offset+compLength]
		if compLength > origLength {
			return nil, fmt.Errorf("table %q: compressed size exceeds original size", tagString(tag))
		}
		if compLength < origLength {
			var err error
			if data, err = inflate(data, origLength); err != nil {
				return nil, fmt.Errorf("table %q: %w", tagString(tag), err)
			}
		}
		tables = append(tables, sfntTable{tag: tag, data: data})
	}
	return buildSFNT(flavor, tables), nil
}

func inflate(data []byte, origLength uint32) ([]byte, error) {
	z, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer z.Close()
	out := make([]byte, origLength)
	if _, err = io.ReadFull(z, out); err != nil {
		return nil, err
	}
	return out, nil
}
