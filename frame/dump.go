// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// dumpHeaderSize is index (8) + offset (4) + length (4).
const dumpHeaderSize = 16

// DumpRecord is one frame read back from a dump stream.
type DumpRecord struct {
	Index  uint64
	Offset uint32
	Data   []byte
}

// dumper writes little-endian records:
//
//	index  uint64
//	offset uint32
//	length uint32
//	data   [length]byte
type dumper struct {
	w   io.Writer
	hdr [dumpHeaderSize]byte
}

func (d *dumper) write(index uint64, offset uint32, data []byte) error {
	binary.LittleEndian.PutUint64(d.hdr[0:8], index)
	binary.LittleEndian.PutUint32(d.hdr[8:12], offset)
	binary.LittleEndian.PutUint32(d.hdr[12:16], uint32(len(data))) //nolint:gosec // slot sizes fit in 32 bits
	if _, err := d.w.Write(d.hdr[:]); err != nil {
		return fmt.Errorf("write dump header: %w", err)
	}
	if _, err := d.w.Write(data); err != nil {
		return fmt.Errorf("write dump data: %w", err)
	}
	return nil
}

// ReadDump decodes every record written by a channel created WithDump.
func ReadDump(r io.Reader) ([]DumpRecord, error) {
	var records []DumpRecord
	var hdr [dumpHeaderSize]byte
	for {
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return records, nil
			}
			return records, fmt.Errorf("read dump header: %w", err)
		}
		rec := DumpRecord{
			Index:  binary.LittleEndian.Uint64(hdr[0:8]),
			Offset: binary.LittleEndian.Uint32(hdr[8:12]),
		}
		rec.Data = make([]byte, binary.LittleEndian.Uint32(hdr[12:16]))
		if _, err := io.ReadFull(r, rec.Data); err != nil {
			return records, fmt.Errorf("read dump data for frame %d: %w", rec.Index, err)
		}
		records = append(records, rec)
	}
}
