package storage

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"slices"
)

const (
	IndexFileName  = "sstable.index"
	ValuesFileName = "sstable.values"
)

// ReadToEnd is the length of the value with the largest offset. That
// value has no successor, so it runs to the end of the values file.
const ReadToEnd int64 = -1

const (
	indexDelim  byte = 0x00
	offsetWidth      = 4
)

// IndexEntry is a single (offset, key) record of the index file.
type IndexEntry struct {
	Offset uint32
	Key    string
}

// ValueSpan locates a value in the values file.
type ValueSpan struct {
	Offset uint32
	Length int64 // Byte count, or ReadToEnd
}

// AppendIndexRecord appends the index record for key, with its value at
// offset, to dst and returns the extended buffer.
//
// The key is not validated.
func AppendIndexRecord(dst []byte, key string, offset uint32) []byte {
	dst = append(dst, key...)
	dst = append(dst, indexDelim)
	return binary.BigEndian.AppendUint32(dst, offset)
}

// EncodeIndex encodes entries, in order, as the contents of an index file.
func EncodeIndex(entries []IndexEntry) ([]byte, error) {
	size := 0
	for _, e := range entries {
		size += len(e.Key) + 1 + offsetWidth
	}

	b := make([]byte, 0, size)
	for _, e := range entries {
		if err := ValidateKey(e.Key); err != nil {
			return nil, err
		}
		b = AppendIndexRecord(b, e.Key, e.Offset)
	}
	return b, nil
}

// DecodeIndex decodes the contents of an index file into a mapping of key
// to value span.
//
// Entries are ordered by offset, and each one's length is the distance to
// the next offset. Records sharing an offset keep their file order, so an
// empty value followed by another value decodes with length zero. The
// last entry gets the ReadToEnd length.
//
// An empty index decodes to an empty mapping.
func DecodeIndex(b []byte) (map[string]ValueSpan, error) {
	entries, err := parseIndexEntries(b)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		if len(b) > 0 {
			return nil, fmt.Errorf("%w: %d bytes hold no records", ErrMalformedIndex, len(b))
		}
		return map[string]ValueSpan{}, nil
	}

	// Order by offset
	slices.SortStableFunc(entries, func(a, b IndexEntry) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	// Each value ends where the next one starts
	index := make(map[string]ValueSpan, len(entries))
	for i, e := range entries {
		if _, ok := index[e.Key]; ok {
			return nil, fmt.Errorf("%w: key=%q appears more than once", ErrMalformedIndex, e.Key)
		}

		length := ReadToEnd
		if i+1 < len(entries) {
			length = int64(entries[i+1].Offset - e.Offset)
		}
		index[e.Key] = ValueSpan{
			Offset: e.Offset,
			Length: length,
		}
	}
	return index, nil
}

// parseIndexEntries scans the raw index bytes, in file order.
//
// Key bytes accumulate from start until a zero byte. The zero byte is
// followed by exactly offsetWidth offset bytes, after which the next
// record starts.
func parseIndexEntries(b []byte) ([]IndexEntry, error) {
	var entries []IndexEntry

	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] != indexDelim {
			continue
		}

		end := i + 1 + offsetWidth
		if end > len(b) {
			return nil, fmt.Errorf(
				"%w: record at byte %d has a truncated offset",
				ErrMalformedIndex,
				start,
			)
		}

		key := string(b[start:i])
		if err := ValidateKey(key); err != nil {
			return nil, fmt.Errorf("%w: record at byte %d: %v", ErrMalformedIndex, start, err)
		}

		entries = append(entries, IndexEntry{
			Offset: binary.BigEndian.Uint32(b[i+1 : end]),
			Key:    key,
		})

		start = end
		i = end - 1
	}

	if start != len(b) {
		return nil, fmt.Errorf(
			"%w: %d trailing bytes after the last record",
			ErrMalformedIndex,
			len(b)-start,
		)
	}
	return entries, nil
}
