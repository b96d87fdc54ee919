package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/rs/zerolog"
)

// SSTable is an immutable sorted string table, loaded from a table
// directory.
//
// The index is held in memory. Values are read from disk on each Get,
// through a file handle that is opened and closed by that call, so an
// SSTable is safe for concurrent use.
type SSTable struct {
	path   string               // The path to the table's directory
	values string               // The path to the values file
	index  map[string]ValueSpan // Key to value location
	bloom  *bloom.BloomFilter
	log    zerolog.Logger
}

// WriteSSTable writes pairs, in order, to a new table in the directory dir,
// and returns the loaded table.
//
// Any existing table files in dir are overwritten. The write is not atomic:
// if it fails part way, partially written files are left behind.
func WriteSSTable(dir string, pairs []Pair, opts *Options) (*SSTable, error) {
	b := &SSTBuilder{
		Path:    dir,
		Options: opts,
	}
	if err := b.SetUp(); err != nil {
		return nil, err
	}
	defer b.Close()

	for _, p := range pairs {
		if err := b.Add(p.Key, p.Value); err != nil {
			return nil, fmt.Errorf("failed to write sst dir=%q: %w", dir, err)
		}
	}
	return b.Finish()
}

// ReadSSTable opens the table stored in the directory dir.
//
// It reads and decodes the whole index file, and checks that every
// indexed value lies within the values file.
func ReadSSTable(dir string, opts *Options) (*SSTable, error) {
	log := opts.logger().With().Str("dir", dir).Logger()

	// Read the index
	b, err := os.ReadFile(filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read sst dir=%q index file: %w", dir, err)
	}

	// Check the values file
	valuesPath := filepath.Join(dir, ValuesFileName)
	info, err := statValues(valuesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sst dir=%q values file: %w", dir, err)
	}

	// Decode the index
	index, err := DecodeIndex(b)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sst dir=%q index file: %w", dir, err)
	}
	if err := checkSpans(index, info.Size()); err != nil {
		return nil, fmt.Errorf("failed to load sst dir=%q: %w", dir, err)
	}

	// Build the bloom filter
	bf := bloom.NewWithEstimates(uint(max(len(index), 1)), opts.bloomFilterFPR())
	for k := range index {
		bf.AddString(k)
	}

	log.Debug().
		Int("keys", len(index)).
		Int("index_bytes", len(b)).
		Int64("values_bytes", info.Size()).
		Msg("loaded sstable")

	return &SSTable{
		path:   dir,
		values: valuesPath,
		index:  index,
		bloom:  bf,
		log:    log,
	}, nil
}

// statValues opens the values file, to make sure it is readable, and
// returns its info. The file must be a regular file.
func statValues(p string) (fs.FileInfo, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "open", Path: p, Err: errNotRegular}
	}
	return info, nil
}

// checkSpans makes sure every span fits in a values file of the given size.
func checkSpans(index map[string]ValueSpan, size int64) error {
	for k, s := range index {
		end := int64(s.Offset)
		if s.Length != ReadToEnd {
			end += s.Length
		}
		if end > size {
			return fmt.Errorf(
				"%w: key=%q spans to byte %d of a %d byte values file",
				ErrMalformedIndex,
				k,
				end,
				size,
			)
		}
	}
	return nil
}

// Get returns the value stored for key. The boolean is false, with a nil
// error, when the table has no such key.
//
// A value that cannot be read in full, or is not valid UTF-8, means the
// table is corrupt and is reported as ErrCorruptValue.
func (t *SSTable) Get(key string) (string, bool, error) {
	// Is it in the table?
	if !t.MightContain(key) {
		return "", false, nil
	}
	span, ok := t.index[key]
	if !ok {
		return "", false, nil
	}

	// Open the values file
	f, err := os.Open(t.values)
	if err != nil {
		return "", false, fmt.Errorf("failed to open sst dir=%q values file: %w", t.path, err)
	}
	defer f.Close()

	// Read the value
	b, err := readSpan(f, span)
	if err == nil && !utf8.Valid(b) {
		err = fmt.Errorf("%w: not valid utf-8", ErrCorruptValue)
	}
	if err != nil {
		if errors.Is(err, ErrCorruptValue) {
			t.log.Error().Err(err).Str("key", key).Msg("corrupt sstable value")
		}
		return "", false, fmt.Errorf("failed to read sst dir=%q key=%q: %w", t.path, key, err)
	}

	// Done
	return string(b), true, nil
}

func readSpan(r io.ReadSeeker, span ValueSpan) ([]byte, error) {
	if _, err := r.Seek(int64(span.Offset), io.SeekStart); err != nil {
		return nil, err
	}

	if span.Length == ReadToEnd {
		return io.ReadAll(r)
	}

	b := make([]byte, span.Length)
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: want %d bytes at offset %d: %v", ErrCorruptValue, span.Length, span.Offset, err)
		}
		return nil, err
	}
	return b, nil
}

// MightContain reports whether the table *might* contain the key. A false
// result means the key is definitely absent.
func (t *SSTable) MightContain(key string) bool {
	return t.bloom.TestString(key)
}

// Len returns the number of keys in the table.
func (t *SSTable) Len() int {
	return len(t.index)
}

// Keys returns the table's keys in ascending order.
func (t *SSTable) Keys() []string {
	return slices.Sorted(maps.Keys(t.index))
}

// Dir returns the path to the table's directory.
func (t *SSTable) Dir() string {
	return t.path
}
