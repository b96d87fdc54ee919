package storage

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// SSTBuilder is used to build a new SSTable.
//
// Call SetUp, then Add each pair in write order, then Finish. Close
// releases the files of a builder that will not be finished; it is safe to
// call after Finish.
type SSTBuilder struct {
	Path    string   // The path to the table's directory
	Options *Options // Options for the finished table

	offset     uint64 // Bytes of values written so far
	seen       map[string]struct{}
	indexFile  *os.File
	valuesFile *os.File
	index      *bufio.Writer
	values     *bufio.Writer
	rec        []byte
	log        zerolog.Logger
}

// SetUp sets up the SSTBuilder. It creates the table directory, if
// needed, and creates (or truncates) the index and values files. Calling
// it again starts the table over.
func (b *SSTBuilder) SetUp() error {
	// Release the files of an earlier SetUp
	if err := b.Close(); err != nil {
		return fmt.Errorf("failed to close sst dir=%q files: %w", b.Path, err)
	}

	b.log = b.Options.logger().With().Str("dir", b.Path).Logger()

	// Make the table directory
	if err := os.MkdirAll(b.Path, 0755); err != nil {
		return fmt.Errorf("failed to create sst dir=%q: %w", b.Path, err)
	}

	// Open the index file
	f, err := os.Create(filepath.Join(b.Path, IndexFileName))
	if err != nil {
		return fmt.Errorf("failed to create sst dir=%q index file: %w", b.Path, err)
	}
	b.indexFile = f
	b.index = bufio.NewWriter(f)

	// Open the values file
	f, err = os.Create(filepath.Join(b.Path, ValuesFileName))
	if err != nil {
		b.Close()
		return fmt.Errorf("failed to create sst dir=%q values file: %w", b.Path, err)
	}
	b.valuesFile = f
	b.values = bufio.NewWriter(f)

	b.offset = 0
	b.seen = make(map[string]struct{})

	// Done
	return nil
}

// Add appends a key/value pair to the table.
//
// The key and value are validated before anything is written, so a
// rejected pair leaves the files as they were.
func (b *SSTBuilder) Add(key, value string) error {
	if b.index == nil {
		return ErrBuilderClosed
	}

	// Validate the pair
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateValue(value); err != nil {
		return fmt.Errorf("key=%q: %w", key, err)
	}
	if _, ok := b.seen[key]; ok {
		return fmt.Errorf("%w: key=%q", ErrDuplicateKey, key)
	}
	if b.offset > math.MaxUint32 {
		return fmt.Errorf("%w: key=%q would start at byte %d", ErrTableFull, key, b.offset)
	}

	// Write the index record
	b.rec = AppendIndexRecord(b.rec[:0], key, uint32(b.offset))
	if _, err := b.index.Write(b.rec); err != nil {
		return fmt.Errorf("failed to write index record key=%q: %w", key, err)
	}

	// Write the value
	n, err := b.values.WriteString(value)
	if err != nil {
		return fmt.Errorf("failed to write value key=%q: %w", key, err)
	}

	b.offset += uint64(n)
	b.seen[key] = struct{}{}

	// Done
	return nil
}

// Finish flushes and closes the table files, then opens and returns the
// finished table.
func (b *SSTBuilder) Finish() (*SSTable, error) {
	if b.index == nil {
		return nil, ErrBuilderClosed
	}

	// Flush the buffered writes
	if err := b.index.Flush(); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to flush sst dir=%q index file: %w", b.Path, err)
	}
	if err := b.values.Flush(); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to flush sst dir=%q values file: %w", b.Path, err)
	}

	// Close the files
	count := len(b.seen)
	if err := b.Close(); err != nil {
		return nil, fmt.Errorf("failed to close sst dir=%q files: %w", b.Path, err)
	}

	b.log.Debug().
		Int("keys", count).
		Uint64("values_bytes", b.offset).
		Msg("wrote sstable")

	// Load the table
	return ReadSSTable(b.Path, b.Options)
}

// Close closes the builder's files without flushing buffered writes.
func (b *SSTBuilder) Close() error {
	var errs []error
	if b.indexFile != nil {
		errs = append(errs, b.indexFile.Close())
	}
	if b.valuesFile != nil {
		errs = append(errs, b.valuesFile.Close())
	}

	b.indexFile, b.valuesFile = nil, nil
	b.index, b.values = nil, nil
	return errors.Join(errs...)
}
