package storage

import "errors"

// Errors returned by table operations. They are wrapped with context, so
// match them with errors.Is.
//
// I/O failures (missing or unreadable files) are returned as the underlying
// *fs.PathError, wrapped; match those with errors.Is(err, fs.ErrNotExist)
// and friends.
var (
	ErrInvalidKey     = errors.New("sstable: invalid key")
	ErrInvalidValue   = errors.New("sstable: invalid value")
	ErrDuplicateKey   = errors.New("sstable: duplicate key")
	ErrTableFull      = errors.New("sstable: values exceed the 4GiB offset range")
	ErrMalformedIndex = errors.New("sstable: malformed index")
	ErrCorruptValue   = errors.New("sstable: corrupt value")
	ErrBuilderClosed  = errors.New("sstable: builder is not set up or already finished")
	ErrMemtableFull   = errors.New("sstable: memtable is full")
	ErrMemtableFrozen = errors.New("sstable: memtable is frozen")
)

var errNotRegular = errors.New("not a regular file")
