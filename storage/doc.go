// Package storage provides an immutable, two-file sorted string table
// (SSTable) for storing string key/value pairs on disk.
//
// A table is written once, with WriteSSTable (or an SSTBuilder), and then
// opened read-only with ReadSSTable. Opening a table loads the whole index
// into memory; values stay on disk and are read on each call to Get.
//
// # Table Disk Layout
//
// A table is stored in its own directory:
//
//	path/to/table/
//	├── sstable.index
//	├── sstable.values
//
// The values file is the concatenation of the UTF-8 encoded values, in write
// order, with no separators, lengths or headers.
//
// The index file is a sequence of records, one per key, with nothing between
// them:
//
//	<key bytes> 0x00 <offset, 4 bytes, big-endian uint32>
//
// Where offset is the position of the key's value in the values file. A
// value's length is the distance to the next offset. The value with the
// largest offset runs to the end of the values file.
//
// Keys must be non-empty and made only of ASCII letters and digits. Values
// must be valid UTF-8 and may not contain the zero byte, which delimits keys
// in the index.
//
// Tables created with CreateTableDir live under a shared root, named by a
// random UUID:
//
//	path/to/root/
//	├── {{ ID_OF_SST }}/
//	│   ├── sstable.index
//	│   ├── sstable.values
package storage
