package storage

import (
	"fmt"
	"sync"

	"github.com/google/btree"
)

const (
	DefaultTreeOrder       = 3
	DefaultMemtableMaxSize = 1 << 10
)

// Memtable is an in-memory staging area for the pairs of a table that has
// not been written yet. Keys are kept in order, so a flushed memtable
// produces a table whose values are stored in key order.
//
// A Memtable is safe for concurrent use.
type Memtable struct {
	sync.RWMutex
	tree    *btree.BTreeG[string]
	hmap    map[string]string
	maxSize int
	frozen  bool
}

// NewMemtable creates an empty memtable that holds up to maxSize keys. A
// non-positive maxSize uses DefaultMemtableMaxSize.
func NewMemtable(maxSize int) *Memtable {
	if maxSize <= 0 {
		maxSize = DefaultMemtableMaxSize
	}
	return &Memtable{
		tree:    btree.NewOrderedG[string](DefaultTreeOrder),
		hmap:    make(map[string]string),
		maxSize: maxSize,
	}
}

// Get returns the value staged for k.
func (m *Memtable) Get(k string) (string, bool) {
	m.RLock()
	defer m.RUnlock()

	v, ok := m.hmap[k]
	return v, ok
}

// Put stores the pair, replacing any earlier value for the key. The pair
// is validated here, rather than when the memtable is flushed.
func (m *Memtable) Put(k, v string) error {
	// Validate the pair
	if err := ValidateKey(k); err != nil {
		return err
	}
	if err := ValidateValue(v); err != nil {
		return fmt.Errorf("key=%q: %w", k, err)
	}

	m.Lock()
	defer m.Unlock()

	if m.frozen {
		return ErrMemtableFrozen
	}

	// Is there room for a new key?
	if _, ok := m.hmap[k]; !ok && len(m.hmap) >= m.maxSize {
		return fmt.Errorf("%w: %d keys", ErrMemtableFull, m.maxSize)
	}

	// Set the value in the hash-map
	m.hmap[k] = v

	// Add the key to the tree
	m.tree.ReplaceOrInsert(k)

	// Done
	return nil
}

// Len returns the number of staged keys.
func (m *Memtable) Len() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.hmap)
}

// Full reports whether the memtable holds its maximum number of keys.
func (m *Memtable) Full() bool {
	m.RLock()
	defer m.RUnlock()
	return len(m.hmap) >= m.maxSize
}

// Freeze stops the memtable from accepting more writes.
func (m *Memtable) Freeze() {
	m.Lock()
	defer m.Unlock()
	m.frozen = true
}

// Pairs returns the memtable's pairs in ascending key order.
func (m *Memtable) Pairs() []Pair {
	m.RLock()
	defer m.RUnlock()

	pairs := make([]Pair, 0, len(m.hmap))
	m.tree.Ascend(func(k string) bool {
		pairs = append(pairs, Pair{Key: k, Value: m.hmap[k]})
		return true
	})
	return pairs
}

// Flush freezes the memtable and writes its pairs, in key order, to a new
// table in the directory dir.
func (m *Memtable) Flush(dir string, opts *Options) (*SSTable, error) {
	m.Freeze()
	return WriteSSTable(dir, m.Pairs(), opts)
}
