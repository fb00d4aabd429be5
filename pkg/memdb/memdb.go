// pkg/memdb/memdb.go
package memdb

import (
	"errors"
	"sync"
)

// ErrTxDone is returned when Commit or Rollback is called on a
// transaction that has already finished.
var ErrTxDone = errors.New("memdb: transaction has already been committed or rolled back")

// DB is a process-memory store of named buckets. Each bucket maps
// string keys to arbitrary values and remembers insertion order, which
// List preserves. A single mutex serializes all access: a transaction
// holds the whole store as one critical section, so multi-bucket writes
// (e.g. the two legs of a transfer) commit together or not at all.
//
// Nothing is ever persisted; all state is lost when the process exits.
type DB struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	items map[string]any
	order []string
}

func newBucket() *bucket {
	return &bucket{items: make(map[string]any)}
}

func (b *bucket) put(key string, value any) {
	if _, ok := b.items[key]; !ok {
		b.order = append(b.order, key)
	}
	b.items[key] = value
}

// New creates an empty DB.
func New() *DB {
	return &DB{buckets: make(map[string]*bucket)}
}

// Get returns the value stored under key in the named bucket.
// It autocommits: the lock is held only for the duration of the call.
func (d *DB) Get(name, key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.get(name, key)
}

// Put stores value under key in the named bucket, creating the bucket
// if needed. It autocommits.
func (d *DB) Put(name, key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(name, key, value)
}

// List returns all values in the named bucket in insertion order.
// It autocommits.
func (d *DB) List(name string) []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list(name)
}

// Len returns the number of entries in the named bucket. It autocommits.
func (d *DB) Len(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[name]
	if !ok {
		return 0
	}
	return len(b.items)
}

// Unlocked accessors shared with Tx; callers must hold d.mu.

func (d *DB) get(name, key string) (any, bool) {
	b, ok := d.buckets[name]
	if !ok {
		return nil, false
	}
	v, ok := b.items[key]
	return v, ok
}

func (d *DB) put(name, key string, value any) {
	b, ok := d.buckets[name]
	if !ok {
		b = newBucket()
		d.buckets[name] = b
	}
	b.put(key, value)
}

func (d *DB) list(name string) []any {
	b, ok := d.buckets[name]
	if !ok {
		return nil
	}
	out := make([]any, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.items[key])
	}
	return out
}
