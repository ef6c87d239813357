// Package bptreekv is an embedded, single-file key-value store backed by a
// disk-resident B+ tree. DB is the entry point: Open a file, then Get, Put,
// Delete, Contains, and Scan against it.
package bptreekv

import (
	"fmt"
	"sync"

	"github.com/tuannm99/bptreekv/internal/btree"
	"github.com/tuannm99/bptreekv/internal/config"
	"github.com/tuannm99/bptreekv/internal/pager"
)

// DB is a single open database file.
type DB struct {
	pager *pager.Pager
	tree  *btree.Tree

	closeOnce sync.Once
}

// Open opens or creates the database file at path using default engine
// settings (see config.Default). For custom settings use OpenWithConfig.
func Open(path string) (*DB, error) {
	return OpenWithConfig(path, config.Default())
}

// OpenWithConfigFile loads engine settings from a YAML/JSON/TOML file at
// configPath (via viper) before opening path.
func OpenWithConfigFile(path, configPath string) (*DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("bptreekv: %w", err)
	}
	return OpenWithConfig(path, cfg)
}

// OpenWithConfig opens path with an explicit engine configuration.
func OpenWithConfig(path string, cfg config.Engine) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bptreekv: %w", err)
	}

	p, err := pager.Open(path, cfg.Order, cfg.CacheMaxSize)
	if err != nil {
		return nil, fmt.Errorf("bptreekv: %w", err)
	}

	tree, err := btree.New(p)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("bptreekv: %w", err)
	}

	return &DB{pager: p, tree: tree}, nil
}

// Get returns the value stored for key, if present.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	v, ok, err := db.tree.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("bptreekv: get: %w", err)
	}
	return v, ok, nil
}

// Contains reports whether key is present. The value is read but not
// returned.
func (db *DB) Contains(key []byte) (bool, error) {
	ok, err := db.tree.Contains(key)
	if err != nil {
		return false, fmt.Errorf("bptreekv: contains: %w", err)
	}
	return ok, nil
}

// Put stores value under key, replacing any existing value.
func (db *DB) Put(key, value []byte) error {
	if err := db.tree.Put(key, value); err != nil {
		return fmt.Errorf("bptreekv: put: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key []byte) error {
	if err := db.tree.Delete(key); err != nil {
		return fmt.Errorf("bptreekv: delete: %w", err)
	}
	return nil
}

// Pair is a single ordered key/value result from Scan.
type Pair = btree.Pair

// Scan returns every stored pair in ascending key order.
func (db *DB) Scan() ([]Pair, error) {
	pairs, err := db.tree.Scan()
	if err != nil {
		return nil, fmt.Errorf("bptreekv: scan: %w", err)
	}
	return pairs, nil
}

// Stats returns the page cache's hit, miss, and resurrection counters.
func (db *DB) Stats() (hits, misses, resurrections uint64) {
	return db.pager.Stats()
}

// Close flushes and closes the underlying file. Close is safe to call more
// than once; only the first call has effect.
func (db *DB) Close() error {
	var err error
	db.closeOnce.Do(func() {
		err = db.pager.Close()
	})
	return err
}
