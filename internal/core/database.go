// Package core implements the retrieval core's adapter contract: the five
// operations (Add, Remove, Get, Query, Count) an HTTP or CLI host drives,
// plus the single readers-writer gate that keeps the in-memory index
// consistent with the persistent store under concurrent access.
package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/tomas/iqdb/internal/bucketindex"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/imagetable"
	"github.com/tomas/iqdb/internal/query"
	"github.com/tomas/iqdb/internal/store"
)

// loadLogInterval is how often Load reports progress while streaming the
// persistent store.
const loadLogInterval = 250000

// Database is the whole retrieval core: an in-memory image table and
// inverted index, kept consistent with a persistent store under one
// process-wide lock. Queries, Get and Count take the lock in shared mode;
// Add, Remove and Load take it exclusive.
type Database struct {
	mu      sync.RWMutex
	store   *store.Store
	table   *imagetable.Table
	index   *bucketindex.Index
	weights haar.WeightTable
}

// defaultMaxOpenConns and defaultBusyTimeoutMS mirror config.StoreConfig's
// own defaults, used by Open when a caller has no config.Config to draw on
// (e.g. tests exercising the store directly).
const (
	defaultMaxOpenConns  = 4
	defaultBusyTimeoutMS = 5000
)

// Open opens the persistent store at path with the standard pool tuning
// and haar.DefaultWeights, and rebuilds in-memory state from it. Use
// OpenWithPool or OpenWithOptions to override the connection-pool
// settings or weight table, e.g. from config.Config.
func Open(ctx context.Context, path string) (*Database, error) {
	return OpenWithPool(ctx, path, defaultMaxOpenConns, defaultBusyTimeoutMS)
}

// OpenWithPool opens the persistent store at path, tuning its connection
// pool per maxOpenConns/busyTimeoutMS, using haar.DefaultWeights, and
// rebuilds in-memory state from it.
func OpenWithPool(ctx context.Context, path string, maxOpenConns, busyTimeoutMS int) (*Database, error) {
	return OpenWithOptions(ctx, path, maxOpenConns, busyTimeoutMS, haar.DefaultWeights)
}

// OpenWithOptions opens the persistent store at path, tuning its
// connection pool per maxOpenConns/busyTimeoutMS and scoring with
// weights, and rebuilds in-memory state from it. weights is copied by
// value into the Database and never shared with any package-level
// state, so retuning it never touches other open databases.
func OpenWithOptions(ctx context.Context, path string, maxOpenConns, busyTimeoutMS int, weights haar.WeightTable) (*Database, error) {
	s, err := store.Open(path, maxOpenConns, busyTimeoutMS)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	db := &Database{
		store:   s,
		table:   imagetable.New(),
		index:   bucketindex.New(),
		weights: weights,
	}
	if err := db.Load(ctx, nil); err != nil {
		s.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying persistent store handle.
func (db *Database) Close() error {
	return db.store.Close()
}

// Add inserts or replaces the image identified by postID. If postID
// already carries a live image, it is removed first (insert-or-replace
// semantics): the new signature always lands at a fresh internal index.
func (db *Database) Add(ctx context.Context, postID int64, sig haar.Signature) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, err := db.store.GetByPostID(ctx, postID)
	if err != nil {
		return &StorageError{Err: err}
	}
	if existing != nil {
		if err := db.removeLocked(ctx, postID); err != nil {
			return err
		}
	}

	k, err := db.store.Insert(ctx, postID, sig.AvgLF, sig.EncodeBlob())
	if err != nil {
		return &StorageError{Err: err}
	}
	if k < 0 {
		return &FatalError{Message: fmt.Sprintf("store assigned negative internal index %d", k)}
	}

	db.table.Set(uint32(k), imagetable.Record{PostID: postID, AvgL: sig.AvgLF})
	db.index.Add(sig, uint32(k))
	return nil
}

// Remove deletes the image identified by postID. Removing an unknown
// postID is a warning-logged no-op, not an error.
func (db *Database) Remove(ctx context.Context, postID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.removeLocked(ctx, postID)
}

// removeLocked implements the remove algorithm; callers must already hold
// the write lock. In-memory state is retired before the store row is
// deleted: a crash in between leaves a persistent row that Load will
// resurrect on next startup, which is the intended recovery behavior for
// an incomplete remove.
func (db *Database) removeLocked(ctx context.Context, postID int64) error {
	row, err := db.store.GetByPostID(ctx, postID)
	if err != nil {
		return &StorageError{Err: err}
	}
	if row == nil {
		log.Printf("iqdb: remove: post_id %d not found, ignoring", postID)
		return nil
	}

	sig, err := haar.DecodeBlob(row.AvgLF, row.Sig)
	if err != nil {
		return &FatalError{Message: err.Error()}
	}

	db.index.Remove(sig, uint32(row.ID))
	db.table.Tombstone(uint32(row.ID))

	if err := db.store.DeleteByPostID(ctx, postID); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// Get returns the signature stored for postID, or a NotFoundError if no
// live image carries it.
func (db *Database) Get(ctx context.Context, postID int64) (haar.Signature, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row, err := db.store.GetByPostID(ctx, postID)
	if err != nil {
		return haar.Signature{}, &StorageError{Err: err}
	}
	if row == nil {
		return haar.Signature{}, &NotFoundError{PostID: postID}
	}

	sig, err := haar.DecodeBlob(row.AvgLF, row.Sig)
	if err != nil {
		return haar.Signature{}, &FatalError{Message: err.Error()}
	}
	return sig, nil
}

// Query runs a ranked similarity search against the current in-memory
// state. It is CPU-bound and never touches the persistent store, so it
// only needs the shared lock.
func (db *Database) Query(sig haar.Signature, k int) []query.Result {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return query.Run(sig, k, db.table, db.index, db.weights)
}

// Count returns the image table length: the highest-ever assigned internal
// index plus one, tombstones included.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.table.Len()
}

// Load resets in-memory state and rebuilds it from the persistent store,
// in primary-key order. onProgress, if non-nil, is invoked after every
// loadLogInterval rows and once more at the end.
func (db *Database) Load(ctx context.Context, onProgress func(loaded int)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	table := imagetable.New()
	index := bucketindex.New()

	loaded := 0
	err := db.store.ForEach(ctx, func(row store.Row) error {
		sig, err := haar.DecodeBlob(row.AvgLF, row.Sig)
		if err != nil {
			return &FatalError{Message: fmt.Sprintf("row id=%d: %v", row.ID, err)}
		}
		if row.ID < 0 {
			return &FatalError{Message: fmt.Sprintf("invalid internal index %d on load", row.ID)}
		}

		table.Set(uint32(row.ID), imagetable.Record{PostID: row.PostID, AvgL: sig.AvgLF})
		index.Add(sig, uint32(row.ID))

		loaded++
		if loaded%loadLogInterval == 0 {
			log.Printf("iqdb: load: %d images loaded", loaded)
			if onProgress != nil {
				onProgress(loaded)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if onProgress != nil {
		onProgress(loaded)
	}
	db.table = table
	db.index = index
	return nil
}
